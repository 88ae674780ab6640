package sources

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/jiwasawa/blogforge/internal/engine"
)

// Transcript acquisition walks a fixed ladder of strategies:
//  1. ANDROID /player → caption track enumeration
//  2. ranked timedtext fetch per track
//  3. translated timedtext (&tlang=en) for translatable auto tracks
//  4. engagement panel /next → /get_transcript
//  5. yt-dlp external tool
// HTTP 429 anywhere stops the ladder immediately.

// TranscriptCandidate is one caption track discovered for a video.
type TranscriptCandidate struct {
	Language     string
	Generated    bool
	Translatable bool
	FetchURL     string
}

// errTrail keeps the most recent attempt errors for the terminal message.
type errTrail struct {
	msgs []string
}

const errTrailKeep = 5

func (t *errTrail) add(stage string, err error) {
	t.msgs = append(t.msgs, stage+": "+err.Error())
	if len(t.msgs) > errTrailKeep {
		t.msgs = t.msgs[len(t.msgs)-errTrailKeep:]
	}
}

func (t *errTrail) err(videoID string) error {
	return fmt.Errorf("transcript unavailable for %s: %s", videoID, strings.Join(t.msgs, "; "))
}

// listCandidates enumerates caption tracks via the ANDROID Innertube /player
// endpoint.
func listCandidates(ctx context.Context, videoID string) ([]TranscriptCandidate, error) {
	if err := ytLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqBody, err := json.Marshal(innertubeReq{
		VideoID: videoID,
		Context: innertubeCtx{
			Client: innertubeClient{
				ClientName:        "ANDROID",
				ClientVersion:     ytAndroidVersion,
				AndroidSdkVersion: 30,
				Hl:                "en",
				Gl:                "US",
			},
		},
		RacyCheckOk:    true,
		ContentCheckOk: true,
	})
	if err != nil {
		return nil, err
	}

	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, ytInnertubeURL+"?prettyPrint=false", strings.NewReader(string(reqBody)))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", ytAndroidUA)
		req.Header.Set("X-Youtube-Client-Name", "3")
		req.Header.Set("X-Youtube-Client-Version", ytAndroidVersion)
		resp, err := engine.Cfg.HTTPClient.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			return nil, &engine.RateLimitError{Platform: "youtube", Detail: "player enumeration"}
		}
		return resp, nil
	})
	if err != nil {
		return nil, fmt.Errorf("android innertube: %w", err)
	}
	defer resp.Body.Close()

	var playerResp innertubePlayerResp
	if err := json.NewDecoder(resp.Body).Decode(&playerResp); err != nil {
		return nil, fmt.Errorf("decode player: %w", err)
	}
	if playerResp.Captions == nil {
		reason := ""
		if playerResp.PlayabilityStatus != nil {
			reason = playerResp.PlayabilityStatus.Reason
		}
		if reason != "" {
			return nil, fmt.Errorf("captions unavailable: %s", reason)
		}
		return nil, errors.New("no captions in player response")
	}
	tracks := playerResp.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return nil, errors.New("no caption tracks")
	}

	candidates := make([]TranscriptCandidate, 0, len(tracks))
	for _, t := range tracks {
		if t.BaseURL == "" {
			continue
		}
		candidates = append(candidates, TranscriptCandidate{
			Language:     t.LanguageCode,
			Generated:    t.Kind == "asr",
			Translatable: t.IsTranslatable,
			FetchURL:     t.BaseURL,
		})
	}
	return candidates, nil
}

// rankCandidates orders tracks: authored before auto-generated, English
// variants before other languages, original order otherwise.
func rankCandidates(candidates []TranscriptCandidate) []TranscriptCandidate {
	ranked := make([]TranscriptCandidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Generated != b.Generated {
			return !a.Generated
		}
		aEn := strings.HasPrefix(a.Language, "en")
		bEn := strings.HasPrefix(b.Language, "en")
		if aEn != bEn {
			return aEn
		}
		return false
	})
	return ranked
}

// errParseTransient marks a timedtext response that downloaded but did not
// parse; worth an extra pause before retrying.
var errParseTransient = errors.New("timedtext parse failed")

// fetchCandidateText downloads one caption track with bounded retries.
// Waits 1s·2^(attempt−1) between attempts, plus 2s after a parse failure.
func fetchCandidateText(ctx context.Context, fetchURL string) (string, error) {
	const maxAttempts = 3
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			wait := time.Second << (attempt - 2)
			if errors.Is(lastErr, errParseTransient) {
				wait += 2 * time.Second
			}
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		text, err := fetchTimedTextOnce(ctx, fetchURL)
		if err == nil {
			return text, nil
		}
		if engine.IsRateLimit(err) {
			return "", err
		}
		lastErr = err
	}
	return "", lastErr
}

// fetchTimedTextOnce fetches and parses a timedtext caption URL once.
func fetchTimedTextOnce(ctx context.Context, fetchURL string) (string, error) {
	if err := ytLimiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", engine.UserAgentChrome)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := engine.Cfg.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2*1024*1024))
	if err != nil {
		return "", err
	}

	if resp.StatusCode == http.StatusTooManyRequests || strings.Contains(string(body), "Too Many Requests") {
		return "", &engine.RateLimitError{Platform: "youtube", Detail: "timedtext"}
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("timedtext status %d", resp.StatusCode)
	}

	var tt ytTimedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return "", fmt.Errorf("%w: %v", errParseTransient, err)
	}

	var sb strings.Builder
	for _, line := range tt.Lines {
		text := engine.CleanHTML(line.Text)
		if text != "" {
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("%w: empty document", errParseTransient)
	}
	return sb.String(), nil
}

// translatedURL rewrites a caption URL to request server-side translation to English.
func translatedURL(fetchURL string) string {
	return fetchURL + "&tlang=en"
}

// --- engagement panel direct lookup ---

// getTranscriptRE extracts the continuation token from a raw /next JSON response.
var getTranscriptRE = regexp.MustCompile(`"getTranscriptEndpoint":\{"params":"([^"]+)"`)

func extractTranscriptToken(data []byte) (string, error) {
	if m := getTranscriptRE.FindSubmatch(data); len(m) >= 2 {
		// The params value in the /next JSON response is URL-encoded.
		// /get_transcript expects the decoded (raw base64) form.
		decoded, err := url.QueryUnescape(string(m[1]))
		if err != nil {
			return string(m[1]), nil
		}
		return decoded, nil
	}
	return "", errors.New("getTranscriptEndpoint not found in engagement panels")
}

// parseTranscriptSegments extracts plain text from a /get_transcript JSON response.
func parseTranscriptSegments(resp ytGetTranscriptResp) string {
	var sb strings.Builder
	for _, action := range resp.Actions {
		if action.UpdateEngagementPanelAction == nil {
			continue
		}
		segs := action.UpdateEngagementPanelAction.Content.
			TranscriptRenderer.Content.
			TranscriptSearchPanelRenderer.Body.
			TranscriptSegmentListRenderer.InitialSegments
		for _, seg := range segs {
			if seg.TranscriptSegmentRenderer == nil {
				continue
			}
			for _, run := range seg.TranscriptSegmentRenderer.Snippet.Runs {
				if run.Text != "" {
					if sb.Len() > 0 {
						sb.WriteByte(' ')
					}
					sb.WriteString(run.Text)
				}
			}
		}
	}
	return sb.String()
}

// fetchTranscriptDirectLookup fetches a transcript via:
//  1. POST /next → engagementPanels containing the transcript continuation token
//  2. POST /get_transcript with the token → JSON segments
//
// This path works from datacenter IPs where /player returns LOGIN_REQUIRED.
func fetchTranscriptDirectLookup(ctx context.Context, videoID string) (string, error) {
	visitorData := generateVisitorData()

	nextData, err := postInnerTubeWEB(ctx, ytNextURL, map[string]any{
		"videoId": videoID,
		"context": ytWebContext(visitorData),
	}, visitorData)
	if err != nil {
		return "", fmt.Errorf("/next: %w", err)
	}

	token, err := extractTranscriptToken(nextData)
	if err != nil {
		return "", fmt.Errorf("token: %w", err)
	}

	transcriptData, err := postInnerTubeWEB(ctx, ytGetTranscriptURL, map[string]any{
		"params": token,
		"context": map[string]any{
			"client": ytWebClientCtx{
				ClientName:    "WEB",
				ClientVersion: ytWebVersion,
				VisitorData:   visitorData,
				Hl:            "en",
				Gl:            "US",
			},
		},
	}, visitorData)
	if err != nil {
		return "", fmt.Errorf("/get_transcript: %w", err)
	}

	var transcriptResp ytGetTranscriptResp
	if err := json.Unmarshal(transcriptData, &transcriptResp); err != nil {
		return "", fmt.Errorf("decode transcript: %w", err)
	}

	text := parseTranscriptSegments(transcriptResp)
	if text == "" {
		return "", errors.New("empty transcript segments")
	}
	return text, nil
}

// FetchTranscript retrieves the transcript text for a YouTube video, walking
// the strategy ladder top to bottom. Returns a RateLimitError unchanged so
// callers can abort instead of substituting placeholder text.
func FetchTranscript(ctx context.Context, videoID string) (string, error) {
	engine.IncrTranscriptRequests()
	trail := &errTrail{}

	candidates, err := listCandidates(ctx, videoID)
	if err != nil {
		if engine.IsRateLimit(err) {
			return "", err
		}
		slog.Warn("youtube: track enumeration failed", slog.String("id", videoID), slog.Any("err", err))
		trail.add("enumerate", err)
	}

	for _, c := range rankCandidates(candidates) {
		text, err := fetchCandidateText(ctx, c.FetchURL)
		if err == nil {
			return text, nil
		}
		if engine.IsRateLimit(err) {
			return "", err
		}
		trail.add("track "+c.Language, err)
	}

	for _, c := range rankCandidates(candidates) {
		if !c.Generated || !c.Translatable || strings.HasPrefix(c.Language, "en") {
			continue
		}
		text, err := fetchCandidateText(ctx, translatedURL(c.FetchURL))
		if err == nil {
			return text, nil
		}
		if engine.IsRateLimit(err) {
			return "", err
		}
		trail.add("translate "+c.Language, err)
	}

	if text, err := fetchTranscriptDirectLookup(ctx, videoID); err == nil {
		return text, nil
	} else {
		if engine.IsRateLimit(err) {
			return "", err
		}
		slog.Warn("youtube: direct lookup failed, trying yt-dlp", slog.String("id", videoID), slog.Any("err", err))
		trail.add("direct lookup", err)
	}

	if text, err := fetchTranscriptViaYtDlp(ctx, videoID); err == nil {
		return text, nil
	} else {
		if engine.IsRateLimit(err) {
			return "", err
		}
		trail.add("yt-dlp", err)
	}

	return "", trail.err(videoID)
}
