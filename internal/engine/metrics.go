package engine

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	SearchRequests     atomic.Int64
	DirectDDGRequests  atomic.Int64
	LLMCalls           atomic.Int64
	LLMErrors          atomic.Int64
	FetchRequests      atomic.Int64
	FetchErrors        atomic.Int64
	TranscriptRequests atomic.Int64
}

// IncrTranscriptRequests increments the transcript request counter.
// Exported for the sources package.
func IncrTranscriptRequests() { metrics.TranscriptRequests.Add(1) }

// GetMetrics returns a snapshot of all counters.
func GetMetrics() map[string]int64 {
	return map[string]int64{
		"search_requests":     metrics.SearchRequests.Load(),
		"direct_ddg_requests": metrics.DirectDDGRequests.Load(),
		"llm_calls":           metrics.LLMCalls.Load(),
		"llm_errors":          metrics.LLMErrors.Load(),
		"fetch_requests":      metrics.FetchRequests.Load(),
		"fetch_errors":        metrics.FetchErrors.Load(),
		"transcript_requests": metrics.TranscriptRequests.Load(),
	}
}

// FormatMetrics returns counters as a simple text block for end-of-run logging.
func FormatMetrics() string {
	m := GetMetrics()
	keys := []string{
		"search_requests", "direct_ddg_requests",
		"llm_calls", "llm_errors",
		"fetch_requests", "fetch_errors",
		"transcript_requests",
	}
	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}
