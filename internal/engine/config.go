package engine

import (
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/llm"
	stealth "github.com/anatolykoptev/go-stealth"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	SearxngURL         string
	LLMAPIKey          string
	LLMAPIKeyFallbacks []string
	LLMAPIBase         string
	LLMModel           string // utility tier: query generation, summaries, description
	LLMWriterModel     string // writer tier: synthesis, link integration
	LLMTemperature     float64
	LLMMaxTokens       int
	MaxFetchURLs       int
	MaxContentChars    int
	SearchMinScore     float64 // drop merged results scoring below this (0 = no filter)
	FetchTimeout       time.Duration
	HTTPClient         *http.Client
	BrowserClient      *stealth.BrowserClient // nil = heavy fetch and direct scrapers disabled
	DirectDDG          bool                   // enable DuckDuckGo direct scraper

	LLMClient       *llm.Client
	LLMWriterClient *llm.Client
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages (sources).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	cfg = c
	Cfg = &cfg
}
