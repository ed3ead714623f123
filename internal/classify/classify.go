// Package classify sends filename batches to an Ollama-compatible endpoint
// and parses the model's JSON verdict for each file.
//
// The whole batch goes out as a single request so external call volume stays
// bounded by runs, not by files. Transport failures degrade to one "unknown"
// entry per input; callers never see an error for a failed classification.
package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Nomadcxx/videolabels/internal/logging"
)

// Config contains AI classifier settings.
type Config struct {
	Endpoint       string `mapstructure:"endpoint"`
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// Client performs batched media identification against a generate API.
type Client struct {
	cfg    Config
	client *http.Client
	log    *logging.Logger
}

// NewClient validates the configuration and returns a ready client.
func NewClient(cfg Config, log *logging.Logger) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("classifier endpoint not configured")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("classifier model not configured")
	}
	if cfg.TimeoutSeconds < 1 {
		return nil, fmt.Errorf("classifier timeout must be at least 1 second")
	}
	if log == nil {
		log = logging.Nop()
	}

	return &Client{
		cfg: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		log: log,
	}, nil
}

// ClassifyBatch identifies every filename in one request. The result always
// has exactly len(filenames) entries in input order; a short or malformed
// model response is padded with unknowns, an oversized one is truncated.
func (c *Client) ClassifyBatch(ctx context.Context, filenames []string) []Metadata {
	if len(filenames) == 0 {
		return nil
	}

	results, err := c.generate(ctx, batchPrompt(filenames))
	if err != nil {
		c.log.Warn("classify", "batch classification failed, degrading to unknown",
			logging.F("files", len(filenames)), logging.F("reason", err))
		return unknowns(len(filenames))
	}

	// Preserve file-to-result alignment regardless of what the model returned.
	for len(results) < len(filenames) {
		results = append(results, Unknown())
	}
	if len(results) > len(filenames) {
		results = results[:len(filenames)]
	}
	for i := range results {
		if results[i].Type == "" {
			results[i].Type = TypeUnknown
		}
	}

	return results
}

// Identify classifies a single filename. Used by the extras classifier's AI
// fallback; failures surface as an unknown result, never an error.
func (c *Client) Identify(ctx context.Context, filename string) Metadata {
	results := c.ClassifyBatch(ctx, []string{filename})
	if len(results) == 0 {
		return Unknown()
	}
	return results[0]
}

// IsAvailable checks whether the endpoint is reachable.
func (c *Client) IsAvailable(ctx context.Context) bool {
	reqCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, "GET", c.cfg.Endpoint+"/api/tags", nil)
	if err != nil {
		return false
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
	Format string `json:"format,omitempty"`
}

type generateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func (c *Client) generate(ctx context.Context, prompt string) ([]Metadata, error) {
	reqBody := generateRequest{
		Model:  c.cfg.Model,
		Prompt: prompt,
		Stream: false,
		Format: "json",
	}

	reqJSON, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.TimeoutSeconds)*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, "POST", c.cfg.Endpoint+"/api/generate", bytes.NewReader(reqJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("classifier returned %d: %s", resp.StatusCode, string(body))
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	responseText := stripCodeFence(genResp.Response)

	var results []Metadata
	if err := json.Unmarshal([]byte(responseText), &results); err != nil {
		return nil, fmt.Errorf("failed to parse model response: %w", err)
	}

	return results, nil
}

// stripCodeFence removes markdown code fences some models wrap JSON in.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func unknowns(n int) []Metadata {
	results := make([]Metadata, n)
	for i := range results {
		results[i] = Unknown()
	}
	return results
}

func batchPrompt(filenames []string) string {
	var sb strings.Builder
	sb.WriteString(systemPrompt)
	sb.WriteString("\n\nFiles to analyze:\n")
	for i, name := range filenames {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, name)
	}
	return sb.String()
}

const systemPrompt = `You are a media filename analyzer. For each numbered video filename below, identify whether it is a TV show episode, a movie, bonus/extra content, or unknown.

Return ONLY a valid JSON array where element N corresponds to file N:
[
  {
    "type": "tv" | "movie" | "extra" | "unknown",
    "name": "show or movie name",
    "year": 1999,
    "season": 1,
    "episode": 1,
    "episode_title": "actual episode title",
    "is_special": false,
    "extra_type": "Trailer"
  }
]

Rules:
- For TV shows: extract show name, season, episode number, and episode title.
- For episode titles: if not present in the filename, use your knowledge of the show to supply the real title, never a generic "Episode N".
- For movies: extract movie name and year if present.
- For remakes/reboots: add disambiguation like "(US)" or "(2020)".
- For specials: set is_special to true and use S00Exx numbering.
- For bonus content (trailers, featurettes, interviews): set type to "extra" and name the kind in extra_type.
- For unknown files: set type to "unknown" and omit the other fields.
- Handle dots, dashes and underscores as word separators.`
