// Package advice asks Gemini for free-text scheduling guidance about the
// currently selected meeting time.
//
// This is the only external network dependency in the system and it is
// strictly advisory: the caller hands over (city, local time) pairs, a
// duration, and the reference instant, and gets back an opaque string. Every
// failure mode collapses to a fixed placeholder; nothing here can fail the
// dashboard.
package advice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"google.golang.org/genai"
)

// Placeholder strings returned instead of advice when the service cannot be
// used. Callers display them verbatim.
const (
	UnconfiguredMessage = "Configure a Gemini API key to use the scheduling assistant."
	UnavailableMessage  = "Advice service unavailable. Please check your connection."
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// Entry is one participant city with its formatted local time at the
// proposed meeting start.
type Entry struct {
	CityName  string
	LocalTime string
}

// Client requests scheduling advice from the Gemini API.
type Client struct {
	cache  CacheInterface
	logger Logger
	apiKey string
	model  string
}

// NewClient creates an advice client. An empty apiKey produces a client
// whose Generate always returns the unconfigured placeholder. cache may be
// nil to disable response caching.
func NewClient(apiKey, model string, cache CacheInterface, logger Logger) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{apiKey: apiKey, model: model, cache: cache, logger: logger}
}

// Configured reports whether the client has credentials to call out.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Generate returns scheduling advice for a meeting of durationMinutes
// starting at instant, covering the given cities. The returned string is
// opaque to the caller; on any failure a fixed placeholder is returned and
// the underlying error is logged, never propagated.
func (c *Client) Generate(ctx context.Context, entries []Entry, durationMinutes int, instant time.Time) string {
	if !c.Configured() {
		return UnconfiguredMessage
	}

	prompt := buildPrompt(entries, durationMinutes, instant)

	if cached := c.checkCache(prompt); cached != "" {
		return cached
	}

	text, err := c.call(ctx, prompt)
	if err != nil {
		c.logger.Warn("advice generation failed", "error", err)
		return UnavailableMessage
	}

	c.storeCache(prompt, text)
	return text
}

// buildPrompt constructs the request text from the meeting parameters.
func buildPrompt(entries []Entry, durationMinutes int, instant time.Time) string {
	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		lines = append(lines, fmt.Sprintf("%s (%s)", entry.CityName, entry.LocalTime))
	}

	return fmt.Sprintf(`I am planning a %d-minute meeting involving these locations: %s.
Reference UTC time: %s.

Briefly analyze:
1. Is this time convenient for the full %d minutes?
2. Suggest a meeting structure for this duration.
3. Provide one cultural etiquette tip relevant to the participants.

Keep it concise and formatted with Markdown.`,
		durationMinutes, strings.Join(lines, ", "),
		instant.UTC().Format(time.RFC3339), durationMinutes)
}

func (c *Client) cacheKey() string {
	return "genai:" + c.model
}

func (c *Client) checkCache(prompt string) string {
	if c.cache == nil {
		return ""
	}
	data, found := c.cache.APICall(c.cacheKey(), []byte(prompt))
	if !found {
		return ""
	}
	c.logger.Debug("advice cache hit", "size", len(data))
	return string(data)
}

func (c *Client) storeCache(prompt, text string) {
	if c.cache == nil {
		return
	}
	if err := c.cache.SetAPICall(c.cacheKey(), []byte(prompt), []byte(text)); err != nil {
		c.logger.Debug("failed to cache advice response", "error", err)
	}
}

// call performs the SDK request with retries on transient failures.
func (c *Client) call(ctx context.Context, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  c.apiKey,
	})
	if err != nil {
		return "", fmt.Errorf("creating genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	temperature := float32(0.4)
	genConfig := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 1024,
	}

	var text string
	err = retry.Do(
		func() error {
			resp, callErr := client.Models.GenerateContent(ctx, c.model, contents, genConfig)
			if callErr != nil {
				if !isTransientError(callErr) {
					return retry.Unrecoverable(callErr)
				}
				return callErr
			}

			extracted, extractErr := extractText(resp)
			if extractErr != nil {
				return retry.Unrecoverable(extractErr)
			}
			text = extracted
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(100*time.Millisecond),
		retry.MaxDelay(2*time.Second),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.MaxJitter(50*time.Millisecond),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Debug("retrying advice request", "attempt", n+1, "error", err.Error())
		}),
	)
	if err != nil {
		return "", fmt.Errorf("gemini advice call: %w", err)
	}

	return text, nil
}

// extractText pulls the plain-text body out of a generation response.
func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("empty response from Gemini API")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in Gemini response")
	}
	text := strings.TrimSpace(candidate.Content.Parts[0].Text)
	if text == "" {
		return "", fmt.Errorf("empty text in Gemini response")
	}
	return text, nil
}

// isTransientError determines whether an error should trigger a retry.
func isTransientError(err error) bool {
	errStr := strings.ToLower(err.Error())
	transientIndicators := []string{
		"rate limit", "quota", "timeout", "deadline", "unavailable",
		"internal server error", "502", "503", "504",
	}
	for _, indicator := range transientIndicators {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}
	return false
}
