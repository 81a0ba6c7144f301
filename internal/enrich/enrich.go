// Package enrich fills gaps in parsed records with a language model.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/mkardas/job-extractor/internal/jobs"
	"github.com/mkardas/job-extractor/internal/telemetry"
)

const (
	defaultModel       = "gpt-4-turbo"
	defaultTemperature = 0.2
	defaultMaxTokens   = 4000

	// defaultMaxContent bounds how much page text goes into a prompt;
	// hardMaxContent is the ceiling no configuration can exceed.
	defaultMaxContent = 16000
	hardMaxContent    = 32000

	truncationMarker = "... [content truncated]"
)

const systemPrompt = `You are a specialized AI that extracts job information from web page content.
Analyze the provided content from a job listing and extract all relevant details.
Return the data in a clean, structured JSON format.
You can recognize job descriptions in both English and French.
If certain fields are not present, omit them. Do not invent information.
Determine the language of the listing and include it as "language" in the response.`

// LLM is the narrow slice of the langchaingo model interface the client
// needs. Tests substitute a fake.
type LLM interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// Config holds language model settings.
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	MaxContent  int
}

// Client extracts job records from page content via a language model.
type Client struct {
	llm        LLM
	temp       float64
	maxTokens  int
	maxContent int
}

// New builds a Client backed by an OpenAI-compatible endpoint.
func New(cfg Config) (*Client, error) {
	opts := []openai.Option{openai.WithToken(cfg.APIKey)}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	opts = append(opts, openai.WithModel(model))
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create llm client: %w", err)
	}
	return NewWithLLM(llm, cfg), nil
}

// NewWithLLM builds a Client around an existing model, mainly for tests.
func NewWithLLM(llm LLM, cfg Config) *Client {
	temp := cfg.Temperature
	if temp == 0 {
		temp = defaultTemperature
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	maxContent := cfg.MaxContent
	if maxContent <= 0 {
		maxContent = defaultMaxContent
	}
	if maxContent > hardMaxContent {
		maxContent = hardMaxContent
	}
	return &Client{
		llm:        llm,
		temp:       temp,
		maxTokens:  maxTokens,
		maxContent: maxContent,
	}
}

// ExtractFromHTML asks the model to extract a record from page content.
// Content should already be stripped of markup (see CleanContent).
//
// A response the model produced but that does not decode as a record is not
// an error: the caller gets a placeholder with the failure noted in its
// error field. Only transport and API failures return a non-nil error.
func (c *Client) ExtractFromHTML(ctx context.Context, content, pageURL string) (jobs.JobRecord, error) {
	user := fmt.Sprintf(
		"Extract all relevant job information from this content from URL: %s.\n"+
			"Format your response as a clean JSON object without any additional text or explanations.\n\n%s",
		pageURL, c.truncate(content))
	return c.generate(ctx, user, pageURL)
}

// ExtractFromText extracts a record from user-pasted posting text.
func (c *Client) ExtractFromText(ctx context.Context, text string) (jobs.JobRecord, error) {
	user := fmt.Sprintf(
		"Extract all relevant job information from this job posting text.\n"+
			"Format your response as a clean JSON object without any additional text or explanations.\n\n%s",
		c.truncate(text))
	return c.generate(ctx, user, jobs.TextInputURL)
}

func (c *Client) generate(ctx context.Context, userPrompt, pageURL string) (jobs.JobRecord, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
	}
	resp, err := c.llm.GenerateContent(ctx, messages,
		llms.WithTemperature(c.temp),
		llms.WithMaxTokens(c.maxTokens),
		llms.WithJSONMode(),
	)
	if err != nil {
		telemetry.ObserveEnrichment("error")
		return jobs.JobRecord{}, jobs.NewError(jobs.KindEnrichmentFailed, "language model request failed").WithCause(err)
	}
	if len(resp.Choices) == 0 {
		telemetry.ObserveEnrichment("error")
		return jobs.JobRecord{}, jobs.NewError(jobs.KindEnrichmentFailed, "language model returned no choices")
	}

	var record jobs.JobRecord
	content := strings.TrimSpace(resp.Choices[0].Content)
	if err := json.Unmarshal([]byte(content), &record); err != nil {
		telemetry.ObserveEnrichment("malformed")
		return jobs.Placeholder(pageURL, "model response was not valid JSON"), nil
	}
	telemetry.ObserveEnrichment("ok")
	record.URL = pageURL
	return record, nil
}

func (c *Client) truncate(content string) string {
	if len(content) <= c.maxContent {
		return content
	}
	return content[:c.maxContent] + truncationMarker
}
