// Package ai is the sole boundary to the generative-AI backend. It exposes the narrow,
// purpose-built operations the orchestration layer needs and owns the per-article chat
// sessions.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"

	"github.com/biomente/biomente/internal/domain"
)

const (
	// DefaultModel is the chat model used when none is configured
	DefaultModel = "gpt-4o-mini"

	// maxDocumentChars caps document text sent to the backend
	maxDocumentChars = 300_000

	// searchResultCount is the fixed number of articles requested per search
	searchResultCount = 3

	// UnknownJournal is the placeholder journal for uploads without a discoverable source
	UnknownJournal = "Unknown source"
)

var (
	// ErrEmptyResponse is returned when the backend produces no usable text
	ErrEmptyResponse = errors.New("backend returned an empty response")
	// ErrNoAPIKey is returned when the OpenAI API key is not configured
	ErrNoAPIKey = errors.New("OPENAI_API_KEY environment variable not set")
)

// CompletionAPI defines the slice of the OpenAI API the gateway depends on
type CompletionAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client implements the gateway against the OpenAI chat-completions API
type Client struct {
	api   CompletionAPI
	model string
}

// Config holds explicit client configuration
type Config struct {
	APIKey string
	Model  string
}

// NewClient creates a gateway client using defaults
func NewClient(apiKey string) *Client {
	return NewClientWithConfig(Config{APIKey: apiKey})
}

// NewClientWithConfig creates a gateway client with explicit configuration
func NewClientWithConfig(cfg Config) *Client {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		api:   openai.NewClient(cfg.APIKey),
		model: model,
	}
}

// NewClientWithAPI creates a gateway client over a custom completion API (for testing)
func NewClientWithAPI(api CompletionAPI, model string) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{api: api, model: model}
}

// complete sends one request and returns the first choice's trimmed text.
func (c *Client) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	req.Model = c.model
	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// TranslateQuery translates a query to English to widen search recall.
func (c *Client) TranslateQuery(ctx context.Context, text string) (string, error) {
	out, err := c.complete(ctx, openai.ChatCompletionRequest{
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Translate to English: %q", text)},
		},
	})
	if err != nil {
		return "", domain.ErrTranslationFailed.WithCause(err)
	}
	return out, nil
}

// SearchLiterature asks the backend for exactly three articles relevant to the query,
// optionally biased by the knowledge base and excluding already-seen titles. The reply is
// coerced defensively into Article values; an unparseable reply degrades to an empty list
// on load-more requests and errors on initial searches.
func (c *Client) SearchLiterature(ctx context.Context, query string, knowledgeBase []domain.Article, excludeTitles []string) ([]domain.Article, string, error) {
	translated, err := c.TranslateQuery(ctx, query)
	if err != nil {
		return nil, "", err
	}

	isLoadMore := len(excludeTitles) > 0
	prompt := buildSearchPrompt(query, translated, knowledgeBase, excludeTitles)

	raw, err := c.complete(ctx, openai.ChatCompletionRequest{
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: searchSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return nil, "", domain.ErrSearchFailed.WithCause(err)
	}

	articles, ok := decodeArticleList(raw)
	if !ok {
		if isLoadMore {
			return []domain.Article{}, translated, nil
		}
		return nil, "", domain.ErrMalformedResponse
	}

	return articles, translated, nil
}

// AnalyzeDocument requests the structured {summary, keyConcepts, sections} enrichment
// for a full text. A response missing required fields is a hard failure.
func (c *Client) AnalyzeDocument(ctx context.Context, fullText string) (*domain.DocumentAnalysis, error) {
	raw, err := c.complete(ctx, openai.ChatCompletionRequest{
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: buildAnalysisPrompt(truncate(fullText, maxDocumentChars))},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "document_analysis",
				Schema: &analysisSchema,
				Strict: true,
			},
		},
	})
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeBackend, "document analysis failed", err)
	}

	var analysis domain.DocumentAnalysis
	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeBackend, "document analysis was malformed", err)
	}
	if err := domain.ValidateAnalysis(&analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}

// ProcessUploadedDocument extracts a bibliographic record from document text. Missing
// backend fields fall back to documented defaults: the filename (sans extension) for the
// title, a placeholder journal, and a locally minted surrogate DOI.
func (c *Client) ProcessUploadedDocument(ctx context.Context, text, fileName string) (domain.Article, error) {
	raw, err := c.complete(ctx, openai.ChatCompletionRequest{
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: buildIngestPrompt(truncate(text, maxDocumentChars), fileName)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "bibliographic_record",
				Schema: &articleSchema,
				Strict: true,
			},
		},
	})
	if err != nil {
		return domain.Article{}, domain.NewDomainErrorWithCause(domain.ErrCodeBackend,
			"the document could not be processed", err)
	}

	article := decodeUploadedArticle(raw, fileName)
	article.FullText = text
	return article, nil
}

// GenerateBibliography returns an APA 7 bibliography for the given articles.
func (c *Client) GenerateBibliography(ctx context.Context, articles []domain.Article) (string, error) {
	data, _ := json.MarshalIndent(articles, "", "  ")
	out, err := c.complete(ctx, openai.ChatCompletionRequest{
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(
				"Generate an APA 7 bibliography for the following list. Return only the references.\nArticles:\n%s", data)},
		},
	})
	if err != nil {
		return "", domain.ErrBibliographyFail.WithCause(err)
	}
	return out, nil
}

// GenerateComparison returns a markdown comparative analysis of the given articles.
func (c *Client) GenerateComparison(ctx context.Context, articles []domain.Article) (string, error) {
	type digest struct {
		Title   string `json:"title"`
		Summary string `json:"summary"`
	}
	digests := make([]digest, 0, len(articles))
	for _, a := range articles {
		digests = append(digests, digest{Title: a.Title, Summary: a.Summary})
	}
	data, _ := json.MarshalIndent(digests, "", "  ")

	out, err := c.complete(ctx, openai.ChatCompletionRequest{
		Temperature: 0.5,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(
				"Write a comparative analysis in Markdown of the following articles. Use these headings: "+
					"**General Synthesis**, **Common Ground**, **Differences and Contradictions**, and "+
					"**Synergies and Future Directions**.\nArticles:\n%s", data)},
		},
	})
	if err != nil {
		return "", domain.ErrComparisonFailed.WithCause(err)
	}
	return out, nil
}

// GenerateCitation returns a single APA 7 citation for the article.
func (c *Client) GenerateCitation(ctx context.Context, article domain.Article) (string, error) {
	data, _ := json.MarshalIndent(article, "", "  ")
	out, err := c.complete(ctx, openai.ChatCompletionRequest{
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(
				"Generate an APA 7 citation for this article. Return only the citation.\nArticle:\n%s", data)},
		},
	})
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeBackend, "failed to generate the citation", err)
	}
	return "Here is the APA 7 citation:\n\n" + out, nil
}

// SurrogateDOI mints a collision-resistant local identifier for documents without one.
func SurrogateDOI() string {
	return "local-" + uuid.NewString()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func currentYear() int {
	return time.Now().Year()
}
