package ai

import (
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/biomente/biomente/internal/domain"
)

const searchSystemPrompt = "You are an expert assistant for finding real, verifiable scientific articles."

// buildSearchPrompt assembles the literature-search instruction: the (translated) query,
// an optional digest of the user's knowledge base, and the titles to avoid on load-more.
func buildSearchPrompt(query, translated string, knowledgeBase []domain.Article, excludeTitles []string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "**User query:** %q (translated: %q)\n", query, translated)

	if digest := knowledgeBaseDigest(knowledgeBase); digest != "" {
		fmt.Fprintf(&sb, "**User context:**\n%s\n\n", digest)
	}

	isLoadMore := len(excludeTitles) > 0
	if isLoadMore {
		fmt.Fprintf(&sb, "**Articles to avoid (already found):**\n%s\n", strings.Join(excludeTitles, "\n"))
	}

	novelty := ""
	if isLoadMore {
		novelty = "**NEW** "
	}
	fmt.Fprintf(&sb, `**Instructions:**
1. Task: find %d %shighly relevant articles for the query and the user context.
2. Sources: prefer Google Scholar, PubMed, and reputable publishers.
3. Verification: confirm title, authors, journal, and year are correct.
4. DOI: the DOI must be a working HTTPS link. Discard the article if none can be found.
5. Summary and relevance: write a 100-150 word summary and explain why the article matches the original query.
6. Format: return a JSON array of %d article objects. The 'authors' field must be an array of strings. Nothing else.
`, searchResultCount, novelty, searchResultCount)

	return sb.String()
}

// knowledgeBaseDigest renders the knowledge base as "- title: summary" lines.
func knowledgeBaseDigest(articles []domain.Article) string {
	if len(articles) == 0 {
		return ""
	}
	lines := make([]string, 0, len(articles))
	for _, a := range articles {
		lines = append(lines, fmt.Sprintf("- %s: %s", a.Title, a.Summary))
	}
	return strings.Join(lines, "\n")
}

func buildAnalysisPrompt(text string) string {
	return fmt.Sprintf(`Analyze and structure the following scientific text into a single JSON object with three keys: "summary" (array of 3-5 key points), "keyConcepts" (array of 5-8 technical terms), and "sections" (array of objects with "title" and "content"). The section contents must reconstruct the original text without omitting anything.
**Text:**
---
%s
---`, text)
}

func buildIngestPrompt(text, fileName string) string {
	return fmt.Sprintf(`Analyze the text of a scientific document and extract its metadata as JSON. Use the file name as a hint for the title if needed. If a field is unknown (e.g. the DOI), leave it as an empty string.
**File name:** %s
**Text:**
---
%s
---`, fileName, text)
}

// Schemas enforced on structured backend replies. Strict mode requires every property to
// be listed as required with no additional properties.
var (
	analysisSchema = jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"summary":     {Type: jsonschema.Array, Items: &jsonschema.Definition{Type: jsonschema.String}},
			"keyConcepts": {Type: jsonschema.Array, Items: &jsonschema.Definition{Type: jsonschema.String}},
			"sections": {
				Type: jsonschema.Array,
				Items: &jsonschema.Definition{
					Type: jsonschema.Object,
					Properties: map[string]jsonschema.Definition{
						"title":   {Type: jsonschema.String},
						"content": {Type: jsonschema.String},
					},
					Required:             []string{"title", "content"},
					AdditionalProperties: false,
				},
			},
		},
		Required:             []string{"summary", "keyConcepts", "sections"},
		AdditionalProperties: false,
	}

	articleSchema = jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"title":     {Type: jsonschema.String},
			"authors":   {Type: jsonschema.Array, Items: &jsonschema.Definition{Type: jsonschema.String}},
			"journal":   {Type: jsonschema.String},
			"year":      {Type: jsonschema.Integer},
			"summary":   {Type: jsonschema.String},
			"relevance": {Type: jsonschema.String, Description: "Key points and main contribution."},
			"doi":       {Type: jsonschema.String},
		},
		Required:             []string{"title", "authors", "journal", "year", "summary", "relevance", "doi"},
		AdditionalProperties: false,
	}
)
