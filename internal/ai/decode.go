package ai

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/biomente/biomente/internal/domain"
)

// The backend replies with semi-structured JSON, sometimes wrapped in prose. Decoding is
// defensive: partial garbage yields safe defaults per field (empty strings, the current
// year, an empty author list) instead of failing the whole reply. This is the single
// field-default policy for all loosely-typed backend data.

// decodeArticleList extracts the outermost JSON array from raw text and coerces each
// element into an Article. The second return is false when no array can be parsed at all.
func decodeArticleList(raw string) ([]domain.Article, bool) {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start == -1 || end == -1 || end < start {
		return nil, false
	}

	var items []map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw[start:end+1]), &items); err != nil {
		return nil, false
	}

	articles := make([]domain.Article, 0, len(items))
	for _, item := range items {
		articles = append(articles, coerceArticle(item))
	}
	return articles, true
}

// decodeUploadedArticle coerces a bibliographic-record reply, applying the upload
// fallbacks: filename-derived title, placeholder journal, surrogate DOI.
func decodeUploadedArticle(raw, fileName string) domain.Article {
	var item map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &item); err != nil {
		item = map[string]json.RawMessage{}
	}

	article := coerceArticle(item)
	if article.Title == "" {
		article.Title = titleFromFileName(fileName)
	}
	if article.Journal == "" {
		article.Journal = UnknownJournal
	}
	if article.Summary == "" {
		article.Summary = "No summary could be generated."
	}
	if article.Relevance == "" {
		article.Relevance = "No relevance analysis could be generated."
	}
	if article.DOI == "" {
		article.DOI = SurrogateDOI()
	}
	return article
}

func coerceArticle(item map[string]json.RawMessage) domain.Article {
	return domain.Article{
		Title:     coerceString(item["title"]),
		Authors:   coerceStringList(item["authors"]),
		Journal:   coerceString(item["journal"]),
		Year:      coerceYear(item["year"]),
		Summary:   coerceString(item["summary"]),
		Relevance: coerceString(item["relevance"]),
		DOI:       coerceString(item["doi"]),
	}
}

func coerceString(raw json.RawMessage) string {
	if raw == nil {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	// Non-string scalars keep their textual form rather than being dropped.
	var v any
	if err := json.Unmarshal(raw, &v); err == nil {
		switch t := v.(type) {
		case float64:
			return strconv.FormatFloat(t, 'f', -1, 64)
		case bool:
			return strconv.FormatBool(t)
		}
	}
	return ""
}

// coerceStringList keeps string elements and drops everything else.
func coerceStringList(raw json.RawMessage) []string {
	if raw == nil {
		return []string{}
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
		}
	}
	return out
}

func coerceYear(raw json.RawMessage) int {
	if raw == nil {
		return currentYear()
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil && n != 0 {
		return n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && n != 0 {
			return n
		}
	}
	return currentYear()
}

func titleFromFileName(fileName string) string {
	if idx := strings.LastIndex(fileName, "."); idx > 0 {
		return fileName[:idx]
	}
	return fileName
}
