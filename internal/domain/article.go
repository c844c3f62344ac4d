package domain

// Article represents a bibliographic record, discovered via search or derived from an
// uploaded document. The DOI (or a locally minted surrogate) is its natural identity.
type Article struct {
	Title     string            `json:"title"`
	Authors   []string          `json:"authors"`
	Journal   string            `json:"journal"`
	Year      int               `json:"year"`
	Summary   string            `json:"summary"`
	Relevance string            `json:"relevance"`
	DOI       string            `json:"doi"`
	FullText  string            `json:"full_text,omitempty"`
	Analysis  *DocumentAnalysis `json:"analysis,omitempty"`
}

// DocumentAnalysis is the structured enrichment produced from an article's full text
type DocumentAnalysis struct {
	Summary     []string  `json:"summary"`
	KeyConcepts []string  `json:"keyConcepts"`
	Sections    []Section `json:"sections"`
}

// Section is one titled slice of a reconstructed document; titles double as navigation keys
type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Chat message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn in a conversation about a specific article
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ComparisonResult holds the de-duplicated articles selected for comparison and the
// generated analysis. Transient, never persisted.
type ComparisonResult struct {
	Articles []Article `json:"articles"`
	Analysis string    `json:"analysis"`
}

// ValidateAnalysis validates a DocumentAnalysis instance: sections must be present and
// section titles unique.
func ValidateAnalysis(a *DocumentAnalysis) error {
	if a == nil {
		return NewDomainError(ErrCodeValidation, "analysis cannot be nil")
	}
	if len(a.Sections) == 0 {
		return NewDomainError(ErrCodeValidation, "analysis must contain at least one section")
	}
	seen := make(map[string]struct{}, len(a.Sections))
	for _, s := range a.Sections {
		if s.Title == "" {
			return NewDomainError(ErrCodeValidation, "analysis section title is required")
		}
		if _, ok := seen[s.Title]; ok {
			return NewDomainError(ErrCodeValidation, "analysis section titles must be unique")
		}
		seen[s.Title] = struct{}{}
	}
	return nil
}

// DedupeByDOI returns articles with duplicate DOIs removed, keeping the first occurrence.
func DedupeByDOI(articles []Article) []Article {
	seen := make(map[string]struct{}, len(articles))
	out := make([]Article, 0, len(articles))
	for _, a := range articles {
		if _, ok := seen[a.DOI]; ok {
			continue
		}
		seen[a.DOI] = struct{}{}
		out = append(out, a)
	}
	return out
}
