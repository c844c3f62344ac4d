// Package service implements the application's use cases on top of the state store, the
// AI gateway, and the document pipeline. Handlers and the CLI talk to this layer only.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/biomente/biomente/internal/domain"
	"github.com/biomente/biomente/internal/jobs"
	"github.com/biomente/biomente/internal/state"
	"github.com/biomente/biomente/internal/telemetry"
)

// analysisThreshold is the minimum extracted-text length that warrants deep analysis
const analysisThreshold = 100

// Gateway defines the generative-AI operations the use cases depend on
type Gateway interface {
	SearchLiterature(ctx context.Context, query string, knowledgeBase []domain.Article, excludeTitles []string) ([]domain.Article, string, error)
	ProcessUploadedDocument(ctx context.Context, text, fileName string) (domain.Article, error)
	GenerateBibliography(ctx context.Context, articles []domain.Article) (string, error)
	GenerateComparison(ctx context.Context, articles []domain.Article) (string, error)
}

// Chatter defines the per-article conversation operations
type Chatter interface {
	Chat(ctx context.Context, article domain.Article, history []domain.ChatMessage, message string) (string, error)
	Invalidate(doi string)
}

// Extractor defines plain-text extraction from uploaded documents
type Extractor interface {
	Extract(ctx context.Context, fileName string, data []byte) (string, error)
}

// Archiver stores the original uploaded bytes for later retrieval. Optional; a nil
// archiver disables archival.
type Archiver interface {
	PutObject(ctx context.Context, key, contentType string, data []byte) error
	GenerateDownloadURL(ctx context.Context, key string) (string, error)
}

// AnalysisQueue accepts deep-analysis jobs for background processing
type AnalysisQueue interface {
	Enqueue(job jobs.AnalysisJob)
}

// AssistantService orchestrates search, ingestion, comparison, bibliography, and chat
// over the shared state store.
type AssistantService struct {
	store     *state.Store
	gateway   Gateway
	chatter   Chatter
	extractor Extractor
	queue     AnalysisQueue
	archiver  Archiver
}

// NewAssistantService creates a new AssistantService instance
func NewAssistantService(store *state.Store, gateway Gateway, chatter Chatter, extractor Extractor, queue AnalysisQueue) *AssistantService {
	return &AssistantService{
		store:     store,
		gateway:   gateway,
		chatter:   chatter,
		extractor: extractor,
		queue:     queue,
	}
}

// WithArchiver enables archival of original uploads.
func (s *AssistantService) WithArchiver(archiver Archiver) *AssistantService {
	s.archiver = archiver
	return s
}

// Search runs a literature search for the query. The knowledge base biases the search
// when the toggle is on. Concurrent searches race by design: the last one issued wins,
// and stale results are dropped.
func (s *AssistantService) Search(ctx context.Context, query string) error {
	if strings.TrimSpace(query) == "" {
		return domain.ErrEmptyQuery
	}
	if _, ok := s.store.ActiveProject(); !ok {
		return domain.ErrNoActiveProject
	}

	ctx, span := telemetry.StartSpan(ctx, "AssistantService.Search", telemetry.SpanAttributes{
		Operation: "search",
	})
	defer span.End()

	gen := s.store.BeginSearch(query)

	var knowledgeBase []domain.Article
	if s.store.View().UseKnowledgeBase {
		if project, ok := s.store.ActiveProject(); ok {
			knowledgeBase = project.KnowledgeBaseArticles
		}
	}

	results, translated, err := s.gateway.SearchLiterature(ctx, query, knowledgeBase, nil)
	if err != nil {
		span.SetError(err)
		s.store.FinishSearch(gen, nil, "", userMessage(err))
		return err
	}
	if !s.store.FinishSearch(gen, results, translated, "") {
		log.Printf("search for %q finished stale, dropped", query)
		return nil
	}
	// informational, not an error path: the translated query and empty result list stand
	if len(results) == 0 {
		s.store.SetError("no articles were found for this query")
	}
	return nil
}

// SearchFromFragment launches a search seeded by a text fragment from an analysis
// section. Fragment searches always look outward: the knowledge-base toggle is switched
// off before searching.
func (s *AssistantService) SearchFromFragment(ctx context.Context, fragment string) error {
	if strings.TrimSpace(fragment) == "" {
		return domain.ErrEmptyQuery
	}
	s.store.SetUseKnowledgeBase(false)
	return s.Search(ctx, fragment)
}

// LoadMore fetches additional results for the current query, excluding titles already
// shown. Only one load-more runs at a time; a second request while one is in flight is
// rejected.
func (s *AssistantService) LoadMore(ctx context.Context) error {
	if _, ok := s.store.ActiveProject(); !ok {
		return domain.ErrNoActiveProject
	}
	view := s.store.View()
	if !view.HasSearched || strings.TrimSpace(view.Query) == "" {
		return domain.ErrEmptyQuery
	}
	if !s.store.TryBeginLoadMore() {
		return domain.ErrOperationInFlight
	}

	var knowledgeBase []domain.Article
	if view.UseKnowledgeBase {
		if project, ok := s.store.ActiveProject(); ok {
			knowledgeBase = project.KnowledgeBaseArticles
		}
	}

	results, _, err := s.gateway.SearchLiterature(ctx, view.Query, knowledgeBase, s.store.ResultTitles())
	if err != nil {
		s.store.FinishLoadMore(nil, userMessage(err))
		return err
	}
	s.store.FinishLoadMore(results, "")
	return nil
}

// UploadDocument runs the ingestion pipeline: extract plain text, build the
// bibliographic record, prepend it to the knowledge base, and queue deep analysis for
// texts long enough to be worth analyzing. The original bytes are archived when an
// archiver is configured; archival failure never fails the upload.
func (s *AssistantService) UploadDocument(ctx context.Context, fileName, contentType string, data []byte) (domain.Article, error) {
	profile, ok := s.store.ActiveProfile()
	if !ok {
		return domain.Article{}, domain.ErrNoActiveProfile
	}
	project, ok := s.store.ActiveProject()
	if !ok {
		return domain.Article{}, domain.ErrNoActiveProject
	}

	ctx, span := telemetry.StartSpan(ctx, "AssistantService.UploadDocument", telemetry.SpanAttributes{
		ProfileID: profile.ID,
		ProjectID: project.ID,
		Operation: "upload",
	})
	defer span.End()

	s.store.SetUploading(true)
	defer s.store.SetUploading(false)

	text, err := s.extractor.Extract(ctx, fileName, data)
	if err != nil {
		s.store.SetError(uploadErrorMessage(fileName, err))
		return domain.Article{}, err
	}
	if strings.TrimSpace(text) == "" {
		s.store.SetError(uploadErrorMessage(fileName, domain.ErrEmptyDocument))
		return domain.Article{}, domain.ErrEmptyDocument
	}

	article, err := s.gateway.ProcessUploadedDocument(ctx, text, fileName)
	if err != nil {
		span.SetError(err)
		s.store.SetError(uploadErrorMessage(fileName, err))
		return domain.Article{}, err
	}

	if err := s.store.AddKnowledgeArticle(ctx, article); err != nil {
		return domain.Article{}, err
	}

	if len(text) > analysisThreshold {
		s.queue.Enqueue(jobs.AnalysisJob{
			ProfileID: profile.ID,
			ProjectID: project.ID,
			DOI:       article.DOI,
			FullText:  text,
		})
	}

	if s.archiver != nil {
		key := profile.ID + "/" + project.ID + "/" + article.DOI + "/" + fileName
		if err := s.archiver.PutObject(ctx, key, contentType, data); err != nil {
			log.Printf("failed to archive %s: %v", fileName, err)
		}
	}

	return article, nil
}

// DocumentDownloadURL returns a time-limited URL for retrieving an archived original.
func (s *AssistantService) DocumentDownloadURL(ctx context.Context, key string) (string, error) {
	if s.archiver == nil {
		return "", domain.NewDomainError(domain.ErrCodeInvalidOperation, "document archival is not configured")
	}
	if strings.TrimSpace(key) == "" {
		return "", domain.NewDomainError(domain.ErrCodeValidation, "document key is required")
	}
	url, err := s.archiver.GenerateDownloadURL(ctx, key)
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "could not generate download URL", err)
	}
	return url, nil
}

// ToggleSave flips the saved status of the identified article in the active project.
func (s *AssistantService) ToggleSave(ctx context.Context, doi string) error {
	article, ok := s.findArticle(doi)
	if !ok {
		return domain.ErrArticleNotFound
	}
	return s.store.ToggleSavedArticle(ctx, article)
}

// ToggleCompare flips the comparison mark on the identified article.
func (s *AssistantService) ToggleCompare(doi string) {
	s.store.ToggleCompare(doi)
}

// StartComparison generates a comparative analysis over the marked articles. Candidates
// are drawn from the saved list, the knowledge base, and the current search results,
// deduplicated by DOI. Fewer than two marked DOIs is a no-op that keeps the selection;
// once a comparison is attempted the selection is cleared, win or lose.
func (s *AssistantService) StartComparison(ctx context.Context) error {
	marked := s.store.CompareDOIs()
	// too few marks is a no-op that keeps the selection for the user to extend
	if len(marked) < 2 {
		return domain.ErrComparisonInsufficient
	}

	candidates := s.comparisonPool()
	selected := make([]domain.Article, 0, len(marked))
	for _, a := range candidates {
		for _, doi := range marked {
			if a.DOI == doi {
				selected = append(selected, a)
				break
			}
		}
	}
	selected = domain.DedupeByDOI(selected)

	if len(selected) < 2 {
		s.store.FinishComparison(nil, domain.ErrComparisonInsufficient.Message)
		return domain.ErrComparisonInsufficient
	}

	ctx, span := telemetry.StartSpan(ctx, "AssistantService.StartComparison", telemetry.SpanAttributes{
		Operation: "compare",
	})
	defer span.End()

	s.store.BeginComparison()
	analysis, err := s.gateway.GenerateComparison(ctx, selected)
	if err != nil {
		span.SetError(err)
		s.store.FinishComparison(nil, userMessage(err))
		return err
	}
	s.store.FinishComparison(&domain.ComparisonResult{Articles: selected, Analysis: analysis}, "")
	return nil
}

// ClearComparison discards the current comparison result.
func (s *AssistantService) ClearComparison() {
	s.store.ClearComparison()
}

// ExportBibliography generates an APA 7 bibliography from the active project's saved
// articles. With nothing saved it quietly returns an empty bibliography.
func (s *AssistantService) ExportBibliography(ctx context.Context) (string, error) {
	project, ok := s.store.ActiveProject()
	if !ok {
		return "", domain.ErrNoActiveProject
	}
	if len(project.SavedArticles) == 0 {
		return "", nil
	}

	ctx, span := telemetry.StartSpan(ctx, "AssistantService.ExportBibliography", telemetry.SpanAttributes{
		ProjectID: project.ID,
		Operation: "export",
	})
	defer span.End()

	s.store.SetExporting(true)
	defer s.store.SetExporting(false)

	bibliography, err := s.gateway.GenerateBibliography(ctx, project.SavedArticles)
	if err != nil {
		s.store.SetError(userMessage(err))
		return "", err
	}
	return bibliography, nil
}

// ChatMessage sends one message in the conversation about the identified article and
// returns the assistant's reply.
func (s *AssistantService) ChatMessage(ctx context.Context, doi, message string, history []domain.ChatMessage) (string, error) {
	article, ok := s.findArticle(doi)
	if !ok {
		return "", domain.ErrArticleNotFound
	}

	ctx, span := telemetry.StartSpan(ctx, "AssistantService.ChatMessage", telemetry.SpanAttributes{
		DOI:       doi,
		Operation: "chat",
	})
	defer span.End()

	s.store.SelectArticle(doi)
	return s.chatter.Chat(ctx, article, history, message)
}

// EndChat closes the conversation bound to the article, if any.
func (s *AssistantService) EndChat(doi string) {
	s.chatter.Invalidate(doi)
	s.store.SelectArticle("")
}

// findArticle resolves a DOI against the current search results, then the active
// project's knowledge base and saved list.
func (s *AssistantService) findArticle(doi string) (domain.Article, bool) {
	for _, a := range s.store.View().SearchResults {
		if a.DOI == doi {
			return a, true
		}
	}
	if project, ok := s.store.ActiveProject(); ok {
		for _, a := range project.KnowledgeBaseArticles {
			if a.DOI == doi {
				return a, true
			}
		}
		for _, a := range project.SavedArticles {
			if a.DOI == doi {
				return a, true
			}
		}
	}
	return domain.Article{}, false
}

// comparisonPool gathers every article visible to the comparison picker.
func (s *AssistantService) comparisonPool() []domain.Article {
	var pool []domain.Article
	if project, ok := s.store.ActiveProject(); ok {
		pool = append(pool, project.SavedArticles...)
		pool = append(pool, project.KnowledgeBaseArticles...)
	}
	pool = append(pool, s.store.View().SearchResults...)
	return pool
}

// uploadErrorMessage names the offending file in the message shown for a failed upload.
func uploadErrorMessage(fileName string, err error) string {
	return fmt.Sprintf("error processing %s: %s", fileName, userMessage(err))
}

// userMessage extracts the display message from a domain error, falling back to the
// raw error text.
func userMessage(err error) string {
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return err.Error()
}
