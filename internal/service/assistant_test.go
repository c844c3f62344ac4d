package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/biomente/biomente/internal/domain"
	"github.com/biomente/biomente/internal/jobs"
	"github.com/biomente/biomente/internal/state"
)

// MockGateway is a mock implementation of Gateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) SearchLiterature(ctx context.Context, query string, knowledgeBase []domain.Article, excludeTitles []string) ([]domain.Article, string, error) {
	args := m.Called(ctx, query, knowledgeBase, excludeTitles)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]domain.Article), args.String(1), args.Error(2)
}

func (m *MockGateway) ProcessUploadedDocument(ctx context.Context, text, fileName string) (domain.Article, error) {
	args := m.Called(ctx, text, fileName)
	return args.Get(0).(domain.Article), args.Error(1)
}

func (m *MockGateway) GenerateBibliography(ctx context.Context, articles []domain.Article) (string, error) {
	args := m.Called(ctx, articles)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) GenerateComparison(ctx context.Context, articles []domain.Article) (string, error) {
	args := m.Called(ctx, articles)
	return args.String(0), args.Error(1)
}

// MockChatter is a mock implementation of Chatter
type MockChatter struct {
	mock.Mock
}

func (m *MockChatter) Chat(ctx context.Context, article domain.Article, history []domain.ChatMessage, message string) (string, error) {
	args := m.Called(ctx, article, history, message)
	return args.String(0), args.Error(1)
}

func (m *MockChatter) Invalidate(doi string) {
	m.Called(doi)
}

// MockExtractor is a mock implementation of Extractor
type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(ctx context.Context, fileName string, data []byte) (string, error) {
	args := m.Called(ctx, fileName, data)
	return args.String(0), args.Error(1)
}

// MockQueue records enqueued analysis jobs
type MockQueue struct {
	jobs []jobs.AnalysisJob
}

func (m *MockQueue) Enqueue(job jobs.AnalysisJob) {
	m.jobs = append(m.jobs, job)
}

type presetIDGen struct {
	ids []string
	i   int
}

func (g *presetIDGen) NewString() string {
	if g.i < len(g.ids) {
		id := g.ids[g.i]
		g.i++
		return id
	}
	return "default-id"
}

type fixture struct {
	svc       *AssistantService
	store     *state.Store
	gateway   *MockGateway
	chatter   *MockChatter
	extractor *MockExtractor
	queue     *MockQueue
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := state.NewWithIDGen(nil, &presetIDGen{ids: []string{"p1", "prj1"}})
	_, err := store.CreateProfile(context.Background(), "Dr. Vega")
	require.NoError(t, err)

	gateway := &MockGateway{}
	chatter := &MockChatter{}
	extractor := &MockExtractor{}
	queue := &MockQueue{}

	return &fixture{
		svc:       NewAssistantService(store, gateway, chatter, extractor, queue),
		store:     store,
		gateway:   gateway,
		chatter:   chatter,
		extractor: extractor,
		queue:     queue,
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	f := newFixture(t)

	err := f.svc.Search(context.Background(), "   ")

	assert.ErrorIs(t, err, domain.ErrEmptyQuery)
	f.gateway.AssertNotCalled(t, "SearchLiterature")
}

func TestSearchWithoutActiveProject(t *testing.T) {
	f := newFixture(t)
	f.store.Logout(context.Background())

	err := f.svc.Search(context.Background(), "crispr")

	assert.ErrorIs(t, err, domain.ErrNoActiveProject)
}

func TestSearchPopulatesView(t *testing.T) {
	f := newFixture(t)
	results := []domain.Article{{DOI: "10.1/a", Title: "Found"}}
	f.gateway.On("SearchLiterature", mock.Anything, "crispr delivery", mock.Anything, []string(nil)).
		Return(results, "crispr delivery systems", nil)

	err := f.svc.Search(context.Background(), "crispr delivery")

	require.NoError(t, err)
	view := f.store.View()
	assert.False(t, view.Flags.Loading)
	require.Len(t, view.SearchResults, 1)
	assert.Equal(t, "crispr delivery systems", view.TranslatedQuery)
}

func TestSearchPassesKnowledgeBaseWhenToggleOn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	kbArticle := domain.Article{DOI: "local-1", Title: "Uploaded"}
	require.NoError(t, f.store.AddKnowledgeArticle(ctx, kbArticle))

	f.gateway.On("SearchLiterature", mock.Anything, "query",
		mock.MatchedBy(func(kb []domain.Article) bool {
			return len(kb) == 1 && kb[0].DOI == "local-1"
		}), []string(nil)).
		Return([]domain.Article{}, "query", nil)

	require.NoError(t, f.svc.Search(ctx, "query"))
	f.gateway.AssertExpectations(t)
}

func TestSearchSkipsKnowledgeBaseWhenToggleOff(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.AddKnowledgeArticle(ctx, domain.Article{DOI: "local-1"}))
	f.store.SetUseKnowledgeBase(false)

	f.gateway.On("SearchLiterature", mock.Anything, "query", []domain.Article(nil), []string(nil)).
		Return([]domain.Article{}, "query", nil)

	require.NoError(t, f.svc.Search(ctx, "query"))
	f.gateway.AssertExpectations(t)
}

func TestSearchZeroResultsInformsUser(t *testing.T) {
	f := newFixture(t)
	f.gateway.On("SearchLiterature", mock.Anything, "tema oscuro", mock.Anything, mock.Anything).
		Return([]domain.Article{}, "obscure topic", nil)

	require.NoError(t, f.svc.Search(context.Background(), "tema oscuro"))

	view := f.store.View()
	assert.Empty(t, view.SearchResults)
	assert.Equal(t, "no articles were found for this query", view.Error)
	// the translated query survives the informational message
	assert.Equal(t, "obscure topic", view.TranslatedQuery)
	assert.True(t, view.HasSearched)
}

func TestSearchFailureRecordsViewError(t *testing.T) {
	f := newFixture(t)
	f.gateway.On("SearchLiterature", mock.Anything, "query", mock.Anything, mock.Anything).
		Return(nil, "", domain.ErrSearchFailed)

	err := f.svc.Search(context.Background(), "query")

	require.Error(t, err)
	view := f.store.View()
	assert.False(t, view.Flags.Loading)
	assert.Equal(t, domain.ErrSearchFailed.Message, view.Error)
}

func TestSearchFromFragmentForcesKnowledgeBaseOff(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.AddKnowledgeArticle(ctx, domain.Article{DOI: "local-1"}))

	f.gateway.On("SearchLiterature", mock.Anything, "a fragment", []domain.Article(nil), []string(nil)).
		Return([]domain.Article{}, "a fragment", nil)

	require.NoError(t, f.svc.SearchFromFragment(ctx, "a fragment"))

	assert.False(t, f.store.View().UseKnowledgeBase)
	f.gateway.AssertExpectations(t)
}

func TestLoadMoreWithoutActiveProject(t *testing.T) {
	f := newFixture(t)
	f.store.Logout(context.Background())

	err := f.svc.LoadMore(context.Background())

	assert.ErrorIs(t, err, domain.ErrNoActiveProject)
	f.gateway.AssertNotCalled(t, "SearchLiterature")
}

func TestLoadMoreRequiresPriorSearch(t *testing.T) {
	f := newFixture(t)

	err := f.svc.LoadMore(context.Background())

	assert.ErrorIs(t, err, domain.ErrEmptyQuery)
}

func TestLoadMoreExcludesSeenTitles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.gateway.On("SearchLiterature", mock.Anything, "query", mock.Anything, []string(nil)).
		Return([]domain.Article{{DOI: "10.1/a", Title: "First"}}, "query", nil).Once()
	require.NoError(t, f.svc.Search(ctx, "query"))

	f.gateway.On("SearchLiterature", mock.Anything, "query", mock.Anything, []string{"First"}).
		Return([]domain.Article{{DOI: "10.1/b", Title: "Second"}}, "query", nil).Once()
	require.NoError(t, f.svc.LoadMore(ctx))

	view := f.store.View()
	require.Len(t, view.SearchResults, 2)
	assert.Equal(t, "Second", view.SearchResults[1].Title)
	f.gateway.AssertExpectations(t)
}

func TestLoadMoreRejectedWhileSearchInFlight(t *testing.T) {
	f := newFixture(t)

	// simulate a search still running
	f.store.BeginSearch("query")

	err := f.svc.LoadMore(context.Background())

	assert.ErrorIs(t, err, domain.ErrOperationInFlight)
	f.gateway.AssertNotCalled(t, "SearchLiterature")
}

func TestUploadDocumentEmptyText(t *testing.T) {
	f := newFixture(t)
	f.extractor.On("Extract", mock.Anything, "blank.txt", mock.Anything).Return("   \n\t  ", nil)

	_, err := f.svc.UploadDocument(context.Background(), "blank.txt", "text/plain", []byte("   \n\t  "))

	assert.ErrorIs(t, err, domain.ErrEmptyDocument)
	assert.Equal(t, "error processing blank.txt: "+domain.ErrEmptyDocument.Message, f.store.View().Error)
	f.gateway.AssertNotCalled(t, "ProcessUploadedDocument")
	assert.Empty(t, f.queue.jobs)
}

func TestUploadDocumentAddsToKnowledgeBaseAndQueuesAnalysis(t *testing.T) {
	f := newFixture(t)
	longText := strings.Repeat("mitochondrial dynamics ", 10)
	require.Greater(t, len(longText), 100)

	f.extractor.On("Extract", mock.Anything, "study.txt", mock.Anything).Return(longText, nil)
	f.gateway.On("ProcessUploadedDocument", mock.Anything, longText, "study.txt").
		Return(domain.Article{DOI: "local-1", Title: "study", FullText: longText}, nil)

	article, err := f.svc.UploadDocument(context.Background(), "study.txt", "text/plain", []byte(longText))

	require.NoError(t, err)
	assert.Equal(t, "local-1", article.DOI)

	project, _ := f.store.ActiveProject()
	require.Len(t, project.KnowledgeBaseArticles, 1)

	require.Len(t, f.queue.jobs, 1)
	job := f.queue.jobs[0]
	assert.Equal(t, "p1", job.ProfileID)
	assert.Equal(t, "prj1", job.ProjectID)
	assert.Equal(t, "local-1", job.DOI)
	assert.Equal(t, longText, job.FullText)

	assert.False(t, f.store.View().Flags.Uploading)
}

func TestUploadDocumentShortTextSkipsAnalysis(t *testing.T) {
	f := newFixture(t)
	shortText := "just a note"

	f.extractor.On("Extract", mock.Anything, "note.txt", mock.Anything).Return(shortText, nil)
	f.gateway.On("ProcessUploadedDocument", mock.Anything, shortText, "note.txt").
		Return(domain.Article{DOI: "local-2", Title: "note"}, nil)

	_, err := f.svc.UploadDocument(context.Background(), "note.txt", "text/plain", []byte(shortText))

	require.NoError(t, err)
	assert.Empty(t, f.queue.jobs)
}

func TestUploadDocumentExtractionFailure(t *testing.T) {
	f := newFixture(t)
	extractErr := domain.NewDomainError(domain.ErrCodeUnsupportedFormat, "unsupported file format: .csv")
	f.extractor.On("Extract", mock.Anything, "data.csv", mock.Anything).Return("", extractErr)

	_, err := f.svc.UploadDocument(context.Background(), "data.csv", "text/csv", []byte("a,b"))

	assert.ErrorIs(t, err, extractErr)
	// the surfaced message names the offending file
	assert.Equal(t, "error processing data.csv: unsupported file format: .csv", f.store.View().Error)
}

func TestUploadDocumentWithoutProfile(t *testing.T) {
	f := newFixture(t)
	f.store.Logout(context.Background())

	_, err := f.svc.UploadDocument(context.Background(), "study.txt", "text/plain", []byte("text"))

	assert.ErrorIs(t, err, domain.ErrNoActiveProfile)
}

func TestToggleSaveResolvesAcrossCollections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.gateway.On("SearchLiterature", mock.Anything, "query", mock.Anything, mock.Anything).
		Return([]domain.Article{{DOI: "10.1/a", Title: "Found"}}, "query", nil)
	require.NoError(t, f.svc.Search(ctx, "query"))

	require.NoError(t, f.svc.ToggleSave(ctx, "10.1/a"))

	project, _ := f.store.ActiveProject()
	require.Len(t, project.SavedArticles, 1)
	assert.Equal(t, "Found", project.SavedArticles[0].Title)
}

func TestToggleSaveUnknownDOI(t *testing.T) {
	f := newFixture(t)

	err := f.svc.ToggleSave(context.Background(), "10.1/ghost")

	assert.ErrorIs(t, err, domain.ErrArticleNotFound)
}

func TestStartComparisonSingleMarkKeepsSelection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.AddKnowledgeArticle(ctx, domain.Article{DOI: "local-1"}))
	f.svc.ToggleCompare("local-1")

	err := f.svc.StartComparison(ctx)

	assert.ErrorIs(t, err, domain.ErrComparisonInsufficient)
	// the mark stays so the user can add a second article and retry
	assert.Equal(t, []string{"local-1"}, f.store.CompareDOIs())
	f.gateway.AssertNotCalled(t, "GenerateComparison")
}

func TestStartComparisonUnresolvableMarkClearsSelection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.AddKnowledgeArticle(ctx, domain.Article{DOI: "local-1"}))
	f.svc.ToggleCompare("local-1")
	f.svc.ToggleCompare("10.1/ghost")

	err := f.svc.StartComparison(ctx)

	assert.ErrorIs(t, err, domain.ErrComparisonInsufficient)
	// a comparison was attempted, so the selection is cleared
	assert.Empty(t, f.store.CompareDOIs())
	f.gateway.AssertNotCalled(t, "GenerateComparison")
}

func TestStartComparisonDeduplicatesByDOI(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// the same DOI lives in both the saved list and the search results
	require.NoError(t, f.store.ToggleSavedArticle(ctx, domain.Article{DOI: "10.1/a", Title: "saved copy"}))
	f.gateway.On("SearchLiterature", mock.Anything, "query", mock.Anything, mock.Anything).
		Return([]domain.Article{
			{DOI: "10.1/a", Title: "search copy"},
			{DOI: "10.1/b", Title: "other"},
		}, "query", nil)
	require.NoError(t, f.svc.Search(ctx, "query"))

	f.svc.ToggleCompare("10.1/a")
	f.svc.ToggleCompare("10.1/b")

	f.gateway.On("GenerateComparison", mock.Anything, mock.MatchedBy(func(articles []domain.Article) bool {
		return len(articles) == 2 && articles[0].Title == "saved copy"
	})).Return("## General Synthesis", nil)

	require.NoError(t, f.svc.StartComparison(ctx))

	view := f.store.View()
	require.NotNil(t, view.ComparisonResult)
	assert.Equal(t, "## General Synthesis", view.ComparisonResult.Analysis)
	assert.Empty(t, view.CompareDOIs)
	f.gateway.AssertExpectations(t)
}

func TestStartComparisonBackendFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.ToggleSavedArticle(ctx, domain.Article{DOI: "10.1/a"}))
	require.NoError(t, f.store.ToggleSavedArticle(ctx, domain.Article{DOI: "10.1/b"}))
	f.svc.ToggleCompare("10.1/a")
	f.svc.ToggleCompare("10.1/b")

	f.gateway.On("GenerateComparison", mock.Anything, mock.Anything).
		Return("", domain.ErrComparisonFailed)

	err := f.svc.StartComparison(ctx)

	require.Error(t, err)
	view := f.store.View()
	assert.Empty(t, view.CompareDOIs)
	assert.Nil(t, view.ComparisonResult)
	assert.Equal(t, domain.ErrComparisonFailed.Message, view.Error)
}

func TestExportBibliographyNoSavedArticles(t *testing.T) {
	f := newFixture(t)

	bibliography, err := f.svc.ExportBibliography(context.Background())

	require.NoError(t, err)
	assert.Empty(t, bibliography)
	f.gateway.AssertNotCalled(t, "GenerateBibliography")
}

func TestExportBibliography(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.ToggleSavedArticle(ctx, domain.Article{DOI: "10.1/a", Title: "Saved"}))

	f.gateway.On("GenerateBibliography", mock.Anything, mock.MatchedBy(func(articles []domain.Article) bool {
		return len(articles) == 1 && articles[0].DOI == "10.1/a"
	})).Return("Vega, A. (2023). Saved. Nature.", nil)

	bibliography, err := f.svc.ExportBibliography(ctx)

	require.NoError(t, err)
	assert.Contains(t, bibliography, "Vega, A.")
	assert.False(t, f.store.View().Flags.Exporting)
}

func TestChatMessageResolvesArticle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	article := domain.Article{DOI: "local-1", Title: "Uploaded"}
	require.NoError(t, f.store.AddKnowledgeArticle(ctx, article))

	f.chatter.On("Chat", mock.Anything, article, []domain.ChatMessage(nil), "what is it about?").
		Return("it is about mitochondria", nil)

	reply, err := f.svc.ChatMessage(ctx, "local-1", "what is it about?", nil)

	require.NoError(t, err)
	assert.Equal(t, "it is about mitochondria", reply)
	assert.Equal(t, "local-1", f.store.View().SelectedDOI)
}

func TestChatMessageUnknownArticle(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ChatMessage(context.Background(), "10.1/ghost", "hello", nil)

	assert.ErrorIs(t, err, domain.ErrArticleNotFound)
	f.chatter.AssertNotCalled(t, "Chat")
}

func TestEndChatInvalidatesSession(t *testing.T) {
	f := newFixture(t)
	f.chatter.On("Invalidate", "10.1/a").Return()

	f.store.SelectArticle("10.1/a")
	f.svc.EndChat("10.1/a")

	assert.Empty(t, f.store.View().SelectedDOI)
	f.chatter.AssertExpectations(t)
}

func TestDocumentDownloadURLWithoutArchiver(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.DocumentDownloadURL(context.Background(), "p1/prj1/doc.pdf")

	require.Error(t, err)
	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeInvalidOperation, domainErr.Code)
}
