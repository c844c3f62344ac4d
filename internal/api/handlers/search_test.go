package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/biomente/biomente/internal/domain"
	"github.com/biomente/biomente/internal/state"
)

// MockSearchService is a mock implementation of SearchService
type MockSearchService struct {
	mock.Mock
}

func (m *MockSearchService) Search(ctx context.Context, query string) error {
	args := m.Called(ctx, query)
	return args.Error(0)
}

func (m *MockSearchService) SearchFromFragment(ctx context.Context, fragment string) error {
	args := m.Called(ctx, fragment)
	return args.Error(0)
}

func (m *MockSearchService) LoadMore(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// stubViewStore serves a fixed view and records toggle changes
type stubViewStore struct {
	view    state.View
	toggles []bool
}

func (s *stubViewStore) View() state.View {
	return s.view
}

func (s *stubViewStore) SetUseKnowledgeBase(enabled bool) {
	s.toggles = append(s.toggles, enabled)
}

func TestSearch(t *testing.T) {
	svc := &MockSearchService{}
	svc.On("Search", mock.Anything, "crispr").Return(nil)
	store := &stubViewStore{view: state.View{
		Query:         "crispr",
		SearchResults: []domain.Article{{DOI: "10.1/a", Title: "Found"}},
	}}
	h := NewSearchHandler(svc, store)

	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(`{"query": "crispr"}`))
	rec := httptest.NewRecorder()
	h.Search(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "10.1/a")
	assert.Empty(t, store.toggles)
	svc.AssertExpectations(t)
}

func TestSearchSetsKnowledgeBaseToggle(t *testing.T) {
	svc := &MockSearchService{}
	svc.On("Search", mock.Anything, "crispr").Return(nil)
	store := &stubViewStore{}
	h := NewSearchHandler(svc, store)

	body := `{"query": "crispr", "use_knowledge_base": false}`
	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Search(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []bool{false}, store.toggles)
}

func TestSearchBackendFailure(t *testing.T) {
	svc := &MockSearchService{}
	svc.On("Search", mock.Anything, "crispr").Return(domain.ErrSearchFailed)
	h := NewSearchHandler(svc, &stubViewStore{})

	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(`{"query": "crispr"}`))
	rec := httptest.NewRecorder()
	h.Search(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestSearchEmptyQueryRejected(t *testing.T) {
	svc := &MockSearchService{}
	svc.On("Search", mock.Anything, "").Return(domain.ErrEmptyQuery)
	h := NewSearchHandler(svc, &stubViewStore{})

	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.Search(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchFragment(t *testing.T) {
	svc := &MockSearchService{}
	svc.On("SearchFromFragment", mock.Anything, "a fragment").Return(nil)
	h := NewSearchHandler(svc, &stubViewStore{})

	req := httptest.NewRequest(http.MethodPost, "/search/fragment", strings.NewReader(`{"fragment": "a fragment"}`))
	rec := httptest.NewRecorder()
	h.SearchFragment(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestLoadMoreConflictWhileInFlight(t *testing.T) {
	svc := &MockSearchService{}
	svc.On("LoadMore", mock.Anything).Return(domain.ErrOperationInFlight)
	h := NewSearchHandler(svc, &stubViewStore{})

	req := httptest.NewRequest(http.MethodPost, "/search/more", nil)
	rec := httptest.NewRecorder()
	h.LoadMore(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}
