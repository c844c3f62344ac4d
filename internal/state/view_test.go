package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biomente/biomente/internal/domain"
)

func TestBeginSearchClearsPriorState(t *testing.T) {
	store := newTestStore(&MockSaver{})

	store.SelectArticle("10.1/a")
	store.ToggleCompare("10.1/a")
	store.SetError("old error")

	gen := store.BeginSearch("crispr delivery")

	view := store.View()
	assert.Equal(t, "crispr delivery", view.Query)
	assert.True(t, view.HasSearched)
	assert.True(t, view.Flags.Loading)
	assert.Empty(t, view.SelectedDOI)
	assert.Empty(t, view.Error)
	assert.Nil(t, view.SearchResults)

	ok := store.FinishSearch(gen, []domain.Article{{DOI: "10.1/b"}}, "crispr delivery systems", "")
	assert.True(t, ok)

	view = store.View()
	assert.False(t, view.Flags.Loading)
	require.Len(t, view.SearchResults, 1)
	assert.Equal(t, "crispr delivery systems", view.TranslatedQuery)
}

func TestFinishSearchDropsStaleGeneration(t *testing.T) {
	store := newTestStore(&MockSaver{})

	first := store.BeginSearch("first query")
	second := store.BeginSearch("second query")

	// the older search finishing late must not overwrite the newer one
	assert.False(t, store.FinishSearch(first, []domain.Article{{DOI: "10.1/old"}}, "", ""))

	assert.True(t, store.FinishSearch(second, []domain.Article{{DOI: "10.1/new"}}, "", ""))
	view := store.View()
	require.Len(t, view.SearchResults, 1)
	assert.Equal(t, "10.1/new", view.SearchResults[0].DOI)
}

func TestFinishSearchError(t *testing.T) {
	store := newTestStore(&MockSaver{})

	gen := store.BeginSearch("query")
	store.FinishSearch(gen, nil, "", "no articles could be retrieved, try again later")

	view := store.View()
	assert.False(t, view.Flags.Loading)
	assert.Equal(t, "no articles could be retrieved, try again later", view.Error)
	assert.Empty(t, view.SearchResults)
}

func TestTryBeginLoadMoreSingleFlight(t *testing.T) {
	store := newTestStore(&MockSaver{})

	gen := store.BeginSearch("query")
	store.FinishSearch(gen, []domain.Article{{DOI: "10.1/a"}}, "", "")

	assert.True(t, store.TryBeginLoadMore())
	// a second load-more while the first is running is rejected
	assert.False(t, store.TryBeginLoadMore())

	store.FinishLoadMore([]domain.Article{{DOI: "10.1/b"}}, "")
	assert.True(t, store.TryBeginLoadMore())
}

func TestTryBeginLoadMoreBlockedDuringSearch(t *testing.T) {
	store := newTestStore(&MockSaver{})

	store.BeginSearch("query")

	assert.False(t, store.TryBeginLoadMore())
}

func TestFinishLoadMoreAppends(t *testing.T) {
	store := newTestStore(&MockSaver{})

	gen := store.BeginSearch("query")
	store.FinishSearch(gen, []domain.Article{{DOI: "10.1/a"}}, "", "")

	require.True(t, store.TryBeginLoadMore())
	store.FinishLoadMore([]domain.Article{{DOI: "10.1/b"}, {DOI: "10.1/c"}}, "")

	view := store.View()
	require.Len(t, view.SearchResults, 3)
	assert.Equal(t, "10.1/a", view.SearchResults[0].DOI)
	assert.Equal(t, "10.1/c", view.SearchResults[2].DOI)
}

func TestResultTitles(t *testing.T) {
	store := newTestStore(&MockSaver{})

	gen := store.BeginSearch("query")
	store.FinishSearch(gen, []domain.Article{
		{DOI: "10.1/a", Title: "First"},
		{DOI: "10.1/b", Title: "Second"},
	}, "", "")

	assert.Equal(t, []string{"First", "Second"}, store.ResultTitles())
}

func TestToggleCompare(t *testing.T) {
	store := newTestStore(&MockSaver{})

	store.ToggleCompare("10.1/a")
	store.ToggleCompare("10.1/b")
	assert.Equal(t, []string{"10.1/a", "10.1/b"}, store.CompareDOIs())

	// toggling again removes, preserving the order of the rest
	store.ToggleCompare("10.1/a")
	assert.Equal(t, []string{"10.1/b"}, store.CompareDOIs())
}

func TestFinishComparisonAlwaysClearsSelection(t *testing.T) {
	store := newTestStore(&MockSaver{})

	store.ToggleCompare("10.1/a")
	store.ToggleCompare("10.1/b")
	store.BeginComparison()
	store.FinishComparison(nil, "failed to generate the comparison")

	view := store.View()
	assert.Empty(t, view.CompareDOIs)
	assert.False(t, view.Flags.Comparing)
	assert.Equal(t, "failed to generate the comparison", view.Error)

	store.ToggleCompare("10.1/a")
	store.ToggleCompare("10.1/b")
	store.BeginComparison()
	store.FinishComparison(&domain.ComparisonResult{Analysis: "## Synthesis"}, "")

	view = store.View()
	assert.Empty(t, view.CompareDOIs)
	require.NotNil(t, view.ComparisonResult)
	assert.Equal(t, "## Synthesis", view.ComparisonResult.Analysis)
}

func TestResetViewKeepsKnowledgeBaseToggle(t *testing.T) {
	store := newTestStore(&MockSaver{})

	store.SetUseKnowledgeBase(false)
	store.BeginSearch("query")
	store.ResetView()

	view := store.View()
	assert.False(t, view.UseKnowledgeBase)
	assert.Empty(t, view.Query)
	assert.False(t, view.HasSearched)
}

func TestUseKnowledgeBaseDefaultsOn(t *testing.T) {
	store := newTestStore(&MockSaver{})

	assert.True(t, store.View().UseKnowledgeBase)
}
