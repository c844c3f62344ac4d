package state

import "github.com/biomente/biomente/internal/domain"

// Transient view-state transitions. Each use case in the orchestration layer moves the
// view through idle → loading → {loaded | error}; the store only guards the shared data.

func (s *Store) resetViewLocked() {
	useKB := s.view.UseKnowledgeBase
	s.view = View{UseKnowledgeBase: useKB}
}

// ResetView clears all transient view state, keeping the knowledge-base toggle.
func (s *Store) ResetView() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetViewLocked()
}

// clone copies the view with freshly allocated result and selection slices, since
// load-more appends and toggle removals rewrite the originals in place.
func (v View) clone() View {
	out := v
	out.SearchResults = append([]domain.Article(nil), v.SearchResults...)
	out.CompareDOIs = append([]string(nil), v.CompareDOIs...)
	return out
}

// View returns a copy of the current view state, safe to read outside the lock.
func (s *Store) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view.clone()
}

// SetUseKnowledgeBase flips the knowledge-base search toggle.
func (s *Store) SetUseKnowledgeBase(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.UseKnowledgeBase = enabled
}

// SetError records an error message for display.
func (s *Store) SetError(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Error = message
}

// SelectArticle records the article currently opened for reading or discussion.
func (s *Store) SelectArticle(doi string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.SelectedDOI = doi
}

// BeginSearch marks a new search in flight and clears prior results, selection,
// comparison, and translated query. It returns a generation stamp; a search whose stamp
// is stale by the time it finishes is discarded, so the last issued search wins.
func (s *Store) BeginSearch(query string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchGen++
	s.view.Query = query
	s.view.TranslatedQuery = ""
	s.view.SearchResults = nil
	s.view.HasSearched = true
	s.view.SelectedDOI = ""
	s.view.ComparisonResult = nil
	s.view.Error = ""
	s.view.Flags.Loading = true
	return s.searchGen
}

// FinishSearch applies a search outcome if its generation stamp is still current.
// Returns false when the result was stale and dropped.
func (s *Store) FinishSearch(gen uint64, results []domain.Article, translated, errMsg string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.searchGen {
		return false
	}
	s.view.Flags.Loading = false
	if errMsg != "" {
		s.view.Error = errMsg
		s.view.SearchResults = nil
		return true
	}
	s.view.SearchResults = results
	s.view.TranslatedQuery = translated
	return true
}

// TryBeginLoadMore atomically checks the in-flight guards and sets the loading-more flag.
// Returns false when a search or another load-more is already running.
func (s *Store) TryBeginLoadMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view.Flags.Loading || s.view.Flags.LoadingMore {
		return false
	}
	s.view.Flags.LoadingMore = true
	s.view.Error = ""
	return true
}

// FinishLoadMore appends newly returned articles after the existing results.
func (s *Store) FinishLoadMore(appended []domain.Article, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Flags.LoadingMore = false
	if errMsg != "" {
		s.view.Error = errMsg
		return
	}
	s.view.SearchResults = append(s.view.SearchResults, appended...)
}

// ResultTitles returns the titles of the current search results, used as the exclusion
// list for load-more requests.
func (s *Store) ResultTitles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	titles := make([]string, 0, len(s.view.SearchResults))
	for _, a := range s.view.SearchResults {
		titles = append(titles, a.Title)
	}
	return titles
}

// SetUploading flips the document-upload in-flight flag.
func (s *Store) SetUploading(uploading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Flags.Uploading = uploading
	if uploading {
		s.view.Error = ""
	}
}

// ToggleCompare adds the DOI to the compare-selection set, or removes it when present.
// Addition order is preserved for display.
func (s *Store) ToggleCompare(doi string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, d := range s.view.CompareDOIs {
		if d == doi {
			s.view.CompareDOIs = append(s.view.CompareDOIs[:i], s.view.CompareDOIs[i+1:]...)
			return
		}
	}
	s.view.CompareDOIs = append(s.view.CompareDOIs, doi)
}

// CompareDOIs returns a copy of the compare-selection set.
func (s *Store) CompareDOIs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.view.CompareDOIs))
	copy(out, s.view.CompareDOIs)
	return out
}

// BeginComparison marks a comparison in flight and clears selection and search display.
func (s *Store) BeginComparison() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Flags.Comparing = true
	s.view.Flags.Loading = true
	s.view.Error = ""
	s.view.SelectedDOI = ""
	s.view.HasSearched = false
}

// FinishComparison stores the outcome and always clears the compare-selection set and
// in-flight flags, win or lose.
func (s *Store) FinishComparison(result *domain.ComparisonResult, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Flags.Comparing = false
	s.view.Flags.Loading = false
	s.view.CompareDOIs = nil
	if errMsg != "" {
		s.view.Error = errMsg
		return
	}
	s.view.ComparisonResult = result
}

// ClearComparison discards the comparison result when the user exits the view.
func (s *Store) ClearComparison() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.ComparisonResult = nil
}

// SetExporting flips the bibliography-export in-flight flag.
func (s *Store) SetExporting(exporting bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Flags.Exporting = exporting
}
