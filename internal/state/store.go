// Package state holds the in-memory domain model: the profile collection, the active
// profile pointer, and the transient view state the presentation layer renders. Every
// mutation goes through the Store, which keeps the hierarchy invariants intact and writes
// profile data through the persistence repository on each change.
package state

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/biomente/biomente/internal/domain"
)

// Saver persists the profile collection and active-profile pointer
type Saver interface {
	Save(ctx context.Context, profiles []domain.Profile, activeID string) error
}

// IDGenerator defines interface for ID generation (for testing)
type IDGenerator interface {
	NewString() string
}

// DefaultIDGenerator is the default generator using google/uuid
type DefaultIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultIDGenerator) NewString() string {
	return uuid.NewString()
}

// Flags are the per-use-case in-flight indicators
type Flags struct {
	Loading     bool `json:"loading"`
	LoadingMore bool `json:"loading_more"`
	Uploading   bool `json:"uploading"`
	Comparing   bool `json:"comparing"`
	Exporting   bool `json:"exporting"`
}

// View is the transient, never-persisted state backing the presentation layer
type View struct {
	Query            string                   `json:"query"`
	TranslatedQuery  string                   `json:"translated_query"`
	SearchResults    []domain.Article         `json:"search_results"`
	HasSearched      bool                     `json:"has_searched"`
	UseKnowledgeBase bool                     `json:"use_knowledge_base"`
	SelectedDOI      string                   `json:"selected_doi"`
	CompareDOIs      []string                 `json:"compare_dois"`
	ComparisonResult *domain.ComparisonResult `json:"comparison_result,omitempty"`
	Error            string                   `json:"error"`
	Flags            Flags                    `json:"flags"`
}

// Store is the sole mutator of the profile hierarchy and the transient view state
type Store struct {
	mu              sync.RWMutex
	profiles        []domain.Profile
	activeProfileID string
	view            View
	searchGen       uint64
	saver           Saver
	idGen           IDGenerator
}

// New creates a Store backed by the given saver
func New(saver Saver) *Store {
	return NewWithIDGen(saver, &DefaultIDGenerator{})
}

// NewWithIDGen creates a Store with a custom ID generator (for testing)
func NewWithIDGen(saver Saver, idGen IDGenerator) *Store {
	return &Store{
		saver: saver,
		idGen: idGen,
		view:  View{UseKnowledgeBase: true},
	}
}

// Restore seeds the store with previously persisted state.
func (s *Store) Restore(profiles []domain.Profile, activeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles = profiles
	s.activeProfileID = activeID
}

// persist writes the current profile data through the saver. Persistence failure never
// fails a use case; it is logged and the in-memory state stays authoritative.
func (s *Store) persist(ctx context.Context) {
	if s.saver == nil {
		return
	}
	profiles := make([]domain.Profile, len(s.profiles))
	copy(profiles, s.profiles)
	if err := s.saver.Save(ctx, profiles, s.activeProfileID); err != nil {
		log.Printf("state: failed to persist profiles: %v", err)
	}
}

// Snapshot is a consistent copy of everything the presentation layer renders
type Snapshot struct {
	Profiles        []domain.Profile `json:"profiles"`
	ActiveProfileID string           `json:"active_profile_id,omitempty"`
	View            View             `json:"view"`
}

// Snapshot returns a deep copy safe to read and marshal outside the lock while
// mutations continue.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profiles := make([]domain.Profile, len(s.profiles))
	for i := range s.profiles {
		profiles[i] = s.profiles[i].Clone()
	}
	return Snapshot{
		Profiles:        profiles,
		ActiveProfileID: s.activeProfileID,
		View:            s.view.clone(),
	}
}

// ActiveProfile returns a deep copy of the active profile
func (s *Store) ActiveProfile() (domain.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := s.activeProfileLocked()
	if p == nil {
		return domain.Profile{}, false
	}
	return p.Clone(), true
}

// ActiveProject returns a deep copy of the active profile's active project
func (s *Store) ActiveProject() (domain.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	prj := s.activeProjectLocked()
	if prj == nil {
		return domain.Project{}, false
	}
	return prj.Clone(), true
}

func (s *Store) activeProfileLocked() *domain.Profile {
	if s.activeProfileID == "" {
		return nil
	}
	for i := range s.profiles {
		if s.profiles[i].ID == s.activeProfileID {
			return &s.profiles[i]
		}
	}
	return nil
}

func (s *Store) activeProjectLocked() *domain.Project {
	p := s.activeProfileLocked()
	if p == nil {
		return nil
	}
	return p.ActiveProject()
}

// CreateProfile appends a new profile with one default project and makes it active.
func (s *Store) CreateProfile(ctx context.Context, name string) (domain.Profile, error) {
	if name == "" {
		return domain.Profile{}, domain.NewDomainError(domain.ErrCodeValidation, "profile name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	profile := domain.NewProfile(s.idGen.NewString(), name, s.idGen.NewString())
	if err := domain.ValidateProfile(profile); err != nil {
		return domain.Profile{}, err
	}

	s.profiles = append(s.profiles, *profile)
	s.activeProfileID = profile.ID
	s.persist(ctx)
	return *profile, nil
}

// SelectProfile changes the active profile and clears all transient view state.
func (s *Store) SelectProfile(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for i := range s.profiles {
		if s.profiles[i].ID == id {
			found = true
			break
		}
	}
	if !found {
		return domain.ErrProfileNotFound
	}

	s.activeProfileID = id
	s.resetViewLocked()
	s.persist(ctx)
	return nil
}

// Logout clears the active profile pointer and all transient view state.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeProfileID = ""
	s.resetViewLocked()
	s.persist(ctx)
}

// CreateProject appends a project to the active profile and makes it the active project.
func (s *Store) CreateProject(ctx context.Context, name string) (domain.Project, error) {
	if name == "" {
		return domain.Project{}, domain.NewDomainError(domain.ErrCodeValidation, "project name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	profile := s.activeProfileLocked()
	if profile == nil {
		return domain.Project{}, domain.ErrNoActiveProfile
	}

	project := domain.Project{
		ID:                    s.idGen.NewString(),
		Name:                  name,
		KnowledgeBaseArticles: []domain.Article{},
		SavedArticles:         []domain.Article{},
	}
	profile.Projects = append(profile.Projects, project)
	profile.ActiveProjectID = project.ID
	s.resetViewLocked()
	s.persist(ctx)
	return project, nil
}

// SwitchProject changes the active project pointer. Switching to the already-active
// project, or without an active profile, is a no-op.
func (s *Store) SwitchProject(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile := s.activeProfileLocked()
	if profile == nil || profile.ActiveProjectID == id {
		return nil
	}
	if profile.Project(id) == nil {
		return domain.ErrProjectNotFound
	}

	profile.ActiveProjectID = id
	s.resetViewLocked()
	s.persist(ctx)
	return nil
}

// ToggleSavedArticle adds the article to the active project's saved list (prepending) when
// its DOI is absent, and removes it when present. Idempotent per DOI parity.
func (s *Store) ToggleSavedArticle(ctx context.Context, article domain.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	project := s.activeProjectLocked()
	if project == nil {
		return domain.ErrNoActiveProject
	}

	if project.IsSaved(article.DOI) {
		kept := project.SavedArticles[:0]
		for _, a := range project.SavedArticles {
			if a.DOI != article.DOI {
				kept = append(kept, a)
			}
		}
		project.SavedArticles = kept
	} else {
		project.SavedArticles = append([]domain.Article{article}, project.SavedArticles...)
	}
	s.persist(ctx)
	return nil
}

// AddKnowledgeArticle prepends an article to the active project's knowledge base.
func (s *Store) AddKnowledgeArticle(ctx context.Context, article domain.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	project := s.activeProjectLocked()
	if project == nil {
		return domain.ErrNoActiveProject
	}

	project.KnowledgeBaseArticles = append([]domain.Article{article}, project.KnowledgeBaseArticles...)
	s.persist(ctx)
	return nil
}

// AttachAnalysis sets the deep analysis on the identified knowledge-base article. Used by
// the background analysis worker once enrichment completes.
func (s *Store) AttachAnalysis(ctx context.Context, profileID, projectID, doi string, analysis *domain.DocumentAnalysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.profiles {
		if s.profiles[i].ID != profileID {
			continue
		}
		project := s.profiles[i].Project(projectID)
		if project == nil {
			return domain.ErrProjectNotFound
		}
		for j := range project.KnowledgeBaseArticles {
			if project.KnowledgeBaseArticles[j].DOI == doi {
				project.KnowledgeBaseArticles[j].Analysis = analysis
				s.persist(ctx)
				return nil
			}
		}
		return domain.ErrArticleNotFound
	}
	return domain.ErrProfileNotFound
}
