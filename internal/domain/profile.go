package domain

// DefaultProjectName is the name given to the project created alongside a new profile.
const DefaultProjectName = "My First Project"

// Profile represents a named workspace owning an ordered list of projects
type Profile struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Projects        []Project `json:"projects"`
	ActiveProjectID string    `json:"active_project_id,omitempty"`
}

// Project represents a named container of articles scoped to one profile
type Project struct {
	ID                    string    `json:"id"`
	Name                  string    `json:"name"`
	KnowledgeBaseArticles []Article `json:"knowledge_base_articles"`
	SavedArticles         []Article `json:"saved_articles"`
}

// NewProfile creates a new Profile with a single default project, which becomes active
func NewProfile(id, name, projectID string) *Profile {
	p := &Profile{
		ID:   id,
		Name: name,
		Projects: []Project{
			{
				ID:                    projectID,
				Name:                  DefaultProjectName,
				KnowledgeBaseArticles: []Article{},
				SavedArticles:         []Article{},
			},
		},
	}
	p.ActiveProjectID = projectID
	return p
}

// Clone returns a copy whose project and article slices share no backing arrays with
// the receiver, so readers can hold it without synchronizing against later mutations.
func (p Profile) Clone() Profile {
	out := p
	out.Projects = make([]Project, len(p.Projects))
	for i := range p.Projects {
		out.Projects[i] = p.Projects[i].Clone()
	}
	return out
}

// Clone returns a copy of the project with freshly allocated article slices.
func (prj Project) Clone() Project {
	out := prj
	out.KnowledgeBaseArticles = append([]Article(nil), prj.KnowledgeBaseArticles...)
	out.SavedArticles = append([]Article(nil), prj.SavedArticles...)
	return out
}

// Project returns the project with the given id, or nil if absent
func (p *Profile) Project(id string) *Project {
	for i := range p.Projects {
		if p.Projects[i].ID == id {
			return &p.Projects[i]
		}
	}
	return nil
}

// ActiveProject returns the currently active project, or nil when none is set
func (p *Profile) ActiveProject() *Project {
	if p.ActiveProjectID == "" {
		return nil
	}
	return p.Project(p.ActiveProjectID)
}

// ValidateProfile validates a Profile instance, including the active-project invariant:
// a non-empty ActiveProjectID must reference a project in the list.
func ValidateProfile(p *Profile) error {
	if p == nil {
		return NewDomainError(ErrCodeValidation, "profile cannot be nil")
	}
	if p.ID == "" {
		return NewDomainError(ErrCodeValidation, "profile ID is required")
	}
	if p.Name == "" {
		return NewDomainError(ErrCodeValidation, "profile Name is required")
	}
	if p.ActiveProjectID != "" && p.Project(p.ActiveProjectID) == nil {
		return NewDomainError(ErrCodeValidation, "active project does not exist in profile")
	}
	return nil
}

// IsSaved reports whether an article with the given DOI is in the saved list
func (p *Project) IsSaved(doi string) bool {
	for _, a := range p.SavedArticles {
		if a.DOI == doi {
			return true
		}
	}
	return false
}
