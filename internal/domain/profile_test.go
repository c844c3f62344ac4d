package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProfile(t *testing.T) {
	profile := NewProfile("profile-1", "Dr. Vega", "project-1")

	assert.Equal(t, "profile-1", profile.ID)
	assert.Equal(t, "Dr. Vega", profile.Name)
	require.Len(t, profile.Projects, 1)
	assert.Equal(t, DefaultProjectName, profile.Projects[0].Name)
	assert.Equal(t, "project-1", profile.ActiveProjectID)
	assert.NotNil(t, profile.Projects[0].KnowledgeBaseArticles)
	assert.NotNil(t, profile.Projects[0].SavedArticles)
}

func TestProfileActiveProject(t *testing.T) {
	profile := NewProfile("profile-1", "Dr. Vega", "project-1")

	active := profile.ActiveProject()
	require.NotNil(t, active)
	assert.Equal(t, "project-1", active.ID)

	profile.ActiveProjectID = ""
	assert.Nil(t, profile.ActiveProject())

	profile.ActiveProjectID = "missing"
	assert.Nil(t, profile.ActiveProject())
}

func TestValidateProfile(t *testing.T) {
	tests := []struct {
		name    string
		profile *Profile
		wantErr bool
	}{
		{
			name:    "valid profile",
			profile: NewProfile("profile-1", "Dr. Vega", "project-1"),
			wantErr: false,
		},
		{
			name:    "nil profile",
			profile: nil,
			wantErr: true,
		},
		{
			name:    "missing id",
			profile: &Profile{Name: "Dr. Vega"},
			wantErr: true,
		},
		{
			name:    "missing name",
			profile: &Profile{ID: "profile-1"},
			wantErr: true,
		},
		{
			name: "active project not in list",
			profile: &Profile{
				ID:              "profile-1",
				Name:            "Dr. Vega",
				ActiveProjectID: "ghost",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProfile(tt.profile)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProjectIsSaved(t *testing.T) {
	project := Project{
		SavedArticles: []Article{{DOI: "10.1/a"}},
	}

	assert.True(t, project.IsSaved("10.1/a"))
	assert.False(t, project.IsSaved("10.1/b"))
}
