package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeByDOI(t *testing.T) {
	tests := []struct {
		name     string
		input    []Article
		expected []string
	}{
		{
			name:     "empty list",
			input:    nil,
			expected: []string{},
		},
		{
			name: "no duplicates",
			input: []Article{
				{DOI: "10.1/a"},
				{DOI: "10.1/b"},
			},
			expected: []string{"10.1/a", "10.1/b"},
		},
		{
			name: "first occurrence wins",
			input: []Article{
				{DOI: "10.1/a", Title: "saved copy"},
				{DOI: "10.1/b"},
				{DOI: "10.1/a", Title: "search copy"},
			},
			expected: []string{"10.1/a", "10.1/b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DedupeByDOI(tt.input)
			dois := make([]string, 0, len(result))
			for _, a := range result {
				dois = append(dois, a.DOI)
			}
			assert.Equal(t, tt.expected, dois)
		})
	}
}

func TestDedupeByDOIKeepsFirstVersion(t *testing.T) {
	result := DedupeByDOI([]Article{
		{DOI: "10.1/a", Title: "first"},
		{DOI: "10.1/a", Title: "second"},
	})

	assert.Len(t, result, 1)
	assert.Equal(t, "first", result[0].Title)
}

func TestValidateAnalysis(t *testing.T) {
	tests := []struct {
		name     string
		analysis *DocumentAnalysis
		wantErr  bool
	}{
		{
			name: "valid analysis",
			analysis: &DocumentAnalysis{
				Summary:     []string{"a summary point"},
				KeyConcepts: []string{"one"},
				Sections: []Section{
					{Title: "Methods", Content: "text"},
					{Title: "Results", Content: "text"},
				},
			},
			wantErr: false,
		},
		{
			name:     "nil analysis",
			analysis: nil,
			wantErr:  true,
		},
		{
			name: "no sections",
			analysis: &DocumentAnalysis{
				Summary:  []string{"a summary point"},
				Sections: nil,
			},
			wantErr: true,
		},
		{
			name: "untitled section",
			analysis: &DocumentAnalysis{
				Sections: []Section{{Title: "", Content: "text"}},
			},
			wantErr: true,
		},
		{
			name: "duplicate section titles",
			analysis: &DocumentAnalysis{
				Summary: []string{"a summary point"},
				Sections: []Section{
					{Title: "Methods", Content: "text"},
					{Title: "Methods", Content: "more text"},
				},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAnalysis(tt.analysis)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
