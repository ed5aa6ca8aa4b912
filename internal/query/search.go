package query

import (
	"strings"

	"github.com/mesh-intelligence/cadence/internal/store"
	"github.com/mesh-intelligence/cadence/pkg/types"
)

// SearchResults groups the entities matched by a search term.
type SearchResults struct {
	Projects      []types.Project       `json:"projects,omitempty"`
	Documentation []types.Documentation `json:"documentation,omitempty"`
}

// Empty reports whether the search produced no matches.
func (r *SearchResults) Empty() bool {
	return len(r.Projects) == 0 && len(r.Documentation) == 0
}

// Search finds projects whose name or objective contains the term and
// documentation whose title contains it. Matching is case-insensitive
// substring; a blank term matches nothing.
func Search(s *store.Store, repoID, term string) (*SearchResults, error) {
	results := &SearchResults{}
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return results, nil
	}

	projects, err := s.ListProjects(repoID)
	if err != nil {
		return nil, err
	}
	for _, p := range projects {
		if strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.Objective), needle) {
			results.Projects = append(results.Projects, p)
		}
	}

	docs, err := s.ListDocumentation(repoID)
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		if strings.Contains(strings.ToLower(d.Title), needle) {
			results.Documentation = append(results.Documentation, d)
		}
	}
	return results, nil
}
