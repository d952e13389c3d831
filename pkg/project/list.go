package project

import (
	"context"
	"net/url"
	"strings"

	"github.com/dataextractor/data-extractor/pkg/logger"
)

// ListProjects fetches projects from a repository, optionally narrowed to
// a set of wanted projects.
type ListProjects struct {
	repository Repository
	// Only holds project paths or URLs to keep. Empty keeps everything.
	only []string
}

func NewListProjects(repository Repository, only []string) *ListProjects {
	return &ListProjects{repository: repository, only: only}
}

// Execute returns the projects in the order the repository delivered them.
func (uc *ListProjects) Execute(ctx context.Context) ([]ProjectInfo, error) {
	projects, err := uc.repository.GetAllProjects(ctx)
	if err != nil {
		return nil, err
	}
	if len(uc.only) == 0 {
		return projects, nil
	}

	wanted := make(map[string]struct{}, len(uc.only))
	for _, entry := range uc.only {
		if key := projectKey(entry); key != "" {
			wanted[key] = struct{}{}
		}
	}

	filtered := make([]ProjectInfo, 0, len(wanted))
	for _, p := range projects {
		if _, ok := wanted[projectKey(p.PathWithNamespace)]; ok {
			filtered = append(filtered, p)
			continue
		}
		if _, ok := wanted[projectKey(p.HTTPURL)]; ok {
			filtered = append(filtered, p)
		}
	}
	logger.Debug("Filtered projects", "total", len(projects), "kept", len(filtered))
	return filtered, nil
}

// projectKey reduces a path, web URL or clone URL to a lower-cased
// "namespace/name" form.
func projectKey(s string) string {
	s = strings.TrimSpace(s)
	if u, err := url.Parse(s); err == nil && u.Host != "" {
		s = u.Path
	}
	s = strings.Trim(s, "/")
	s = strings.TrimSuffix(s, ".git")
	return strings.ToLower(s)
}
