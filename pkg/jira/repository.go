package jira

import (
	"context"
	"fmt"

	"github.com/dataextractor/data-extractor/pkg/config"
	"github.com/dataextractor/data-extractor/pkg/project"
)

// Repository is the placeholder for the Jira source.
type Repository struct {
	settings config.JiraSettings
}

func NewRepository(settings config.JiraSettings) *Repository {
	return &Repository{settings: settings}
}

// TODO: list Jira projects through /rest/api/<version>/project once the
// output schema for issue data is agreed.
func (r *Repository) GetAllProjects(context.Context) ([]project.ProjectInfo, error) {
	return nil, fmt.Errorf("jira integration: %w", project.ErrNotImplemented)
}
