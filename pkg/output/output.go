package output

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dataextractor/data-extractor/pkg/config"
	"github.com/dataextractor/data-extractor/pkg/project"
)

// Source names where the stored projects came from.
type Source string

const (
	SourceGit  Source = "git"
	SourceJira Source = "jira"
)

var (
	ErrNoOutput          = errors.New("no output type configured")
	ErrUnsupportedOutput = errors.New("unsupported output type")
)

const (
	defaultGitTable      = "git_projects"
	defaultGitLogsTable  = "git_logs"
	defaultJiraTable     = "jira_projects"
	defaultJiraLogsTable = "jira_logs"
)

// Sink persists the result of a listing run.
type Sink interface {
	StoreProjects(ctx context.Context, projects []project.ProjectInfo) error
	// StoreRunLog records the outcome of a run; runErr is nil on success.
	StoreRunLog(ctx context.Context, projectCount int, runErr error) error
	Close()
}

// Open connects the sink selected by outputs.Type.
func Open(ctx context.Context, outputs config.OutputSettings, source Source) (Sink, error) {
	switch strings.ToLower(strings.TrimSpace(outputs.Type)) {
	case "":
		return nil, ErrNoOutput
	case "postgres", "postgresql":
		projectsTable, logsTable := tableNames(outputs, source)
		sink, err := OpenPostgres(ctx, outputs.DBURL, source, projectsTable, logsTable)
		if err != nil {
			return nil, err
		}
		return sink, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedOutput, outputs.Type)
	}
}

func tableNames(outputs config.OutputSettings, source Source) (projects, logs string) {
	if source == SourceJira {
		return orDefault(outputs.JiraTableName, defaultJiraTable), orDefault(outputs.LogsJiraTableName, defaultJiraLogsTable)
	}
	return orDefault(outputs.GitTableName, defaultGitTable), orDefault(outputs.LogsGitTableName, defaultGitLogsTable)
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
