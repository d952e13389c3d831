package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dataextractor/data-extractor/pkg/config"
	"github.com/dataextractor/data-extractor/pkg/github"
	"github.com/dataextractor/data-extractor/pkg/gitlab"
	"github.com/dataextractor/data-extractor/pkg/jira"
	"github.com/dataextractor/data-extractor/pkg/logger"
	"github.com/dataextractor/data-extractor/pkg/output"
	"github.com/dataextractor/data-extractor/pkg/project"
	"github.com/spf13/pflag"
)

func runList(ctx context.Context, out io.Writer, opts *rootOptions, flags *pflag.FlagSet) error {
	settings, err := config.Load(opts.configPath, opts.overrides(flags), opts.loadOptions(flags))
	if err != nil {
		return err
	}

	source := opts.source()
	repository, err := newRepository(source, settings)
	if err != nil {
		return err
	}

	var sink output.Sink
	if opts.store {
		sink, err = output.Open(ctx, settings.Outputs, source)
		if err != nil {
			return fmt.Errorf("failed to open output: %w", err)
		}
		defer sink.Close()
	}

	var only []string
	if source == output.SourceGit && opts.onlyConfiguredProjects {
		only = settings.Git.Projects
		if len(only) == 0 {
			logger.Warn("--only-configured-projects given without git projects, listing everything")
		}
	}

	logger.Info("Listing projects", "source", source)
	projects, err := project.NewListProjects(repository, only).Execute(ctx)
	if err != nil {
		logger.Error("Listing projects failed", "source", source, "error", err)
		if sink != nil {
			if logErr := sink.StoreRunLog(ctx, 0, err); logErr != nil {
				logger.Warn("Failed to store run log", "error", logErr)
			}
		}
		return err
	}

	printProjects(out, projects)

	if sink != nil {
		storeErr := sink.StoreProjects(ctx, projects)
		if logErr := sink.StoreRunLog(ctx, len(projects), storeErr); logErr != nil {
			logger.Warn("Failed to store run log", "error", logErr)
		}
		if storeErr != nil {
			return storeErr
		}
	}
	return nil
}

func newRepository(source output.Source, settings config.Settings) (project.Repository, error) {
	if source == output.SourceJira {
		return jira.NewRepository(settings.Jira), nil
	}

	switch strings.ToLower(settings.Git.Type) {
	case "", "gitlab":
		return gitlab.NewRepository(settings.Git), nil
	case "github":
		return github.NewRepository(settings.Git), nil
	case "bitbucket":
		return nil, fmt.Errorf("bitbucket source: %w", project.ErrNotImplemented)
	default:
		return nil, fmt.Errorf("unsupported git type %q", settings.Git.Type)
	}
}

func printProjects(out io.Writer, projects []project.ProjectInfo) {
	fmt.Fprintf(out, "Total repositories: %d\n", len(projects))
	for _, p := range projects {
		fmt.Fprintf(out, "Project: %s Access Level: %s\n", p.PathWithNamespace, p.AccessLevelName())
	}
}
