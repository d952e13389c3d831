package cmd

import (
	"fmt"

	"github.com/dataextractor/data-extractor/pkg/config"
	"github.com/dataextractor/data-extractor/pkg/logger"
	"github.com/dataextractor/data-extractor/pkg/output"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var gitTypes = []string{"gitlab", "github", "bitbucket"}

type rootOptions struct {
	git   bool
	jira  bool
	noEnv bool
	store bool

	onlyConfiguredProjects bool

	configPath string
	logLevel   string

	gitURL      string
	gitVersion  string
	gitType     string
	gitToken    string
	gitProjects []string

	jiraURL     string
	jiraVersion string
	jiraToken   string

	outputType        string
	dbURL             string
	gitTableName      string
	jiraTableName     string
	logsGitTableName  string
	logsJiraTableName string
}

func NewRootCommand() *cobra.Command {
	return newRootCommand(&rootOptions{})
}

func newRootCommand(opts *rootOptions) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "data-extractor (-g | -j) [flags]",
		Short: "List the projects you can access on a Git hosting service",
		Long: `List the projects visible to a user on a Git hosting service together
with the user's access level on each of them.

Settings are read from .env.yaml (or --config) and any flag given on the
command line replaces the matching file value. --no-env skips the file.`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			logger.SetOutput(cmd.ErrOrStderr())
			if err := logger.SetLevel(opts.logLevel); err != nil {
				return err
			}
			if cmd.Flags().Changed("git-type") && !validGitType(opts.gitType) {
				return fmt.Errorf("invalid --git-type %q (choose from %v)", opts.gitType, gitTypes)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// flags are valid from here on; runtime errors need no usage
			cmd.SilenceUsage = true
			return runList(cmd.Context(), cmd.OutOrStdout(), opts, cmd.Flags())
		},
	}

	flags := rootCmd.Flags()
	flags.SortFlags = false

	// Source selection
	flags.BoolVarP(&opts.git, "git", "g", false, "Extract data from Git")
	flags.BoolVarP(&opts.jira, "jira", "j", false, "Extract data from Jira")

	// Configuration
	flags.BoolVar(&opts.noEnv, "no-env", false, "Ignore the config file and use only command line flags")
	flags.StringVar(&opts.configPath, "config", config.DefaultConfigName, "Config file (must exist when given explicitly)")
	flags.StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flags.BoolVar(&opts.store, "store", false, "Store the listed projects in the configured output")

	// Git inputs
	flags.StringVar(&opts.gitURL, "git-url", "", "Git server URL")
	flags.StringVar(&opts.gitVersion, "git-version", "", "Git server version")
	flags.StringVar(&opts.gitType, "git-type", "", "Git server type (gitlab, github, bitbucket)")
	flags.StringVar(&opts.gitToken, "git-token", "", "Git authentication token")
	flags.StringSliceVar(&opts.gitProjects, "git-projects", nil, "Git projects, comma separated (--git-projects= clears the list)")
	flags.BoolVar(&opts.onlyConfiguredProjects, "only-configured-projects", false, "List only the projects named in git_projects / --git-projects")

	// Jira inputs
	flags.StringVar(&opts.jiraURL, "jira-url", "", "Jira server URL")
	flags.StringVar(&opts.jiraVersion, "jira-version", "", "Jira server version")
	flags.StringVar(&opts.jiraToken, "jira-token", "", "Jira authentication token")

	// Outputs
	flags.StringVar(&opts.outputType, "output-type", "", "Output type (e.g. postgres)")
	flags.StringVar(&opts.dbURL, "db-url", "", "Database connection URL")
	flags.StringVar(&opts.gitTableName, "git-table-name", "", "Table name for Git data")
	flags.StringVar(&opts.jiraTableName, "jira-table-name", "", "Table name for Jira data")
	flags.StringVar(&opts.logsGitTableName, "logs-git-table-name", "", "Table name for Git logs")
	flags.StringVar(&opts.logsJiraTableName, "logs-jira-table-name", "", "Table name for Jira logs")

	rootCmd.MarkFlagsMutuallyExclusive("git", "jira")
	rootCmd.MarkFlagsOneRequired("git", "jira")

	return rootCmd
}

func validGitType(t string) bool {
	for _, v := range gitTypes {
		if t == v {
			return true
		}
	}
	return false
}

func (o *rootOptions) source() output.Source {
	if o.jira {
		return output.SourceJira
	}
	return output.SourceGit
}

func (o *rootOptions) loadOptions(flags *pflag.FlagSet) config.LoadOptions {
	return config.LoadOptions{
		NoEnv:    o.noEnv,
		Required: flags.Changed("config"),
	}
}

// overrides keeps only the flags that were given on the command line, so
// that an explicit empty value still replaces the file value.
func (o *rootOptions) overrides(flags *pflag.FlagSet) *config.Overrides {
	str := func(name, v string) *string {
		if !flags.Changed(name) {
			return nil
		}
		return config.String(v)
	}

	ov := &config.Overrides{
		GitURL:     str("git-url", o.gitURL),
		GitVersion: str("git-version", o.gitVersion),
		GitType:    str("git-type", o.gitType),
		GitToken:   str("git-token", o.gitToken),

		JiraURL:     str("jira-url", o.jiraURL),
		JiraVersion: str("jira-version", o.jiraVersion),
		JiraToken:   str("jira-token", o.jiraToken),

		OutputType:        str("output-type", o.outputType),
		DBURL:             str("db-url", o.dbURL),
		GitTableName:      str("git-table-name", o.gitTableName),
		JiraTableName:     str("jira-table-name", o.jiraTableName),
		LogsGitTableName:  str("logs-git-table-name", o.logsGitTableName),
		LogsJiraTableName: str("logs-jira-table-name", o.logsJiraTableName),
	}
	if flags.Changed("git-projects") {
		ov.GitProjects = config.Strings(o.gitProjects)
	}
	return ov
}
