package config

import (
	"errors"

	"github.com/dataextractor/data-extractor/pkg/logger"
)

// Settings is the configuration for a single run, built once from the
// config file and the command line.
type Settings struct {
	Git     GitSettings
	Jira    JiraSettings
	Outputs OutputSettings
}

type GitSettings struct {
	URL      string
	Version  string
	Type     string // gitlab, github or bitbucket
	Token    string
	Projects []string
}

type JiraSettings struct {
	URL     string
	Version string
	Token   string
}

type OutputSettings struct {
	Type              string // e.g. postgres
	DBURL             string
	GitTableName      string
	JiraTableName     string
	LogsGitTableName  string
	LogsJiraTableName string
}

// Overrides carries values supplied on the command line. A nil field was
// not supplied and leaves the file value alone; a non-nil field wins even
// when it points at an empty string or an empty slice.
type Overrides struct {
	GitURL      *string
	GitVersion  *string
	GitType     *string
	GitToken    *string
	GitProjects *[]string

	JiraURL     *string
	JiraVersion *string
	JiraToken   *string

	OutputType        *string
	DBURL             *string
	GitTableName      *string
	JiraTableName     *string
	LogsGitTableName  *string
	LogsJiraTableName *string
}

// LoadOptions controls where the base settings come from.
type LoadOptions struct {
	// NoEnv ignores the config file entirely.
	NoEnv bool
	// Required turns a missing config file into ErrConfigNotFound instead
	// of an empty base.
	Required bool
}

// Load resolves the settings for a run: the file at path (DefaultConfigName
// when empty) provides the base and overrides are laid on top field by
// field. overrides may be nil.
func Load(path string, overrides *Overrides, opts LoadOptions) (Settings, error) {
	var settings Settings

	if !opts.NoEnv {
		env, err := LoadEnvConfig(path)
		switch {
		case err == nil:
			settings = env.Settings()
		case errors.Is(err, ErrConfigNotFound) && !opts.Required:
			logger.Debug("Config file not found, starting from empty settings", "path", path)
		default:
			return Settings{}, err
		}
	}

	settings.apply(overrides)
	return settings, nil
}

func (s *Settings) apply(o *Overrides) {
	if o == nil {
		return
	}

	setString(&s.Git.URL, o.GitURL)
	setString(&s.Git.Version, o.GitVersion)
	setString(&s.Git.Type, o.GitType)
	setString(&s.Git.Token, o.GitToken)
	if o.GitProjects != nil {
		s.Git.Projects = cloneStrings(*o.GitProjects)
		if s.Git.Projects == nil {
			s.Git.Projects = []string{}
		}
	}

	setString(&s.Jira.URL, o.JiraURL)
	setString(&s.Jira.Version, o.JiraVersion)
	setString(&s.Jira.Token, o.JiraToken)

	setString(&s.Outputs.Type, o.OutputType)
	setString(&s.Outputs.DBURL, o.DBURL)
	setString(&s.Outputs.GitTableName, o.GitTableName)
	setString(&s.Outputs.JiraTableName, o.JiraTableName)
	setString(&s.Outputs.LogsGitTableName, o.LogsGitTableName)
	setString(&s.Outputs.LogsJiraTableName, o.LogsJiraTableName)
}

// String returns a pointer to v, for filling Overrides.
func String(v string) *string {
	return &v
}

// Strings returns a pointer to a copy of v, for filling Overrides.
func Strings(v []string) *[]string {
	c := cloneStrings(v)
	if c == nil {
		c = []string{}
	}
	return &c
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
