package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultConfigName is the file read when no --config path is given.
const DefaultConfigName = ".env.yaml"

// ErrConfigNotFound is returned when a required config file does not exist.
var ErrConfigNotFound = errors.New("config file not found")

// ParseError reports a config file that exists but is not valid YAML
// for the expected shape.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse config file %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// GitInputs mirrors the git_* keys under "inputs".
type GitInputs struct {
	URL      string   `yaml:"git_url"`
	Version  string   `yaml:"git_version"`
	Type     string   `yaml:"git_type"`
	Token    string   `yaml:"git_token"`
	Projects []string `yaml:"git_projects"`
}

// JiraInputs mirrors the jira_* keys under "inputs".
type JiraInputs struct {
	URL     string `yaml:"jira_url"`
	Version string `yaml:"jira_version"`
	Token   string `yaml:"jira_token"`
}

// Inputs holds both sources flattened into one mapping, as in the file.
type Inputs struct {
	Git  GitInputs  `yaml:",inline"`
	Jira JiraInputs `yaml:",inline"`
}

type Outputs struct {
	Type              string `yaml:"type"`
	DBURL             string `yaml:"db_url"`
	GitTableName      string `yaml:"git_table_name"`
	JiraTableName     string `yaml:"jira_table_name"`
	LogsGitTableName  string `yaml:"logs_git_table_name"`
	LogsJiraTableName string `yaml:"logs_jira_table_name"`
}

// EnvConfig is the on-disk layout of .env.yaml.
type EnvConfig struct {
	Inputs  Inputs  `yaml:"inputs"`
	Outputs Outputs `yaml:"outputs"`
}

// LoadEnvConfig reads and decodes the file at path. A missing file yields
// an error wrapping ErrConfigNotFound. Null values and an empty document
// decode to empty fields.
func LoadEnvConfig(path string) (*EnvConfig, error) {
	if path == "" {
		path = DefaultConfigName
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg EnvConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &cfg, nil
}

// Settings converts the file layout into the resolved settings record.
func (c *EnvConfig) Settings() Settings {
	return Settings{
		Git: GitSettings{
			URL:      c.Inputs.Git.URL,
			Version:  c.Inputs.Git.Version,
			Type:     c.Inputs.Git.Type,
			Token:    c.Inputs.Git.Token,
			Projects: cloneStrings(c.Inputs.Git.Projects),
		},
		Jira: JiraSettings{
			URL:     c.Inputs.Jira.URL,
			Version: c.Inputs.Jira.Version,
			Token:   c.Inputs.Jira.Token,
		},
		Outputs: OutputSettings{
			Type:              c.Outputs.Type,
			DBURL:             c.Outputs.DBURL,
			GitTableName:      c.Outputs.GitTableName,
			JiraTableName:     c.Outputs.JiraTableName,
			LogsGitTableName:  c.Outputs.LogsGitTableName,
			LogsJiraTableName: c.Outputs.LogsJiraTableName,
		},
	}
}
