package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullConfig = `
inputs:
  git_url: https://original-gitlab.com
  git_version: "14.0"
  git_type: gitlab
  git_token: original-token
  git_projects:
    - original-project
  jira_url: https://original-jira.com
  jira_version: "8.0"
  jira_token: original-jira-token

outputs:
  type: postgres
  db_url: postgresql://original/db
  git_table_name: original_git
  jira_table_name: original_jira
  logs_git_table_name: original_git_logs
  logs_jira_table_name: original_jira_logs
`

var fullSettings = Settings{
	Git: GitSettings{
		URL:      "https://original-gitlab.com",
		Version:  "14.0",
		Type:     "gitlab",
		Token:    "original-token",
		Projects: []string{"original-project"},
	},
	Jira: JiraSettings{
		URL:     "https://original-jira.com",
		Version: "8.0",
		Token:   "original-jira-token",
	},
	Outputs: OutputSettings{
		Type:              "postgres",
		DBURL:             "postgresql://original/db",
		GitTableName:      "original_git",
		JiraTableName:     "original_jira",
		LogsGitTableName:  "original_git_logs",
		LogsJiraTableName: "original_jira_logs",
	},
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, fullConfig)

	settings, err := Load(path, nil, LoadOptions{})

	require.NoError(t, err)
	if diff := cmp.Diff(fullSettings, settings); diff != "" {
		t.Fatalf("settings mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_EachOverrideWins(t *testing.T) {
	tests := []struct {
		name      string
		overrides Overrides
		mutate    func(s *Settings)
	}{
		{"git url", Overrides{GitURL: String("https://cli-gitlab.com")}, func(s *Settings) { s.Git.URL = "https://cli-gitlab.com" }},
		{"git version", Overrides{GitVersion: String("16.0")}, func(s *Settings) { s.Git.Version = "16.0" }},
		{"git type", Overrides{GitType: String("github")}, func(s *Settings) { s.Git.Type = "github" }},
		{"git token", Overrides{GitToken: String("cli-token")}, func(s *Settings) { s.Git.Token = "cli-token" }},
		{"git projects", Overrides{GitProjects: Strings([]string{"cli-project1", "cli-project2"})}, func(s *Settings) {
			s.Git.Projects = []string{"cli-project1", "cli-project2"}
		}},
		{"jira url", Overrides{JiraURL: String("https://cli-jira.com")}, func(s *Settings) { s.Jira.URL = "https://cli-jira.com" }},
		{"jira version", Overrides{JiraVersion: String("10.0")}, func(s *Settings) { s.Jira.Version = "10.0" }},
		{"jira token", Overrides{JiraToken: String("cli-jira-token")}, func(s *Settings) { s.Jira.Token = "cli-jira-token" }},
		{"output type", Overrides{OutputType: String("mysql")}, func(s *Settings) { s.Outputs.Type = "mysql" }},
		{"db url", Overrides{DBURL: String("mysql://cli/db")}, func(s *Settings) { s.Outputs.DBURL = "mysql://cli/db" }},
		{"git table", Overrides{GitTableName: String("cli_git")}, func(s *Settings) { s.Outputs.GitTableName = "cli_git" }},
		{"jira table", Overrides{JiraTableName: String("cli_jira")}, func(s *Settings) { s.Outputs.JiraTableName = "cli_jira" }},
		{"git logs table", Overrides{LogsGitTableName: String("cli_git_logs")}, func(s *Settings) { s.Outputs.LogsGitTableName = "cli_git_logs" }},
		{"jira logs table", Overrides{LogsJiraTableName: String("cli_jira_logs")}, func(s *Settings) { s.Outputs.LogsJiraTableName = "cli_jira_logs" }},
		{"empty string clears token", Overrides{GitToken: String("")}, func(s *Settings) { s.Git.Token = "" }},
		{"empty list clears projects", Overrides{GitProjects: Strings(nil)}, func(s *Settings) { s.Git.Projects = []string{} }},
	}

	path := writeConfig(t, fullConfig)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			overrides := tt.overrides

			settings, err := Load(path, &overrides, LoadOptions{})
			require.NoError(t, err)

			want, err := Load(path, nil, LoadOptions{})
			require.NoError(t, err)
			tt.mutate(&want)

			if diff := cmp.Diff(want, settings); diff != "" {
				t.Fatalf("settings mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoad_PartialOverridesKeepFileValues(t *testing.T) {
	path := writeConfig(t, fullConfig)

	settings, err := Load(path, &Overrides{
		GitURL:     String("https://cli-gitlab.com"),
		OutputType: String("mysql"),
	}, LoadOptions{})

	require.NoError(t, err)
	assert.Equal(t, "https://cli-gitlab.com", settings.Git.URL)
	assert.Equal(t, "mysql", settings.Outputs.Type)
	assert.Equal(t, "original-token", settings.Git.Token)
	assert.Equal(t, "https://original-jira.com", settings.Jira.URL)
	assert.Equal(t, "postgresql://original/db", settings.Outputs.DBURL)
}

func TestLoad_EmptyProjectsOverrideIsNotNil(t *testing.T) {
	path := writeConfig(t, fullConfig)
	empty := []string{}

	settings, err := Load(path, &Overrides{GitProjects: &empty}, LoadOptions{})

	require.NoError(t, err)
	require.NotNil(t, settings.Git.Projects)
	assert.Empty(t, settings.Git.Projects)
}

func TestLoad_OverrideSliceIsCopied(t *testing.T) {
	projects := []string{"a", "b"}

	settings, err := Load("", &Overrides{GitProjects: &projects}, LoadOptions{NoEnv: true})
	require.NoError(t, err)

	projects[0] = "changed"
	assert.Equal(t, []string{"a", "b"}, settings.Git.Projects)
}

func TestLoad_NoEnvIgnoresExistingFile(t *testing.T) {
	path := writeConfig(t, fullConfig)

	settings, err := Load(path, nil, LoadOptions{NoEnv: true})

	require.NoError(t, err)
	if diff := cmp.Diff(Settings{}, settings); diff != "" {
		t.Fatalf("expected empty settings (-want +got):\n%s", diff)
	}
}

func TestLoad_NoEnvWithOverrides(t *testing.T) {
	path := writeConfig(t, fullConfig)

	settings, err := Load(path, &Overrides{
		GitURL:   String("https://cli-gitlab.com"),
		GitToken: String("cli-token"),
	}, LoadOptions{NoEnv: true})

	require.NoError(t, err)
	assert.Equal(t, "https://cli-gitlab.com", settings.Git.URL)
	assert.Equal(t, "cli-token", settings.Git.Token)
	assert.Equal(t, "", settings.Outputs.Type)
	assert.Equal(t, "", settings.Jira.URL)
}

func TestLoad_NoEnvIgnoresMissingRequiredFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.yaml")

	_, err := Load(missing, nil, LoadOptions{NoEnv: true, Required: true})

	require.NoError(t, err)
}

func TestLoad_MissingFileFallsBackToEmpty(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.yaml")

	settings, err := Load(missing, &Overrides{GitToken: String("cli-token")}, LoadOptions{})

	require.NoError(t, err)
	assert.Equal(t, Settings{Git: GitSettings{Token: "cli-token"}}, settings)
}

func TestLoad_MissingRequiredFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.yaml")

	_, err := Load(missing, nil, LoadOptions{Required: true})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfigNotFound))
	assert.Contains(t, err.Error(), missing)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := writeConfig(t, "inputs: [unclosed\n")

	_, err := Load(path, nil, LoadOptions{})

	require.Error(t, err)
	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, path, parseErr.Path)
}

func TestLoad_WrongShape(t *testing.T) {
	path := writeConfig(t, "inputs: just-a-string\n")

	_, err := Load(path, nil, LoadOptions{})

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
}

func TestLoad_DefaultPath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigName), []byte(fullConfig), 0600))
	t.Chdir(dir)

	settings, err := Load("", nil, LoadOptions{})

	require.NoError(t, err)
	assert.Equal(t, "https://original-gitlab.com", settings.Git.URL)
}

func TestLoadEnvConfig_EmptyFile(t *testing.T) {
	path := writeConfig(t, "")

	cfg, err := LoadEnvConfig(path)

	require.NoError(t, err)
	assert.Equal(t, EnvConfig{}, *cfg)
}

func TestLoadEnvConfig_NullValues(t *testing.T) {
	path := writeConfig(t, `
inputs:
  git_url: ~
  git_version: null
  git_projects: null
  unknown_key: ignored
outputs:
`)

	cfg, err := LoadEnvConfig(path)

	require.NoError(t, err)
	assert.Equal(t, "", cfg.Inputs.Git.URL)
	assert.Equal(t, "", cfg.Inputs.Git.Version)
	assert.Empty(t, cfg.Inputs.Git.Projects)
	assert.Equal(t, Outputs{}, cfg.Outputs)
}

func TestLoadEnvConfig_MissingFile(t *testing.T) {
	_, err := LoadEnvConfig(filepath.Join(t.TempDir(), "non_existent.yaml"))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfigNotFound)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestEnvConfig_SettingsCopiesProjects(t *testing.T) {
	cfg := EnvConfig{Inputs: Inputs{Git: GitInputs{Projects: []string{"p1"}}}}

	settings := cfg.Settings()
	cfg.Inputs.Git.Projects[0] = "changed"

	assert.Equal(t, []string{"p1"}, settings.Git.Projects)
}
