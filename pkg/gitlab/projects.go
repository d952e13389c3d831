package gitlab

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dataextractor/data-extractor/pkg/config"
	"github.com/dataextractor/data-extractor/pkg/logger"
	"github.com/dataextractor/data-extractor/pkg/project"
	"github.com/xanzy/go-gitlab"
)

const projectsPerPage = 100

// Repository lists GitLab projects for the token in the git settings.
// The client is created and authenticated on first use, then reused.
type Repository struct {
	settings config.GitSettings
	client   *gitlab.Client
}

func NewRepository(settings config.GitSettings) *Repository {
	return &Repository{settings: settings}
}

// Client returns the authenticated client, authenticating at most once.
func (r *Repository) Client(ctx context.Context) (*gitlab.Client, error) {
	if r.client != nil {
		return r.client, nil
	}

	opts := []gitlab.ClientOptionFunc{gitlab.WithoutRetries()}
	if r.settings.URL != "" {
		opts = append(opts, gitlab.WithBaseURL(r.settings.URL))
	}
	client, err := gitlab.NewClient(r.settings.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitLab client: %w", err)
	}

	user, _, err := client.Users.CurrentUser(gitlab.WithContext(ctx))
	if err != nil {
		return nil, classifyError("authenticate to GitLab", err, true)
	}
	logger.Debug("Authenticated to GitLab", "url", client.BaseURL().String(), "user", user.Username)

	r.client = client
	return client, nil
}

// GetAllProjects lists every project visible to the user.
func (r *Repository) GetAllProjects(ctx context.Context) ([]project.ProjectInfo, error) {
	client, err := r.Client(ctx)
	if err != nil {
		return nil, err
	}

	projects, err := ListAllProjects(ctx, client)
	if err != nil {
		return nil, err
	}

	ret := make([]project.ProjectInfo, 0, len(projects))
	for _, p := range projects {
		ret = append(ret, toProjectInfo(p))
	}
	return ret, nil
}

// ListAllProjects walks every page of the project list in server order.
func ListAllProjects(ctx context.Context, client *gitlab.Client) ([]*gitlab.Project, error) {
	opts := &gitlab.ListProjectsOptions{
		ListOptions: gitlab.ListOptions{
			PerPage: projectsPerPage,
			Page:    1,
		},
	}

	var all []*gitlab.Project
	for {
		projects, resp, err := client.Projects.ListProjects(opts, gitlab.WithContext(ctx))
		if err != nil {
			return nil, classifyError("list GitLab projects", err, false)
		}
		all = append(all, projects...)
		logger.Debug("Fetched GitLab projects page", "page", opts.Page, "count", len(projects))

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}

func toProjectInfo(p *gitlab.Project) project.ProjectInfo {
	return project.ProjectInfo{
		ID:                p.ID,
		Name:              p.Name,
		PathWithNamespace: p.PathWithNamespace,
		HTTPURL:           p.HTTPURLToRepo,
		AccessLevel:       accessLevel(p.Permissions),
	}
}

// accessLevel prefers a direct project grant over one inherited from the
// group. No grant at all is nil, not zero.
func accessLevel(perms *gitlab.Permissions) *project.AccessLevel {
	if perms == nil {
		return nil
	}
	if perms.ProjectAccess != nil {
		return project.Level(project.AccessLevel(perms.ProjectAccess.AccessLevel))
	}
	if perms.GroupAccess != nil {
		return project.Level(project.AccessLevel(perms.GroupAccess.AccessLevel))
	}
	return nil
}

// classifyError maps a rejected credential to project.ErrAuthentication and
// everything else to project.ErrTransport. A 403 only counts as a rejected
// credential on the authentication call itself.
func classifyError(op string, err error, authenticating bool) error {
	var errResp *gitlab.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		code := errResp.Response.StatusCode
		if code == http.StatusUnauthorized || (authenticating && code == http.StatusForbidden) {
			return fmt.Errorf("failed to %s: %w: %w", op, project.ErrAuthentication, err)
		}
	}
	return fmt.Errorf("failed to %s: %w: %w", op, project.ErrTransport, err)
}
