package github

import (
	"context"

	"github.com/dataextractor/data-extractor/pkg/config"
	"github.com/dataextractor/data-extractor/pkg/logger"
	"github.com/dataextractor/data-extractor/pkg/project"
	"github.com/shurcooL/githubv4"
)

const repositoriesPerPage = 100

// Repository lists GitHub repositories the token's user owns, collaborates
// on or can reach through an organization.
type Repository struct {
	settings config.GitSettings
	client   *Client
}

func NewRepository(settings config.GitSettings) *Repository {
	return &Repository{settings: settings}
}

// Client returns the authenticated client, authenticating at most once.
func (r *Repository) Client(ctx context.Context) (*Client, error) {
	if r.client != nil {
		return r.client, nil
	}

	client, err := NewClientByPAT(r.settings.URL, r.settings.Token)
	if err != nil {
		return nil, err
	}
	login, err := client.Authenticate(ctx)
	if err != nil {
		return nil, err
	}
	logger.Debug("Authenticated to GitHub", "user", login)

	r.client = client
	return client, nil
}

// GetAllProjects lists every repository visible to the user.
func (r *Repository) GetAllProjects(ctx context.Context) ([]project.ProjectInfo, error) {
	client, err := r.Client(ctx)
	if err != nil {
		return nil, err
	}
	return client.ListViewerRepositories(ctx)
}

type repositoryNode struct {
	DatabaseID       githubv4.Int
	Name             githubv4.String
	NameWithOwner    githubv4.String
	URL              githubv4.String
	ViewerPermission githubv4.RepositoryPermission
}

type viewerRepositoriesQuery struct {
	Viewer struct {
		Repositories struct {
			Nodes    []repositoryNode
			PageInfo struct {
				EndCursor   githubv4.String
				HasNextPage bool
			}
		} `graphql:"repositories(first: $first, after: $cursor, ownerAffiliations: [OWNER, COLLABORATOR, ORGANIZATION_MEMBER])"`
	}
}

// ListViewerRepositories walks the viewer's repositories with cursor
// pagination, keeping the order GitHub returns.
func (client *Client) ListViewerRepositories(ctx context.Context) ([]project.ProjectInfo, error) {
	variables := map[string]interface{}{
		"first":  githubv4.Int(repositoriesPerPage),
		"cursor": (*githubv4.String)(nil),
	}

	var ret []project.ProjectInfo
	for page := 1; ; page++ {
		var q viewerRepositoriesQuery
		if err := client.GetV4().Query(ctx, &q, variables); err != nil {
			return nil, classifyError("list GitHub repositories", err, false)
		}
		repos := q.Viewer.Repositories
		for _, node := range repos.Nodes {
			ret = append(ret, toProjectInfo(node))
		}
		logger.Debug("Fetched GitHub repositories page", "page", page, "count", len(repos.Nodes))

		if !repos.PageInfo.HasNextPage {
			break
		}
		variables["cursor"] = githubv4.NewString(repos.PageInfo.EndCursor)
	}
	return ret, nil
}

func toProjectInfo(node repositoryNode) project.ProjectInfo {
	info := project.ProjectInfo{
		ID:                int(node.DatabaseID),
		Name:              string(node.Name),
		PathWithNamespace: string(node.NameWithOwner),
		AccessLevel:       permissionLevel(node.ViewerPermission),
	}
	if node.URL != "" {
		info.HTTPURL = string(node.URL) + ".git"
	}
	return info
}

// permissionLevel maps GitHub repository roles onto the GitLab-style tiers.
func permissionLevel(p githubv4.RepositoryPermission) *project.AccessLevel {
	switch p {
	case githubv4.RepositoryPermissionAdmin:
		return project.Level(project.Owner)
	case githubv4.RepositoryPermissionMaintain:
		return project.Level(project.Maintainer)
	case githubv4.RepositoryPermissionWrite:
		return project.Level(project.Developer)
	case githubv4.RepositoryPermissionTriage:
		return project.Level(project.Reporter)
	case githubv4.RepositoryPermissionRead:
		return project.Level(project.Guest)
	}
	return nil
}
