package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/go-github/v80/github"
	domainErrors "github.com/thomas-vilte/evalusense/internal/errors"
	"github.com/thomas-vilte/evalusense/internal/logger"
	"github.com/thomas-vilte/evalusense/internal/models"
	"github.com/thomas-vilte/evalusense/internal/vcs"
	"golang.org/x/oauth2"
)

var _ vcs.RepositoryClient = (*GitHubClient)(nil)

const (
	perPage = 100
	// maxRedirects follows a renamed branch once.
	maxRedirects = 1
)

type RepositoriesService interface {
	ListByUser(ctx context.Context, user string, opts *github.RepositoryListByUserOptions) ([]*github.Repository, *github.Response, error)
	ListBranches(ctx context.Context, owner, repo string, opts *github.BranchListOptions) ([]*github.Branch, *github.Response, error)
	GetBranch(ctx context.Context, owner, repo, branch string, maxRedirects int) (*github.Branch, *github.Response, error)
	GetContents(ctx context.Context, owner, repo, path string, opts *github.RepositoryContentGetOptions) (*github.RepositoryContent, []*github.RepositoryContent, *github.Response, error)
}

type GitService interface {
	GetTree(ctx context.Context, owner, repo, sha string, recursive bool) (*github.Tree, *github.Response, error)
}

type GitHubClient struct {
	repoService RepositoriesService
	gitService  GitService
	owner       string
	token       string
}

// NewGitHubClient reads the repositories of owner. An empty token uses the
// anonymous rate limit.
func NewGitHubClient(owner, token string) *GitHubClient {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}

	client := github.NewClient(httpClient)
	return &GitHubClient{
		repoService: client.Repositories,
		gitService:  client.Git,
		owner:       owner,
		token:       token,
	}
}

func NewGitHubClientWithServices(repoService RepositoriesService, gitService GitService, owner string) *GitHubClient {
	return &GitHubClient{
		repoService: repoService,
		gitService:  gitService,
		owner:       owner,
	}
}

// NewProvider adapts NewGitHubClient to vcs.RepositoryClientProvider.
func NewProvider() vcs.RepositoryClientProvider {
	return func(username, token string) vcs.RepositoryClient {
		return NewGitHubClient(username, token)
	}
}

func (ghc *GitHubClient) ListRepositories(ctx context.Context) ([]models.Repository, error) {
	log := logger.FromContext(ctx)

	opts := &github.RepositoryListByUserOptions{
		Sort:        "full_name",
		Direction:   "asc",
		ListOptions: github.ListOptions{PerPage: perPage},
	}

	var repos []models.Repository
	for {
		page, resp, err := ghc.repoService.ListByUser(ctx, ghc.owner, opts)
		if err != nil {
			log.Error("failed to list github repositories",
				"error", err,
				"owner", ghc.owner)
			return nil, mapGitHubError(err, resp, domainErrors.ErrRepositoryNotFound).
				WithContext("operation", "list repositories").
				WithContext("owner", ghc.owner)
		}

		for _, r := range page {
			repos = append(repos, models.Repository{
				Name:     r.GetName(),
				FullName: r.GetFullName(),
			})
		}

		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	log.Debug("github repositories listed",
		"owner", ghc.owner,
		"count", len(repos))

	return repos, nil
}

func (ghc *GitHubClient) ListBranches(ctx context.Context, repo string) ([]models.BranchRef, error) {
	log := logger.FromContext(ctx)

	opts := &github.BranchListOptions{
		ListOptions: github.ListOptions{PerPage: perPage},
	}

	var branches []models.BranchRef
	for {
		page, resp, err := ghc.repoService.ListBranches(ctx, ghc.owner, repo, opts)
		if err != nil {
			log.Error("failed to list github branches",
				"error", err,
				"owner", ghc.owner,
				"repo", repo)
			return nil, mapGitHubError(err, resp, domainErrors.ErrRepositoryNotFound).
				WithContext("operation", "list branches").
				WithContext("repo", fmt.Sprintf("%s/%s", ghc.owner, repo))
		}

		for _, b := range page {
			branches = append(branches, toBranchRef(b))
		}

		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	log.Debug("github branches listed",
		"repo", repo,
		"count", len(branches))

	return branches, nil
}

func (ghc *GitHubClient) GetBranch(ctx context.Context, repo, branch string) (models.BranchRef, error) {
	b, resp, err := ghc.repoService.GetBranch(ctx, ghc.owner, repo, branch, maxRedirects)
	if err != nil {
		return models.BranchRef{}, mapGitHubError(err, resp, domainErrors.ErrBranchNotFound).
			WithContext("operation", "get branch").
			WithContext("repo", fmt.Sprintf("%s/%s", ghc.owner, repo)).
			WithContext("branch", branch)
	}
	if b == nil {
		return models.BranchRef{}, domainErrors.ErrBranchNotFound.
			WithContext("operation", "get branch").
			WithContext("branch", branch)
	}

	return toBranchRef(b), nil
}

func (ghc *GitHubClient) GetTree(ctx context.Context, repo, sha string) (models.Tree, error) {
	tree, resp, err := ghc.gitService.GetTree(ctx, ghc.owner, repo, sha, true)
	if err != nil {
		return models.Tree{}, mapGitHubError(err, resp, domainErrors.ErrRepositoryNotFound).
			WithContext("operation", "get tree").
			WithContext("repo", fmt.Sprintf("%s/%s", ghc.owner, repo)).
			WithContext("sha", sha)
	}
	if tree == nil {
		return models.Tree{}, domainErrors.ErrRepositoryNotFound.
			WithContext("operation", "get tree").
			WithContext("sha", sha).
			WithContext("reason", "empty tree response")
	}

	result := models.Tree{
		SHA:       tree.GetSHA(),
		Truncated: tree.GetTruncated(),
		Nodes:     make([]models.TreeNode, 0, len(tree.Entries)),
	}
	for _, e := range tree.Entries {
		result.Nodes = append(result.Nodes, models.TreeNode{
			Path: e.GetPath(),
			Mode: e.GetMode(),
			Type: e.GetType(),
			SHA:  e.GetSHA(),
			Size: e.Size,
		})
	}

	return result, nil
}

func (ghc *GitHubClient) GetFileContent(ctx context.Context, repo, path, ref string) (models.FileContent, error) {
	file, _, resp, err := ghc.repoService.GetContents(ctx, ghc.owner, repo, path, &github.RepositoryContentGetOptions{Ref: ref})
	if err != nil {
		return models.FileContent{}, mapGitHubError(err, resp, domainErrors.ErrFileNotFound).
			WithContext("operation", "get file content").
			WithContext("repo", fmt.Sprintf("%s/%s", ghc.owner, repo)).
			WithContext("path", path).
			WithContext("ref", ref)
	}
	if file == nil {
		return models.FileContent{}, domainErrors.ErrFileNotFound.
			WithContext("operation", "get file content").
			WithContext("path", path).
			WithContext("reason", "path is a directory")
	}

	content := models.FileContent{
		Name:     file.GetName(),
		Path:     file.GetPath(),
		SHA:      file.GetSHA(),
		Size:     file.GetSize(),
		Encoding: file.GetEncoding(),
	}
	if file.Content != nil {
		content.Content = *file.Content
	}

	return content, nil
}

func toBranchRef(b *github.Branch) models.BranchRef {
	return models.BranchRef{
		Name:      b.GetName(),
		CommitSHA: b.GetCommit().GetSHA(),
		CommitURL: b.GetCommit().GetURL(),
		Protected: b.GetProtected(),
	}
}

// mapGitHubError turns a go-github failure into one of the VCS AppErrors;
// notFound is returned for 404 responses.
func mapGitHubError(err error, resp *github.Response, notFound *domainErrors.AppError) *domainErrors.AppError {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return domainErrors.ErrGitHubRateLimit.
			WithError(err).
			WithContext("reset", rateErr.Rate.Reset.String())
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		appErr := domainErrors.ErrGitHubRateLimit.WithError(err)
		if abuseErr.RetryAfter != nil {
			appErr = appErr.WithContext("retry_after", abuseErr.RetryAfter.String())
		}
		return appErr
	}

	httpResp := responseOf(err, resp)
	if httpResp == nil {
		return domainErrors.ErrGitHubTransport.WithError(err)
	}

	switch httpResp.StatusCode {
	case http.StatusUnauthorized:
		return domainErrors.ErrGitHubTokenInvalid.WithError(err)
	case http.StatusTooManyRequests:
		return domainErrors.ErrGitHubRateLimit.
			WithError(err).
			WithContext("retry_after", httpResp.Header.Get("Retry-After"))
	case http.StatusForbidden:
		if httpResp.Header.Get("X-RateLimit-Remaining") == "0" {
			return domainErrors.ErrGitHubRateLimit.WithError(err)
		}
		return domainErrors.ErrGitHubInsufficientPerms.WithError(err)
	case http.StatusNotFound:
		return notFound.WithError(err)
	default:
		return domainErrors.ErrGitHubTransport.
			WithError(err).
			WithContext("status_code", httpResp.StatusCode)
	}
}

func responseOf(err error, resp *github.Response) *http.Response {
	if resp != nil && resp.Response != nil {
		return resp.Response
	}
	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		return errResp.Response
	}
	return nil
}
