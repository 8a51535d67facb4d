package github

import (
	"context"

	"github.com/google/go-github/v80/github"
	"github.com/stretchr/testify/mock"
)

type MockRepoService struct {
	mock.Mock
}

func (m *MockRepoService) ListByUser(ctx context.Context, user string, opts *github.RepositoryListByUserOptions) ([]*github.Repository, *github.Response, error) {
	args := m.Called(ctx, user, opts)
	return args.Get(0).([]*github.Repository), responseArg(args, 1), args.Error(2)
}

func (m *MockRepoService) ListBranches(ctx context.Context, owner, repo string, opts *github.BranchListOptions) ([]*github.Branch, *github.Response, error) {
	args := m.Called(ctx, owner, repo, opts)
	return args.Get(0).([]*github.Branch), responseArg(args, 1), args.Error(2)
}

func (m *MockRepoService) GetBranch(ctx context.Context, owner, repo, branch string, maxRedirects int) (*github.Branch, *github.Response, error) {
	args := m.Called(ctx, owner, repo, branch, maxRedirects)
	var b *github.Branch
	if args.Get(0) != nil {
		b = args.Get(0).(*github.Branch)
	}
	return b, responseArg(args, 1), args.Error(2)
}

func (m *MockRepoService) GetContents(ctx context.Context, owner, repo, path string, opts *github.RepositoryContentGetOptions) (*github.RepositoryContent, []*github.RepositoryContent, *github.Response, error) {
	args := m.Called(ctx, owner, repo, path, opts)
	var file *github.RepositoryContent
	if args.Get(0) != nil {
		file = args.Get(0).(*github.RepositoryContent)
	}
	var dir []*github.RepositoryContent
	if args.Get(1) != nil {
		dir = args.Get(1).([]*github.RepositoryContent)
	}
	return file, dir, responseArg(args, 2), args.Error(3)
}

type MockGitService struct {
	mock.Mock
}

func (m *MockGitService) GetTree(ctx context.Context, owner, repo, sha string, recursive bool) (*github.Tree, *github.Response, error) {
	args := m.Called(ctx, owner, repo, sha, recursive)
	var tree *github.Tree
	if args.Get(0) != nil {
		tree = args.Get(0).(*github.Tree)
	}
	return tree, responseArg(args, 1), args.Error(2)
}

func responseArg(args mock.Arguments, i int) *github.Response {
	if args.Get(i) == nil {
		return nil
	}
	return args.Get(i).(*github.Response)
}
