package vcs

import (
	"context"

	"github.com/thomas-vilte/evalusense/internal/models"
)

// RepositoryClient reads the repositories of a single hosting-API user.
// Every method yields one result or fails with a TypeVCS AppError; there
// are no retries.
type RepositoryClient interface {
	// ListRepositories lists the user's repositories. The order is whatever the
	// server returns; callers sort with SortRepositories.
	ListRepositories(ctx context.Context) ([]models.Repository, error)
	// ListBranches lists every branch of the repository.
	ListBranches(ctx context.Context, repo string) ([]models.BranchRef, error)
	// GetBranch resolves a branch and its head commit.
	GetBranch(ctx context.Context, repo, branch string) (models.BranchRef, error)
	// GetTree lists the tree of a commit recursively.
	GetTree(ctx context.Context, repo, sha string) (models.Tree, error)
	// GetFileContent fetches one file at a ref, base64-encoded.
	GetFileContent(ctx context.Context, repo, path, ref string) (models.FileContent, error)
}

// RepositoryClientProvider builds a client for a username and an optional
// bearer token.
type RepositoryClientProvider func(username, token string) RepositoryClient
