package services

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/thomas-vilte/evalusense/internal/models"
	"github.com/thomas-vilte/evalusense/internal/vcs"
)

type (
	MockRepositoryClient struct {
		mock.Mock
	}

	MockGenerator struct {
		mock.Mock
	}

	MockStore struct {
		mock.Mock
	}
)

// Provider returns a RepositoryClientProvider that always yields m.
func (m *MockRepositoryClient) Provider() vcs.RepositoryClientProvider {
	return func(username, token string) vcs.RepositoryClient {
		return m
	}
}

func (m *MockRepositoryClient) ListRepositories(ctx context.Context) ([]models.Repository, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Repository), args.Error(1)
}

func (m *MockRepositoryClient) ListBranches(ctx context.Context, repo string) ([]models.BranchRef, error) {
	args := m.Called(ctx, repo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BranchRef), args.Error(1)
}

func (m *MockRepositoryClient) GetBranch(ctx context.Context, repo, branch string) (models.BranchRef, error) {
	args := m.Called(ctx, repo, branch)
	return args.Get(0).(models.BranchRef), args.Error(1)
}

func (m *MockRepositoryClient) GetTree(ctx context.Context, repo, sha string) (models.Tree, error) {
	args := m.Called(ctx, repo, sha)
	return args.Get(0).(models.Tree), args.Error(1)
}

func (m *MockRepositoryClient) GetFileContent(ctx context.Context, repo, path, ref string) (models.FileContent, error) {
	args := m.Called(ctx, repo, path, ref)
	return args.Get(0).(models.FileContent), args.Error(1)
}

func (m *MockGenerator) Initialize(ctx context.Context, credential string) error {
	args := m.Called(ctx, credential)
	return args.Error(0)
}

func (m *MockGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *MockStore) Load(username, repo string) []models.BranchPromptRecord {
	args := m.Called(username, repo)
	if args.Get(0) == nil {
		return []models.BranchPromptRecord{}
	}
	return args.Get(0).([]models.BranchPromptRecord)
}

func (m *MockStore) Save(username, repo string, records []models.BranchPromptRecord) error {
	args := m.Called(username, repo, records)
	return args.Error(0)
}

func (m *MockStore) Clean() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
