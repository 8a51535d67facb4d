package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppError_WithError(t *testing.T) {
	baseErr := errors.New("original error")
	appErr := ErrGitHubTransport.WithError(baseErr)

	if appErr.Err != baseErr {
		t.Errorf("Expected underlying error to be %v, got %v", baseErr, appErr.Err)
	}

	if appErr.Type != TypeVCS {
		t.Errorf("Expected type %s, got %s", TypeVCS, appErr.Type)
	}
}

func TestAppError_WithContext(t *testing.T) {
	appErr := ErrBranchNotFound.WithContext("branch", "alice").WithContext("repo", "demo")

	if appErr.Context["branch"] != "alice" {
		t.Errorf("Expected branch context 'alice', got %v", appErr.Context["branch"])
	}

	if appErr.Context["repo"] != "demo" {
		t.Errorf("Expected repo context 'demo', got %v", appErr.Context["repo"])
	}
}

func TestAppError_Error_Format(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		contains []string
	}{
		{
			name:     "Simple error without underlying error",
			err:      ErrAPIKeyMissing,
			contains: []string{"CONFIGURATION", "Gemini API key is missing"},
		},
		{
			name:     "Error with underlying error",
			err:      ErrGitHubRateLimit.WithError(errors.New("403 API rate limit exceeded")),
			contains: []string{"VCS", "rate limit", "403"},
		},
		{
			name: "Error with operation context",
			err: ErrRepositoryNotFound.WithError(errors.New("404 Not Found")).
				WithContext("operation", "list branches"),
			contains: []string{"VCS", "repository not found", "404 Not Found", "[list branches]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errMsg := tt.err.Error()
			for _, substr := range tt.contains {
				if !contains(errMsg, substr) {
					t.Errorf("Expected error message to contain %q, got: %s", substr, errMsg)
				}
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	baseErr := errors.New("base error")
	appErr := ErrAIGeneration.WithError(baseErr)

	unwrapped := appErr.Unwrap()
	if unwrapped != baseErr {
		t.Errorf("Expected unwrapped error to be %v, got %v", baseErr, unwrapped)
	}

	if !errors.Is(appErr, baseErr) {
		t.Error("errors.Is should work with AppError")
	}
}

func TestAppError_Is(t *testing.T) {
	wrapped := fmt.Errorf("building prompt: %w", ErrBranchNotFound.WithContext("branch", "bob"))

	if !errors.Is(wrapped, ErrBranchNotFound) {
		t.Error("errors.Is should match a predefined error after WithContext")
	}
	if errors.Is(wrapped, ErrRepositoryNotFound) {
		t.Error("errors.Is should not match a different predefined error")
	}
}

func TestIsType(t *testing.T) {
	if !IsType(fmt.Errorf("wrapped: %w", ErrGitHubTokenInvalid), TypeVCS) {
		t.Error("expected VCS type")
	}
	if IsType(ErrGeminiQuotaExceeded, TypeVCS) {
		t.Error("AI error should not be VCS type")
	}
	if IsType(errors.New("plain"), TypeAI) {
		t.Error("plain error has no type")
	}
}

func TestAppError_ChainedContext(t *testing.T) {
	appErr := ErrGitHubTransport.
		WithError(errors.New("connection reset")).
		WithContext("operation", "get tree").
		WithContext("sha", "abc123")

	if appErr.Context["sha"] != "abc123" {
		t.Errorf("Expected sha context, got %v", appErr.Context["sha"])
	}

	if ErrGitHubTransport.Context != nil {
		t.Error("Original error should not have context")
	}
}

func contains(s, substr string) bool {
	return len(s) >= len(substr) && (s == substr || len(substr) == 0 ||
		(len(s) > 0 && (s[:len(substr)] == substr || contains(s[1:], substr))))
}
