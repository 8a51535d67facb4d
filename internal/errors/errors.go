package errors

import (
	"errors"
	"fmt"
)

// ErrorType defines the category of the error
type ErrorType string

const (
	TypeConfiguration ErrorType = "CONFIGURATION"
	TypeAI            ErrorType = "AI"
	TypeVCS           ErrorType = "VCS"
	TypeCache         ErrorType = "CACHE"
	TypeInternal      ErrorType = "INTERNAL"
)

// AppError represents a domain-level error with a type and an underlying error
type AppError struct {
	Type       ErrorType
	Message    string
	Context    map[string]interface{}
	Err        error
	Suggestion string
}

func (e *AppError) Error() string {
	var msg string
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	} else {
		msg = fmt.Sprintf("%s: %s", e.Type, e.Message)
	}

	if e.Context != nil {
		if op, ok := e.Context["operation"].(string); ok && op != "" {
			msg += fmt.Sprintf(" [%s]", op)
		}
	}

	return msg
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches two AppErrors by type and message, so predefined errors work
// with errors.Is after WithError/WithContext copies.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Message == t.Message
}

// WithError creates a new AppError with an underlying error
func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    e.Context,
		Err:        err,
		Suggestion: e.Suggestion,
	}
}

// WithContext creates a new AppError with additional context
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	ctx := make(map[string]interface{})
	for k, v := range e.Context {
		ctx[k] = v
	}
	ctx[key] = value
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    ctx,
		Err:        e.Err,
		Suggestion: e.Suggestion,
	}
}

func (e *AppError) WithSuggestion(suggestion string) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    e.Context,
		Err:        e.Err,
		Suggestion: suggestion,
	}
}

// NewAppError creates a new AppError
func NewAppError(t ErrorType, msg string, err error) *AppError {
	return &AppError{
		Type:    t,
		Message: msg,
		Err:     err,
	}
}

// IsType reports whether any AppError in err's chain has the given type.
func IsType(err error, t ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == t
	}
	return false
}

// Configuration errors
var (
	ErrAPIKeyMissing = NewAppError(TypeConfiguration, "Gemini API key is missing", nil).
				WithSuggestion("Pass --gemini-key, export GEMINI_API_KEY or run: evalusense config set gemini_api_key <key>")

	ErrUsernameMissing = NewAppError(TypeConfiguration, "GitHub username is missing", nil).
				WithSuggestion("Run: evalusense config set username <user>")

	ErrRepositoryMissing = NewAppError(TypeConfiguration, "No repository selected", nil).
				WithSuggestion("Pass the repository name as the first argument")

	ErrInvalidConfig = NewAppError(TypeConfiguration, "Configuration is not valid", nil).
				WithSuggestion("Check the file with: evalusense config show")
)

// GitHub/VCS errors. Every one of them means "repository fetch failed".
var (
	ErrRepositoryNotFound = NewAppError(TypeVCS, "repository not found", nil).
				WithSuggestion("Check the username and repository name")

	ErrBranchNotFound = NewAppError(TypeVCS, "branch not found", nil).
				WithSuggestion("List the available branches: evalusense branches <repo>")

	ErrFileNotFound = NewAppError(TypeVCS, "file not found at ref", nil)

	ErrGitHubTokenInvalid = NewAppError(TypeVCS, "GitHub token is invalid or expired", nil).
				WithSuggestion("Generate a new token at: https://github.com/settings/tokens\nThen run: evalusense config set github_token <token>")

	ErrGitHubInsufficientPerms = NewAppError(TypeVCS, "GitHub token has insufficient permissions", nil).
					WithSuggestion("Token needs read access to the repository contents")

	ErrGitHubRateLimit = NewAppError(TypeVCS, "GitHub API rate limit exceeded", nil).
				WithSuggestion("Wait a few minutes or configure a personal access token for higher limits")

	ErrGitHubTransport = NewAppError(TypeVCS, "GitHub request failed", nil).
				WithSuggestion("Check your network connection and try again")

	ErrDecodeContent = NewAppError(TypeVCS, "file content is not valid base64", nil)
)

// AI errors. Every one of them means "generation failed".
var (
	ErrGeminiUninitialized = NewAppError(TypeAI, "Gemini client is not initialized", nil).
				WithSuggestion("Provide your Gemini API key first")

	ErrGeminiAPIKeyInvalid = NewAppError(TypeAI, "Gemini API key is invalid", nil).
				WithSuggestion("Get a valid API key at: https://aistudio.google.com/app/apikey")

	ErrGeminiQuotaExceeded = NewAppError(TypeAI, "Gemini API quota exceeded", nil).
				WithSuggestion("Wait for quota to reset or upgrade your Gemini plan")

	ErrAIGeneration = NewAppError(TypeAI, "AI generation failed", nil).
			WithSuggestion("Try again or check your API key configuration")

	ErrInvalidAIOutput = NewAppError(TypeAI, "invalid AI output format", nil)

	ErrExecutionInProgress = NewAppError(TypeAI, "prompt is already running for this branch", nil).
				WithSuggestion("Wait for the current execution to finish")
)

// Cache / internal errors
var (
	ErrRecordNotFound = NewAppError(TypeCache, "no prompt record for branch", nil).
				WithSuggestion("Build the prompts first: evalusense branches <repo>")

	ErrCacheWrite = NewAppError(TypeCache, "failed to save prompt cache", nil)

	ErrCacheOpen = NewAppError(TypeCache, "failed to open prompt cache", nil)

	ErrPromptRender = NewAppError(TypeInternal, "failed to render prompt", nil)
)
