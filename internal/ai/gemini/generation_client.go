package gemini

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/thomas-vilte/evalusense/internal/ai"
	domainErrors "github.com/thomas-vilte/evalusense/internal/errors"
	"github.com/thomas-vilte/evalusense/internal/logger"
	"google.golang.org/genai"
)

var _ ai.Generator = (*GenerationClient)(nil)

// DefaultModel is used when the configuration does not name one.
const DefaultModel = "gemini-2.5-flash"

// modelsService is the subset of *genai.Models the client needs.
type modelsService interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type modelsFactory func(ctx context.Context, apiKey string) (modelsService, error)

// GenerationClient submits evaluation prompts to Gemini.
type GenerationClient struct {
	mu        sync.RWMutex
	models    modelsService
	apiKey    string
	model     string
	newModels modelsFactory
}

func NewGenerationClient(model string) *GenerationClient {
	return newGenerationClient(model, newGenAIModels)
}

func newGenerationClient(model string, factory modelsFactory) *GenerationClient {
	if model == "" {
		model = DefaultModel
	}
	return &GenerationClient{
		model:     model,
		newModels: factory,
	}
}

func newGenAIModels(ctx context.Context, apiKey string) (modelsService, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return client.Models, nil
}

// Initialize creates the underlying client. Calling it again with the same
// credential keeps the existing client.
func (c *GenerationClient) Initialize(ctx context.Context, credential string) error {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return domainErrors.ErrAPIKeyMissing
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.models != nil && c.apiKey == credential {
		return nil
	}

	models, err := c.newModels(ctx, credential)
	if err != nil {
		if isInvalidKey(strings.ToLower(err.Error())) {
			return domainErrors.ErrGeminiAPIKeyInvalid.WithError(err)
		}
		return domainErrors.NewAppError(domainErrors.TypeAI, "error creating AI client", err)
	}

	c.models = models
	c.apiKey = credential
	return nil
}

// GenerateContent submits prompt with temperature zero.
func (c *GenerationClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	c.mu.RLock()
	models := c.models
	c.mu.RUnlock()

	if models == nil {
		return "", domainErrors.ErrGeminiUninitialized
	}

	log := logger.FromContext(ctx)
	start := time.Now()

	log.Debug("calling gemini API",
		"model", c.model,
		"prompt_length", len(prompt))

	resp, err := models.GenerateContent(ctx, c.model, genai.Text(prompt), GetGenerateConfig())
	if err != nil {
		log.Error("gemini API call failed",
			"error", err,
			"model", c.model,
			"duration_ms", time.Since(start).Milliseconds())
		return "", classifyError(err)
	}

	if usage := extractUsage(resp); usage != nil {
		log.Info("gemini response received",
			"model", c.model,
			"input_tokens", usage.InputTokens,
			"output_tokens", usage.OutputTokens,
			"total", usage.TotalTokens,
			"estimated_cost_usd", EstimateCost(c.model, usage),
			"duration_ms", time.Since(start).Milliseconds())
	}

	return formatResponse(resp), nil
}

// Model returns the configured model name.
func (c *GenerationClient) Model() string {
	return c.model
}

func classifyError(err error) error {
	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "quota") ||
		strings.Contains(errMsg, "rate limit") ||
		strings.Contains(errMsg, "resource exhausted") ||
		strings.Contains(errMsg, "resource_exhausted") ||
		strings.Contains(errMsg, "429") {
		return domainErrors.ErrGeminiQuotaExceeded.WithError(err)
	}

	if isInvalidKey(errMsg) {
		return domainErrors.ErrGeminiAPIKeyInvalid.WithError(err)
	}

	return domainErrors.ErrAIGeneration.WithError(err)
}

func isInvalidKey(errMsg string) bool {
	return strings.Contains(errMsg, "api key") ||
		strings.Contains(errMsg, "api_key") ||
		strings.Contains(errMsg, "unauthorized") ||
		strings.Contains(errMsg, "unauthenticated") ||
		strings.Contains(errMsg, "permission denied") ||
		strings.Contains(errMsg, "authentication")
}
