package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	domainErrors "github.com/thomas-vilte/evalusense/internal/errors"
)

type Config struct {
	Username         string   `json:"username"`
	GitHubToken      string   `json:"github_token,omitempty"`
	GeminiAPIKey     string   `json:"gemini_api_key,omitempty"`
	Model            Model    `json:"model"`
	Language         string   `json:"language"`
	SourceExtensions []string `json:"source_extensions"`
	UseBase64        bool     `json:"use_base64"`
	CacheBackend     string   `json:"cache_backend"`
	CachePath        string   `json:"cache_path,omitempty"`
	PathFile         string   `json:"path_file"`
}

const (
	CacheBackendFile   = "file"
	CacheBackendSQLite = "sqlite"

	configDirName  = ".evalusense"
	configFileName = "config.json"

	EnvGitHubToken  = "GITHUB_TOKEN"
	EnvGeminiAPIKey = "GEMINI_API_KEY"
)

var defaultSourceExtensions = []string{".java"}

// Keys lists the names accepted by Set, in display order.
var Keys = []string{
	"username",
	"github_token",
	"gemini_api_key",
	"model",
	"language",
	"source_extensions",
	"use_base64",
	"cache_backend",
	"cache_path",
}

// LoadConfig reads path when it names a .json file, otherwise
// <path>/.evalusense/config.json. A missing file is created with defaults.
func LoadConfig(path string) (*Config, error) {
	var configPath string

	if filepath.Ext(path) == ".json" {
		configPath = path
	} else {
		if path == "" {
			return nil, domainErrors.ErrInvalidConfig.
				WithContext("reason", "home directory is not set")
		}
		configDir := filepath.Join(path, configDirName)
		configPath = filepath.Join(configDir, configFileName)

		if err := os.MkdirAll(configDir, 0755); err != nil {
			return nil, fmt.Errorf("error creating config directory: %w", err)
		}
	}

	if _, err := os.Stat(configPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return createDefaultConfig(configPath)
		}
		return nil, fmt.Errorf("error checking config file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, domainErrors.ErrInvalidConfig.
			WithError(err).
			WithContext("path", configPath)
	}

	config.PathFile = configPath
	applyDefaults(&config)

	if err := validateConfig(&config); err != nil {
		return nil, domainErrors.ErrInvalidConfig.
			WithError(err).
			WithContext("path", configPath)
	}

	return &config, nil
}

func Default(path string) *Config {
	config := &Config{PathFile: path}
	applyDefaults(config)
	return config
}

func createDefaultConfig(path string) (*Config, error) {
	config := Default(path)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("error creating config directory: %w", err)
	}

	if err := write(config); err != nil {
		return nil, err
	}

	return config, nil
}

func SaveConfig(config *Config) error {
	if err := validateConfig(config); err != nil {
		return domainErrors.ErrInvalidConfig.WithError(err)
	}

	if config.PathFile == "" {
		return domainErrors.ErrInvalidConfig.
			WithContext("reason", "config file path is not set")
	}

	return write(config)
}

func write(config *Config) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}

	// the file holds tokens
	if err := os.WriteFile(config.PathFile, data, 0600); err != nil {
		return fmt.Errorf("error saving config: %w", err)
	}

	return nil
}

func applyDefaults(config *Config) {
	if config.Language == "" {
		config.Language = DefaultLang
	}
	if config.Model == "" {
		config.Model = DefaultModel()
	}
	if len(config.SourceExtensions) == 0 {
		config.SourceExtensions = append([]string(nil), defaultSourceExtensions...)
	}
	if config.CacheBackend == "" {
		config.CacheBackend = CacheBackendFile
	}
}

func validateConfig(config *Config) error {
	if config.Language == "" {
		return errors.New("language cannot be empty")
	}
	if !IsSupportedLang(config.Language) {
		return fmt.Errorf("unsupported language: %s", config.Language)
	}

	if config.Model != "" && !IsSupportedModel(config.Model) {
		return fmt.Errorf("unsupported model: %s", config.Model)
	}

	if len(config.SourceExtensions) == 0 {
		return errors.New("source_extensions cannot be empty")
	}
	for _, ext := range config.SourceExtensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("invalid source extension %q: must start with a dot", ext)
		}
	}

	switch config.CacheBackend {
	case CacheBackendFile, CacheBackendSQLite:
	default:
		return fmt.Errorf("unsupported cache backend: %s", config.CacheBackend)
	}

	return nil
}

// Set assigns a configuration key from its textual form.
func (c *Config) Set(key, value string) error {
	value = strings.TrimSpace(value)

	switch key {
	case "username":
		c.Username = value
	case "github_token":
		c.GitHubToken = value
	case "gemini_api_key":
		c.GeminiAPIKey = value
	case "model":
		c.Model = Model(value)
	case "language":
		c.Language = value
	case "source_extensions":
		c.SourceExtensions = ParseExtensions(value)
	case "use_base64":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return domainErrors.ErrInvalidConfig.
				WithError(err).
				WithContext("key", key)
		}
		c.UseBase64 = b
	case "cache_backend":
		c.CacheBackend = value
	case "cache_path":
		c.CachePath = value
	default:
		return domainErrors.ErrInvalidConfig.
			WithContext("key", key).
			WithSuggestion("Valid keys: " + strings.Join(Keys, ", "))
	}

	if err := validateConfig(c); err != nil {
		return domainErrors.ErrInvalidConfig.
			WithError(err).
			WithContext("key", key)
	}
	return nil
}

// ParseExtensions splits a comma separated list and adds the leading dot
// when it is missing.
func ParseExtensions(value string) []string {
	var exts []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !strings.HasPrefix(part, ".") {
			part = "." + part
		}
		exts = append(exts, part)
	}
	return exts
}

// EffectiveGitHubToken prefers the GITHUB_TOKEN environment variable.
func (c *Config) EffectiveGitHubToken() string {
	if v := os.Getenv(EnvGitHubToken); v != "" {
		return v
	}
	return c.GitHubToken
}

// EffectiveGeminiAPIKey prefers the GEMINI_API_KEY environment variable.
func (c *Config) EffectiveGeminiAPIKey() string {
	if v := os.Getenv(EnvGeminiAPIKey); v != "" {
		return v
	}
	return c.GeminiAPIKey
}

// CacheLocation is the directory of the file store or the database file of
// the sqlite store.
func (c *Config) CacheLocation() string {
	if c.CachePath != "" {
		return c.CachePath
	}
	base := filepath.Dir(c.PathFile)
	if c.CacheBackend == CacheBackendSQLite {
		return filepath.Join(base, "prompts.db")
	}
	return filepath.Join(base, "prompts")
}

// Masked returns a copy with secrets shortened for display.
func (c *Config) Masked() Config {
	cp := *c
	cp.GitHubToken = mask(c.GitHubToken)
	cp.GeminiAPIKey = mask(c.GeminiAPIKey)
	cp.SourceExtensions = append([]string(nil), c.SourceExtensions...)
	return cp
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}
