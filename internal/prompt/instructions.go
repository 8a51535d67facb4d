package prompt

import (
	"context"
	"os"
	"strings"

	domainErrors "github.com/thomas-vilte/evalusense/internal/errors"
	"github.com/thomas-vilte/evalusense/internal/logger"
	"github.com/thomas-vilte/evalusense/internal/models"
	"gopkg.in/yaml.v3"
)

type instructionsFile struct {
	Assessment          string `yaml:"assessment"`
	Criteria            string `yaml:"criteria"`
	ExampleOutput       string `yaml:"example_output"`
	ReferenceAssessment string `yaml:"reference_assessment"`
}

// LoadInstructions reads grading instructions from a YAML file:
//
//	assessment: Lista 3 - herança
//	criteria: |
//	  - compila
//	  - usa interfaces
//	example_output: ...
//	reference_assessment: ...
//
// Missing keys stay empty and are rendered as not provided.
func LoadInstructions(ctx context.Context, path string) (models.GradingInstructions, error) {
	log := logger.FromContext(ctx)

	data, err := os.ReadFile(path)
	if err != nil {
		return models.GradingInstructions{}, domainErrors.NewAppError(domainErrors.TypeConfiguration, "failed to read instructions file", err).
			WithContext("path", path)
	}

	var file instructionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		log.Error("failed to parse instructions file",
			"error", err,
			"path", path)
		return models.GradingInstructions{}, domainErrors.NewAppError(domainErrors.TypeConfiguration, "instructions file is not valid YAML", err).
			WithContext("path", path).
			WithSuggestion("Use the keys assessment, criteria, example_output and reference_assessment")
	}

	log.Debug("instructions loaded", "path", path)

	return models.GradingInstructions{
		Assessment:          strings.TrimSpace(file.Assessment),
		Criteria:            strings.TrimSpace(file.Criteria),
		ExampleOutput:       strings.TrimSpace(file.ExampleOutput),
		ReferenceAssessment: strings.TrimSpace(file.ReferenceAssessment),
	}, nil
}

// Merge returns base with every non-empty field of override applied.
func Merge(base, override models.GradingInstructions) models.GradingInstructions {
	if override.Assessment != "" {
		base.Assessment = override.Assessment
	}
	if override.Criteria != "" {
		base.Criteria = override.Criteria
	}
	if override.ExampleOutput != "" {
		base.ExampleOutput = override.ExampleOutput
	}
	if override.ReferenceAssessment != "" {
		base.ReferenceAssessment = override.ReferenceAssessment
	}
	return base
}
