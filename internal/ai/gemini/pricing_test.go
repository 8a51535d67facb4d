package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/thomas-vilte/evalusense/internal/models"
)

func TestEstimateCost(t *testing.T) {
	million := &models.TokenUsage{InputTokens: 1_000_000, OutputTokens: 1_000_000}

	tests := []struct {
		name  string
		model string
		usage *models.TokenUsage
		want  float64
	}{
		{"flash", "gemini-2.5-flash", million, 0.30 + 2.50},
		{"flash lite is not priced as flash", "gemini-2.5-flash-lite", million, 0.10 + 0.40},
		{"pro case insensitive", "GEMINI-2.5-PRO", million, 1.25 + 10.00},
		{"versioned name", "gemini-2.5-pro-001", million, 1.25 + 10.00},
		{"unknown model", "gpt-4o", million, 0},
		{"nil usage", "gemini-2.5-flash", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			got := EstimateCost(tt.model, tt.usage)

			// Assert
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}
