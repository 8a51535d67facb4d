package gemini

import (
	"strings"

	"github.com/thomas-vilte/evalusense/internal/models"
)

type pricingTable struct {
	InputPricePerMillion  float64
	OutputPricePerMillion float64
}

// https://ai.google.dev/gemini-api/docs/pricing
// Longest names first so "gemini-2.5-flash-lite" is not priced as flash.
var pricing = []struct {
	model string
	table pricingTable
}{
	{"gemini-2.5-flash-lite", pricingTable{InputPricePerMillion: 0.10, OutputPricePerMillion: 0.40}},
	{"gemini-2.5-flash", pricingTable{InputPricePerMillion: 0.30, OutputPricePerMillion: 2.50}},
	{"gemini-2.5-pro", pricingTable{InputPricePerMillion: 1.25, OutputPricePerMillion: 10.00}},
}

// EstimateCost returns the estimated price in USD of one call. Unknown
// models and a nil usage cost 0.
func EstimateCost(model string, usage *models.TokenUsage) float64 {
	if usage == nil {
		return 0
	}

	model = strings.ToLower(model)
	for _, p := range pricing {
		if strings.HasPrefix(model, p.model) {
			inputCost := (float64(usage.InputTokens) / 1_000_000) * p.table.InputPricePerMillion
			outputCost := (float64(usage.OutputTokens) / 1_000_000) * p.table.OutputPricePerMillion
			return inputCost + outputCost
		}
	}
	return 0
}
