package config

type Model string

const (
	ModelGeminiV25Pro       Model = "gemini-2.5-pro"
	ModelGeminiV25Flash     Model = "gemini-2.5-flash"
	ModelGeminiV25FlashLite Model = "gemini-2.5-flash-lite"
)

func SupportedModels() []Model {
	return []Model{
		ModelGeminiV25Flash,
		ModelGeminiV25Pro,
		ModelGeminiV25FlashLite,
	}
}

func IsSupportedModel(m Model) bool {
	for _, s := range SupportedModels() {
		if s == m {
			return true
		}
	}
	return false
}

func DefaultModel() Model {
	return SupportedModels()[0]
}
