package config

import "log/slog"

const (
	LangPT = "pt"
	LangEN = "en"

	DefaultLang = LangPT
)

func IsSupportedLang(lang string) bool {
	return lang == LangPT || lang == LangEN
}

func GetLocaleConfig(lang string) string {
	if IsSupportedLang(lang) {
		return lang
	}
	slog.Warn("unsupported language, using default", "language", lang, "default", DefaultLang)
	return DefaultLang
}
