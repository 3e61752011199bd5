package transcribe

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

const defaultLanguage = "nl"

// GoogleLocale expands a bare language code to a region-qualified locale,
// e.g. "nl" to "nl-NL" and "en" to "en-US". Codes that already carry a
// region are returned unchanged.
func GoogleLocale(lang string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		lang = defaultLanguage
	}
	if strings.Contains(lang, "-") {
		return lang
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return lang
	}
	base, _ := tag.Base()
	region, conf := tag.Region()
	if conf == language.No {
		return lang
	}
	return base.String() + "-" + region.String()
}

// AssemblyAILanguage strips the region from a locale, e.g. "nl-NL" to "nl".
func AssemblyAILanguage(lang string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return defaultLanguage
	}
	base, _, _ := strings.Cut(lang, "-")
	return base
}

// languageName returns the English name of a language code for prompts,
// falling back to the code itself.
func languageName(lang string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		lang = defaultLanguage
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return lang
	}
	name := display.English.Languages().Name(tag)
	if name == "" {
		return lang
	}
	return name
}
