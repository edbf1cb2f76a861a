package utils

import (
	"strings"

	"spa-booking-backend/models"

	"golang.org/x/text/language"
)

var (
	supportedTags = []language.Tag{language.English, language.Vietnamese}
	langMatcher   = language.NewMatcher(supportedTags)
)

// ResolveLang picks a supported language from an explicit choice, then the
// Accept-Language header, then the default.
func ResolveLang(explicit, acceptLanguage string) string {
	if explicit != "" {
		tag, err := language.Parse(explicit)
		if err == nil {
			if l := baseOf(tag); isSupported(l) {
				return l
			}
		}
	}
	if acceptLanguage != "" {
		tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
		if err == nil && len(tags) > 0 {
			_, idx, conf := langMatcher.Match(tags...)
			if conf != language.No {
				return baseOf(supportedTags[idx])
			}
		}
	}
	return models.DefaultLang
}

func baseOf(tag language.Tag) string {
	base, _ := tag.Base()
	return strings.ToLower(base.String())
}

func isSupported(lang string) bool {
	for _, l := range models.SupportedLangs() {
		if l == lang {
			return true
		}
	}
	return false
}
