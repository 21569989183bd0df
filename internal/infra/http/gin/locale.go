package ginserver

import (
	gin "github.com/gin-gonic/gin"
	"golang.org/x/text/language"

	"fitryne/internal/domain/nutrition"
)

// supportedLocales is ordered so that index 0 is the fallback.
var supportedLocales = []nutrition.Locale{nutrition.LocaleArabic, nutrition.LocaleEnglish}

var localeMatcher = language.NewMatcher([]language.Tag{language.Arabic, language.English})

// requestLocale picks the response language: the lang query parameter, then
// Accept-Language, then Arabic.
func requestLocale(c *gin.Context) nutrition.Locale {
	if l, ok := nutrition.ParseLocale(c.Query("lang")); ok {
		return l
	}
	header := c.GetHeader("Accept-Language")
	if header == "" {
		return nutrition.DefaultLocale
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return nutrition.DefaultLocale
	}
	_, idx, conf := localeMatcher.Match(tags...)
	if conf == language.No || idx < 0 || idx >= len(supportedLocales) {
		return nutrition.DefaultLocale
	}
	return supportedLocales[idx]
}
