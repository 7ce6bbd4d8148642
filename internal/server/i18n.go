package server

import (
	"net/http"
	"slices"
	"strings"

	"golang.org/x/text/language"

	"github.com/playperu/hotseat/internal/hotseat"
)

// langParam overrides Accept-Language when present.
const langParam = "lang"

// requestLanguages returns the caller's preferred languages, most preferred
// first.
func requestLanguages(r *http.Request) []language.Tag {
	if v := strings.TrimSpace(r.URL.Query().Get(langParam)); v != "" {
		if tag, err := language.Parse(v); err == nil {
			return []language.Tag{tag}
		}
	}
	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			return tags
		}
	}
	return []language.Tag{language.Make(hotseat.DefaultLocale)}
}

// localizedName picks the pack name that best matches prefs.
func localizedName(pack hotseat.QuestionPack, prefs []language.Tag) string {
	locales := make([]string, 0, len(pack.Names))
	for k := range pack.Names {
		locales = append(locales, k)
	}
	if len(locales) == 0 {
		return pack.Name(hotseat.DefaultLocale)
	}
	// The matcher falls back to the first supported tag.
	slices.SortFunc(locales, func(a, b string) int {
		switch {
		case a == hotseat.DefaultLocale:
			return -1
		case b == hotseat.DefaultLocale:
			return 1
		default:
			return strings.Compare(a, b)
		}
	})

	supported := make([]language.Tag, 0, len(locales))
	for _, l := range locales {
		supported = append(supported, language.Make(l))
	}
	_, idx, conf := language.NewMatcher(supported).Match(prefs...)
	if conf == language.No {
		return pack.Name(hotseat.DefaultLocale)
	}
	return pack.Names[locales[idx]]
}
