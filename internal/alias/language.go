package alias

import "github.com/darkodi/url-alias/internal/model"

type languageMode int

const (
	anyLanguage languageMode = iota // no language requested
	oneLanguage                     // a language code was requested
	fellBack                        // requested language matched nothing, filter dropped
)

// languageFilter separates "no language asked for" from "already fell back".
type languageFilter struct {
	mode languageMode
	code string
}

func filterFor(languageCode string) languageFilter {
	if languageCode == "" {
		return languageFilter{mode: anyLanguage}
	}
	return languageFilter{mode: oneLanguage, code: languageCode}
}

func (f languageFilter) matches(a model.URLAlias) bool {
	if f.mode != oneLanguage {
		return true
	}
	return a.HasLanguage(f.code)
}

// fallback returns the filter to retry with, false when there is nothing left to relax
func (f languageFilter) fallback() (languageFilter, bool) {
	if f.mode != oneLanguage {
		return f, false
	}
	return languageFilter{mode: fellBack}, true
}
