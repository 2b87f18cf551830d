package alias

import "github.com/darkodi/url-alias/internal/model"

// ResolveParent picks the alias a child path is composed under.
//
// The first candidate valid for languageCode wins, then the first always
// available one, then simply the first candidate.
func ResolveParent(candidates []model.URLAlias, languageCode string) (model.URLAlias, error) {
	if len(candidates) == 0 {
		return model.URLAlias{}, ErrResolution.New("no parent aliases found")
	}

	for _, c := range candidates {
		if c.HasLanguage(languageCode) {
			return c, nil
		}
	}

	for _, c := range candidates {
		if c.AlwaysAvailable {
			return c, nil
		}
	}

	return candidates[0], nil
}
