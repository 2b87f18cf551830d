package alias

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkodi/url-alias/internal/model"
)

func TestResolveParent(t *testing.T) {
	eng := model.URLAlias{ID: 1, Path: "/en", LanguageCodes: []string{"eng-GB"}}
	ger := model.URLAlias{ID: 2, Path: "/de", LanguageCodes: []string{"ger-DE"}}
	gerAlways := model.URLAlias{ID: 3, Path: "/de-always", LanguageCodes: []string{"ger-DE"}, AlwaysAvailable: true}
	fre := model.URLAlias{ID: 4, Path: "/fr", LanguageCodes: []string{"fre-FR"}}

	tests := []struct {
		name       string
		candidates []model.URLAlias
		language   string
		expected   int64
	}{
		{"language match first", []model.URLAlias{ger, gerAlways, eng}, "eng-GB", 1},
		{"language match beats always available", []model.URLAlias{gerAlways, fre}, "fre-FR", 4},
		{"always available fallback", []model.URLAlias{ger, gerAlways, eng}, "fre-FR", 3},
		{"first candidate fallback", []model.URLAlias{ger, fre}, "eng-GB", 2},
		{"first language match in input order", []model.URLAlias{gerAlways, ger}, "ger-DE", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveParent(tt.candidates, tt.language)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got.ID)
		})
	}
}

func TestResolveParentEmpty(t *testing.T) {
	_, err := ResolveParent(nil, "eng-GB")
	require.Error(t, err)
	assert.True(t, ErrResolution.Has(err))
}
