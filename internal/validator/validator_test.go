package validator

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkodi/url-alias/internal/model"
)

func TestValidatePath(t *testing.T) {
	v := NewAliasValidator().WithReservedSegments("api")

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"simple", "/Home", false},
		{"nested", "/Home/Contact-Us", false},
		{"unicode", "/Café/Über-uns", false},
		{"empty", "", true},
		{"no leading slash", "Home", true},
		{"root only", "/", true},
		{"empty segment", "/Home//Contact", true},
		{"trailing slash", "/Home/", true},
		{"dot segment", "/Home/../etc", true},
		{"control char", "/Home\x00", true},
		{"reserved", "/API/aliases", true},
		{"too long", "/" + strings.Repeat("a", 1024), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := v.ValidatePath(tt.path)
			if tt.wantErr {
				require.NotNil(t, appErr)
				assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)
			} else {
				assert.Nil(t, appErr)
			}
		})
	}
}

func TestValidateLanguageCode(t *testing.T) {
	v := NewAliasValidator()

	assert.Nil(t, v.ValidateLanguageCode(""))
	assert.Nil(t, v.ValidateLanguageCode("eng-GB"))
	assert.NotNil(t, v.ValidateLanguageCode("en"))
	assert.NotNil(t, v.ValidateLanguageCode("ENG-gb"))
}

func TestValidateRequest(t *testing.T) {
	v := NewAliasValidator()

	tests := []struct {
		name    string
		req     any
		wantErr string
	}{
		{
			name: "location alias",
			req:  model.CreateAliasRequest{LocationID: 2, Path: "/home", LanguageCode: "eng-GB"},
		},
		{
			name: "resource alias",
			req:  model.CreateAliasRequest{Resource: "module:content/search", Path: "/search", LanguageCode: "eng-GB"},
		},
		{
			name:    "neither target",
			req:     model.CreateAliasRequest{Path: "/home", LanguageCode: "eng-GB"},
			wantErr: "is required",
		},
		{
			name:    "both targets",
			req:     model.CreateAliasRequest{LocationID: 2, Resource: "eznode:2", Path: "/home", LanguageCode: "eng-GB"},
			wantErr: "cannot be combined",
		},
		{
			name:    "bad language",
			req:     model.CreateAliasRequest{LocationID: 2, Path: "/home", LanguageCode: "english"},
			wantErr: "language code",
		},
		{
			name: "content",
			req:  model.CreateContentRequest{MainLanguageCode: "eng-GB", Names: map[string]string{"eng-GB": "Home"}},
		},
		{
			name:    "content without names",
			req:     model.CreateContentRequest{MainLanguageCode: "eng-GB"},
			wantErr: "Names",
		},
		{
			name:    "content with bad name language",
			req:     model.CreateContentRequest{MainLanguageCode: "eng-GB", Names: map[string]string{"en": "Home"}},
			wantErr: "language code",
		},
		{
			name: "publish without names",
			req:  model.PublishContentRequest{},
		},
		{
			name:    "location without parent",
			req:     model.CreateLocationRequest{ContentID: 1},
			wantErr: "ParentLocationID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := v.ValidateRequest(tt.req)
			if tt.wantErr == "" {
				assert.Nil(t, appErr)
				return
			}
			require.NotNil(t, appErr)
			assert.Equal(t, "VALIDATION_FAILED", appErr.Code)
			assert.Contains(t, appErr.Details, tt.wantErr)
		})
	}
}
