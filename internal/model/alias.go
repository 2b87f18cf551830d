package model

import (
	"fmt"
	"slices"
)

// Type distinguishes what an alias points at.
type Type int

const (
	TypeLocation Type = iota // destination is a location id
	TypeResource             // destination is an internal resource string
)

func (t Type) String() string {
	switch t {
	case TypeLocation:
		return "location"
	case TypeResource:
		return "resource"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// MarshalText implements encoding.TextMarshaler
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *Type) UnmarshalText(text []byte) error {
	switch string(text) {
	case "location":
		*t = TypeLocation
	case "resource":
		*t = TypeResource
	default:
		return fmt.Errorf("unknown alias type %q", text)
	}
	return nil
}

// URLAlias maps a public path to a location or resource
type URLAlias struct {
	ID              int64    `json:"id"`
	Type            Type     `json:"type"`
	LocationID      int64    `json:"location_id,omitempty"` // set for TypeLocation
	Resource        string   `json:"resource,omitempty"`    // set for TypeResource, "module:" stripped
	Path            string   `json:"path"`                  // full public path, leading slash
	LanguageCodes   []string `json:"language_codes"`
	AlwaysAvailable bool     `json:"always_available"`
	IsCustom        bool     `json:"is_custom"`  // user created
	IsHistory       bool     `json:"is_history"` // superseded, kept as a redirect
	Forward         bool     `json:"forward"`    // redirect instead of serving
}

// HasLanguage reports whether the alias is valid for languageCode.
func (a URLAlias) HasLanguage(languageCode string) bool {
	return slices.Contains(a.LanguageCodes, languageCode)
}

// PointsTo reports whether a is a location alias for locationID.
func (a URLAlias) PointsTo(locationID int64) bool {
	return a.Type == TypeLocation && a.LocationID == locationID
}

// Historized returns a copy of the alias marked as history. The id is kept.
func (a URLAlias) Historized() URLAlias {
	h := a.Clone()
	h.IsHistory = true
	return h
}

// Clone returns a deep copy
func (a URLAlias) Clone() URLAlias {
	a.LanguageCodes = slices.Clone(a.LanguageCodes)
	return a
}

// AliasFixture is the initial state an alias index is loaded from
type AliasFixture struct {
	Aliases []URLAlias
	NextID  int64
}

// CreateAliasRequest is the API request body for POST /api/aliases.
// Exactly one of LocationID or Resource is expected.
type CreateAliasRequest struct {
	LocationID      int64  `json:"location_id" validate:"required_without=Resource,excluded_with=Resource"`
	Resource        string `json:"resource" validate:"required_without=LocationID,excluded_with=LocationID"`
	Path            string `json:"path" validate:"required,startswith=/,max=1024"`
	LanguageCode    string `json:"language_code" validate:"required,langcode"`
	Forward         bool   `json:"forward"`
	AlwaysAvailable bool   `json:"always_available"`
}

// AliasListResponse wraps alias lists returned by the API
type AliasListResponse struct {
	Aliases []URLAlias `json:"aliases"`
	Count   int        `json:"count"`
}
