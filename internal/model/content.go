package model

// RootLocationID is the tree root. It never carries aliases.
const RootLocationID int64 = 1

// VersionStatus is the lifecycle state of a content version
type VersionStatus int

const (
	StatusDraft     VersionStatus = 0
	StatusPublished VersionStatus = 1
	StatusArchived  VersionStatus = 3
)

// Location is a node in the content tree
type Location struct {
	ID               int64 `json:"id"`
	ParentLocationID int64 `json:"parent_location_id"`
	ContentID        int64 `json:"content_id"`
}

// ContentInfo holds version independent content metadata
type ContentInfo struct {
	ID               int64  `json:"id"`
	MainLanguageCode string `json:"main_language_code"`
	AlwaysAvailable  bool   `json:"always_available"`
}

// VersionInfo describes the current version of a content object
type VersionInfo struct {
	VersionNo   int               `json:"version_no"`
	Status      VersionStatus     `json:"status"`
	Names       map[string]string `json:"names"` // language code -> name
	ContentInfo ContentInfo       `json:"content_info"`
}

// Content is a content object as seen through its current version
type Content struct {
	VersionInfo VersionInfo `json:"version_info"`
}

// CreateContentRequest is the API request body for POST /api/contents
type CreateContentRequest struct {
	MainLanguageCode string            `json:"main_language_code" validate:"required,langcode"`
	AlwaysAvailable  bool              `json:"always_available"`
	Names            map[string]string `json:"names" validate:"required,min=1,dive,keys,langcode,endkeys,required"`
}

// PublishContentRequest is the API request body for POST /api/contents/{id}/publish.
// Names replace the current names when given.
type PublishContentRequest struct {
	Names map[string]string `json:"names" validate:"omitempty,dive,keys,langcode,endkeys,required"`
}

// CreateLocationRequest is the API request body for POST /api/locations
type CreateLocationRequest struct {
	ParentLocationID int64 `json:"parent_location_id" validate:"required,gt=0"`
	ContentID        int64 `json:"content_id" validate:"required,gt=0"`
}

// MoveLocationRequest is the API request body for PUT /api/locations/{id}/parent
type MoveLocationRequest struct {
	ParentLocationID int64 `json:"parent_location_id" validate:"required,gt=0"`
}
