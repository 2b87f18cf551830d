package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkodi/url-alias/internal/alias"
	"github.com/darkodi/url-alias/internal/repository"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"alias not found", alias.ErrNotFound.New("no alias"), http.StatusNotFound, "ALIAS_NOT_FOUND"},
		{"record not found", repository.ErrNotFound.New("location 9"), http.StatusNotFound, "NOT_FOUND"},
		{"duplicate", alias.ErrDuplicatePath.New("/a"), http.StatusBadRequest, "DUPLICATE_PATH"},
		{"invalid resource", alias.ErrInvalidResource.New("x"), http.StatusBadRequest, "INVALID_RESOURCE"},
		{"invalid argument", alias.ErrInvalidArgument.New("x"), http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"invalid move", repository.ErrInvalidMove.New("x"), http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"resolution", alias.ErrResolution.New("x"), http.StatusConflict, "UNRESOLVABLE"},
		{"unsupported", alias.ErrUnsupported.New("x"), http.StatusNotImplemented, "NOT_IMPLEMENTED"},
		{"database", repository.Error.New("boom"), http.StatusInternalServerError, "DATABASE_ERROR"},
		{"wrapped app error", fmt.Errorf("handler: %w", BadRequest("bad")), http.StatusBadRequest, "BAD_REQUEST"},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := FromError(tt.err)
			require.NotNil(t, appErr)
			assert.Equal(t, tt.status, appErr.StatusCode)
			assert.Equal(t, tt.code, appErr.Code)
		})
	}

	assert.Nil(t, FromError(nil))
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	DuplicatePath("/Home").WriteJSON(rec)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "DUPLICATE_PATH", body.Error.Code)
	assert.Equal(t, "/Home", body.Error.Details)
}
