package apierror_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/publishkit/pkg/apierror"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestWrite(t *testing.T) {
	t.Parallel()

	t.Run("module disabled body", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		apierror.Write(w, apierror.ModuleDisabled("articles"))

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
		assert.JSONEq(t,
			`{"code":"module_disabled","message":"The module articles is currently disabled for this tenant.","details":{}}`,
			w.Body.String())
	})

	t.Run("unknown error becomes 500", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		apierror.Write(w, errors.New("boom"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		body := decode(t, w)
		assert.Equal(t, "internal_server_error", body["code"])
		assert.Equal(t, map[string]any{}, body["details"])
	})

	t.Run("wrapped api error keeps its status", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		apierror.Write(w, errors.Join(errors.New("context"), apierror.ErrNotFound))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "not_found", decode(t, w)["code"])
	})

	t.Run("nil details still rendered as object", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		apierror.Write(w, &apierror.Error{Status: http.StatusConflict, Code: "conflict", Message: "x"})

		assert.Equal(t, map[string]any{}, decode(t, w)["details"])
	})
}

func TestWithDetails(t *testing.T) {
	t.Parallel()

	e := apierror.ErrBadRequest.WithDetails(map[string]any{"field": "name"})
	assert.Equal(t, "name", e.Details["field"])
	assert.Empty(t, apierror.ErrBadRequest.Details, "shared error must not be mutated")
}

func TestValidation(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	apierror.Write(w, apierror.Validation(map[string]string{"primary_color": "must be a hex colour"}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "validation_error", body["code"])
	assert.Equal(t, "must be a hex colour", body["details"].(map[string]any)["primary_color"])
}
