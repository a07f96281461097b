package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestJSON tests the JSON helper function.
func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()

	JSON(w, http.StatusOK, map[string]string{"test": "data"})

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type=application/json, got %s", ct)
	}

	var decoded map[string]string
	if err := json.NewDecoder(w.Body).Decode(&decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if decoded["test"] != "data" {
		t.Errorf("expected test=data, got %v", decoded)
	}
}

// TestErrorHelpers tests that every failure helper writes a message body.
func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name    string
		fn      func(w http.ResponseWriter)
		status  int
		message string
	}{
		{"BadRequest", func(w http.ResponseWriter) { BadRequest(w, "bad") }, http.StatusBadRequest, "bad"},
		{"Unauthorized", func(w http.ResponseWriter) { Unauthorized(w, "who") }, http.StatusUnauthorized, "who"},
		{"NotFound", func(w http.ResponseWriter) { NotFound(w, "gone") }, http.StatusNotFound, "gone"},
		{"MethodNotAllowed", func(w http.ResponseWriter) { MethodNotAllowed(w, "PUT") }, http.StatusMethodNotAllowed, "Method PUT is not supported for this endpoint"},
		{"InternalError", func(w http.ResponseWriter) { InternalError(w, errors.New("boom")) }, http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.fn(w)

			if w.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, w.Code)
			}

			var body struct {
				Message string `json:"message"`
			}
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if body.Message != tt.message {
				t.Errorf("expected message %q, got %q", tt.message, body.Message)
			}
		})
	}
}

// TestUnprocessable tests that field errors are written as an object.
func TestUnprocessable(t *testing.T) {
	w := httptest.NewRecorder()

	Unprocessable(w, map[string][]string{"name": {"Missing data for required field."}})

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected status 422, got %d", w.Code)
	}

	var body struct {
		Message map[string][]string `json:"message"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got := body.Message["name"]; len(got) != 1 {
		t.Errorf("expected one error for name, got %v", got)
	}
}

// TestNoContent tests the NoContent helper function.
func TestNoContent(t *testing.T) {
	w := httptest.NewRecorder()

	NoContent(w)

	if w.Code != http.StatusNoContent {
		t.Errorf("expected status 204, got %d", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", w.Body.String())
	}
}
