// Package response writes property service responses. Successful bodies are
// plain JSON envelopes; failures carry a single "message" field holding a
// string, or an object of per-field errors for rejected payloads.
package response

import (
	"encoding/json"
	"net/http"
)

// Message is the body of an error response.
type Message struct {
	Message any `json:"message"`
}

// JSON writes v as JSON with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Encoding errors are ignored as headers are already sent (best effort)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes v with 200 status.
func OK(w http.ResponseWriter, v any) {
	JSON(w, http.StatusOK, v)
}

// Created writes v with 201 status.
func Created(w http.ResponseWriter, v any) {
	JSON(w, http.StatusCreated, v)
}

// NoContent writes an empty 204 response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Fail writes an error response with a string message.
func Fail(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Message{Message: message})
}

// BadRequest writes a 400 error response.
func BadRequest(w http.ResponseWriter, message string) {
	Fail(w, http.StatusBadRequest, message)
}

// Unprocessable writes a 422 error response listing the problems per field.
func Unprocessable(w http.ResponseWriter, fields map[string][]string) {
	JSON(w, http.StatusUnprocessableEntity, Message{Message: fields})
}

// Unauthorized writes a 401 error response.
func Unauthorized(w http.ResponseWriter, message string) {
	Fail(w, http.StatusUnauthorized, message)
}

// NotFound writes a 404 error response.
func NotFound(w http.ResponseWriter, message string) {
	Fail(w, http.StatusNotFound, message)
}

// MethodNotAllowed writes a 405 error response.
func MethodNotAllowed(w http.ResponseWriter, method string) {
	Fail(w, http.StatusMethodNotAllowed, "Method "+method+" is not supported for this endpoint")
}

// InternalError writes a 500 error response.
func InternalError(w http.ResponseWriter, _ error) {
	// The cause is logged by the caller and not exposed to clients
	Fail(w, http.StatusInternalServerError, "Internal server error")
}
