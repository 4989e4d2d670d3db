// Package response writes the service's JSON wire formats.
//
// The API predates this implementation and clients depend on its exact
// shapes: successful reads return the bare record or array, failures
// return {"success":false,"message":...}, and rejected writes return a
// plain-text sentence. The helpers here reproduce each shape.
package response

import (
	"encoding/json"
	"net/http"
)

type outcome struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// JSON writes v as a JSON body with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// OK writes v with a 200.
func OK(w http.ResponseWriter, v interface{}) {
	JSON(w, http.StatusOK, v)
}

// Text writes a plain-text message, used for rejected writes
// ("The order cannot be created!" and friends).
func Text(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(message)) //nolint:errcheck
}

// Failure writes {"success":false} with an optional message.
func Failure(w http.ResponseWriter, status int, message string) {
	JSON(w, status, outcome{Success: false, Message: message})
}

// Deleted writes the 200 {"success":true,"message":...} body used by
// the delete endpoints.
func Deleted(w http.ResponseWriter, message string) {
	JSON(w, http.StatusOK, outcome{Success: true, Message: message})
}

// ServerError writes the generic 500 body.
func ServerError(w http.ResponseWriter, err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	Failure(w, http.StatusInternalServerError, msg)
}

// Unauthorized writes a 401.
func Unauthorized(w http.ResponseWriter) {
	Failure(w, http.StatusUnauthorized, "Unauthorized")
}
