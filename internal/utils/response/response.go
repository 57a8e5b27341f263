// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Every API handler sends JSON back to the client. Rather than repeating
// the same three lines (set header, set status, encode JSON) in every
// handler, we centralise them here, together with the fixed messages
// clients match on.
package response

import (
	"encoding/json"
	"net/http"
)

// Message is the body of every non-data response:
//
//	{ "message": "Data not found" }
type Message struct {
	Message string `json:"message"`
}

// Messages clients see. Use these instead of raw string literals so a
// typo is caught by the compiler.
const (
	MsgAdded       = "Data added successfully"
	MsgUpdated     = "Data updated successfully"
	MsgDeleted     = "Data deleted successfully"
	MsgNotFound    = "Data not found"
	MsgIncomplete  = "Incomplete data"
	MsgInvalidJSON = "Invalid JSON"
	MsgInternal    = "Internal server error"
)

// WriteJSON writes a JSON-encoded response with the given HTTP status code.
//
// IMPORTANT ORDER: Header() → WriteHeader() → body writes.
// Once WriteHeader is called (or the first Write), headers are locked.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteMessage writes {"message": msg} with the given status.
func WriteMessage(w http.ResponseWriter, status int, msg string) error {
	return WriteJSON(w, status, Message{Message: msg})
}
