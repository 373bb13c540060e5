// Package models contains data types and constants shared by the bookchat client and server.
package models

// Endpoint paths exposed by the bookchat backend
const (
	EndpointLoad  = "/load"
	EndpointAsk   = "/ask"
	EndpointBooks = "/books"
)

// DefaultServerURL matches the port the backend listens on by default
const DefaultServerURL = "http://localhost:8090"

// Identifiers of transient placeholder messages
const (
	PlaceholderLoading  = "loading"
	PlaceholderThinking = "thinking"
)

// Fixed texts shown by the chat panel
const (
	TextLoadingBooks   = "Loading books..."
	TextThinking       = "Thinking..."
	TextLoadSucceeded  = "Books loaded successfully."
	TextLoadFailed     = "Error loading books."
	TextAskFailed      = "Error getting answer."
	TextBooksHeader    = "Books already loaded:"
	TextNoBooks        = "No books currently stored in database."
	TextBooksFailed    = "Error checking stored books."
	TextBookBullet     = "• "
	TextAnswerNotFound = "I could not find this information in the loaded books."
)

// DefaultHeaders returns the headers sent with every backend request
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Accept":     "application/json",
		"User-Agent": "bookchat/" + Version,
	}
}

// JSONHeaders returns the headers for requests that carry a JSON body
func JSONHeaders() map[string]string {
	h := DefaultHeaders()
	h["Content-Type"] = "application/json"
	return h
}

// Version is the client version reported to the backend (set at build time)
var Version = "0.1.0"
