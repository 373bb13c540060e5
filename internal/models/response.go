package models

// BookLoadResult is the body returned by POST /load. Either Error is set,
// or the counters describe the ingestion that took place.
type BookLoadResult struct {
	TotalFilesFound int      `json:"total_files_found"`
	ChunksCreated   int      `json:"chunks_created"`
	ChunksInserted  int      `json:"chunks_inserted,omitempty"`
	BooksLoaded     []string `json:"books_loaded,omitempty"`
	BooksSkipped    []string `json:"books_skipped,omitempty"`
	Error           string   `json:"error,omitempty"`
}

// Failed reports whether the backend reported an ingestion error
func (r *BookLoadResult) Failed() bool {
	return r.Error != ""
}

// BookListResult is the body returned by GET /books
type BookListResult struct {
	Books []string `json:"books"`
}

// AskRequest is the body sent to POST /ask
type AskRequest struct {
	Question string `json:"question"`
}

// AskResponse is the body returned by POST /ask
type AskResponse struct {
	Answer string `json:"answer"`
}

// ErrorResponse is the body returned by the backend for rejected requests
type ErrorResponse struct {
	Error string `json:"error"`
}
