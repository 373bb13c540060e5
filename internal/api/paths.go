package api

// GJSON paths for the fields read from backend responses
const (
	PathError = "error"

	// POST /load
	PathTotalFilesFound = "total_files_found"
	PathChunksCreated   = "chunks_created"
	PathChunksInserted  = "chunks_inserted"
	PathBooksLoaded     = "books_loaded"
	PathBooksSkipped    = "books_skipped"

	// POST /ask
	PathAnswer = "answer"

	// GET /books
	PathBooks = "books"
)
