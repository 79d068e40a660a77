package service

import "errors"

// Errors mapped to HTTP status codes by the API layer.
var (
	// ErrNoFile is returned when the upload request carries no file part.
	ErrNoFile = errors.New("no file provided")

	// ErrInvalidFile is returned for files that are not PDFs.
	ErrInvalidFile = errors.New("only PDF files are supported")

	// ErrDuplicateFilename is returned when a document with the same
	// filename already exists or is being uploaded right now.
	ErrDuplicateFilename = errors.New("a document with this filename already exists")

	// ErrEmptyExtraction is returned when neither the text layer nor OCR
	// produced any text.
	ErrEmptyExtraction = errors.New("could not extract any text from the PDF")

	// ErrDocumentNotFound is returned when no chunks carry the requested
	// document ID.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrNotConfigured is returned when an operation needs a component
	// (embedding model, vector store) that was not set up.
	ErrNotConfigured = errors.New("service is not fully configured")
)
