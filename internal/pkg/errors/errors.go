package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrGenerationFormat marks model output that the strict parsers
	// could not turn into structured records.
	ErrGenerationFormat = errors.New("generation format error")
	// ErrNoText marks an upload whose file yielded no usable text.
	ErrNoText = errors.New("could not extract text from document")
	// ErrDocumentNotProcessed rejects AI features on a document whose
	// text extraction has not completed.
	ErrDocumentNotProcessed = errors.New("Document not yet processed")
)
