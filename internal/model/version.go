package model

// Version constants for the model schema and library.
const (
	// FormatVersion is the model schema version.
	FormatVersion = "1"

	// LibraryVersion is the pir library version.
	LibraryVersion = "0.1.0"
)
