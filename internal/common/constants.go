package common

const (
	// Concurrency constants
	MaxConcurrencyLimit = 8

	// File operation constants
	DefaultFilePermissions = 0755
	OutputFilePermissions  = 0644

	// History constants
	DefaultHistoryLimit = 20

	// InMemoryDatabase is the sqlite path for a throwaway in-memory store
	InMemoryDatabase = ":memory:"

	// Validation modes understood by the PDF engine
	ValidationRelaxed = "relaxed"
	ValidationStrict  = "strict"
)
