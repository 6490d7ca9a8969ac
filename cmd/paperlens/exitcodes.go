package main

// Exit codes.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (missing config, invalid settings)
	ExitDataError   = 3 // Corpus artifacts missing or embedding provider unavailable
	ExitNotFound    = 4 // Paper not found in corpus or store
)
