// Package config handles configuration loading, parsing, and validation
// from environment variables (prefix SPRACHWEG_) and an optional YAML file.
// It provides type-safe access to the server, database, auth, progress,
// scheduler and tracing settings while keeping configuration details separate
// from business logic.
package config
