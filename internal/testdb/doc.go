// Package testdb provides helpers for tests that run against a real
// PostgreSQL database.
//
// Tests using it carry the integration build tag and read the connection
// string from DATABASE_URL:
//
//	DATABASE_URL=postgres://... go test -tags=integration ./...
//
// GetTestDB applies the embedded migrations once per test binary. WithTx
// runs each test body in a transaction that is always rolled back, so tests
// stay isolated and can run in parallel.
package testdb
