// Package postgres provides PostgreSQL-specific implementations for the data
// storage interfaces defined in the internal/store package.
// It handles the details of database connections, query execution, schema
// migrations and data mapping between domain entities and database records.
//
// Concurrency relies on row locks: a submission locks the learner's
// user_progress row first (GetForUpdate), which serialises all writes for that
// learner. Serialization failures and deadlocks surface as store.ErrConflict.
package postgres
