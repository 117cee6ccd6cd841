// Package memory provides an in-process implementation of the store
// interfaces. It is the backend for service tests and the server's router
// tests.
//
// All stores created from the same DB share its state. Transactions run by
// TxManager are serialized and work on a staged copy of the tables that is
// published on commit, so reads outside a transaction only ever see committed
// state. Stores called inside a transaction must be given the context passed
// to the transaction function; a write made with any other context waits for
// the transaction to finish.
package memory
