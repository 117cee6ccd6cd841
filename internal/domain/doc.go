// Package domain contains the core learning-progress entities: a learner's
// points and streak ledger, per-card review state, the achievement catalog,
// quiz attempts, and the read-only content types supplied by the content
// store. It holds the state-machine rules that do not need persistence
// (streak transitions, point accrual, validation) and is independent of any
// storage or delivery mechanism.
package domain
