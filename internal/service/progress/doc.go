// Package progress keeps each learner's ledger of points, daily streak and
// unlocked achievements.
//
// The Ledger reacts to learning events raised by the learning service and
// runs inside the transaction of the submission that raised them, so ledger
// updates commit or roll back together with the attempt or review that caused
// them. The AchievementEngine unlocks catalog entries once a learner's points
// reach their threshold; every unlock is an insert-if-absent and therefore
// safe to repeat.
package progress
