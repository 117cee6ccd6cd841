// Package learning is the entry point of the learning-progress engine.
//
// Service grades lesson quizzes, schedules flashcard reviews, builds review
// queues and reports learner profiles. Every submission runs as one
// transaction that first locks the learner's ledger, so concurrent
// submissions by the same learner are applied one after another and either
// fully commit or leave no trace.
package learning
