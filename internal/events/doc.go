// Package events defines the learning events raised by submissions and the
// synchronous dispatcher that delivers them.
//
// Events are plain values. A quiz submission raises a CompletionEvent and a
// flashcard review raises a ReviewEvent. Handlers run in registration order
// inside the transaction of the submission that raised the event, so their
// writes commit or roll back together with it.
//
// The primary components are:
// - CompletionEvent: a learner finished a lesson quiz
// - ReviewEvent: a learner graded their recall of a flashcard
// - Handler: interface for components that react to events
// - Dispatcher: delivers events to registered handlers
package events
