package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/sprachweg/internal/domain"
)

type pairKey struct {
	userID  uuid.UUID
	otherID uuid.UUID
}

type deck struct {
	id    uuid.UUID
	cards []uuid.UUID
}

// tables is the full state of a DB. Transactions work on a copy of it.
type tables struct {
	progress     map[uuid.UUID]domain.UserProgress
	states       map[pairKey]domain.CardReviewState
	attempts     map[pairKey]domain.QuizAttempt
	achievements map[uuid.UUID]domain.Achievement
	unlocks      map[pairKey]time.Time
}

func newTables() tables {
	return tables{
		progress:     make(map[uuid.UUID]domain.UserProgress),
		states:       make(map[pairKey]domain.CardReviewState),
		attempts:     make(map[pairKey]domain.QuizAttempt),
		achievements: make(map[uuid.UUID]domain.Achievement),
		unlocks:      make(map[pairKey]time.Time),
	}
}

// clone copies the tables. Values are stored by value; the only shared
// reference is QuizAttempt.Answers, which is never mutated in place.
func (t tables) clone() tables {
	return tables{
		progress:     maps.Clone(t.progress),
		states:       maps.Clone(t.states),
		attempts:     maps.Clone(t.attempts),
		achievements: maps.Clone(t.achievements),
		unlocks:      maps.Clone(t.unlocks),
	}
}

// DB holds the learner state and the read-only content.
type DB struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	data tables

	lessons map[uuid.UUID]domain.Lesson
	cards   map[uuid.UUID]domain.Card
	decks   []*deck
}

// NewDB creates an empty DB.
func NewDB() *DB {
	return &DB{
		data:    newTables(),
		lessons: make(map[uuid.UUID]domain.Lesson),
		cards:   make(map[uuid.UUID]domain.Card),
	}
}

// AddLesson stores a lesson with its exercises, replacing any lesson with the
// same ID.
func (db *DB) AddLesson(lesson domain.Lesson) {
	db.mu.Lock()
	defer db.mu.Unlock()

	lesson.Exercises = append([]domain.Exercise(nil), lesson.Exercises...)
	db.lessons[lesson.ID] = lesson
}

// AddCards appends cards to the content. Decks keep the order in which they
// were first seen and cards keep their order within a deck.
func (db *DB) AddCards(cards ...domain.Card) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, c := range cards {
		if _, exists := db.cards[c.ID]; exists {
			db.cards[c.ID] = c
			continue
		}
		db.cards[c.ID] = c

		var d *deck
		for _, existing := range db.decks {
			if existing.id == c.DeckID {
				d = existing
				break
			}
		}
		if d == nil {
			d = &deck{id: c.DeckID}
			db.decks = append(db.decks, d)
		}
		d.cards = append(d.cards, c.ID)
	}
}

// txKey marks a context running inside one of db's transactions. The value
// is the transaction's staged copy of the tables.
type txKey struct {
	db *DB
}

func (db *DB) staged(ctx context.Context) (*tables, bool) {
	t, ok := ctx.Value(txKey{db: db}).(*tables)
	return t, ok
}

// read runs fn against the transaction's staged tables, or against the
// committed tables outside a transaction.
func (db *DB) read(ctx context.Context, fn func(t *tables)) {
	if t, ok := db.staged(ctx); ok {
		fn(t)
		return
	}
	db.mu.RLock()
	defer db.mu.RUnlock()
	fn(&db.data)
}

// write runs fn against the transaction's staged tables. Outside a
// transaction it commits immediately, waiting for any running transaction so
// the write cannot be lost when that transaction publishes.
func (db *DB) write(ctx context.Context, fn func(t *tables)) {
	if t, ok := db.staged(ctx); ok {
		fn(t)
		return
	}
	db.txMu.Lock()
	defer db.txMu.Unlock()
	db.mu.Lock()
	defer db.mu.Unlock()
	fn(&db.data)
}
