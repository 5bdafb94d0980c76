package actions

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/core"
	"ledger/internal/storage"
)

// scriptedWriter answers FindCategory from finds in order and InsertCategory
// with insertCat or insertErr.
type scriptedWriter struct {
	finds     []findResult
	insertCat core.Category
	insertErr error

	findCalls   int
	insertCalls int
	inserted    []string
}

type findResult struct {
	cat   core.Category
	found bool
	err   error
}

func (w *scriptedWriter) FindCategory(_ context.Context, _ string) (core.Category, bool, error) {
	if w.findCalls >= len(w.finds) {
		w.findCalls++
		return core.Category{}, false, nil
	}
	r := w.finds[w.findCalls]
	w.findCalls++
	return r.cat, r.found, r.err
}

func (w *scriptedWriter) InsertCategory(_ context.Context, name string) (core.Category, error) {
	w.insertCalls++
	w.inserted = append(w.inserted, name)
	return w.insertCat, w.insertErr
}

func duplicateErr() error {
	return &core.StorageError{Op: "insert category", Err: storage.ErrDuplicate}
}

func TestEnsureCategory_ExistingIsReturned(t *testing.T) {
	existing := core.Category{ID: 3, Name: "Food", Active: true}
	w := &scriptedWriter{finds: []findResult{{cat: existing, found: true}}}

	c, created, err := ensureCategory(context.Background(), w, "  food ")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, existing, c)
	assert.Zero(t, w.insertCalls)
}

func TestEnsureCategory_InsertsWhenMissing(t *testing.T) {
	w := &scriptedWriter{insertCat: core.Category{ID: 7, Name: "Pets", Active: true}}

	c, created, err := ensureCategory(context.Background(), w, " Pets ")
	require.NoError(t, err)
	assert.True(t, created)
	assert.EqualValues(t, 7, c.ID)
	assert.Equal(t, []string{"Pets"}, w.inserted)
}

func TestEnsureCategory_UniqueViolationRetriesAsLookup(t *testing.T) {
	winner := core.Category{ID: 9, Name: "Travel", Active: true}
	w := &scriptedWriter{
		finds:     []findResult{{found: false}, {cat: winner, found: true}},
		insertErr: duplicateErr(),
	}

	c, created, err := ensureCategory(context.Background(), w, "Travel")
	require.NoError(t, err)
	assert.False(t, created, "the row was created by someone else")
	assert.Equal(t, winner, c)
	assert.Equal(t, 2, w.findCalls)
	assert.Equal(t, 1, w.insertCalls)
}

func TestEnsureCategory_UniqueViolationStillMissing(t *testing.T) {
	insertErr := duplicateErr()
	w := &scriptedWriter{
		finds:     []findResult{{found: false}, {found: false}},
		insertErr: insertErr,
	}

	_, created, err := ensureCategory(context.Background(), w, "Travel")
	require.Error(t, err)
	assert.Same(t, insertErr, err, "the original insert error is returned")
	assert.False(t, created)
	assert.Equal(t, 2, w.findCalls)
}

func TestEnsureCategory_RetryLookupFails(t *testing.T) {
	lookupErr := errors.New("disk I/O error")
	w := &scriptedWriter{
		finds:     []findResult{{found: false}, {err: lookupErr}},
		insertErr: duplicateErr(),
	}

	_, _, err := ensureCategory(context.Background(), w, "Travel")
	assert.ErrorIs(t, err, lookupErr)
}

func TestEnsureCategory_OtherInsertErrorIsNotRetried(t *testing.T) {
	insertErr := &core.StorageError{Op: "insert category", Err: errors.New("database is locked")}
	w := &scriptedWriter{insertErr: insertErr}

	_, _, err := ensureCategory(context.Background(), w, "Travel")
	assert.ErrorIs(t, err, insertErr)
	assert.Equal(t, 1, w.findCalls)
}

func TestEnsureCategory_InvalidName(t *testing.T) {
	w := &scriptedWriter{}

	_, _, err := ensureCategory(context.Background(), w, "   ")
	assert.True(t, core.IsValidation(err), "got %v", err)
	assert.Zero(t, w.findCalls)
}
