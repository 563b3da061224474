package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"cardionote-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePersistence is an in-memory Persistence[entity.Note] whose rows
// and failure modes the tests control directly.
type fakePersistence struct {
	mu sync.Mutex

	rows      []entity.Note
	listErr   error
	insertErr error
	updateErr error
	deleteErr error

	subscribed   int
	unsubscribed int
	onChange     func()

	// fireOnInsert pushes the change notification before Insert returns,
	// which reorders the reload ahead of the caller's local prepend.
	fireOnInsert bool
}

func (f *fakePersistence) List(ctx context.Context, ownerID uuid.UUID) ([]entity.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]entity.Note, len(f.rows))
	copy(out, f.rows)
	return out, nil
}

func (f *fakePersistence) Insert(ctx context.Context, ownerID uuid.UUID, defaults map[string]interface{}) (entity.Note, error) {
	f.mu.Lock()
	if f.insertErr != nil {
		f.mu.Unlock()
		return entity.Note{}, f.insertErr
	}
	note := entity.Note{Id: uuid.New(), Title: entity.DefaultNoteTitle, UserId: ownerID}
	f.rows = append([]entity.Note{note}, f.rows...)
	fireEarly := f.fireOnInsert
	f.mu.Unlock()

	if fireEarly {
		f.fire()
	}
	return note, nil
}

func (f *fakePersistence) Update(ctx context.Context, ownerID uuid.UUID, id uuid.UUID, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updateErr
}

func (f *fakePersistence) Delete(ctx context.Context, ownerID uuid.UUID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i, row := range f.rows {
		if row.Id == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakePersistence) Subscribe(ownerID uuid.UUID, onChange func()) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.subscribed++
	f.onChange = onChange
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.unsubscribed++
	}, nil
}

// fire simulates a server-pushed change notification.
func (f *fakePersistence) fire() {
	f.mu.Lock()
	onChange := f.onChange
	f.mu.Unlock()
	if onChange != nil {
		onChange()
	}
}

func (f *fakePersistence) setRows(rows []entity.Note) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = rows
}

func newTestStore(owner uuid.UUID, fake *fakePersistence) *Store[entity.Note] {
	return New(owner, NoteConfig(fake, nil))
}

func TestLoad_PopulatesAndSelectsFirst(t *testing.T) {
	owner := uuid.New()
	first := entity.Note{Id: uuid.New(), Title: "newest", UserId: owner}
	second := entity.Note{Id: uuid.New(), Title: "older", UserId: owner}
	fake := &fakePersistence{rows: []entity.Note{first, second}}

	s := newTestStore(owner, fake)
	require.NoError(t, s.Load(context.Background()))

	assert.Equal(t, StateReady, s.State())
	assert.Len(t, s.Items(), 2)
	assert.Equal(t, first.Id, s.Selected())
}

func TestLoad_FailureKeepsCollection(t *testing.T) {
	owner := uuid.New()
	note := entity.Note{Id: uuid.New(), UserId: owner}
	fake := &fakePersistence{rows: []entity.Note{note}}

	s := newTestStore(owner, fake)
	require.NoError(t, s.Load(context.Background()))

	fake.mu.Lock()
	fake.listErr = errors.New("connection reset")
	fake.mu.Unlock()

	err := s.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateError, s.State())
	assert.Equal(t, "connection reset", s.LastError())
	assert.Len(t, s.Items(), 1, "collection is unchanged on fetch failure")
}

func TestLoad_ReplacesPriorSubscription(t *testing.T) {
	owner := uuid.New()
	fake := &fakePersistence{}

	s := newTestStore(owner, fake)
	require.NoError(t, s.Load(context.Background()))
	require.NoError(t, s.Load(context.Background()))

	assert.Equal(t, 2, fake.subscribed)
	assert.Equal(t, 1, fake.unsubscribed, "second load must tear the first subscription down")
}

func TestCreate_WithoutOwnerIsNoOp(t *testing.T) {
	fake := &fakePersistence{}
	s := newTestStore(uuid.Nil, fake)

	id, err := s.Create(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, id)
	assert.Empty(t, fake.rows)
}

func TestCreate_PrependsAndSelects(t *testing.T) {
	owner := uuid.New()
	existing := entity.Note{Id: uuid.New(), Title: "existing", UserId: owner}
	fake := &fakePersistence{rows: []entity.Note{existing}}

	s := newTestStore(owner, fake)
	require.NoError(t, s.Load(context.Background()))

	id, err := s.Create(context.Background(), nil)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, id)

	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, id, items[0].Id, "new entity is prepended")
	assert.Equal(t, entity.DefaultNoteTitle, items[0].Title)
	assert.Equal(t, id, s.Selected())
}

func TestCreate_ReloadLandingFirstDoesNotDuplicate(t *testing.T) {
	owner := uuid.New()
	fake := &fakePersistence{fireOnInsert: true}

	s := newTestStore(owner, fake)
	require.NoError(t, s.Load(context.Background()))

	id, err := s.Create(context.Background(), nil)
	require.NoError(t, err)

	items := s.Items()
	require.Len(t, items, 1, "row reloaded from the feed must not be prepended again")
	assert.Equal(t, id, items[0].Id)
	assert.Equal(t, id, s.Selected())
}

func TestUpdate_OptimisticWithoutRollback(t *testing.T) {
	owner := uuid.New()
	note := entity.Note{Id: uuid.New(), Title: "before", UserId: owner}
	fake := &fakePersistence{
		rows:      []entity.Note{note},
		updateErr: errors.New("write refused"),
	}

	s := newTestStore(owner, fake)
	require.NoError(t, s.Load(context.Background()))

	err := s.Update(context.Background(), note.Id, map[string]interface{}{"title": "after"})

	require.Error(t, err)
	assert.Equal(t, "after", s.Items()[0].Title, "local mutation survives the remote failure")
	assert.Equal(t, "write refused", s.LastError())
}

func TestDelete_RemoteFailureKeepsEntity(t *testing.T) {
	owner := uuid.New()
	note := entity.Note{Id: uuid.New(), UserId: owner}
	fake := &fakePersistence{
		rows:      []entity.Note{note},
		deleteErr: errors.New("delete refused"),
	}

	s := newTestStore(owner, fake)
	require.NoError(t, s.Load(context.Background()))

	err := s.Delete(context.Background(), note.Id)

	require.Error(t, err)
	assert.Len(t, s.Items(), 1, "entity stays until the remote delete succeeds")
	assert.Equal(t, note.Id, s.Selected())
}

func TestDelete_SelectionFallback(t *testing.T) {
	owner := uuid.New()
	first := entity.Note{Id: uuid.New(), Title: "first", UserId: owner}
	second := entity.Note{Id: uuid.New(), Title: "second", UserId: owner}
	fake := &fakePersistence{rows: []entity.Note{first, second}}

	s := newTestStore(owner, fake)
	require.NoError(t, s.Load(context.Background()))
	require.Equal(t, first.Id, s.Selected())

	require.NoError(t, s.Delete(context.Background(), first.Id))
	assert.Equal(t, second.Id, s.Selected(), "selection advances to the new first entity")

	require.NoError(t, s.Delete(context.Background(), second.Id))
	assert.Equal(t, uuid.Nil, s.Selected(), "deleting the last entity leaves selection empty")
	assert.Empty(t, s.Items())
}

func TestSelect_AbsentIDClearsSelection(t *testing.T) {
	owner := uuid.New()
	note := entity.Note{Id: uuid.New(), UserId: owner}
	fake := &fakePersistence{rows: []entity.Note{note}}

	s := newTestStore(owner, fake)
	require.NoError(t, s.Load(context.Background()))

	s.Select(uuid.New())
	assert.Equal(t, uuid.Nil, s.Selected())

	s.Select(note.Id)
	assert.Equal(t, note.Id, s.Selected())
}

func TestReload_OverwritesLocalState(t *testing.T) {
	owner := uuid.New()
	note := entity.Note{Id: uuid.New(), Title: "server title", UserId: owner}
	fake := &fakePersistence{rows: []entity.Note{note}}

	s := newTestStore(owner, fake)
	require.NoError(t, s.Load(context.Background()))

	// Optimistic mutation the server's feed has not reflected yet.
	fake.mu.Lock()
	fake.updateErr = errors.New("lost write")
	fake.mu.Unlock()
	_ = s.Update(context.Background(), note.Id, map[string]interface{}{"title": "local title"})
	require.Equal(t, "local title", s.Items()[0].Title)

	fake.fire()

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "server title", items[0].Title, "server truth wins on reload")
	assert.Equal(t, note.Id, s.Selected(), "selection is preserved by id")
}

func TestReload_SelectionFallsBackWhenRowGone(t *testing.T) {
	owner := uuid.New()
	first := entity.Note{Id: uuid.New(), Title: "first", UserId: owner}
	second := entity.Note{Id: uuid.New(), Title: "second", UserId: owner}
	fake := &fakePersistence{rows: []entity.Note{first, second}}

	s := newTestStore(owner, fake)
	require.NoError(t, s.Load(context.Background()))
	require.Equal(t, first.Id, s.Selected())

	fake.setRows([]entity.Note{second})
	fake.fire()

	assert.Equal(t, second.Id, s.Selected(), "selection defaults to the first remaining entity")
}

func TestCleanup_ClearsStateAndSubscription(t *testing.T) {
	owner := uuid.New()
	fake := &fakePersistence{rows: []entity.Note{{Id: uuid.New(), UserId: owner}}}

	s := newTestStore(owner, fake)
	require.NoError(t, s.Load(context.Background()))

	s.Cleanup()

	assert.Equal(t, StateIdle, s.State())
	assert.Empty(t, s.Items())
	assert.Equal(t, uuid.Nil, s.Selected())
	assert.Empty(t, s.LastError())
	assert.Equal(t, 1, fake.unsubscribed)
}

func TestManager_ReusesAndDropsStores(t *testing.T) {
	owner := uuid.New()
	fake := &fakePersistence{}
	m := NewManager(NoteConfig(fake, nil))

	a := m.For(owner)
	b := m.For(owner)
	assert.Same(t, a, b)

	require.NoError(t, a.Load(context.Background()))
	m.Drop(owner)

	assert.Equal(t, 1, fake.unsubscribed, "drop cleans the store up")
	assert.NotSame(t, a, m.For(owner))
}
