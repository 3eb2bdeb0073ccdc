package autosave_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/inkpad/inkpad/internal/autosave"
	"github.com/inkpad/inkpad/internal/notes"
)

type stubSaver struct {
	mu         sync.Mutex
	creates    int
	updates    int
	lastUpdate notes.UpdateNoteParams
	err        error

	started chan struct{} // signaled when a save begins, if non-nil
	gate    chan struct{} // blocks saves until closed, if non-nil
}

func (s *stubSaver) begin() {
	if s.started != nil {
		s.started <- struct{}{}
	}
	if s.gate != nil {
		<-s.gate
	}
}

func (s *stubSaver) Create(ctx context.Context, params notes.CreateNoteParams) (*notes.Note, error) {
	s.begin()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates++
	if s.err != nil {
		return nil, s.err
	}
	return &notes.Note{ID: "note-1", Title: params.Title, Content: params.Content}, nil
}

func (s *stubSaver) Update(ctx context.Context, noteID string, params notes.UpdateNoteParams) (*notes.Note, error) {
	s.begin()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates++
	s.lastUpdate = params
	if s.err != nil {
		return nil, s.err
	}
	return &notes.Note{ID: noteID, Title: params.Title.Value, Content: params.Content.Value}, nil
}

func (s *stubSaver) counts() (creates, updates int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creates, s.updates
}

func newTestController(saver autosave.Saver) (*autosave.Controller, *autosave.FakeClock) {
	clock := autosave.NewFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	ctrl := autosave.NewController(autosave.Config{
		Saver:    saver,
		Clock:    clock,
		Debounce: 10 * time.Second,
	})
	return ctrl, clock
}

func awaitState(t *testing.T, ctrl *autosave.Controller, want autosave.State) {
	t.Helper()
	require.Eventually(t, func() bool {
		return ctrl.State() == want
	}, time.Second, time.Millisecond, "waiting for state %s, current %s", want, ctrl.State())
}

func TestController_DebouncedSaveCreatesAndCapturesID(t *testing.T) {
	saver := &stubSaver{}
	ctrl, clock := newTestController(saver)
	defer ctrl.Close()

	ctrl.EditTitle("My Note")
	ctrl.EditContent("hello")
	require.Equal(t, autosave.StateDirty, ctrl.State())

	// Inside the inactivity window nothing is flushed.
	clock.Advance(9 * time.Second)
	creates, _ := saver.counts()
	require.Zero(t, creates)

	clock.Advance(time.Second)
	awaitState(t, ctrl, autosave.StateClean)

	creates, updates := saver.counts()
	require.Equal(t, 1, creates)
	require.Zero(t, updates)
	require.Equal(t, "note-1", ctrl.NoteID())
	require.False(t, ctrl.LastSavedAt().IsZero())
}

func TestController_EditsResetTheTimer(t *testing.T) {
	saver := &stubSaver{}
	ctrl, clock := newTestController(saver)
	defer ctrl.Close()

	ctrl.EditTitle("My Note")
	clock.Advance(6 * time.Second)
	ctrl.EditContent("more")
	clock.Advance(6 * time.Second)

	// 12s elapsed but no 10s quiet stretch yet.
	creates, _ := saver.counts()
	require.Zero(t, creates)

	clock.Advance(4 * time.Second)
	awaitState(t, ctrl, autosave.StateClean)
	creates, _ = saver.counts()
	require.Equal(t, 1, creates)
}

func TestController_EmptyTitleIsNotFlushed(t *testing.T) {
	saver := &stubSaver{}
	ctrl, clock := newTestController(saver)
	defer ctrl.Close()

	ctrl.EditContent("draft without a title")
	clock.Advance(30 * time.Second)

	require.Equal(t, autosave.StateDirty, ctrl.State())
	creates, updates := saver.counts()
	require.Zero(t, creates)
	require.Zero(t, updates)
}

func TestController_SecondSaveGoesThroughUpdate(t *testing.T) {
	saver := &stubSaver{}
	ctrl, clock := newTestController(saver)
	defer ctrl.Close()

	ctrl.EditTitle("My Note")
	clock.Advance(10 * time.Second)
	awaitState(t, ctrl, autosave.StateClean)

	ctrl.EditContent("revised")
	clock.Advance(10 * time.Second)
	awaitState(t, ctrl, autosave.StateClean)

	creates, updates := saver.counts()
	require.Equal(t, 1, creates)
	require.Equal(t, 1, updates)

	saver.mu.Lock()
	params := saver.lastUpdate
	saver.mu.Unlock()
	require.True(t, params.Title.Set)
	require.True(t, params.Content.Set)
	require.Equal(t, "revised", params.Content.Value)
	require.False(t, params.ImageURL.Set)
}

func TestController_EditDuringSaveLandsDirty(t *testing.T) {
	saver := &stubSaver{
		started: make(chan struct{}, 1),
		gate:    make(chan struct{}),
	}
	ctrl, clock := newTestController(saver)
	defer ctrl.Close()

	ctrl.EditTitle("My Note")
	go clock.Advance(10 * time.Second)
	<-saver.started
	require.Equal(t, autosave.StateSaving, ctrl.State())

	// This edit is not in the in-flight payload.
	ctrl.EditContent("late edit")
	close(saver.gate)

	awaitState(t, ctrl, autosave.StateDirty)
	require.Equal(t, "note-1", ctrl.NoteID())

	// The pending edit is flushed by the restarted debounce cycle.
	saver.gate = nil
	clock.Advance(10 * time.Second)
	awaitState(t, ctrl, autosave.StateClean)
	_, updates := saver.counts()
	require.Equal(t, 1, updates)
}

func TestController_OnlyOneSaveInFlight(t *testing.T) {
	saver := &stubSaver{
		started: make(chan struct{}, 1),
		gate:    make(chan struct{}),
	}
	ctrl, clock := newTestController(saver)
	defer ctrl.Close()

	ctrl.EditTitle("My Note")
	go clock.Advance(10 * time.Second)
	<-saver.started

	// New edits while saving must not start a second save.
	ctrl.EditContent("a")
	clock.Advance(30 * time.Second)
	creates, updates := saver.counts()
	require.Equal(t, 0, creates+updates, "counts settle only after the gate opens")

	require.Error(t, ctrl.Save(context.Background()))

	close(saver.gate)
	awaitState(t, ctrl, autosave.StateDirty)
}

func TestController_SaveFailureStaysDirtyWithoutRetry(t *testing.T) {
	saver := &stubSaver{err: errors.New("store unavailable")}
	ctrl, clock := newTestController(saver)
	defer ctrl.Close()

	ctrl.EditTitle("My Note")
	clock.Advance(10 * time.Second)

	awaitState(t, ctrl, autosave.StateDirty)
	require.Error(t, ctrl.Err())
	require.Empty(t, ctrl.NoteID())

	// No automatic retry; the draft waits for the next edit or manual save.
	clock.Advance(time.Minute)
	creates, _ := saver.counts()
	require.Equal(t, 1, creates)

	// The next edit restarts the cycle and the retry succeeds.
	saver.mu.Lock()
	saver.err = nil
	saver.mu.Unlock()
	ctrl.EditContent("try again")
	clock.Advance(10 * time.Second)
	awaitState(t, ctrl, autosave.StateClean)
	require.NoError(t, ctrl.Err())
}

func TestController_ManualSaveBypassesTimer(t *testing.T) {
	saver := &stubSaver{}
	ctrl, _ := newTestController(saver)
	defer ctrl.Close()

	require.Error(t, ctrl.Save(context.Background()), "empty title is not saveable")

	ctrl.EditTitle("My Note")
	require.NoError(t, ctrl.Save(context.Background()))
	awaitState(t, ctrl, autosave.StateClean)

	creates, _ := saver.counts()
	require.Equal(t, 1, creates)
	require.Equal(t, "note-1", ctrl.NoteID())
}

func TestController_CloseCancelsPendingSave(t *testing.T) {
	saver := &stubSaver{}
	ctrl, clock := newTestController(saver)

	ctrl.EditTitle("My Note")
	ctrl.Close()
	clock.Advance(time.Minute)

	creates, updates := saver.counts()
	require.Zero(t, creates)
	require.Zero(t, updates)

	// A closed session ignores further edits and manual saves.
	ctrl.EditContent("after close")
	require.Error(t, ctrl.Save(context.Background()))
}

func TestController_ExistingNoteStartsWithUpdate(t *testing.T) {
	saver := &stubSaver{}
	clock := autosave.NewFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	ctrl := autosave.NewController(autosave.Config{
		Saver:    saver,
		Clock:    clock,
		Debounce: 10 * time.Second,
		NoteID:   "existing-id",
	})
	defer ctrl.Close()

	ctrl.EditTitle("Renamed")
	clock.Advance(10 * time.Second)
	awaitState(t, ctrl, autosave.StateClean)

	creates, updates := saver.counts()
	require.Zero(t, creates)
	require.Equal(t, 1, updates)
}

func TestController_NotifiesOnTransitions(t *testing.T) {
	saver := &stubSaver{}
	clock := autosave.NewFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))

	var mu sync.Mutex
	var states []autosave.State
	ctrl := autosave.NewController(autosave.Config{
		Saver:    saver,
		Clock:    clock,
		Debounce: 10 * time.Second,
		OnChange: func(snap autosave.Snapshot) {
			mu.Lock()
			states = append(states, snap.State)
			mu.Unlock()
		},
	})
	defer ctrl.Close()

	ctrl.EditTitle("My Note")
	clock.Advance(10 * time.Second)
	awaitState(t, ctrl, autosave.StateClean)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []autosave.State{autosave.StateDirty, autosave.StateSaving, autosave.StateClean}, states)
}
