// Package autosave implements the debounced save loop behind the note
// editor. A controller tracks one editing session, coalesces edits into a
// single pending save, and routes the first save through create so the
// note's identity is captured for later updates.
package autosave

import (
	"context"
	"sync"
	"time"

	"github.com/inkpad/inkpad/internal/errs"
	"github.com/inkpad/inkpad/internal/notes"
	"github.com/inkpad/inkpad/internal/obs"
)

// DefaultDebounce is the inactivity window before an edit is flushed.
const DefaultDebounce = 10 * time.Second

// State is the controller's save status.
type State string

const (
	StateClean  State = "clean"  // no unsaved edits
	StateDirty  State = "dirty"  // edits pending
	StateSaving State = "saving" // save in flight
)

// Saver persists a draft. The first save of a new session goes through
// Create; once an id is known, subsequent saves go through Update.
type Saver interface {
	Create(ctx context.Context, params notes.CreateNoteParams) (*notes.Note, error)
	Update(ctx context.Context, noteID string, params notes.UpdateNoteParams) (*notes.Note, error)
}

// NoteSaver adapts a notes.Service to the Saver interface for one user.
type NoteSaver struct {
	Service *notes.Service
	UserID  string
}

func (s NoteSaver) Create(ctx context.Context, params notes.CreateNoteParams) (*notes.Note, error) {
	return s.Service.Create(ctx, s.UserID, params)
}

func (s NoteSaver) Update(ctx context.Context, noteID string, params notes.UpdateNoteParams) (*notes.Note, error) {
	return s.Service.Update(ctx, s.UserID, noteID, params)
}

// Snapshot is the observable controller state passed to the change
// callback.
type Snapshot struct {
	State       State
	NoteID      string
	LastSavedAt time.Time
	Err         error // last save failure, cleared on the next success
}

// Config configures a Controller.
type Config struct {
	Saver    Saver
	Clock    Clock         // defaults to RealClock
	Debounce time.Duration // defaults to DefaultDebounce
	NoteID   string        // empty for a brand-new note
	OnChange func(Snapshot)
}

// Controller is the per-session autosave state machine. Edits mark the
// draft dirty and restart the debounce timer; when the timer fires with a
// non-empty title, exactly one save is issued. Edits that land while a
// save is in flight leave the controller dirty after the save completes.
type Controller struct {
	mu       sync.Mutex
	saver    Saver
	clock    Clock
	debounce time.Duration
	onChange func(Snapshot)

	state       State
	noteID      string
	title       string
	content     string
	imageURL    string
	hasImage    bool
	pendingEdit bool
	lastSavedAt time.Time
	lastErr     error

	timer    Timer
	timerGen int
	closed   bool
}

// NewController creates a controller in the Clean state.
func NewController(cfg Config) *Controller {
	clock := cfg.Clock
	if clock == nil {
		clock = RealClock()
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Controller{
		saver:    cfg.Saver,
		clock:    clock,
		debounce: debounce,
		onChange: cfg.OnChange,
		state:    StateClean,
		noteID:   cfg.NoteID,
	}
}

// EditTitle records a title change.
func (c *Controller) EditTitle(title string) {
	c.edit(func() { c.title = title })
}

// EditContent records a content change.
func (c *Controller) EditContent(content string) {
	c.edit(func() { c.content = content })
}

// EditImageURL records an image change. An empty URL clears the image.
func (c *Controller) EditImageURL(url string) {
	c.edit(func() {
		c.imageURL = url
		c.hasImage = true
	})
}

func (c *Controller) edit(apply func()) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	apply()
	if c.state == StateSaving {
		// The in-flight save carries a stale draft; remember that more
		// arrived so completion lands in Dirty, not Clean.
		c.pendingEdit = true
		c.mu.Unlock()
		return
	}
	c.state = StateDirty
	c.restartTimerLocked()
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)
}

// Save flushes the draft immediately, bypassing the debounce timer. It
// fails while a save is already in flight, when the title is empty, or
// after Close.
func (c *Controller) Save(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return errs.New(errs.InvalidArgument, "editor session is closed")
	}
	if c.state == StateSaving {
		c.mu.Unlock()
		return errs.New(errs.Conflict, "a save is already in flight")
	}
	if c.title == "" {
		c.mu.Unlock()
		return errs.New(errs.InvalidArgument, "title is required before saving")
	}
	c.stopTimerLocked()
	c.beginSaveLocked(ctx)
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)
	return nil
}

// Close cancels the pending debounce timer and stops the session. An
// in-flight save is not aborted, but its result no longer changes state.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.stopTimerLocked()
}

// State returns the current save status.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// NoteID returns the note's identity, empty until the first save succeeds.
func (c *Controller) NoteID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.noteID
}

// LastSavedAt returns the completion time of the last successful save.
func (c *Controller) LastSavedAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSavedAt
}

// Err returns the last save failure, or nil after a success.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *Controller) restartTimerLocked() {
	c.stopTimerLocked()
	c.timerGen++
	gen := c.timerGen
	c.timer = c.clock.AfterFunc(c.debounce, func() { c.onTimer(gen) })
}

func (c *Controller) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) onTimer(gen int) {
	c.mu.Lock()
	// A fired timer can race with its replacement; only the current
	// generation may act.
	if gen != c.timerGen || c.closed || c.state != StateDirty {
		c.mu.Unlock()
		return
	}
	if c.title == "" {
		// Not saveable yet; stay dirty until an edit restarts the cycle.
		c.mu.Unlock()
		return
	}
	c.beginSaveLocked(context.Background())
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)
}

// beginSaveLocked transitions to Saving and launches the save goroutine.
// The caller holds the lock and is responsible for notifying afterwards.
func (c *Controller) beginSaveLocked(ctx context.Context) {
	c.state = StateSaving
	c.pendingEdit = false

	noteID := c.noteID
	title, content := c.title, c.content
	imageURL, hasImage := c.imageURL, c.hasImage

	go c.runSave(ctx, noteID, title, content, imageURL, hasImage)
}

func (c *Controller) runSave(ctx context.Context, noteID, title, content, imageURL string, hasImage bool) {
	var saved *notes.Note
	var err error
	if noteID == "" {
		saved, err = c.saver.Create(ctx, notes.CreateNoteParams{
			Title:    title,
			Content:  content,
			ImageURL: imageURL,
		})
	} else {
		params := notes.UpdateNoteParams{
			Title:   notes.Optional[string]{Set: true, Valid: true, Value: title},
			Content: notes.Optional[string]{Set: true, Valid: true, Value: content},
		}
		if hasImage {
			params.ImageURL = notes.Optional[string]{Set: true, Valid: imageURL != "", Value: imageURL}
		}
		saved, err = c.saver.Update(ctx, noteID, params)
	}
	c.finishSave(ctx, saved, err)
}

func (c *Controller) finishSave(ctx context.Context, saved *notes.Note, err error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	if err != nil {
		// Edits are never discarded on failure; the draft stays dirty
		// and the next edit or manual save retries.
		c.state = StateDirty
		c.lastErr = err
		obs.From(ctx).Warn("autosave_failed", "pkg", "autosave", "note_id", c.noteID, "error", err)
	} else {
		c.noteID = saved.ID
		c.lastSavedAt = c.clock.Now()
		c.lastErr = nil
		if c.pendingEdit {
			c.state = StateDirty
			c.pendingEdit = false
			c.restartTimerLocked()
		} else {
			c.state = StateClean
		}
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		State:       c.state,
		NoteID:      c.noteID,
		LastSavedAt: c.lastSavedAt,
		Err:         c.lastErr,
	}
}

func (c *Controller) notify(snap Snapshot) {
	if c.onChange != nil {
		c.onChange(snap)
	}
}
