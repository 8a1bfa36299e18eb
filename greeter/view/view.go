// Package view implements the greeting view of the greeter service: the per-session state behind the page, its
// transitions on mount, input and submit, and the acknowledgment banner timer.
//
// A View never owns authentication; it asks its Session on every render decision. Contract reads and writes go
// through the Contract the view was created with, so the view can be driven without a network.
package view

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/jelilat/hellonear/lib/block/types"
)

// NotificationDelay is how long the acknowledgment banner stays visible after a successful write.
const NotificationDelay = 11000 * time.Millisecond

// Fixed texts of the page.
const (
	FallbackLabel = "You're in 🥳 Great job!"
	AlertMessage  = "Something went wrong! Maybe you need to sign out and back in? " +
		"Check your browser console for more info."
)

// Images shown above the greeting. They only tell apart the page before and after the first successful write.
const (
	ImageGreat = "great.svg"
	ImageHello = "hello.svg"
)

// Errors returned by Submit.
var (
	ErrUnchanged  = errors.New("name is unchanged")
	ErrSubmitting = errors.New("a name update is already in flight")
	ErrClosed     = errors.New("view is closed")
	ErrWrite      = errors.New("cannot save name")
)

// Session is the authenticated wallet session of the user.
type Session interface {
	IsSignedIn() bool
	AccountID() string
	// Login starts the sign in and returns the URL the user has to visit.
	Login(ctx context.Context) (string, error)
	Logout(ctx context.Context) error
}

// Contract is the greeting contract as seen by the user of the session: writes are signed on their behalf.
type Contract interface {
	ContractID() string
	Get(ctx context.Context, q types.NameQuery) (string, error)
	Set(ctx context.Context, p types.SetNamePayload) error
}

// Event names a state transition of the view.
type Event int

const (
	EventNameLoaded Event = iota
	EventReadFailed
	EventInputDisabled
	EventInputEnabled
	EventNameSet
	EventWriteFailed
	EventNotificationShown
	EventNotificationHidden
)

var eventNames = [...]string{
	"name_loaded", "read_failed", "input_disabled", "input_enabled", "name_set", "write_failed",
	"notification_shown", "notification_hidden",
}

func (e Event) String() string {
	if int(e) < len(eventNames) {
		return eventNames[e]
	}

	return fmt.Sprintf("event(%d)", int(e))
}

// Options tune a View. The zero value is usable.
type Options struct {
	Clock    clock.Clock        // defaults to the wall clock
	OnChange func(Event)        // called after every transition, outside the view lock
	OnError  func(Event, error) // called with the cause of EventReadFailed and EventWriteFailed
	OnSet    func(name string)  // called after every successful write, even if the view was closed meanwhile
}

// View is the state of the greeting page of one session.
type View struct {
	session  Session
	contract Contract
	clk      clock.Clock
	onChange func(Event)
	onError  func(Event, error)
	onSet    func(string)

	ctx    context.Context // cancelled on Close
	cancel context.CancelFunc

	mu            sync.Mutex
	name          string
	submitEnabled bool
	inputDisabled bool
	notification  bool
	timer         *clock.Timer
	timerSeq      uint64
	image         string
	readErr       error
	alert         string
	loading       bool
	written       bool // a write succeeded, the name of the mount read is stale
	mounted       chan struct{}
	closed        bool
}

// New returns a view over the session and contract.
func New(s Session, c Contract, o Options) *View {
	if o.Clock == nil {
		o.Clock = clock.New()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &View{
		session:  s,
		contract: c,
		clk:      o.Clock,
		onChange: o.OnChange,
		onError:  o.OnError,
		onSet:    o.OnSet,
		ctx:      ctx,
		cancel:   cancel,
		image:    ImageGreat,
	}
}

func (v *View) fail(e Event, err error) {
	if v.onError != nil {
		v.onError(e, err)
	}

	v.emit(e)
}

func (v *View) emit(events ...Event) {
	if v.onChange == nil {
		return
	}

	for _, e := range events {
		v.onChange(e)
	}
}

// Mount fetches the name of the signed in account from the contract. Only the first call does any work; later calls
// return the same channel. The channel is closed once the read has finished, immediately when the session is not
// signed in. The read is bound to the lifetime of the view, not to the caller.
func (v *View) Mount() <-chan struct{} {
	v.mu.Lock()

	if v.mounted != nil {
		defer v.mu.Unlock()

		return v.mounted
	}

	done := make(chan struct{})
	v.mounted = done

	if v.closed || !v.session.IsSignedIn() {
		v.mu.Unlock()
		close(done)

		return done
	}

	v.loading = true
	v.mu.Unlock()

	q := types.NameQuery{AccountID: v.session.AccountID()}

	go func() {
		defer close(done)

		name, err := v.contract.Get(v.ctx, q)

		v.mu.Lock()
		v.loading = false

		if v.closed {
			v.mu.Unlock()

			return
		}

		if err != nil {
			v.readErr = err
			v.mu.Unlock()
			v.fail(EventReadFailed, err)

			return
		}

		if !v.written {
			v.name = name
		}
		v.mu.Unlock()

		v.emit(EventNameLoaded)
	}()

	return done
}

// Input records the current value of the name input and returns whether the submit button is enabled, that is
// whether value differs from the displayed name.
func (v *View) Input(value string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.submitEnabled = value != v.name

	return v.submitEnabled
}

// Submit writes newName to the contract. The input is disabled during the write and enabled again whatever the
// outcome. On success the displayed name is replaced without reading it back and the notification is shown for
// NotificationDelay; a mount read still in flight no longer replaces it. On failure the alert is set and the error is
// returned wrapped in ErrWrite.
func (v *View) Submit(ctx context.Context, newName string) (err error) {
	if !v.session.IsSignedIn() {
		return types.ErrNotSignedIn
	}

	v.mu.Lock()

	switch {
	case v.closed:
		err = ErrClosed
	case v.inputDisabled:
		err = ErrSubmitting
	case newName == v.name:
		v.submitEnabled = false
		err = ErrUnchanged
	}

	if err != nil {
		v.mu.Unlock()

		return err
	}

	v.inputDisabled = true
	v.alert = ""
	v.mu.Unlock()
	v.emit(EventInputDisabled)

	defer func() {
		v.mu.Lock()
		v.inputDisabled = false
		v.mu.Unlock()
		v.emit(EventInputEnabled)
	}()

	if err = v.contract.Set(ctx, types.SetNamePayload{Message: newName}); err != nil {
		v.mu.Lock()
		v.alert = AlertMessage
		v.mu.Unlock()
		v.fail(EventWriteFailed, err)

		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	v.mu.Lock()
	closed := v.closed

	if !closed {
		v.name = newName
		v.written = true
		v.submitEnabled = false
		v.image = ImageHello
		v.showNotification()
	}
	v.mu.Unlock()

	if !closed {
		v.emit(EventNameSet, EventNotificationShown)
	}

	if v.onSet != nil {
		v.onSet(newName)
	}

	return nil
}

// showNotification shows the banner and (re)arms the timer hiding it. A banner shown again before the previous timer
// fired stays for a full NotificationDelay. Must be called with the lock held.
func (v *View) showNotification() {
	if v.timer != nil {
		v.timer.Stop()
	}

	v.timerSeq++
	seq := v.timerSeq
	v.notification = true
	v.timer = v.clk.AfterFunc(NotificationDelay, func() {
		v.mu.Lock()
		if v.closed || v.timerSeq != seq {
			v.mu.Unlock()

			return
		}

		v.notification = false
		v.timer = nil
		v.mu.Unlock()

		v.emit(EventNotificationHidden)
	})
}

// Login delegates to the session.
func (v *View) Login(ctx context.Context) (string, error) {
	return v.session.Login(ctx)
}

// Logout delegates to the session.
func (v *View) Logout(ctx context.Context) error {
	return v.session.Logout(ctx)
}

// Close stops the notification timer and cancels an in-flight read. State is frozen afterwards.
func (v *View) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return
	}

	v.closed = true

	if v.timer != nil {
		v.timer.Stop()
		v.timer = nil
	}

	v.cancel()
}

// Closed tells whether Close was called.
func (v *View) Closed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.closed
}

// DismissAlert clears the alert once it has been shown.
func (v *View) DismissAlert() {
	v.mu.Lock()
	v.alert = ""
	v.mu.Unlock()
}
