// Package scan coordinates the lifecycle of a tag-reading session:
// begin listening, resolve a discovered tag, push the result to the
// display and history, and always return the platform session to Idle.
package scan

import (
	"log"
	"os"
	"sync"

	"github.com/nedpals/tagscan/tag"
)

// Radio is the platform NFC subsystem the controller drives. It is
// consumed, not implemented, by this package; see platform/libnfc for
// a hardware-backed implementation.
type Radio interface {
	// IsAvailable reports whether NFC hardware is present and enabled.
	IsAvailable() bool

	// StartSession begins an asynchronous listening session and invokes
	// onDiscovered for each discovered tag. It fails when the radio is
	// unavailable or a session is already active.
	StartSession(onDiscovered func(tag.Handle)) error

	// StopSession ends the listening session. Idempotent.
	StopSession()
}

// Display is the UI collaborator receiving user-visible updates.
type Display interface {
	// OnScanResult is called once per completed tag read.
	OnScanResult(*tag.ScanResult)

	// OnHistoryChanged is called after every history insertion.
	OnHistoryChanged([]HistoryEntry)

	OnAvailabilityChanged(available bool)
	OnError(message string)
}

// State is the controller's session state.
type State int

const (
	StateIdle State = iota
	StateScanning
)

func (s State) String() string {
	if s == StateScanning {
		return "scanning"
	}
	return "idle"
}

// Controller is the scan session state machine. A single session runs
// at a time; a start request while Scanning is rejected, never queued.
// All errors are recoverable and return the controller to Idle.
type Controller struct {
	logger  *log.Logger
	radio   Radio
	display Display

	mu         sync.Mutex
	state      State
	history    *HistoryRing
	lastResult *tag.ScanResult
}

// NewController creates an Idle controller. A nil display discards
// updates; a nil clock uses the wall clock for history timestamps.
func NewController(radio Radio, display Display, clock Clock) *Controller {
	if display == nil {
		display = nopDisplay{}
	}
	return &Controller{
		logger:  log.New(os.Stderr, "[scan] ", log.LstdFlags),
		radio:   radio,
		display: display,
		history: NewHistoryRing(clock),
	}
}

// Start begins a listening session. It fails with an Unavailable error
// when the radio reports no hardware and with an AlreadyScanning error
// when a session is active; the latter leaves the running session
// untouched.
func (c *Controller) Start() error {
	const op = "Start"

	c.mu.Lock()
	if c.state == StateScanning {
		c.mu.Unlock()
		err := NewAlreadyScanningError(op)
		c.display.OnError(err.Message)
		return err
	}

	if !c.radio.IsAvailable() {
		c.mu.Unlock()
		c.display.OnAvailabilityChanged(false)
		err := NewUnavailableError(op)
		c.display.OnError(err.Message)
		return err
	}

	c.state = StateScanning
	c.mu.Unlock()

	c.display.OnAvailabilityChanged(true)

	if err := c.radio.StartSession(c.handleDiscovered); err != nil {
		c.cleanup()
		serr := NewSessionError(op, err)
		c.display.OnError(serr.Error())
		return serr
	}

	c.logger.Println("scan session started")
	return nil
}

// Stop ends the session. Stopping an Idle controller is a no-op.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.state == StateIdle {
		c.mu.Unlock()
		return
	}
	c.state = StateIdle
	c.mu.Unlock()

	c.radio.StopSession()
	c.logger.Println("scan session stopped")
}

// State returns the current session state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastResult returns the most recent scan result, or nil before the
// first completed scan.
func (c *Controller) LastResult() *tag.ScanResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastResult
}

// History returns the scan history, newest first.
func (c *Controller) History() []HistoryEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.Entries()
}

// RefreshAvailability re-queries the radio and notifies the display.
func (c *Controller) RefreshAvailability() bool {
	available := c.radio.IsAvailable()
	c.display.OnAvailabilityChanged(available)
	return available
}

// handleDiscovered is the single discovery transition of the state
// machine. The platform session is stopped and the state returned to
// Idle on every exit path, including panics during resolution.
func (c *Controller) handleDiscovered(h tag.Handle) {
	defer c.cleanup()

	c.logger.Printf("tag discovered (UID: %s)", h.UID())

	result := tag.Resolve(h)
	if result.IsEmpty() {
		// An empty mapping is a distinct outcome, not a silent success.
		c.display.OnError("No decodable data found on tag")
		return
	}

	c.mu.Lock()
	c.lastResult = result
	c.history.Record(result.PrimaryType())
	entries := c.history.Entries()
	c.mu.Unlock()

	c.display.OnScanResult(result)
	c.display.OnHistoryChanged(entries)
}

func (c *Controller) cleanup() {
	c.radio.StopSession()
	c.mu.Lock()
	c.state = StateIdle
	c.mu.Unlock()
}

type nopDisplay struct{}

func (nopDisplay) OnScanResult(*tag.ScanResult)    {}
func (nopDisplay) OnHistoryChanged([]HistoryEntry) {}
func (nopDisplay) OnAvailabilityChanged(bool)      {}
func (nopDisplay) OnError(string)                  {}
