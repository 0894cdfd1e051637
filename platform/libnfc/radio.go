// Package libnfc implements the scan.Radio contract on top of
// libnfc/libfreefare hardware readers. It polls the configured device
// for proximity tags and hands discovered tags to the session
// controller as tag.Handle values.
//
// ISO 15693 vicinity tags are outside what libnfc exposes, so this
// backend never reports that capability; the enum still models it for
// platforms that do.
package libnfc

import (
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/clausecker/freefare"
	"github.com/clausecker/nfc/v2"

	"github.com/nedpals/tagscan/tag"
)

// DefaultPollInterval is how often an active session polls the reader.
const DefaultPollInterval = 250 * time.Millisecond

// Radio drives a libnfc reader. The zero connection string lets libnfc
// pick the first available device.
type Radio struct {
	logger       *log.Logger
	conn         string
	pollInterval time.Duration

	mu     sync.Mutex
	active bool
	stop   chan struct{}
}

// NewRadio creates a Radio for the given libnfc connection string
// (e.g. "pn532_uart:/dev/ttyUSB0", or "" for the first device).
func NewRadio(conn string) *Radio {
	return &Radio{
		logger:       log.New(os.Stderr, "[libnfc] ", log.LstdFlags),
		conn:         conn,
		pollInterval: DefaultPollInterval,
	}
}

// IsAvailable reports whether libnfc can see at least one reader.
func (r *Radio) IsAvailable() bool {
	devices, err := nfc.ListDevices()
	if err != nil {
		r.logger.Printf("device enumeration failed: %v", err)
		return false
	}
	return len(devices) > 0
}

// StartSession opens the device and begins polling for tags. It fails
// when a session is already active or the device cannot be opened.
func (r *Radio) StartSession(onDiscovered func(tag.Handle)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active {
		return fmt.Errorf("libnfc session already active")
	}

	dev, err := nfc.Open(r.conn)
	if err != nil {
		return fmt.Errorf("opening NFC device %q: %w", r.conn, err)
	}
	if err := dev.InitiatorInit(); err != nil {
		dev.Close()
		return fmt.Errorf("initiator init on %s: %w", dev.String(), err)
	}

	r.logger.Printf("session started on %s", dev.String())
	r.stop = make(chan struct{})
	r.active = true
	go r.poll(dev, r.stop, onDiscovered)
	return nil
}

// StopSession signals the polling worker to exit. Idempotent, and safe
// to call from inside the discovery callback: the worker owns the
// device and closes it on its way out, so nothing here blocks.
func (r *Radio) StopSession() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.active {
		return
	}
	close(r.stop)
	r.active = false
	r.logger.Println("session stop requested")
}

func (r *Radio) poll(dev nfc.Device, stop chan struct{}, onDiscovered func(tag.Handle)) {
	defer dev.Close()

	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			handle := r.detect(dev)
			if handle == nil {
				continue
			}
			onDiscovered(handle)
			// The callback usually stops the session; re-check before
			// polling again so a stopped session delivers nothing more.
			select {
			case <-stop:
				return
			default:
			}
		}
	}
}

// detect polls the reader once and wraps the first tag found.
// Freefare-supported tags (MIFARE family, DESFire) are tried first,
// then raw ISO14443-4A smart cards and FeliCa targets.
func (r *Radio) detect(dev nfc.Device) tag.Handle {
	ffTags, err := freefare.GetTags(dev)
	if err != nil {
		r.logger.Printf("freefare poll error: %v", err)
	}
	for _, ff := range ffTags {
		if h := wrapFreefareTag(ff); h != nil {
			return h
		}
		r.logger.Printf("unhandled freefare tag: UID %s, type %d", ff.UID(), ff.Type())
	}

	if h := r.detectType4A(dev); h != nil {
		return h
	}
	return r.detectFeliCa(dev)
}

func (r *Radio) detectType4A(dev nfc.Device) tag.Handle {
	modulation := nfc.Modulation{Type: nfc.ISO14443a, BaudRate: nfc.Nbr106}
	targets, err := dev.InitiatorListPassiveTargets(modulation)
	if err != nil {
		r.logger.Printf("ISO14443A poll error: %v", err)
		return nil
	}

	for _, target := range targets {
		isoA, ok := target.(*nfc.ISO14443aTarget)
		if !ok || isoA.UIDLen == 0 {
			continue
		}
		// SAK bit 5 marks ISO14443-4 compliance (Type 4A).
		if (isoA.Sak & 0x20) == 0 {
			continue
		}
		uid := strings.ToUpper(hex.EncodeToString(isoA.UID[:isoA.UIDLen]))
		r.logger.Printf("found ISO14443-4A tag: UID %s, SAK %02X", uid, isoA.Sak)
		return &staticHandle{uid: uid, caps: []tag.Capability{tag.CapISO7816}}
	}
	return nil
}

func (r *Radio) detectFeliCa(dev nfc.Device) tag.Handle {
	modulation := nfc.Modulation{Type: nfc.Felica, BaudRate: nfc.Nbr212}
	targets, err := dev.InitiatorListPassiveTargets(modulation)
	if err != nil {
		r.logger.Printf("FeliCa poll error: %v", err)
		return nil
	}

	for _, target := range targets {
		felica, ok := target.(*nfc.FelicaTarget)
		if !ok {
			continue
		}
		uid := strings.ToUpper(hex.EncodeToString(felica.ID[:]))
		r.logger.Printf("found FeliCa tag: IDm %s", uid)
		return &staticHandle{uid: uid, caps: []tag.Capability{tag.CapFeliCa}}
	}
	return nil
}
