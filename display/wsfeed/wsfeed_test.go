package wsfeed

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nedpals/tagscan/scan"
	"github.com/nedpals/tagscan/tag"
)

func dialFeed(t *testing.T, s *Server) (*websocket.Conn, func()) {
	t.Helper()

	ts := httptest.NewServer(s.routes())
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		ts.Close()
		t.Fatalf("failed to dial feed: %v", err)
	}

	return conn, func() {
		conn.Close()
		ts.Close()
	}
}

func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env Envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("failed to read envelope: %v", err)
	}
	return env
}

// A fresh client receives the availability snapshot immediately.
func TestFeedSendsSnapshotOnConnect(t *testing.T) {
	s := New(Config{})
	s.OnAvailabilityChanged(true)

	conn, cleanup := dialFeed(t, s)
	defer cleanup()

	env := readEnvelope(t, conn)
	if env.Type != MsgTypeAvailability {
		t.Fatalf("expected availability snapshot, got %q", env.Type)
	}

	var payload AvailabilityPayload
	raw, _ := json.Marshal(env.Payload)
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if !payload.Available {
		t.Error("expected available=true in snapshot")
	}
}

func TestFeedBroadcastsScanResult(t *testing.T) {
	s := New(Config{})
	conn, cleanup := dialFeed(t, s)
	defer cleanup()

	// Skip the availability snapshot.
	readEnvelope(t, conn)

	result := tag.NewScanResult()
	result.Add("ISO7816", "Smart Card detected")
	s.OnScanResult(result)

	env := readEnvelope(t, conn)
	if env.Type != MsgTypeScanResult {
		t.Fatalf("expected scanResult, got %q", env.Type)
	}

	var payload ScanResultPayload
	raw, _ := json.Marshal(env.Payload)
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if payload.PrimaryType != "ISO7816" {
		t.Errorf("primary type mismatch: got %q", payload.PrimaryType)
	}
	if len(payload.Entries) != 1 || payload.Entries[0].Value != "Smart Card detected" {
		t.Errorf("entries mismatch: %+v", payload.Entries)
	}
}

func TestFeedBroadcastsHistoryAndErrors(t *testing.T) {
	s := New(Config{})
	conn, cleanup := dialFeed(t, s)
	defer cleanup()

	readEnvelope(t, conn) // availability snapshot

	ring := scan.NewHistoryRing(nil)
	ring.Record("NDEF")
	s.OnHistoryChanged(ring.Entries())

	env := readEnvelope(t, conn)
	if env.Type != MsgTypeHistory {
		t.Fatalf("expected history, got %q", env.Type)
	}

	s.OnError("No decodable data found on tag")
	env = readEnvelope(t, conn)
	if env.Type != MsgTypeError {
		t.Fatalf("expected error, got %q", env.Type)
	}
}

// A late joiner catches up on the last result without witnessing the scan.
func TestFeedLateJoinerReceivesLastResult(t *testing.T) {
	s := New(Config{})

	result := tag.NewScanResult()
	result.Add("NDEF", "Writable NDEF tag")
	s.OnScanResult(result)

	conn, cleanup := dialFeed(t, s)
	defer cleanup()

	readEnvelope(t, conn) // availability snapshot
	env := readEnvelope(t, conn)
	if env.Type != MsgTypeScanResult {
		t.Fatalf("expected replayed scanResult, got %q", env.Type)
	}
}
