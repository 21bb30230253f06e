package bundle

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openTestBundle(t *testing.T) *Bundle {
	t.Helper()
	b, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b
}

// TestWatcher_StartStop verifies that the watcher can start and stop cleanly.
func TestWatcher_StartStop(t *testing.T) {
	b := openTestBundle(t)

	w, err := b.NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher() failed: %v", err)
	}

	if err := w.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	// Starting twice is an error.
	if err := w.Start(); err == nil {
		t.Error("Second Start() should fail when watcher is already running")
	}

	if err := w.Stop(); err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}

	// Stopping twice is a no-op.
	if err := w.Stop(); err != nil {
		t.Fatalf("Second Stop() failed: %v", err)
	}
}

// TestWatcher_DocumentCreated verifies that a new file in a patient
// folder triggers a create event carrying the patient id.
func TestWatcher_DocumentCreated(t *testing.T) {
	b := openTestBundle(t)

	patientDir := filepath.Join(b.DocumentsDir(), "p-001")
	if err := os.MkdirAll(patientDir, 0755); err != nil {
		t.Fatalf("Failed to create patient dir: %v", err)
	}

	w, err := b.NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher() failed: %v", err)
	}
	defer w.Stop()

	if err := w.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	docPath := filepath.Join(patientDir, "xray.png")
	if err := os.WriteFile(docPath, []byte("png"), 0644); err != nil {
		t.Fatalf("Failed to write document: %v", err)
	}

	select {
	case event := <-w.Events():
		if event.Op != OpCreate {
			t.Errorf("Expected OpCreate, got %v", event.Op)
		}
		if event.Subject != "p-001" {
			t.Errorf("Expected subject p-001, got %q", event.Subject)
		}
		if filepath.Base(event.Path) != "xray.png" {
			t.Errorf("Expected xray.png, got %s", filepath.Base(event.Path))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for document create event")
	}
}

// TestWatcher_DocumentDeleted verifies that removing a document
// triggers a delete event.
func TestWatcher_DocumentDeleted(t *testing.T) {
	b := openTestBundle(t)

	patientDir := filepath.Join(b.DocumentsDir(), "p-001")
	if err := os.MkdirAll(patientDir, 0755); err != nil {
		t.Fatalf("Failed to create patient dir: %v", err)
	}
	docPath := filepath.Join(patientDir, "referral.pdf")
	if err := os.WriteFile(docPath, []byte("pdf"), 0644); err != nil {
		t.Fatalf("Failed to write document: %v", err)
	}

	w, err := b.NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher() failed: %v", err)
	}
	defer w.Stop()

	if err := w.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	// Give the watcher time to stabilize.
	time.Sleep(100 * time.Millisecond)

	if err := os.Remove(docPath); err != nil {
		t.Fatalf("Failed to delete document: %v", err)
	}

	select {
	case event := <-w.Events():
		if event.Op != OpDelete {
			t.Errorf("Expected OpDelete, got %v", event.Op)
		}
		if event.Subject != "p-001" {
			t.Errorf("Expected subject p-001, got %q", event.Subject)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for document delete event")
	}
}

// TestWatcher_StopClosesChannels verifies that Stop() closes the
// event channels.
func TestWatcher_StopClosesChannels(t *testing.T) {
	b := openTestBundle(t)

	w, err := b.NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher() failed: %v", err)
	}

	if err := w.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	events := w.Events()
	errors := w.Errors()

	if err := w.Stop(); err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}

	select {
	case _, ok := <-events:
		if ok {
			t.Error("Events channel should be closed after Stop()")
		}
	case <-time.After(1 * time.Second):
		t.Error("Timeout verifying events channel closure")
	}

	select {
	case _, ok := <-errors:
		if ok {
			t.Error("Errors channel should be closed after Stop()")
		}
	case <-time.After(1 * time.Second):
		t.Error("Timeout verifying errors channel closure")
	}
}

// TestEventOp_String verifies the String() method for EventOp.
func TestEventOp_String(t *testing.T) {
	tests := []struct {
		op       EventOp
		expected string
	}{
		{OpCreate, "create"},
		{OpModify, "modify"},
		{OpDelete, "delete"},
		{EventOp(999), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.op.String(); got != tt.expected {
			t.Errorf("EventOp(%d).String() = %q, want %q", tt.op, got, tt.expected)
		}
	}
}
