package bundle

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// EventOp represents the type of file system operation on a document.
type EventOp int

const (
	// OpCreate indicates a new document appeared.
	OpCreate EventOp = iota
	// OpModify indicates an existing document was modified.
	OpModify
	// OpDelete indicates a document was deleted.
	OpDelete
)

// String returns a human-readable representation of the operation.
func (op EventOp) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpModify:
		return "modify"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// DocEvent is a change notification for a file under the bundle's
// documents folder.
type DocEvent struct {
	// Path is the absolute path to the file that changed.
	Path string
	// Subject is the patient id the document belongs to (its first
	// path element under documents/), empty for files at the root.
	Subject string
	// Op is the operation that occurred.
	Op EventOp
}

// Watcher watches a bundle's documents folder so a view can refresh
// previews when files are added or replaced outside the application.
// It uses fsnotify for cross-platform file system event monitoring.
type Watcher struct {
	watcher *fsnotify.Watcher
	events  chan DocEvent
	errors  chan error
	done    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
	docsDir string
}

// NewWatcher creates a Watcher for the bundle. It must be started
// with Start() before it emits events.
func (b *Bundle) NewWatcher() (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		watcher: watcher,
		events:  make(chan DocEvent, 100),
		errors:  make(chan error, 10),
		done:    make(chan struct{}),
		docsDir: b.DocumentsDir(),
	}, nil
}

// Start begins watching the documents folder and every existing
// patient subfolder. Patient folders created later are picked up
// automatically.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("watcher already running")
	}

	if err := w.watcher.Add(w.docsDir); err != nil {
		return fmt.Errorf("failed to watch documents directory %s: %w", w.docsDir, err)
	}
	matches, err := filepath.Glob(filepath.Join(w.docsDir, "*"))
	if err == nil {
		for _, m := range matches {
			// Non-directories are rejected by fsnotify only on some
			// platforms; adding a file watch is harmless.
			_ = w.watcher.Add(m)
		}
	}

	w.running = true
	w.wg.Add(1)
	go w.processEvents()

	return nil
}

// Stop stops watching and cleans up resources. It blocks until the
// event processing goroutine has exited.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	w.mu.Unlock()

	close(w.done)

	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}

	w.wg.Wait()

	close(w.events)
	close(w.errors)

	return nil
}

// Events returns the channel that emits DocEvent notifications.
// The channel is closed when the watcher is stopped.
func (w *Watcher) Events() <-chan DocEvent {
	return w.events
}

// Errors returns the channel that emits error notifications.
// The channel is closed when the watcher is stopped.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// processEvents converts fsnotify events into DocEvent notifications.
func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			// A new patient folder needs its own watch.
			if event.Has(fsnotify.Create) {
				_ = w.watcher.Add(event.Name)
			}

			if docEvent, ok := w.convertEvent(event); ok {
				select {
				case w.events <- docEvent:
				case <-w.done:
					return
				}
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}

			select {
			case w.errors <- err:
			case <-w.done:
				return
			}
		}
	}
}

// convertEvent converts an fsnotify event to a DocEvent.
// Returns (DocEvent{}, false) for events that should be ignored.
func (w *Watcher) convertEvent(event fsnotify.Event) (DocEvent, bool) {
	var op EventOp
	switch {
	case event.Has(fsnotify.Create):
		op = OpCreate
	case event.Has(fsnotify.Write):
		op = OpModify
	case event.Has(fsnotify.Remove):
		op = OpDelete
	case event.Has(fsnotify.Rename):
		// Treat rename as delete (the new name will trigger a create).
		op = OpDelete
	default:
		// Ignore chmod and other events.
		return DocEvent{}, false
	}

	return DocEvent{
		Path:    event.Name,
		Subject: w.subjectFor(event.Name),
		Op:      op,
	}, true
}

// subjectFor derives the patient id from a path under documents/.
func (w *Watcher) subjectFor(path string) string {
	rel, err := filepath.Rel(w.docsDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return ""
	}
	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) < 2 {
		return ""
	}
	return parts[0]
}
