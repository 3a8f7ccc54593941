package dom

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/net/html"
)

const (
	EventInput  = "input"
	EventChange = "change"
	EventClick  = "click"
)

var (
	// ErrFileAssignmentBlocked is returned when the document refuses programmatic file assignment,
	// the way browsers do on some sites.
	ErrFileAssignmentBlocked = errors.New("file assignment is blocked by the document")
	ErrNotFileInput          = errors.New("element is not a file input")
)

// Event is a notification dispatched on an element after a mutation.
type Event struct {
	Type   string
	Target *html.Node
}

// Listener observes dispatched events. Listeners run synchronously inside the pass that
// dispatched the event and must not call Update.
type Listener func(doc *Document, ev Event)

// File is the surrogate of a browser File object assigned to a file input.
type File struct {
	Name string
	Type string
	Data []byte
}

// Document is a parsed HTML page plus the browser-side state the filler relies on.
type Document struct {
	mu   sync.Mutex
	root *html.Node

	evMu      sync.Mutex
	events    []Event
	listeners map[string][]Listener

	files map[*html.Node][]File

	// BlockFileAssignment makes SetFiles fail with ErrFileAssignmentBlocked.
	BlockFileAssignment bool
}

// Parse reads an HTML page into a Document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	return &Document{
		root:      root,
		listeners: make(map[string][]Listener),
		files:     make(map[*html.Node][]File),
	}, nil
}

// ParseString is a shortcut for Parse(strings.NewReader(s)).
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Root returns the document node. Access to the tree must happen inside Update.
func (d *Document) Root() *html.Node {
	return d.root
}

// Update runs fn with exclusive access to the tree.
func (d *Document) Update(fn func(root *html.Node)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	fn(d.root)
}

// Render writes the current tree as HTML.
func (d *Document) Render(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	return html.Render(w, d.root)
}

// String renders the document, ignoring render errors.
func (d *Document) String() string {
	var b strings.Builder
	_ = d.Render(&b)
	return b.String()
}

// On registers a listener for the given event type.
func (d *Document) On(eventType string, fn Listener) {
	d.evMu.Lock()
	defer d.evMu.Unlock()

	d.listeners[eventType] = append(d.listeners[eventType], fn)
}

// HasListeners reports whether anything on the page reacts to eventType. A page
// parsed from saved HTML has no scripts, so a click there can never render anything.
func (d *Document) HasListeners(eventType string) bool {
	d.evMu.Lock()
	defer d.evMu.Unlock()

	return len(d.listeners[eventType]) > 0
}

// Dispatch records an event and notifies its listeners.
func (d *Document) Dispatch(target *html.Node, eventType string) {
	ev := Event{Type: eventType, Target: target}

	d.evMu.Lock()
	d.events = append(d.events, ev)
	listeners := append([]Listener(nil), d.listeners[eventType]...)
	d.evMu.Unlock()

	for _, fn := range listeners {
		fn(d, ev)
	}
}

// Click activates an element, e.g. an "add another" button.
func (d *Document) Click(target *html.Node) {
	d.Dispatch(target, EventClick)
}

// Events returns a copy of every event dispatched so far.
func (d *Document) Events() []Event {
	d.evMu.Lock()
	defer d.evMu.Unlock()

	return append([]Event(nil), d.events...)
}

// EventsFor returns the types of events dispatched on target, in order.
func (d *Document) EventsFor(target *html.Node) []string {
	d.evMu.Lock()
	defer d.evMu.Unlock()

	types := make([]string, 0)
	for _, ev := range d.events {
		if ev.Target == target {
			types = append(types, ev.Type)
		}
	}

	return types
}

// SetFiles assigns files to a file input.
func (d *Document) SetFiles(n *html.Node, files ...File) error {
	if !IsTag(n, "input") || InputType(n) != "file" {
		return ErrNotFileInput
	}

	if d.BlockFileAssignment {
		return ErrFileAssignmentBlocked
	}

	d.files[n] = append([]File(nil), files...)
	return nil
}

// Files returns the files assigned to a file input.
func (d *Document) Files(n *html.Node) []File {
	return d.files[n]
}
