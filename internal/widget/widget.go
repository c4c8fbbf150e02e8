// Package widget is the content slot of the dashboard: it maps panel ids to
// titles and to the text drawn inside each panel.
package widget

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/x/ansi"
)

// Panel ids known to the dashboard.
const (
	SymbolSelector = "symbolSelector"
	Liquidation    = "liquidation"
	TradeVolume    = "tradeVolume"
	OrderBook      = "orderBook"
	FundingRate    = "fundingRate"
)

// ContentFunc produces the body lines of a panel for the given inner size in
// terminal cells. Lines longer than width are truncated by the registry.
type ContentFunc func(width, height int) []string

// Widget describes one panel kind.
type Widget struct {
	ID      string
	Heading string
	Content ContentFunc
}

// Registry holds the known widgets in registration order.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	widgets map[string]Widget
}

// NewRegistry returns a registry with the built-in panels.
func NewRegistry() *Registry {
	r := &Registry{widgets: make(map[string]Widget)}
	for _, w := range builtin() {
		r.Register(w)
	}
	return r
}

// Register adds w, replacing a widget with the same id in place.
func (r *Registry) Register(w Widget) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.widgets[w.ID]; !ok {
		r.order = append(r.order, w.ID)
	}
	r.widgets[w.ID] = w
}

// IDs returns the registered ids in registration order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.widgets[id]
	return ok
}

// Title returns the label drawn on a panel's border: the id upper-cased.
func (r *Registry) Title(id string) string {
	return strings.ToUpper(id)
}

// Render returns the panel body for an inner area of width x height cells.
// The result has at most height lines, none wider than width.
func (r *Registry) Render(id string, width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	r.mu.RLock()
	w, ok := r.widgets[id]
	r.mu.RUnlock()

	var lines []string
	switch {
	case !ok:
		lines = []string{fmt.Sprintf("unknown panel %q", id)}
	default:
		if w.Heading != "" {
			lines = append(lines, w.Heading)
		}
		if w.Content != nil {
			lines = append(lines, w.Content(width, height-len(lines))...)
		}
	}

	if len(lines) > height {
		lines = lines[:height]
	}
	for i, line := range lines {
		lines[i] = fitLine(line, width)
	}
	return strings.Join(lines, "\n")
}

// fitLine truncates line to width cells, marking the cut with an ellipsis.
func fitLine(line string, width int) string {
	if ansi.StringWidth(line) <= width {
		return line
	}
	if width == 1 {
		return ansi.Truncate(line, width, "")
	}
	return ansi.Truncate(line, width, "…")
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide registry.
func Default() *Registry {
	defaultOnce.Do(func() { defaultRegistry = NewRegistry() })
	return defaultRegistry
}

// IDs returns the ids of the default registry.
func IDs() []string { return Default().IDs() }

// Title returns the title of id from the default registry.
func Title(id string) string { return Default().Title(id) }

// DefaultVisible is the panel selection used on first run.
func DefaultVisible() []string {
	return []string{SymbolSelector, Liquidation, TradeVolume, OrderBook, FundingRate}
}
