/*
Package sketchmap renders images across grids of fixed-size host display
surfaces.

A source image is split into 128 by 128 tiles, each bound to one surface. Tiles
are converted to the host's native palette format and written directly into
the surface buffer, but only when the content has changed.
*/
package sketchmap

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"time"

	"github.com/bodgit/sketchmap/grid"
	"github.com/bodgit/sketchmap/surface"
)

const (
	defaultWorkers  = 4
	defaultInterval = time.Second
)

var (
	// ErrExists is returned when a mosaic identifier is already in use
	ErrExists = errors.New("sketchmap: mosaic already exists")
	// ErrDeleted is returned when using a deleted mosaic
	ErrDeleted = errors.New("sketchmap: mosaic deleted")
	// ErrIncompleteLayout is returned when a layout doesn't bind every
	// coordinate of the grid exactly once
	ErrIncompleteLayout = errors.New("sketchmap: incomplete layout")
)

// Options tunes a SketchMap. Zero values pick defaults.
type Options struct {
	// World new surfaces are allocated in
	World string
	// Workers is the number of concurrent tile writers used by RenderAll
	Workers int
	// Interval between renders when serving
	Interval time.Duration
}

// SketchMap creates, renders, and deletes mosaics.
type SketchMap struct {
	host     Host
	store    Store
	registry *Registry
	writer   *surface.Writer
	logger   *slog.Logger

	world    string
	workers  int
	interval time.Duration
}

// New returns a SketchMap. A nil store skips persistence and a nil logger
// discards output.
func New(host Host, store Store, registry *Registry, writer *surface.Writer, logger *slog.Logger, opts Options) *SketchMap {
	if store == nil {
		store = nopStore{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Workers < 1 {
		opts.Workers = defaultWorkers
	}
	if opts.Interval <= 0 {
		opts.Interval = defaultInterval
	}

	return &SketchMap{
		host:     host,
		store:    store,
		registry: registry,
		writer:   writer,
		logger:   logger,
		world:    opts.World,
		workers:  opts.Workers,
		interval: opts.Interval,
	}
}

// Registry returns the registry of live mosaics.
func (s *SketchMap) Registry() *Registry {
	return s.registry
}

// Create builds a mosaic on freshly allocated surfaces. m must already be
// exactly xPanes*128 by yPanes*128 pixels, see Scale.
func (s *SketchMap) Create(m image.Image, id string, xPanes, yPanes int, public bool, format Format) (*Mosaic, error) {
	mosaic, err := newMosaic(m, id, xPanes, yPanes, public, format)
	if err != nil {
		return nil, err
	}

	for _, c := range mosaic.grid.Coordinates() {
		sf, err := s.host.NewSurface(s.world)
		if err != nil {
			return nil, fmt.Errorf("sketchmap: allocate surface for %s: %w", c, err)
		}
		mosaic.bind(c, sf)
	}

	if err := s.publish(mosaic); err != nil {
		return nil, err
	}

	s.logger.Info("Created mosaic", "mosaic", id, "x", xPanes, "y", yPanes)

	return mosaic, nil
}

// Restore rebuilds a mosaic on the existing surfaces named by layout.
func (s *SketchMap) Restore(m image.Image, id string, xPanes, yPanes int, public bool, format Format, layout *grid.Layout) (*Mosaic, error) {
	if layout == nil {
		return nil, fmt.Errorf("%w: no layout", ErrIncompleteLayout)
	}

	mosaic, err := newMosaic(m, id, xPanes, yPanes, public, format)
	if err != nil {
		return nil, err
	}

	if err := layout.Each(func(sid uint16, c grid.Coordinate) error {
		if !mosaic.grid.Contains(c) {
			return fmt.Errorf("%w: surface %d at %s is outside the grid", ErrIncompleteLayout, sid, c)
		}
		if _, ok := mosaic.panes[c]; ok {
			return fmt.Errorf("%w: %s is bound more than once", ErrIncompleteLayout, c)
		}
		sf, err := s.host.Surface(sid)
		if err != nil {
			return fmt.Errorf("sketchmap: surface %d: %w", sid, err)
		}
		mosaic.bind(c, sf)
		return nil
	}); err != nil {
		return nil, err
	}

	if len(mosaic.panes) != mosaic.grid.Len() {
		return nil, fmt.Errorf("%w: %d of %d coordinates bound", ErrIncompleteLayout, len(mosaic.panes), mosaic.grid.Len())
	}

	if err := s.publish(mosaic); err != nil {
		return nil, err
	}

	s.logger.Debug("Restored mosaic", "mosaic", id, "x", xPanes, "y", yPanes)

	return mosaic, nil
}

// Only fully bound mosaics reach here
func (s *SketchMap) publish(m *Mosaic) error {
	if err := s.registry.Register(m); err != nil {
		return err
	}
	if err := s.store.Save(m); err != nil {
		s.registry.Unregister(m)
		return fmt.Errorf("sketchmap: save %q: %w", m.id, err)
	}
	return nil
}

// Load restores every mosaic returned by l. Mosaics that fail to restore are
// skipped and their errors returned together.
func (s *SketchMap) Load(l Loader) (int, error) {
	records, err := l.Records()
	if err != nil {
		return 0, err
	}

	var n int
	var errs []error
	for _, r := range records {
		if _, err := s.Restore(r.Image, r.ID, r.XPanes, r.YPanes, r.Public, r.Format, r.Layout); err != nil {
			s.logger.Warn("Failed to restore mosaic", "mosaic", r.ID, "error", err)
			errs = append(errs, err)
			continue
		}
		n++
	}

	return n, errors.Join(errs...)
}

// Delete removes the mosaic from the store and the registry. Nothing is
// written to its surfaces afterwards.
func (s *SketchMap) Delete(m *Mosaic) error {
	if m.Deleted() {
		return ErrDeleted
	}
	if err := s.store.Delete(m); err != nil {
		return fmt.Errorf("sketchmap: delete %q: %w", m.id, err)
	}
	m.deleted.Store(true)
	s.registry.Unregister(m)

	s.logger.Info("Deleted mosaic", "mosaic", m.id)

	return nil
}

func (s *SketchMap) renderPane(m *Mosaic, c grid.Coordinate) (bool, error) {
	if m.Deleted() {
		return false, ErrDeleted
	}

	p := m.panes[c]
	ok, err := s.writer.Write(p.surface, p.tile)
	if err != nil {
		return false, fmt.Errorf("sketchmap: mosaic %q tile %s: %w", m.id, c, err)
	}
	if !ok {
		attrs := []any{"mosaic", m.id, "tile", c.String(), "surface", p.surface.ID()}
		if e := s.writer.Resolve(p.surface); !e.Supported() {
			attrs = append(attrs, "error", e.Err)
		}
		s.logger.Debug("Skipping tile", attrs...)
	}

	return ok, nil
}

// Render writes every tile of m, returning how many surfaces show their tile.
// Tiles that can't be written are skipped; their errors are returned together
// once every tile has been tried.
func (s *SketchMap) Render(m *Mosaic) (int, error) {
	var n int
	var errs []error
	for _, c := range m.grid.Coordinates() {
		ok, err := s.renderPane(m, c)
		switch {
		case errors.Is(err, ErrDeleted):
			return n, err
		case err != nil:
			errs = append(errs, err)
		case ok:
			n++
		}
	}
	return n, errors.Join(errs...)
}
