package surface

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"

	"github.com/bodgit/sketchmap/digest"
	"github.com/bodgit/sketchmap/palette"
)

// Writer encodes tiles and writes them into surfaces.
type Writer struct {
	cache    *Cache
	encoder  palette.Encoder
	detector *digest.Detector
	logger   *slog.Logger
}

// NewWriter returns a Writer resolving surfaces through cache and encoding
// tiles with encoder. A nil logger discards output.
func NewWriter(cache *Cache, encoder palette.Encoder, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Writer{
		cache:    cache,
		encoder:  encoder,
		detector: digest.New(),
		logger:   logger,
	}
}

// Resolve returns the cache entry for the type of h.
func (w *Writer) Resolve(h any) *Entry {
	return w.cache.Resolve(h)
}

// Write encodes m and writes it into surface h. It returns true if the
// surface now shows m, either because it was written or because it already
// held the same content. It returns false without an error if the surface
// type is unsupported or the host faulted during the write.
//
// An error is returned if m can't be encoded, in which case the surface is
// untouched, or if the encoded buffer doesn't fit the surface buffer.
func (w *Writer) Write(h any, m image.Image) (bool, error) {
	e := w.cache.Resolve(h)
	if !e.Supported() {
		return false, nil
	}

	b, err := w.encoder.Encode(m)
	if err != nil {
		return false, fmt.Errorf("surface: encode: %w", err)
	}

	obj, err := e.Adapter.object(h)
	if err != nil {
		w.logger.Warn("Failed to read surface", "class", e.Class, "error", err)
		return false, nil
	}

	// Only buffers we have written before are trusted for comparison
	owned, err := e.Adapter.owned(obj)
	if err != nil {
		w.logger.Warn("Failed to read surface", "class", e.Class, "error", err)
		return false, nil
	}
	if owned {
		current, err := e.Adapter.colorBuffer(obj)
		if err != nil {
			w.logger.Warn("Failed to read surface", "class", e.Class, "error", err)
			return false, nil
		}
		if w.detector.Equal(current, b) {
			return true, nil
		}
	}

	if err := e.Adapter.write(obj, b); err != nil {
		if errors.Is(err, ErrBufferSize) {
			return false, err
		}
		w.logger.Warn("Failed to write surface", "class", e.Class, "error", err)
		return false, nil
	}

	return true, nil
}
