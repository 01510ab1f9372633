package sketchmap

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bodgit/sketchmap/grid"
)

type job struct {
	mosaic *Mosaic
	coord  grid.Coordinate
}

func (s *SketchMap) findPanes(ctx context.Context, mosaics []*Mosaic) (<-chan job, <-chan error) {
	out := make(chan job)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		for _, m := range mosaics {
			// Deleted since the snapshot was taken
			if m.Deleted() {
				continue
			}
			for _, c := range m.grid.Coordinates() {
				select {
				case out <- job{m, c}:
				case <-ctx.Done():
					errc <- ctx.Err()
					return
				}
			}
		}
	}()
	return out, errc
}

// A failed tile doesn't stop the worker, every error is passed on
func (s *SketchMap) paneWorker(in <-chan job) <-chan error {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for j := range in {
			if _, err := s.renderPane(j.mosaic, j.coord); err != nil && !errors.Is(err, ErrDeleted) {
				errc <- err
			}
		}
	}()
	return errc
}

func waitForPipeline(errs ...<-chan error) error {
	var joined []error
	for err := range mergeErrors(errs...) {
		if err != nil {
			joined = append(joined, err)
		}
	}
	return errors.Join(joined...)
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// RenderAll renders every registered mosaic using a pool of workers.
func (s *SketchMap) RenderAll(ctx context.Context) error {
	jobs, errc := s.findPanes(ctx, s.registry.Mosaics())

	errcList := []<-chan error{errc}
	for i := 0; i < s.workers; i++ {
		errcList = append(errcList, s.paneWorker(jobs))
	}

	return waitForPipeline(errcList...)
}

// Serve renders every registered mosaic at the configured interval until ctx
// is cancelled.
func (s *SketchMap) Serve(ctx context.Context) error {
	t := time.NewTicker(s.interval)
	defer t.Stop()

	for {
		if err := s.RenderAll(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("Failed to render mosaics", "error", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}

func (s *SketchMap) String() string {
	return "sketchmap"
}
