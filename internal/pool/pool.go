// Copyright 2024 The alneval Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
This package provides a facility to run a fixed set of workers on a
bounded number of goroutines.

Each worker is defined by an interface, and the pool executes each
worker's Run method repeatedly until it returns the Done error. At most
limit workers run at the same time; the rest wait for a free slot in the
order they were given. The first worker to fail cancels the context
passed to the others, and workers that have not started yet are skipped.
*/
package pool

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// Done is used to signal to the pool that the worker has no more useful work
// to do.
var Done error = errors.New("pool worker is done")

// Worker represents a stateful task which is executed repeatedly by calling
// its Run method. Any resources associated with the Worker may be freed with
// Close.
type Worker interface {
	// Run executes a task once, returning an error on failure.
	Run(context.Context) error

	// Close releases any resources associated with the Worker.
	Close() error
}

// P implements a bounded pool of Workers.
type P struct {
	ctx     context.Context
	workers []Worker
	limit   int
}

// New creates a new pool of the given workers, running at most limit of
// them concurrently. A limit below one means no limit.
//
// The provided context will be passed to all workers' run methods.
func New(ctx context.Context, workers []Worker, limit int) *P {
	return &P{
		ctx:     ctx,
		workers: workers,
		limit:   limit,
	}
}

// Run starts the workers and waits for all of them to complete.
//
// Each Worker's Run method is called in a loop until the worker returns an
// error or the context passed to New is cancelled. If the error is Done, then
// it does not propagate to Run and instead the worker stops looping.
//
// If the context is cancelled for any reason no error is returned. Check the
// context for any errors in that case.
//
// Always cleans up the pool's workers by calling Close before returning.
//
// Returns the first error encountered from any worker that failed and cancels
// the rest.
func (p *P) Run() error {
	defer func() {
		// Clean up on exit.
		for _, w := range p.workers {
			w.Close()
		}
	}()

	g, ctx := errgroup.WithContext(p.ctx)
	if p.limit > 0 {
		g.SetLimit(p.limit)
	}
	for _, w := range p.workers {
		w := w
		g.Go(func() error {
			for {
				if ctx.Err() != nil {
					return nil
				}
				err := w.Run(ctx)
				if err == Done || ctx.Err() != nil {
					return nil
				} else if err != nil {
					return err
				}
			}
		})
	}
	return g.Wait()
}
