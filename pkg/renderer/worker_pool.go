package renderer

import (
	"context"
	"runtime"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// TileTask represents a tile rendering task for the worker pool
type TileTask struct {
	Tile          *Tile
	PassNumber    int
	TargetSamples int
	TaskID        int            // Index into the result slice
	PixelStats    [][]PixelStats // Shared pixel stats array to write to
}

// TileResult contains the result from rendering a tile
type TileResult struct {
	TaskID int
	Stats  TileStats
}

// WorkerPool manages parallel tile rendering
type WorkerPool struct {
	renderer   *TileRenderer
	numWorkers int
}

// NewWorkerPool creates a worker pool with the specified number of workers.
// Zero or negative means one worker per CPU.
func NewWorkerPool(renderer *TileRenderer, numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &WorkerPool{
		renderer:   renderer,
		numWorkers: numWorkers,
	}
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// Run renders every task and returns the results indexed by TaskID. Each
// tile is rendered by exactly one worker; the first failing tile, or ctx,
// cancels the tasks that have not started yet.
func (wp *WorkerPool) Run(ctx context.Context, tasks []TileTask) ([]TileResult, error) {
	g, ctx := errgroup.WithContext(ctx)
	taskQueue := make(chan TileTask)
	results := make([]TileResult, len(tasks))

	// Feed tasks until done or cancelled
	g.Go(func() error {
		defer close(taskQueue)
		for _, task := range tasks {
			select {
			case taskQueue <- task:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < wp.numWorkers; w++ {
		g.Go(func() error {
			for task := range taskQueue {
				stats, err := wp.runTask(task)
				if err != nil {
					return err
				}
				// Each TaskID is written by exactly one worker
				results[task.TaskID] = TileResult{TaskID: task.TaskID, Stats: stats}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// runTask renders one tile, turning a panic into an error so that a single
// degenerate tile cannot bring down the process
func (wp *WorkerPool) runTask(task TileTask) (stats TileStats, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("tile %d panicked in pass %d: %v", task.Tile.ID, task.PassNumber, r)
		}
	}()

	stats = wp.renderer.RenderTileBounds(task.Tile.Bounds, task.PixelStats, task.Tile.Sampler, task.TargetSamples)
	return stats, nil
}
