// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"sync"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.uber.org/zap"
)

// WorkerGroup tracks opened job workers so shutdown can drain them before the
// gRPC connection goes away.
type WorkerGroup struct {
	mu      sync.Mutex
	logger  *zap.Logger
	workers []groupEntry
}

type groupEntry struct {
	taskType string
	worker   worker.JobWorker
}

func NewWorkerGroup(logger *zap.Logger) *WorkerGroup {
	return &WorkerGroup{logger: logger}
}

// Add registers an opened worker for later shutdown.
func (g *WorkerGroup) Add(taskType string, w worker.JobWorker) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.workers = append(g.workers, groupEntry{taskType: taskType, worker: w})
}

// Close stops polling and waits for in-flight jobs, worker by worker. When
// ctx expires the remaining drains are abandoned so shutdown cannot hang on
// a stuck job.
func (g *WorkerGroup) Close(ctx context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, entry := range g.workers {
		g.logger.Info("stopping worker", zap.String("taskType", entry.taskType))
		entry.worker.Close()

		done := make(chan struct{})
		go func(w worker.JobWorker) {
			w.AwaitClose()
			close(done)
		}(entry.worker)

		select {
		case <-done:
		case <-ctx.Done():
			g.logger.Warn("worker drain abandoned",
				zap.String("taskType", entry.taskType), zap.Error(ctx.Err()))
			g.workers = nil
			return
		}
	}
	g.workers = nil
}
