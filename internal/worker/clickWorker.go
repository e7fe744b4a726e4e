// Package worker decouples click recording from the redirect response: the
// resolver enqueues visits and this worker persists them in the background.
package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// queueSize bounds the visit backlog. A full queue drops visits rather
// than delaying redirects.
const queueSize = 1024

const recordTimeout = 3 * time.Second

// ClickTask is one visit waiting to be recorded.
type ClickTask struct {
	URLID     string
	IPAddress string
	UserAgent string
	Referer   string
}

// Recorder persists one visit.
type Recorder interface {
	Record(ctx context.Context, urlID, ip, userAgent, referer string) error
}

// ClickTaskWorker drains the visit queue. Recording failures are logged
// and suppressed; they never reach the visitor-facing redirect.
type ClickTaskWorker struct {
	in       chan ClickTask
	logger   *zap.Logger
	recorder Recorder
}

func NewClickTaskWorker(logger *zap.Logger, recorder Recorder) *ClickTaskWorker {
	return &ClickTaskWorker{
		in:       make(chan ClickTask, queueSize),
		logger:   logger,
		recorder: recorder,
	}
}

// GetInChannel hands out the send side of the queue.
func (w *ClickTaskWorker) GetInChannel() chan<- ClickTask {
	return w.in
}

// Run consumes tasks until the channel is closed.
func (w *ClickTaskWorker) Run() {
	for task := range w.in {
		w.record(task)
	}
}

func (w *ClickTaskWorker) record(task ClickTask) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	if err := w.recorder.Record(ctx, task.URLID, task.IPAddress, task.UserAgent, task.Referer); err != nil {
		w.logger.Error("cannot record click", zap.String("url_id", task.URLID), zap.Error(err))
	}
}

// Close stops the worker after the backlog drains.
func (w *ClickTaskWorker) Close() {
	close(w.in)
}
