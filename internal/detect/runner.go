// Package detect drives the per-document analysis job: page extraction,
// per-page orientation analysis, and the ordered progress event sequence.
package detect

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/docpulse/docpulse/internal/domain"
	"github.com/docpulse/docpulse/internal/observability"
	"github.com/docpulse/docpulse/internal/pdf"
	"github.com/docpulse/docpulse/internal/session"
)

// ErrJobActive is returned when a client already has a running analysis.
var ErrJobActive = errors.New("analysis already running for client")

// Task is the handle for one scheduled analysis run. It is held in the
// runner's registry until the run finishes, which keeps a cancellation path
// open without changing the upload contract.
type Task struct {
	ClientID string
	done     chan struct{}
}

// Done is closed when the run has finished, successfully or not.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Runner executes analysis jobs, one goroutine per upload, at most one
// active run per client.
type Runner struct {
	store     *session.Store
	publisher domain.EventPublisher
	extractor domain.PageExtractor
	analyzer  domain.PageAnalyzer
	logger    *observability.Logger
	pageDelay time.Duration

	mu     sync.Mutex
	active map[string]*Task
}

// NewRunner creates a job runner. pageDelay throttles the run between
// phases and pages; zero disables the pauses.
func NewRunner(store *session.Store, publisher domain.EventPublisher,
	extractor domain.PageExtractor, analyzer domain.PageAnalyzer,
	logger *observability.Logger, pageDelay time.Duration) *Runner {
	return &Runner{
		store:     store,
		publisher: publisher,
		extractor: extractor,
		analyzer:  analyzer,
		logger:    logger,
		pageDelay: pageDelay,
		active:    make(map[string]*Task),
	}
}

// Start registers the client's session, schedules an analysis run for the
// uploaded document, and returns immediately. A second Start for the same
// client while a run is active returns ErrJobActive without touching the
// existing session.
func (r *Runner) Start(ctx context.Context, clientID, path, filename string) (*Task, error) {
	r.mu.Lock()
	if _, ok := r.active[clientID]; ok {
		r.mu.Unlock()
		return nil, ErrJobActive
	}
	t := &Task{ClientID: clientID, done: make(chan struct{})}
	r.active[clientID] = t
	r.mu.Unlock()

	// The run's goroutine is not launched yet, so the session is in place
	// before any status transition can race it.
	r.store.Create(clientID, path, filename)

	go func() {
		defer func() {
			r.mu.Lock()
			delete(r.active, clientID)
			r.mu.Unlock()
			close(t.done)
		}()
		r.run(ctx, clientID, path)
	}()

	return t, nil
}

// Running reports whether the client currently has an active run.
func (r *Runner) Running(clientID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.active[clientID]
	return ok
}

func (r *Runner) run(ctx context.Context, clientID, path string) {
	logger := r.logger.With("client_id", clientID)
	logger.Info().Str("path", path).Msg("starting document analysis")

	if pdf.IsPDF(path) {
		r.runPDF(ctx, logger, clientID, path)
	} else {
		r.runImage(ctx, logger, clientID, path)
	}
}

func (r *Runner) runPDF(ctx context.Context, logger *observability.Logger, clientID, path string) {
	r.store.SetStatus(clientID, domain.SessionAnalyzing)

	totalPages, err := r.extractor.PageCount(ctx, path)
	if err != nil {
		r.fail(ctx, logger, clientID, err)
		return
	}

	r.emit(ctx, logger, domain.DetectionUpdate{
		ClientID: clientID,
		Status:   domain.DetectionAnalyzing,
		Progress: 0.1,
		Message:  fmt.Sprintf("%d pages detected", totalPages),
	})
	r.emit(ctx, logger, domain.PageCountUpdate{ClientID: clientID, TotalPages: totalPages})
	r.pause(ctx)

	pages, err := r.extractor.ExtractPages(ctx, path)
	if err != nil {
		r.fail(ctx, logger, clientID, err)
		return
	}

	r.store.SetStatus(clientID, domain.SessionProcessing)

	for i, page := range pages {
		pageNum := i + 1

		result, err := r.analyzer.Analyze(ctx, page)
		if err != nil {
			r.fail(ctx, logger, clientID, err)
			return
		}

		// Progress ramps as k/n*0.8; the 0.1 analyzing value is not added
		// in, so the ramp tops out at 0.8 before the final 1.0.
		r.emit(ctx, logger, domain.DetectionUpdate{
			ClientID: clientID,
			Status:   domain.DetectionProcessing,
			Progress: float64(pageNum) / float64(totalPages) * 0.8,
			Message:  fmt.Sprintf("Page %d/%d: %s", pageNum, totalPages, result.Orientation),
		})
		r.emit(ctx, logger, domain.PageResultUpdate{
			ClientID:   clientID,
			PageNumber: pageNum,
			Result:     result,
		})
		r.pause(ctx)
	}

	r.complete(ctx, logger, clientID)
	logger.Info().Int("pages", totalPages).Msg("PDF analysis completed")
}

func (r *Runner) runImage(ctx context.Context, logger *observability.Logger, clientID, path string) {
	r.store.SetStatus(clientID, domain.SessionAnalyzing)

	r.emit(ctx, logger, domain.DetectionUpdate{
		ClientID: clientID,
		Status:   domain.DetectionAnalyzing,
		Progress: 0.1,
		Message:  "1 page detected",
	})
	r.emit(ctx, logger, domain.PageCountUpdate{ClientID: clientID, TotalPages: 1})
	r.pause(ctx)

	page, err := r.extractor.DecodeImage(ctx, path)
	if err != nil {
		r.fail(ctx, logger, clientID, err)
		return
	}

	r.store.SetStatus(clientID, domain.SessionProcessing)

	result, err := r.analyzer.Analyze(ctx, page)
	if err != nil {
		r.fail(ctx, logger, clientID, err)
		return
	}

	r.emit(ctx, logger, domain.DetectionUpdate{
		ClientID: clientID,
		Status:   domain.DetectionProcessing,
		Progress: 0.8,
		Message:  fmt.Sprintf("Page 1/1: %s", result.Orientation),
	})
	r.emit(ctx, logger, domain.PageResultUpdate{
		ClientID:   clientID,
		PageNumber: 1,
		Result:     result,
	})

	r.complete(ctx, logger, clientID)
	logger.Info().Msg("image analysis completed")
}

func (r *Runner) complete(ctx context.Context, logger *observability.Logger, clientID string) {
	r.emit(ctx, logger, domain.DetectionUpdate{
		ClientID: clientID,
		Status:   domain.DetectionCompleted,
		Progress: 1.0,
		Message:  "Detection completed",
	})
	r.store.SetStatus(clientID, domain.SessionCompleted)
}

// fail emits the single terminal error event and marks the session. The run
// ends here; there are no retries.
func (r *Runner) fail(ctx context.Context, logger *observability.Logger, clientID string, err error) {
	logger.Error().Err(err).Msg("document analysis failed")
	r.emit(ctx, logger, domain.DetectionUpdate{
		ClientID: clientID,
		Status:   domain.DetectionError,
		Progress: 0.0,
		Message:  fmt.Sprintf("Error: %v", err),
	})
	r.store.SetStatus(clientID, domain.SessionError)
}

// emit publishes one event. Publish failures are logged and swallowed;
// delivery is best-effort and must never abort the event sequence.
func (r *Runner) emit(ctx context.Context, logger *observability.Logger, ev domain.Event) {
	if _, err := r.publisher.Publish(ctx, ev); err != nil {
		logger.Warn().Err(err).Str("kind", ev.Kind()).Msg("event publish failed, continuing")
	}
}

func (r *Runner) pause(ctx context.Context) {
	if r.pageDelay <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(r.pageDelay):
	}
}
