package tracking

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/khanglvm/mcp-scout/internal/metrics"
	"github.com/khanglvm/mcp-scout/internal/storage"
)

const (
	queueSize = 1000
	batchSize = 10

	flushInterval = 50 * time.Millisecond
)

// Recorder accepts search events.
type Recorder interface {
	Track(event SearchEvent)
}

// Tracker writes search events to storage from a single background
// goroutine. Track never blocks the caller; a full queue drops the event.
type Tracker struct {
	storage storage.Storage
	logger  *zap.Logger

	queue   chan SearchEvent
	done    chan struct{}
	stopped sync.Once
	wg      sync.WaitGroup
	ready   bool // storage initialized
	enabled atomic.Bool
}

// NewTracker initializes storage and starts the background writer. When
// storage fails to initialize the tracker stays usable but drops events.
func NewTracker(s storage.Storage, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Tracker{
		storage: s,
		logger:  logger,
		queue:   make(chan SearchEvent, queueSize),
		done:    make(chan struct{}),
	}

	if s != nil {
		if err := s.Init(); err != nil {
			logger.Warn("search history unavailable, events will be dropped", zap.Error(err))
		} else {
			t.ready = true
			t.enabled.Store(true)
		}
	}

	t.wg.Add(1)
	go t.run()
	return t
}

// Track queues event for writing.
func (t *Tracker) Track(event SearchEvent) {
	if !t.enabled.Load() {
		return
	}
	select {
	case t.queue <- event:
	default:
		metrics.HistoryEventsDropped.Inc()
		t.logger.Warn("history queue full, dropping event", zap.String("tool", event.Tool))
	}
}

// Stop flushes queued events and waits for the writer to exit. It is safe
// to call more than once.
func (t *Tracker) Stop() {
	t.stopped.Do(func() {
		close(t.done)
		t.wg.Wait()
	})
}

// Disable makes Track a no-op until Enable is called.
func (t *Tracker) Disable() { t.enabled.Store(false) }

// Enable resumes tracking. It has no effect without working storage.
func (t *Tracker) Enable() {
	if t.ready {
		t.enabled.Store(true)
	}
}

// IsEnabled reports whether Track currently accepts events.
func (t *Tracker) IsEnabled() bool { return t.enabled.Load() }

// QueueLen returns the number of events waiting to be written.
func (t *Tracker) QueueLen() int { return len(t.queue) }

func (t *Tracker) run() {
	defer t.wg.Done()

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	var pending []SearchEvent
	write := func() {
		if len(pending) > 0 {
			t.write(pending)
			pending = nil
		}
	}

	for {
		select {
		case e := <-t.queue:
			if pending = append(pending, e); len(pending) >= batchSize {
				write()
			}
		case <-ticker.C:
			write()
		case <-t.done:
			for {
				select {
				case e := <-t.queue:
					pending = append(pending, e)
				default:
					write()
					return
				}
			}
		}
	}
}

func (t *Tracker) write(events []SearchEvent) {
	records := make([]storage.SearchRecord, len(events))
	for i, e := range events {
		records[i] = e.ToStorage()
	}
	if err := t.storage.RecordSearches(records); err != nil {
		t.logger.Warn("failed to record search history", zap.Int("events", len(records)), zap.Error(err))
	}
}
