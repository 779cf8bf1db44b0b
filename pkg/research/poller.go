/*
research tracks long-running background research jobs. A poller owns the
polling loop for each registered job and reports lifecycle events to the
caller; a tracker records which transcript messages belong to which job so
a closed job's messages can be purged selectively.
*/
package research

import (
	"context"
	"errors"
	"sync"
	"time"

	// Packages
	agent "github.com/getherd/go-agent"
	schema "github.com/getherd/go-agent/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// StatusClient is the backend surface the poller needs.
type StatusClient interface {
	ResearchStatus(ctx context.Context, requestID string) (*schema.ResearchStatus, error)
	CloseResearch(ctx context.Context, requestID string) error
}

// EventKind discriminates poller events.
type EventKind int

// Event is one lifecycle notification for a job.
type Event struct {
	Kind         EventKind
	RequestID    string
	Query        string
	DownloadLink string
	Err          error
}

// EventFn receives job events. Calls are serialized per job.
type EventFn func(Event)

// Poller polls registered jobs on a fixed interval until they complete,
// are closed, or expire.
type Poller struct {
	client   StatusClient
	interval time.Duration
	maxAge   time.Duration
	fn       EventFn

	mu   sync.Mutex
	jobs map[string]*job
	wg   sync.WaitGroup
}

type job struct {
	cancel context.CancelFunc
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	// Progress is emitted on each successful status check while the job
	// is still running; Completed carries the download link; Closed means
	// the backend discarded the job; Expired means the job outlived the
	// maximum polling window; Warning reports a transient check failure.
	Progress EventKind = iota
	Completed
	Closed
	Expired
	Warning
)

const (
	DefaultInterval = 5 * time.Second
	DefaultMaxAge   = 30 * time.Minute
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewPoller creates a poller delivering events to fn. Zero interval or
// maxAge select the defaults.
func NewPoller(client StatusClient, interval, maxAge time.Duration, fn EventFn) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Poller{
		client:   client,
		interval: interval,
		maxAge:   maxAge,
		fn:       fn,
		jobs:     make(map[string]*job),
	}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Start begins polling a job. The first status check happens immediately,
// then on the poller's interval. Starting an id that is already polled is
// a no-op; starting a second id while another job is active returns
// ErrConflict, since at most one job runs per session.
func (p *Poller) Start(ctx context.Context, requestID string) error {
	if requestID == "" {
		return agent.ErrBadParameter.With("requestID")
	}

	p.mu.Lock()
	if _, exists := p.jobs[requestID]; exists {
		p.mu.Unlock()
		return nil
	}
	if len(p.jobs) > 0 {
		p.mu.Unlock()
		return agent.ErrConflict.With("another research job is active")
	}
	jobCtx, cancel := context.WithCancel(ctx)
	p.jobs[requestID] = &job{cancel: cancel}
	p.wg.Add(1)
	p.mu.Unlock()

	go p.poll(jobCtx, requestID)
	return nil
}

// Active reports whether any job is currently polled.
func (p *Poller) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.jobs) > 0
}

// Close tells the backend to discard a job, then stops polling it. No
// event is emitted; the caller decides what to do with the job's messages.
func (p *Poller) Close(ctx context.Context, requestID string) error {
	p.stop(requestID)
	return p.client.CloseResearch(ctx, requestID)
}

// Stop cancels polling for a job without notifying the backend.
func (p *Poller) Stop(requestID string) {
	p.stop(requestID)
}

// StopAll cancels every polling loop without notifying the backend, and
// waits for the loops to exit.
func (p *Poller) StopAll() {
	p.mu.Lock()
	for id, j := range p.jobs {
		j.cancel()
		delete(p.jobs, id)
	}
	p.mu.Unlock()
	p.wg.Wait()
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (p *Poller) stop(requestID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if j, exists := p.jobs[requestID]; exists {
		j.cancel()
		delete(p.jobs, requestID)
	}
}

// poll runs the polling loop for one job until a terminal state.
func (p *Poller) poll(ctx context.Context, requestID string) {
	defer p.wg.Done()
	deadline := time.Now().Add(p.maxAge)
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if time.Now().After(deadline) {
			p.stop(requestID)
			p.fn(Event{Kind: Expired, RequestID: requestID})
			return
		}

		status, err := p.client.ResearchStatus(ctx, requestID)
		switch {
		case ctx.Err() != nil:
			return
		case errors.Is(err, agent.ErrJobClosed):
			p.stop(requestID)
			p.fn(Event{Kind: Closed, RequestID: requestID})
			return
		case err != nil:
			// Transient failure, keep polling
			p.fn(Event{Kind: Warning, RequestID: requestID, Err: err})
		case status.Completed():
			p.stop(requestID)
			p.fn(Event{Kind: Completed, RequestID: requestID, Query: status.Query, DownloadLink: status.DownloadLink})
			return
		default:
			p.fn(Event{Kind: Progress, RequestID: requestID, Query: status.Query})
		}

		timer.Reset(p.interval)
	}
}
