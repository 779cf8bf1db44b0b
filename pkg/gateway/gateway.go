/*
gateway coordinates the conversation with the assistant backend: it owns
the session, the ordered message list, the streamed-response consumption,
directive side effects and the research job lifecycle. The host
application drives it through public methods and observes it through the
UI interface; all state mutation happens here.
*/
package gateway

import (
	"context"
	"strings"
	"sync"
	"time"

	// Packages
	agent "github.com/getherd/go-agent"
	httpclient "github.com/getherd/go-agent/pkg/httpclient"
	research "github.com/getherd/go-agent/pkg/research"
	schema "github.com/getherd/go-agent/pkg/schema"
	textstream "github.com/getherd/go-agent/pkg/textstream"
	singleflight "golang.org/x/sync/singleflight"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Backend is the surface of the assistant API the gateway depends on,
// implemented by httpclient.Client.
type Backend interface {
	Session(ctx context.Context) (*schema.Session, error)
	RefreshSession(ctx context.Context) (*schema.Session, error)
	History(ctx context.Context) ([]schema.Message, error)
	SendMessage(ctx context.Context, message schema.MessageRequest, fn textstream.FrameFn) (*httpclient.SendResponse, error)
	ResearchStatus(ctx context.Context, requestID string) (*schema.ResearchStatus, error)
	CloseResearch(ctx context.Context, requestID string) error
	User(ctx context.Context, userID string) (*schema.User, error)
	PastOpenTasks(ctx context.Context, meetingID, userID string) ([]schema.Task, error)
	Digest(ctx context.Context, userID string) (*schema.Digest, error)
	ParseMeetingData(ctx context.Context, payload string) (*schema.MeetingData, error)
}

// Config assembles a gateway. Backend is required; everything else has a
// usable default.
type Config struct {
	Backend      Backend
	UI           agent.UI
	Prefs        *Prefs
	UserID       string
	PollInterval time.Duration // research poll interval, default 5s
	PollMaxAge   time.Duration // research poll window, default 30m
	Now          func() time.Time
}

// Gateway is the conversation controller. All exported methods are safe
// for concurrent use.
type Gateway struct {
	backend Backend
	ui      agent.UI
	prefs   *Prefs
	userID  string
	now     func() time.Time

	poller  *research.Poller
	tracker *research.Tracker
	ensure  singleflight.Group

	mu       sync.Mutex
	session  schema.Session
	messages []schema.Message
	sending  bool
	seen     map[string]bool // request ids already registered
}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New creates a gateway from a config.
func New(config Config) (*Gateway, error) {
	if config.Backend == nil {
		return nil, agent.ErrBadParameter.With("Backend")
	}
	if config.UI == nil {
		config.UI = agent.NopUI()
	}
	if config.Prefs == nil {
		prefs, err := NewPrefs("")
		if err != nil {
			return nil, err
		}
		config.Prefs = prefs
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	g := &Gateway{
		backend: config.Backend,
		ui:      config.UI,
		prefs:   config.Prefs,
		userID:  config.UserID,
		now:     config.Now,
		tracker: research.NewTracker(),
		seen:    make(map[string]bool),
	}
	g.poller = research.NewPoller(config.Backend, config.PollInterval, config.PollMaxAge, g.handleResearchEvent)
	return g, nil
}

// Close stops all background polling. The gateway must not be used after
// Close.
func (g *Gateway) Close() error {
	g.poller.StopAll()
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Start establishes the session and loads the stored transcript. A brand
// new session with no history is seeded with the canned init turn so the
// assistant produces its greeting.
func (g *Gateway) Start(ctx context.Context) error {
	session, err := g.EnsureSession(ctx)
	if err != nil {
		return err
	}

	history, err := g.backend.History(ctx)
	if err != nil {
		return err
	}

	g.mu.Lock()
	g.messages = history
	g.mu.Unlock()
	g.ui.MessagesChanged()

	if session.IsNew && len(history) == 0 {
		return g.sendTurn(ctx, schema.InitTurn, false)
	}
	return nil
}

// EnsureSession returns the current session, fetching one from the backend
// when none is held. Concurrent callers share a single fetch.
func (g *Gateway) EnsureSession(ctx context.Context) (schema.Session, error) {
	g.mu.Lock()
	if g.session.Valid() {
		session := g.session
		g.mu.Unlock()
		return session, nil
	}
	g.mu.Unlock()

	v, err, _ := g.ensure.Do("session", func() (any, error) {
		session, err := g.backend.Session(ctx)
		if err != nil {
			return nil, err
		}
		g.mu.Lock()
		g.session = *session
		g.mu.Unlock()
		return *session, nil
	})
	if err != nil {
		return schema.Session{}, err
	}
	return v.(schema.Session), nil
}

// Refresh replaces the session and seeds the new one with the init turn
// so the assistant produces a fresh greeting.
func (g *Gateway) Refresh(ctx context.Context) error {
	if err := g.refresh(ctx); err != nil {
		return err
	}
	return g.sendTurn(ctx, schema.InitTurn, false)
}

// refresh replaces the session. Local state is discarded synchronously,
// before any network work, so in-flight stream deltas from the old session
// can never land in the new one.
func (g *Gateway) refresh(ctx context.Context) error {
	g.mu.Lock()
	g.session = schema.Session{}
	g.messages = nil
	g.sending = false
	g.seen = make(map[string]bool)
	g.mu.Unlock()

	g.poller.StopAll()
	g.tracker.Reset()
	g.ui.MessagesChanged()

	session, err := g.backend.RefreshSession(ctx)
	if err != nil {
		return err
	}
	g.mu.Lock()
	g.session = *session
	g.mu.Unlock()
	return nil
}

// Messages returns a snapshot of the transcript in display order.
func (g *Gateway) Messages() []schema.Message {
	g.mu.Lock()
	defer g.mu.Unlock()
	result := make([]schema.Message, len(g.messages))
	copy(result, g.messages)
	return result
}

// SessionID returns the current session identifier, or empty when no
// session is held.
func (g *Gateway) SessionID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.session.ID
}

// ResearchActive reports whether a research job is being polled, during
// which new turns are rejected.
func (g *Gateway) ResearchActive() bool {
	return g.poller.Active()
}

// Send submits a user turn. At most one turn is in flight and none may be
// submitted while a research job is active; both violations return
// ErrConflict.
func (g *Gateway) Send(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return agent.ErrBadParameter.With("empty message")
	}
	return g.sendTurn(ctx, text, true)
}
