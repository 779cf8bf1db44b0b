package gateway_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	// Packages
	agent "github.com/getherd/go-agent"
	directive "github.com/getherd/go-agent/pkg/directive"
	gateway "github.com/getherd/go-agent/pkg/gateway"
	httpclient "github.com/getherd/go-agent/pkg/httpclient"
	schema "github.com/getherd/go-agent/pkg/schema"
	textstream "github.com/getherd/go-agent/pkg/textstream"
	assert "github.com/stretchr/testify/assert"
)

///////////////////////////////////////////////////////////////////////////////
// HELPERS

// fakeBackend scripts the backend surface. The reply function answers each
// turn; the status function answers research polls.
type fakeBackend struct {
	mu        sync.Mutex
	sessionID string
	isNew     bool
	refreshes int
	history   []schema.Message
	received  []schema.MessageRequest
	closed    []string
	digest    *schema.Digest
	digests   int
	user      *schema.User
	tasks     []schema.Task
	meeting   *schema.MeetingData

	reply  func(req schema.MessageRequest, fn textstream.FrameFn) (*httpclient.SendResponse, error)
	status func(requestID string) (*schema.ResearchStatus, error)
}

func (b *fakeBackend) Session(ctx context.Context) (*schema.Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return &schema.Session{ID: b.sessionID, IsNew: b.isNew}, nil
}

func (b *fakeBackend) RefreshSession(ctx context.Context) (*schema.Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refreshes++
	b.sessionID = b.sessionID + "r"
	return &schema.Session{ID: b.sessionID, IsNew: true}, nil
}

func (b *fakeBackend) History(ctx context.Context) ([]schema.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.history, nil
}

func (b *fakeBackend) SendMessage(ctx context.Context, req schema.MessageRequest, fn textstream.FrameFn) (*httpclient.SendResponse, error) {
	b.mu.Lock()
	b.received = append(b.received, req)
	reply := b.reply
	b.mu.Unlock()
	if reply != nil {
		return reply(req, fn)
	}
	return stream(fn, "You said: "+req.Message)
}

func (b *fakeBackend) ResearchStatus(ctx context.Context, requestID string) (*schema.ResearchStatus, error) {
	if b.status != nil {
		return b.status(requestID)
	}
	return &schema.ResearchStatus{Status: []string{schema.StatusActive}}, nil
}

func (b *fakeBackend) CloseResearch(ctx context.Context, requestID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = append(b.closed, requestID)
	return nil
}

func (b *fakeBackend) User(ctx context.Context, userID string) (*schema.User, error) {
	if b.user == nil {
		return nil, agent.ErrNotFound
	}
	return b.user, nil
}

func (b *fakeBackend) PastOpenTasks(ctx context.Context, meetingID, userID string) ([]schema.Task, error) {
	return b.tasks, nil
}

func (b *fakeBackend) Digest(ctx context.Context, userID string) (*schema.Digest, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.digests++
	if b.digest == nil {
		return &schema.Digest{}, nil
	}
	return b.digest, nil
}

func (b *fakeBackend) ParseMeetingData(ctx context.Context, payload string) (*schema.MeetingData, error) {
	if b.meeting == nil {
		return nil, agent.ErrInternalServerError
	}
	return b.meeting, nil
}

func (b *fakeBackend) turns() []schema.MessageRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	result := make([]schema.MessageRequest, len(b.received))
	copy(result, b.received)
	return result
}

// stream answers a turn with a start frame, the text in two chunks and an
// end frame.
func stream(fn textstream.FrameFn, text string) (*httpclient.SendResponse, error) {
	half := len(text) / 2
	for _, frame := range []schema.Frame{
		{Type: schema.EventStart},
		{Type: schema.EventChunk, Content: text[:half]},
		{Type: schema.EventChunk, Content: text[half:]},
		{Type: schema.EventEnd},
	} {
		if err := fn(frame); err != nil {
			return nil, err
		}
	}
	return &httpclient.SendResponse{}, nil
}

// recordUI captures UI side effects; async ones are mirrored to a channel
// so tests can wait on them.
type recordUI struct {
	mu        sync.Mutex
	forms     []schema.MeetingData
	profiles  []schema.User
	tasks     [][]schema.Task
	notices   []string
	attention []string
	events    chan string
}

func newRecordUI() *recordUI {
	return &recordUI{events: make(chan string, 64)}
}

func (u *recordUI) MessagesChanged() {}
func (u *recordUI) ShowProfile(user schema.User) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.profiles = append(u.profiles, user)
}
func (u *recordUI) ShowMeetingForm(data schema.MeetingData) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.forms = append(u.forms, data)
}
func (u *recordUI) ShowPastTasks(tasks []schema.Task) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.tasks = append(u.tasks, tasks)
}
func (u *recordUI) ResearchStarted(requestID string)  { u.events <- "started:" + requestID }
func (u *recordUI) ResearchProgress(string, string)   {}
func (u *recordUI) ResearchCompleted(requestID, url string) {
	u.events <- "completed:" + requestID + ":" + url
}
func (u *recordUI) ResearchClosed(requestID string) { u.events <- "closed:" + requestID }
func (u *recordUI) Notify(text string) {
	u.mu.Lock()
	u.notices = append(u.notices, text)
	u.mu.Unlock()
	u.events <- "notify:" + text
}
func (u *recordUI) Attention(title, body string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.attention = append(u.attention, title+": "+body)
}

func waitEvent(t *testing.T, ui *recordUI, prefix string) string {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case e := <-ui.events:
			if strings.HasPrefix(e, prefix) {
				return e
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %q event", prefix)
		}
	}
}

func newGateway(t *testing.T, backend *fakeBackend, ui agent.UI) *gateway.Gateway {
	t.Helper()
	g, err := gateway.New(gateway.Config{
		Backend:      backend,
		UI:           ui,
		UserID:       "user-1",
		PollInterval: 5 * time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { g.Close() })
	return g
}

///////////////////////////////////////////////////////////////////////////////
// TESTS

func Test_gateway_001(t *testing.T) {
	// A brand-new session with no history is seeded with the hidden init
	// turn; only the assistant's greeting lands in the transcript
	assert := assert.New(t)
	backend := &fakeBackend{sessionID: "sess-1", isNew: true}
	g := newGateway(t, backend, nil)

	assert.NoError(g.Start(context.Background()))
	assert.Equal("sess-1", g.SessionID())

	turns := backend.turns()
	if assert.Len(turns, 1) {
		assert.Equal(schema.InitTurn, turns[0].Message)
		assert.Equal(schema.RoleSystem, turns[0].Type)
		assert.Equal("sess-1", turns[0].RequestID)
	}
	messages := g.Messages()
	if assert.Len(messages, 1) {
		assert.Equal(schema.RoleAgent, messages[0].Type)
		assert.Equal("You said: init", messages[0].Text)
	}
}

func Test_gateway_002(t *testing.T) {
	// An existing session loads history and sends no init turn
	assert := assert.New(t)
	backend := &fakeBackend{
		sessionID: "sess-1",
		history: []schema.Message{
			schema.NewMessage(schema.RoleUser, "earlier"),
			schema.NewMessage(schema.RoleAgent, "noted"),
		},
	}
	g := newGateway(t, backend, nil)

	assert.NoError(g.Start(context.Background()))
	assert.Empty(backend.turns())
	assert.Len(g.Messages(), 2)

	assert.NoError(g.Send(context.Background(), "hello"))
	messages := g.Messages()
	if assert.Len(messages, 4) {
		assert.Equal("hello", messages[2].Text)
		assert.Equal("You said: hello", messages[3].Text)
	}

	// Every turn carries the session identifier
	turns := backend.turns()
	if assert.Len(turns, 1) {
		assert.Equal("sess-1", turns[0].RequestID)
	}
}

func Test_gateway_003(t *testing.T) {
	// A request directive in the reply starts a job; completion swaps the
	// marker message for the completion text and re-enables input
	assert := assert.New(t)
	ui := newRecordUI()
	var polls int32
	backend := &fakeBackend{sessionID: "sess-1"}
	backend.reply = func(req schema.MessageRequest, fn textstream.FrameFn) (*httpclient.SendResponse, error) {
		if req.Message == "research the market" {
			return stream(fn, "On it. <REQUEST_ID>req-9</REQUEST_ID>")
		}
		return stream(fn, "ok")
	}
	backend.status = func(requestID string) (*schema.ResearchStatus, error) {
		polls++
		if polls < 2 {
			return &schema.ResearchStatus{Status: []string{schema.StatusActive}, Query: "market"}, nil
		}
		return &schema.ResearchStatus{Status: []string{schema.StatusCompleted}, DownloadLink: "https://example.com/r.pdf"}, nil
	}
	g := newGateway(t, backend, ui)

	assert.NoError(g.Send(context.Background(), "research the market"))
	waitEvent(t, ui, "started:req-9")

	event := waitEvent(t, ui, "completed:req-9")
	assert.Equal("completed:req-9:https://example.com/r.pdf", event)
	assert.False(g.ResearchActive())

	var swapped bool
	for _, msg := range g.Messages() {
		if msg.Text == directive.CompletedText {
			swapped = true
		}
	}
	assert.True(swapped, "marker message should carry the completion text")

	// Input is accepted again
	assert.NoError(g.Send(context.Background(), "thanks"))
}

func Test_gateway_004(t *testing.T) {
	// Turns are rejected while a job is active
	assert := assert.New(t)
	ui := newRecordUI()
	backend := &fakeBackend{sessionID: "sess-1"}
	backend.reply = func(req schema.MessageRequest, fn textstream.FrameFn) (*httpclient.SendResponse, error) {
		return stream(fn, "Working. <REQUEST_ID>req-1</REQUEST_ID>")
	}
	g := newGateway(t, backend, ui)

	assert.NoError(g.Send(context.Background(), "go"))
	waitEvent(t, ui, "started:req-1")
	assert.ErrorIs(g.Send(context.Background(), "another"), agent.ErrConflict)
}

func Test_gateway_005(t *testing.T) {
	// A session refresh mid-stream makes the remaining deltas stale; none
	// of them land in the new transcript
	assert := assert.New(t)
	backend := &fakeBackend{sessionID: "sess-1"}
	var g *gateway.Gateway
	backend.reply = func(req schema.MessageRequest, fn textstream.FrameFn) (*httpclient.SendResponse, error) {
		if req.Message == schema.InitTurn {
			return stream(fn, "fresh greeting")
		}
		if err := fn(schema.Frame{Type: schema.EventStart}); err != nil {
			return nil, err
		}
		if err := fn(schema.Frame{Type: schema.EventChunk, Content: "stale "}); err != nil {
			return nil, err
		}
		// The user resets the conversation while the stream is running
		if err := g.Refresh(context.Background()); err != nil {
			return nil, err
		}
		if err := fn(schema.Frame{Type: schema.EventChunk, Content: "delta"}); err != nil {
			return nil, err
		}
		return &httpclient.SendResponse{}, nil
	}
	g = newGateway(t, backend, nil)

	err := g.Send(context.Background(), "hello")
	assert.ErrorIs(err, agent.ErrStaleSession)

	for _, msg := range g.Messages() {
		assert.NotContains(msg.Text, "stale")
		assert.NotContains(msg.Text, "delta")
	}
}

func Test_gateway_006(t *testing.T) {
	// Closing a job purges exactly its tagged messages
	assert := assert.New(t)
	ui := newRecordUI()
	backend := &fakeBackend{
		sessionID: "sess-1",
		history: []schema.Message{
			schema.NewMessage(schema.RoleUser, "unrelated"),
			schema.NewMessage(schema.RoleAgent, "unrelated reply"),
		},
	}
	backend.reply = func(req schema.MessageRequest, fn textstream.FrameFn) (*httpclient.SendResponse, error) {
		for _, frame := range []schema.Frame{
			{Type: schema.EventStart},
			{Type: schema.EventChunk, Content: "Queued. <REQUEST_ID>req-7</REQUEST_ID>"},
			{Type: schema.EventError, Error: "partial source unavailable"},
			{Type: schema.EventEnd},
		} {
			if err := fn(frame); err != nil {
				return nil, err
			}
		}
		return &httpclient.SendResponse{}, nil
	}
	g := newGateway(t, backend, ui)

	assert.NoError(g.Start(context.Background()))
	assert.NoError(g.Send(context.Background(), "research something"))
	waitEvent(t, ui, "started:req-7")
	before := g.Messages()
	if assert.Len(before, 5) {
		assert.Equal(schema.RoleAgent, before[4].Type)
		assert.Equal("Error: partial source unavailable", before[4].Text)
	}

	assert.NoError(g.CloseResearch(context.Background(), "req-7"))
	waitEvent(t, ui, "closed:req-7")
	assert.Equal([]string{"req-7"}, backend.closed)

	messages := g.Messages()
	if assert.Len(messages, 2) {
		assert.Equal("unrelated", messages[0].Text)
		assert.Equal("unrelated reply", messages[1].Text)
	}
	assert.False(g.ResearchActive())
}

func Test_gateway_007(t *testing.T) {
	// A short-circuited turn opens the meeting form and acknowledges
	assert := assert.New(t)
	ui := newRecordUI()
	backend := &fakeBackend{sessionID: "sess-1"}
	backend.reply = func(req schema.MessageRequest, fn textstream.FrameFn) (*httpclient.SendResponse, error) {
		return &httpclient.SendResponse{ShortCircuit: &schema.ShortCircuit{Type: schema.ShortCircuitScheduleMeeting}}, nil
	}
	g := newGateway(t, backend, ui)

	assert.NoError(g.Send(context.Background(), "set up a meeting"))
	assert.Len(ui.forms, 1)

	messages := g.Messages()
	if assert.Len(messages, 2) {
		assert.Equal(schema.RoleAgent, messages[1].Type)
		assert.Contains(messages[1].Text, "schedule a meeting")
	}
}

func Test_gateway_008(t *testing.T) {
	// The meeting form round trip submits the formatted turn
	assert := assert.New(t)
	backend := &fakeBackend{sessionID: "sess-1"}
	g := newGateway(t, backend, nil)

	data := schema.MeetingData{
		Title:       "Quarterly review",
		Description: "Numbers and plans",
		Attendees:   []schema.Attendee{{Name: "Ada", Email: "ada@example.com"}},
	}
	assert.NoError(g.SubmitMeetingForm(context.Background(), data))

	turns := backend.turns()
	if assert.Len(turns, 1) {
		assert.Contains(turns[0].Message, "Title: Quarterly review")
		assert.Contains(turns[0].Message, "Ada (ada@example.com)")
	}
}

func Test_gateway_009(t *testing.T) {
	// Launcher entry points reset the session before the canned turn
	assert := assert.New(t)
	backend := &fakeBackend{sessionID: "sess-1"}
	g := newGateway(t, backend, nil)

	assert.NoError(g.PrepareMeeting(context.Background(), "m-42", "Kickoff"))
	assert.Equal(1, backend.refreshes)

	turns := backend.turns()
	if assert.Len(turns, 1) {
		assert.Contains(turns[0].Message, "[PREPARE_MEETING]m-42[/PREPARE_MEETING]")
		assert.Contains(turns[0].Message, `"Kickoff"`)
	}

	// The annotation never reaches the rendered transcript
	messages := g.Messages()
	if assert.Len(messages, 2) {
		lines := directive.Parse(messages[0].Text)
		for _, line := range lines {
			for _, node := range line.Nodes {
				assert.NotContains(node.Text, "PREPARE_MEETING")
			}
		}
	}
}

func Test_gateway_010(t *testing.T) {
	// Accepting a research prompt submits the derived phrase
	assert := assert.New(t)
	backend := &fakeBackend{sessionID: "sess-1"}
	g := newGateway(t, backend, nil)

	assert.NoError(g.AcceptResearchPrompt(context.Background(), "EV market"))
	turns := backend.turns()
	if assert.Len(turns, 1) {
		assert.Equal(`Help with this topic on Research "EV market"`, turns[0].Message)
	}
}

func Test_digest_tick_001(t *testing.T) {
	// The digest fires at most once per calendar day
	assert := assert.New(t)
	day := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	now := func() time.Time { return day }
	ui := newRecordUI()
	backend := &fakeBackend{
		sessionID: "sess-1",
		digest: &schema.Digest{
			OpenTasks: []schema.Task{{ID: "t-1", Title: "Follow up"}},
			Approvals: []schema.Approval{{ID: "a-1", WorkflowName: "PO"}},
		},
	}
	g, err := gateway.New(gateway.Config{Backend: backend, UI: ui, UserID: "user-1", Now: func() time.Time { return now() }})
	if err != nil {
		t.Fatal(err)
	}
	defer g.Close()

	assert.NoError(g.DigestTick(context.Background()))
	assert.NoError(g.DigestTick(context.Background()))
	assert.Equal(1, backend.digests)
	if assert.Len(ui.attention, 1) {
		assert.Contains(ui.attention[0], "1 open tasks")
		assert.Contains(ui.attention[0], "1 pending approvals")
	}

	// Next day it fires again
	day = day.Add(24 * time.Hour)
	assert.NoError(g.DigestTick(context.Background()))
	assert.Equal(2, backend.digests)
}

func Test_digest_tick_002(t *testing.T) {
	// A dismissed digest stays quiet for the rest of the day, and an
	// empty digest raises no attention
	assert := assert.New(t)
	ui := newRecordUI()
	backend := &fakeBackend{sessionID: "sess-1"}
	g := newGateway(t, backend, ui)

	assert.NoError(g.DismissDigest())
	assert.NoError(g.DigestTick(context.Background()))
	assert.Equal(0, backend.digests)
	assert.Empty(ui.attention)
}
