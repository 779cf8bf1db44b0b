package gateway

import (
	"context"
	"errors"

	// Packages
	agent "github.com/getherd/go-agent"
	directive "github.com/getherd/go-agent/pkg/directive"
	schema "github.com/getherd/go-agent/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

// scheduleAck is appended when the backend short-circuits a turn into the
// meeting form instead of a token stream.
const scheduleAck = "I'll help you schedule a meeting. Please fill out the form that just appeared."

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// sendTurn submits one turn and consumes the reply. When visible is false
// the user turn is not added to the transcript, which the canned init turn
// uses.
func (g *Gateway) sendTurn(ctx context.Context, text string, visible bool) error {
	if _, err := g.EnsureSession(ctx); err != nil {
		return err
	}

	g.mu.Lock()
	if g.sending {
		g.mu.Unlock()
		return agent.ErrConflict.With("a turn is already in flight")
	}
	if g.poller.Active() {
		g.mu.Unlock()
		return agent.ErrConflict.With("a research job is active")
	}
	g.sending = true
	sessionID := g.session.ID
	var userMsgID string
	if visible {
		msg := schema.NewMessage(schema.RoleUser, text)
		g.messages = append(g.messages, msg)
		userMsgID = msg.ID
	}
	g.mu.Unlock()
	defer func() {
		g.mu.Lock()
		g.sending = false
		g.mu.Unlock()
	}()
	if visible {
		g.ui.MessagesChanged()
	}

	// The hidden init turn is submitted as a system turn
	role := schema.RoleUser
	if !visible {
		role = schema.RoleSystem
	}

	// turnIDs collects every message this turn produces, so a research job
	// it starts can be purged as a unit later
	turnIDs := []string{}
	if userMsgID != "" {
		turnIDs = append(turnIDs, userMsgID)
	}

	var agentMsgID string
	resp, err := g.backend.SendMessage(ctx, schema.MessageRequest{Message: text, Type: role, RequestID: sessionID}, func(frame schema.Frame) error {
		return g.applyFrame(sessionID, &agentMsgID, &turnIDs, frame)
	})
	if errors.Is(err, agent.ErrStaleSession) {
		return err
	} else if err != nil {
		// Transport failure is visible in the conversation; input stays
		// usable for a retry
		g.appendMessage(sessionID, schema.NewMessage(schema.RoleSystem, err.Error()))
		return err
	}

	// A short-circuited turn opens the meeting form with an acknowledgment
	if resp.ShortCircuit != nil && resp.ShortCircuit.Type == schema.ShortCircuitScheduleMeeting {
		g.appendMessage(sessionID, schema.NewMessage(schema.RoleAgent, scheduleAck))
		g.ui.ShowMeetingForm(schema.MeetingData{})
		return nil
	}

	// Post-pass: register research jobs named by the completed reply
	g.registerResearch(ctx, agentMsgID, turnIDs)
	return nil
}

// applyFrame folds one streamed frame into the transcript. Every frame is
// checked against the session it was requested under; a refresh in between
// makes the delta stale and aborts the stream.
func (g *Gateway) applyFrame(sessionID string, agentMsgID *string, turnIDs *[]string, frame schema.Frame) error {
	g.mu.Lock()
	if g.session.ID != sessionID {
		g.mu.Unlock()
		return agent.ErrStaleSession
	}
	switch frame.Type {
	case schema.EventStart:
		msg := schema.NewMessage(schema.RoleAgent, "")
		*agentMsgID = msg.ID
		*turnIDs = append(*turnIDs, msg.ID)
		g.messages = append(g.messages, msg)
	case schema.EventChunk:
		if *agentMsgID == "" {
			msg := schema.NewMessage(schema.RoleAgent, frame.Content)
			*agentMsgID = msg.ID
			*turnIDs = append(*turnIDs, msg.ID)
			g.messages = append(g.messages, msg)
		} else {
			for i := range g.messages {
				if g.messages[i].ID == *agentMsgID {
					g.messages[i].Text += frame.Content
					break
				}
			}
		}
	case schema.EventError:
		msg := schema.NewMessage(schema.RoleAgent, "Error: "+frame.Error)
		*turnIDs = append(*turnIDs, msg.ID)
		g.messages = append(g.messages, msg)
	case schema.EventEnd:
		// terminator, no payload
	}
	g.mu.Unlock()
	g.ui.MessagesChanged()
	return nil
}

// appendMessage adds a message unless the session has been replaced since
// it was produced.
func (g *Gateway) appendMessage(sessionID string, msg schema.Message) {
	g.mu.Lock()
	if g.session.ID != sessionID {
		g.mu.Unlock()
		return
	}
	g.messages = append(g.messages, msg)
	g.mu.Unlock()
	g.ui.MessagesChanged()
}

// registerResearch starts polling for each request id named by the reply
// that has not been registered before. Every message of the registering
// turn is tagged so closing the job can purge exactly its messages.
func (g *Gateway) registerResearch(ctx context.Context, agentMsgID string, turnIDs []string) {
	var text string
	g.mu.Lock()
	for i := range g.messages {
		if g.messages[i].ID == agentMsgID {
			text = g.messages[i].Text
			break
		}
	}
	g.mu.Unlock()
	if text == "" {
		return
	}

	for _, requestID := range directive.RequestIDs(text) {
		g.mu.Lock()
		if g.seen[requestID] {
			g.mu.Unlock()
			continue
		}
		g.seen[requestID] = true
		g.mu.Unlock()

		for _, id := range turnIDs {
			g.tracker.Tag(requestID, id)
		}
		g.ui.ResearchStarted(requestID)

		// The job outlives the turn that started it
		if err := g.poller.Start(context.WithoutCancel(ctx), requestID); err != nil {
			g.ui.Notify(err.Error())
		}
	}
}
