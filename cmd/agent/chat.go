package main

import (
	"errors"
	"io"
	"strings"

	// Packages
	agent "github.com/getherd/go-agent"
	directive "github.com/getherd/go-agent/pkg/directive"
	schema "github.com/getherd/go-agent/pkg/schema"
	otel "github.com/mutablelogic/go-client/pkg/otel"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

type ChatCmd struct{}

type HistoryCmd struct{}

type RefreshCmd struct{}

// termUI renders gateway side effects onto the terminal.
type termUI struct {
	term *Term
}

////////////////////////////////////////////////////////////////////////////////
// COMMANDS

func (cmd *ChatCmd) Run(globals *Globals) (err error) {
	ctx, endSpan := otel.StartSpan(globals.tracer, globals.ctx, "ChatCmd")
	defer func() { endSpan(err) }()

	ui := &termUI{term: globals.term}
	g, err := globals.Gateway(ui)
	if err != nil {
		return err
	}
	defer g.Close()

	if err := g.Start(ctx); err != nil {
		return err
	}
	printTranscript(globals.term, g.Messages())

	// Continue looping until end of input
	for {
		input, err := globals.term.ReadLine("> ")
		if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if input == "/refresh" {
			if err := g.Refresh(ctx); err != nil {
				return err
			}
			printTranscript(globals.term, g.Messages())
			continue
		}

		before := len(g.Messages())
		if err := g.Send(ctx, input); err != nil {
			if errors.Is(err, agent.ErrConflict) {
				globals.term.Println("(busy, try again shortly)")
				continue
			}
			return err
		}
		printNew(globals.term, g.Messages(), before+1)
	}
}

func (cmd *HistoryCmd) Run(globals *Globals) (err error) {
	ctx, endSpan := otel.StartSpan(globals.tracer, globals.ctx, "HistoryCmd")
	defer func() { endSpan(err) }()

	g, err := globals.Gateway(agent.NopUI())
	if err != nil {
		return err
	}
	defer g.Close()

	if err := g.Start(ctx); err != nil {
		return err
	}
	printTranscript(globals.term, g.Messages())
	return nil
}

func (cmd *RefreshCmd) Run(globals *Globals) (err error) {
	ctx, endSpan := otel.StartSpan(globals.tracer, globals.ctx, "RefreshCmd")
	defer func() { endSpan(err) }()

	g, err := globals.Gateway(agent.NopUI())
	if err != nil {
		return err
	}
	defer g.Close()

	if err := g.Refresh(ctx); err != nil {
		return err
	}
	globals.term.Println("session", g.SessionID())
	return nil
}

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func printTranscript(term *Term, messages []schema.Message) {
	for _, msg := range messages {
		printMessage(term, msg)
	}
}

// printNew prints messages from index from onwards, skipping the user's
// own echoed turn.
func printNew(term *Term, messages []schema.Message, from int) {
	for i := from; i < len(messages); i++ {
		printMessage(term, messages[i])
	}
}

func printMessage(term *Term, msg schema.Message) {
	text := directive.PlainText(directive.Parse(msg.Text))
	switch msg.Type {
	case schema.RoleUser:
		term.Println("you:", text)
	case schema.RoleSystem:
		term.Println("!", text)
	default:
		term.Println(text)
	}
}

////////////////////////////////////////////////////////////////////////////////
// UI

func (u *termUI) MessagesChanged()             {}
func (u *termUI) ShowProfile(user schema.User) { u.term.Println("profile:", user.Name, user.Email) }
func (u *termUI) ShowMeetingForm(data schema.MeetingData) {
	u.term.Println("meeting form:", data.Title)
}
func (u *termUI) ShowPastTasks(tasks []schema.Task) {
	for _, task := range tasks {
		u.term.Println("task:", task.Title)
	}
}
func (u *termUI) ResearchStarted(requestID string) {
	u.term.Println("research started:", requestID)
}
func (u *termUI) ResearchProgress(requestID, topic string) {}
func (u *termUI) ResearchCompleted(requestID, downloadURL string) {
	u.term.Println("research completed:", downloadURL)
}
func (u *termUI) ResearchClosed(requestID string) {
	u.term.Println("research closed:", requestID)
}
func (u *termUI) Notify(text string) {
	u.term.Println("(" + text + ")")
}
func (u *termUI) Attention(title, body string) {
	u.term.Println(title+":", body)
}

var _ agent.UI = (*termUI)(nil)
