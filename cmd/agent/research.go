package main

import (
	"strings"

	// Packages
	otel "github.com/mutablelogic/go-client/pkg/otel"
	types "github.com/mutablelogic/go-server/pkg/types"
	attribute "go.opentelemetry.io/otel/attribute"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

type ResearchCommands struct {
	Status ResearchStatusCmd `cmd:"" name:"status" help:"Print the state of a research job"`
	Close  ResearchCloseCmd  `cmd:"" name:"close" help:"Discard a research job"`
}

type ResearchStatusCmd struct {
	RequestID string `arg:"" name:"request-id" help:"Research request identifier"`
}

type ResearchCloseCmd struct {
	RequestID string `arg:"" name:"request-id" help:"Research request identifier"`
}

////////////////////////////////////////////////////////////////////////////////
// COMMANDS

func (cmd *ResearchStatusCmd) Run(globals *Globals) (err error) {
	ctx, endSpan := otel.StartSpan(globals.tracer, globals.ctx, "ResearchStatusCmd",
		attribute.String("request", types.Stringify(cmd)),
	)
	defer func() { endSpan(err) }()

	client, err := globals.Client()
	if err != nil {
		return err
	}

	status, err := client.ResearchStatus(ctx, cmd.RequestID)
	if err != nil {
		return err
	}
	globals.term.Println("status:", strings.Join(status.Status, ", "))
	if status.Query != "" {
		globals.term.Println("query:", status.Query)
	}
	if status.DownloadLink != "" {
		globals.term.Println("download:", status.DownloadLink)
	}
	return nil
}

func (cmd *ResearchCloseCmd) Run(globals *Globals) (err error) {
	ctx, endSpan := otel.StartSpan(globals.tracer, globals.ctx, "ResearchCloseCmd",
		attribute.String("request", types.Stringify(cmd)),
	)
	defer func() { endSpan(err) }()

	client, err := globals.Client()
	if err != nil {
		return err
	}
	if err := client.CloseResearch(ctx, cmd.RequestID); err != nil {
		return err
	}
	globals.term.Println("closed:", cmd.RequestID)
	return nil
}
