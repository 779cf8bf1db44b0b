package main

import (
	"fmt"

	// Packages
	agent "github.com/getherd/go-agent"
	otel "github.com/mutablelogic/go-client/pkg/otel"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

type DigestCmd struct {
	Force bool `help:"Fetch even if the digest was already shown today"`
}

////////////////////////////////////////////////////////////////////////////////
// COMMANDS

func (cmd *DigestCmd) Run(globals *Globals) (err error) {
	ctx, endSpan := otel.StartSpan(globals.tracer, globals.ctx, "DigestCmd")
	defer func() { endSpan(err) }()

	if globals.User == "" {
		return agent.ErrBadParameter.With("set HERD_USER_ID or --user")
	}

	if cmd.Force {
		client, err := globals.Client()
		if err != nil {
			return err
		}
		digest, err := client.Digest(ctx, globals.User)
		if err != nil {
			return err
		}
		printDigest(globals, digest.Total(), len(digest.OpenTasks), len(digest.OpenOpportunities), len(digest.Approvals))
		return nil
	}

	g, err := globals.Gateway(&termUI{term: globals.term})
	if err != nil {
		return err
	}
	defer g.Close()
	return g.DigestTick(ctx)
}

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func printDigest(globals *Globals, total, tasks, opportunities, approvals int) {
	if total == 0 {
		globals.term.Println("nothing pending")
		return
	}
	globals.term.Println(fmt.Sprintf("%d pending: %d tasks, %d opportunities, %d approvals", total, tasks, opportunities, approvals))
}
