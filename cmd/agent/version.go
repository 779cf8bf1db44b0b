package main

import (
	"sort"

	// Packages
	version "github.com/getherd/go-agent/pkg/version"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

type VersionCmd struct{}

////////////////////////////////////////////////////////////////////////////////
// COMMANDS

func (cmd *VersionCmd) Run(globals *Globals) error {
	metadata := version.Map(execName())
	keys := make([]string, 0, len(metadata))
	for key := range metadata {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		globals.term.Println(key+":", metadata[key])
	}
	return nil
}
