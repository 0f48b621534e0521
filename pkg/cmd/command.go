// Package cmd is the transport-agnostic command core. A command has a
// name, a description, and Run(ctx, invocation); everything else, such as
// slash registration or permission gating, belongs to the adapter layer
// wrapping it.
package cmd

import "context"

// Invocation is the input every runner can provide: positional arguments
// plus an opaque payload. An adapter puts its own context into Data, for
// a Discord adapter that is the session and the triggering event.
type Invocation struct {
	Args []string
	Data interface{}
}

// Command is the contract shared by every command regardless of how it is
// reached.
type Command interface {
	Name() string
	Description() string
	Run(ctx context.Context, inv *Invocation) error
}
