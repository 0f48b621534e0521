package cmd

// Middleware wraps a command (logging, permission checks, guild gating).
// The wrapped value remains a Command, so middlewares compose freely.
type Middleware func(Command) Command

// Apply applies middlewares in order; the first in the list wraps closest
// to the command and the last becomes the outermost layer.
func Apply(c Command, mws ...Middleware) Command {
	for _, mw := range mws {
		c = mw(c)
	}
	return c
}
