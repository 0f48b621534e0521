package cmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoCommand struct {
	name string
	ran  *[]string
}

func (c *echoCommand) Name() string        { return c.name }
func (c *echoCommand) Description() string { return "echo " + c.name }

func (c *echoCommand) Run(ctx context.Context, inv *Invocation) error {
	*c.ran = append(*c.ran, c.name)
	return nil
}

func tagging(tag string, ran *[]string) Middleware {
	return func(next Command) Command {
		return Wrap(next, func(ctx context.Context, inv *Invocation) error {
			*ran = append(*ran, tag)
			return next.Run(ctx, inv)
		})
	}
}

func TestApplyOrdering(t *testing.T) {
	var ran []string
	base := &echoCommand{name: "base", ran: &ran}

	wrapped := Apply(base, tagging("inner", &ran), tagging("outer", &ran))
	require.NoError(t, wrapped.Run(context.Background(), &Invocation{}))

	// The last middleware listed is the outermost layer, so it runs first.
	assert.Equal(t, []string{"outer", "inner", "base"}, ran)
}

func TestRootUnwrapsToBase(t *testing.T) {
	var ran []string
	base := &echoCommand{name: "base", ran: &ran}

	wrapped := Apply(base, tagging("a", &ran), tagging("b", &ran))
	assert.Same(t, Command(base), Root(wrapped))
	assert.Equal(t, "base", wrapped.Name())
	assert.Equal(t, "echo base", wrapped.Description())
}

func TestRegistryGetAllSorted(t *testing.T) {
	var ran []string
	r := NewRegistry()
	r.Register(&echoCommand{name: "zeta", ran: &ran})
	r.Register(&echoCommand{name: "alpha", ran: &ran})

	all := r.GetAll()
	require.Len(t, all, 2)
	assert.Equal(t, "alpha", all[0].Name())
	assert.Equal(t, "zeta", all[1].Name())
	assert.Nil(t, r.Get("missing"))
}
