package discord

import (
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/bwmarrin/discordgo"
)

// stableOption is the subset of a command option that matters for change
// detection. Runtime fields Discord fills in (IDs, versions) are excluded
// so a hash only moves when the definition itself does.
type stableOption struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Type        int            `json:"type"`
	Required    bool           `json:"required"`
	MinValue    *float64       `json:"min_value,omitempty"`
	MaxValue    float64        `json:"max_value,omitempty"`
	Choices     []stableChoice `json:"choices,omitempty"`
	Options     []stableOption `json:"options,omitempty"`
}

type stableChoice struct {
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}

type stableCommand struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Type        int            `json:"type"`
	Options     []stableOption `json:"options,omitempty"`
}

// hashCommand returns a deterministic fingerprint of a command definition,
// used to skip re-registering unchanged commands.
func hashCommand(def *discordgo.ApplicationCommand) string {
	data, _ := json.Marshal(stableCommand{
		Name:        def.Name,
		Description: def.Description,
		Type:        int(def.Type),
		Options:     stableOptions(def.Options),
	})
	return fmt.Sprintf("%x", sha1.Sum(data))
}

// stableOptions converts options recursively and sorts them by name so the
// hash does not depend on declaration order.
func stableOptions(opts []*discordgo.ApplicationCommandOption) []stableOption {
	if len(opts) == 0 {
		return nil
	}
	out := make([]stableOption, len(opts))
	for i, o := range opts {
		so := stableOption{
			Name:        o.Name,
			Description: o.Description,
			Type:        int(o.Type),
			Required:    o.Required,
			MinValue:    o.MinValue,
			MaxValue:    o.MaxValue,
			Options:     stableOptions(o.Options),
		}
		for _, c := range o.Choices {
			so.Choices = append(so.Choices, stableChoice{Name: c.Name, Value: c.Value})
		}
		out[i] = so
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
