package command

import (
	"github.com/bwmarrin/discordgo"
)

// Option lookup helpers for slash interactions. discordgo hands options
// over as a flat slice; commands read them by name.

func findOption(opts []*discordgo.ApplicationCommandInteractionDataOption, name string) *discordgo.ApplicationCommandInteractionDataOption {
	for _, o := range opts {
		if o.Name == name {
			return o
		}
	}
	return nil
}

// OptionString returns the named string option, or "" when absent.
func OptionString(opts []*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	if o := findOption(opts, name); o != nil {
		return o.StringValue()
	}
	return ""
}

// OptionInt returns the named integer option, or 0 when absent.
func OptionInt(opts []*discordgo.ApplicationCommandInteractionDataOption, name string) int64 {
	if o := findOption(opts, name); o != nil {
		return o.IntValue()
	}
	return 0
}

// OptionUser returns the named user option resolved through the session,
// or nil when absent.
func OptionUser(s *discordgo.Session, opts []*discordgo.ApplicationCommandInteractionDataOption, name string) *discordgo.User {
	if o := findOption(opts, name); o != nil {
		return o.UserValue(s)
	}
	return nil
}
