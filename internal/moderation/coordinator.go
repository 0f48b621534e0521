// Package moderation fans a moderation action out across every guild the
// bot belongs to. Each guild is attempted independently: one guild failing
// never aborts the rest, and the result always contains exactly one outcome
// per guild. Success and failure counts are derived by callers from the
// outcome list.
package moderation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"community-ops/pkg/retrylimit"

	"github.com/bwmarrin/discordgo"
)

// ActionKind selects the per-guild operation to perform.
type ActionKind int

const (
	ActionBan ActionKind = iota
	ActionUnban
	ActionKick
	ActionNickname
)

// String returns the action name used in log lines and failure messages.
func (k ActionKind) String() string {
	switch k {
	case ActionBan:
		return "ban"
	case ActionUnban:
		return "unban"
	case ActionKick:
		return "kick"
	case ActionNickname:
		return "nickname"
	}
	return "unknown"
}

// Action describes one fan-out operation. Reason is recorded in the guild
// audit log where the API supports it. Nickname is only read for
// ActionNickname.
type Action struct {
	Kind     ActionKind
	Reason   string
	Nickname string
}

// Outcome is the recorded result of one guild's attempt.
type Outcome struct {
	GuildID string
	OK      bool
	Message string
}

// Caller-side precondition failures, rejected before any guild is touched.
var (
	ErrSelfTarget = errors.New("target is the invoking user")
	ErrBotTarget  = errors.New("target is the bot account")
)

// ValidateTarget rejects targets that must never be acted on. These are
// whole-operation failures, not per-guild outcomes.
func ValidateTarget(targetID, actorID, botID string) error {
	if targetID == actorID {
		return ErrSelfTarget
	}
	if botID != "" && targetID == botID {
		return ErrBotTarget
	}
	return nil
}

// Session is the slice of the Discord API the coordinator needs.
// *discordgo.Session satisfies it.
type Session interface {
	GuildBanCreateWithReason(guildID, userID, reason string, days int, options ...discordgo.RequestOption) error
	GuildBanDelete(guildID, userID string, options ...discordgo.RequestOption) error
	GuildMemberDeleteWithReason(guildID, userID, reason string, options ...discordgo.RequestOption) error
	GuildMemberNickname(guildID, userID, nickname string, options ...discordgo.RequestOption) error
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
}

// Pacing bounds for the shared limiter. The limiter starts at the initial
// rate and adapts inside [min, max] as guilds answer.
const (
	initialRequestsPerSecond = 20
	minRequestsPerSecond     = 2
	maxRequestsPerSecond     = 40
	maxAttemptsPerGuild      = 3
)

// retriable reports whether a per-guild failure is Discord pushback that a
// retry can resolve. Permission and not-found errors are final.
func retriable(err error) bool {
	var rl *discordgo.RateLimitError
	if errors.As(err, &rl) {
		return true
	}
	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Response != nil {
		return rest.Response.StatusCode >= http.StatusInternalServerError
	}
	return false
}

// Coordinator runs actions against every guild with shared request pacing.
type Coordinator struct {
	session Session
	limiter *retrylimit.AdaptiveLimiter
}

// NewCoordinator returns a coordinator over the given session.
func NewCoordinator(session Session) *Coordinator {
	return &Coordinator{
		session: session,
		limiter: retrylimit.NewAdaptiveLimiter(initialRequestsPerSecond, minRequestsPerSecond, maxRequestsPerSecond, 1, 0.5),
	}
}

// Apply attempts action against targetID in every listed guild. Guilds are
// processed concurrently; outcome order matches guildIDs and the result
// always has len(guildIDs) entries. Failures are recorded, never returned.
func (c *Coordinator) Apply(ctx context.Context, guildIDs []string, targetID string, action Action) []Outcome {
	outcomes := make([]Outcome, len(guildIDs))

	var wg sync.WaitGroup
	for idx, guildID := range guildIDs {
		wg.Add(1)
		go func(idx int, guildID string) {
			defer wg.Done()
			outcomes[idx] = c.applyToGuild(ctx, guildID, targetID, action)
		}(idx, guildID)
	}
	wg.Wait()

	return outcomes
}

// applyToGuild runs one guild's attempt and converts any failure into a
// recorded outcome.
func (c *Coordinator) applyToGuild(ctx context.Context, guildID, targetID string, action Action) Outcome {
	// Kick and nickname act on a member; ban and unban act on a bare user
	// ID and work whether or not the target is present.
	if action.Kind == ActionKick || action.Kind == ActionNickname {
		if err := c.limiter.Wait(ctx); err != nil {
			return Outcome{GuildID: guildID, Message: err.Error()}
		}
		if _, err := c.session.GuildMember(guildID, targetID); err != nil {
			return Outcome{GuildID: guildID, Message: "user is not a member"}
		}
	}

	err := retrylimit.WithRetryMax(ctx, func() error {
		switch action.Kind {
		case ActionBan:
			return c.session.GuildBanCreateWithReason(guildID, targetID, action.Reason, 0)
		case ActionUnban:
			return c.session.GuildBanDelete(guildID, targetID)
		case ActionKick:
			return c.session.GuildMemberDeleteWithReason(guildID, targetID, action.Reason)
		case ActionNickname:
			return c.session.GuildMemberNickname(guildID, targetID, action.Nickname)
		default:
			return fmt.Errorf("unsupported action kind %d", action.Kind)
		}
	}, c.limiter, maxAttemptsPerGuild, retriable)

	if err != nil {
		return Outcome{GuildID: guildID, Message: err.Error()}
	}
	return Outcome{GuildID: guildID, OK: true}
}

// Tally counts successes and failures in an outcome list.
func Tally(outcomes []Outcome) (ok, failed int) {
	for _, o := range outcomes {
		if o.OK {
			ok++
		} else {
			failed++
		}
	}
	return ok, failed
}
