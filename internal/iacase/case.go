// Package iacase manages the lifecycle of internal-affairs cases: a
// community-wide role suspension bound to a private investigation channel,
// opened and closed as a two-phase protocol with per-guild partial-failure
// tolerance.
package iacase

import (
	"errors"
	"time"
)

// Status of a case. A case transitions open -> closed exactly once and is
// never reopened; a new investigation is a new record.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// Case is one internal-affairs action against one user. GuildRoles is the
// role snapshot captured at open time — guild ID to the role IDs stripped
// there — and is the sole source of truth for restoration: roles may be
// renamed or deleted while the case is open, so restoration goes by the
// IDs recorded at removal, never by a fresh lookup.
type Case struct {
	UserID     string              `json:"user_id"`
	OpenedBy   string              `json:"opened_by"`
	OpenedAt   time.Time           `json:"opened_at"`
	Reason     string              `json:"reason"`
	ChannelID  string              `json:"channel_id"`
	GuildRoles map[string][]string `json:"guild_roles"`
	Status     Status              `json:"status"`
	ClosedBy   string              `json:"closed_by,omitempty"`
	ClosedAt   time.Time           `json:"closed_at,omitempty"`
	CloseNotes string              `json:"close_notes,omitempty"`
}

// Closure carries the fields filled in when a case is closed.
type Closure struct {
	ClosedBy string
	ClosedAt time.Time
	Notes    string
}

// Store is the persistence contract the lifecycle manager depends on.
// Records are durable across restarts and never physically deleted; the
// "at most one open case per user" invariant is the manager's discipline,
// not the store's.
type Store interface {
	// GetOpenCase returns the open case for a user, or nil if none.
	GetOpenCase(userID string) (*Case, error)
	// CreateCase appends a new case record.
	CreateCase(c *Case) error
	// CloseCase marks the user's open case closed and fills the closure
	// fields, returning the updated record, or nil if no open case exists.
	CloseCase(userID string, cl Closure) (*Case, error)
}

// Typed lifecycle precondition failures, rejected before any side effect.
var (
	ErrCaseExists     = errors.New("an internal-affairs case is already open for this user")
	ErrNoActiveCase   = errors.New("no active internal-affairs case for this user")
	ErrNoChannelGuild = errors.New("no guild available to host the case channel")
)
