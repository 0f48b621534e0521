// Package permissions resolves a member's effective staff tier from role
// membership. Three layered sources are consulted in priority order: a
// per-guild role-ID override table, a global default role-ID table, and
// literal role-name equality as last resort. Resolution stops at the first
// source that matches; within a source the most privileged matching level
// wins.
package permissions

// Membership is the role state the resolver needs about one member.
// Callers fetch it from Discord; the resolver itself performs no I/O.
type Membership struct {
	GuildID   string
	RoleIDs   []string
	RoleNames []string
}

// Resolver answers level and hierarchy questions. It is immutable after
// construction and safe for concurrent use.
type Resolver struct {
	overrides map[string]map[Level]string // guild ID -> level -> role ID
	defaults  map[Level]string            // level -> role ID
}

// NewResolver builds a resolver from the per-guild override table and the
// global default table. Either map may be nil.
func NewResolver(overrides map[string]map[Level]string, defaults map[Level]string) *Resolver {
	return &Resolver{overrides: overrides, defaults: defaults}
}

// Resolve returns the member's highest mapped level, or false if no source
// maps any of the member's roles to a level.
func (r *Resolver) Resolve(m Membership) (Level, bool) {
	ids := make(map[string]bool, len(m.RoleIDs))
	for _, id := range m.RoleIDs {
		ids[id] = true
	}

	if table := r.overrides[m.GuildID]; len(table) > 0 {
		for _, level := range Hierarchy() {
			if roleID, ok := table[level]; ok && ids[roleID] {
				return level, true
			}
		}
	}

	if len(r.defaults) > 0 {
		for _, level := range Hierarchy() {
			if roleID, ok := r.defaults[level]; ok && roleID != "" && ids[roleID] {
				return level, true
			}
		}
	}

	names := make(map[string]bool, len(m.RoleNames))
	for _, n := range m.RoleNames {
		names[n] = true
	}
	for _, level := range Hierarchy() {
		if names[level.String()] {
			return level, true
		}
	}

	return 0, false
}

// Satisfies reports whether the member's resolved level is at least as
// privileged as required. A member with no resolvable level satisfies
// nothing.
func (r *Resolver) Satisfies(m Membership, required Level) bool {
	level, ok := r.Resolve(m)
	if !ok {
		return false
	}
	return level.AtLeast(required)
}
