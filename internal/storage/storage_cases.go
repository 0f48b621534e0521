package storage

import (
	"community-ops/internal/iacase"
)

// Storage implements iacase.Store. Cases are kept as one ordered list under
// a single key; records are appended on open, mutated once on close, and
// never removed — closed cases stay as the historical record.

var _ iacase.Store = (*Storage)(nil)

func (s *Storage) allCases() ([]iacase.Case, error) {
	value, exists := s.ds.Get(casesKey)
	if !exists {
		return nil, nil
	}
	var cases []iacase.Case
	if err := decode(value, &cases); err != nil {
		return nil, err
	}
	return cases, nil
}

// GetOpenCase returns the open case for a user, or nil if none exists.
func (s *Storage) GetOpenCase(userID string) (*iacase.Case, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cases, err := s.allCases()
	if err != nil {
		return nil, err
	}
	for i := range cases {
		if cases[i].UserID == userID && cases[i].Status == iacase.StatusOpen {
			c := cases[i]
			return &c, nil
		}
	}
	return nil, nil
}

// CreateCase appends a new case record.
func (s *Storage) CreateCase(c *iacase.Case) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cases, err := s.allCases()
	if err != nil {
		return err
	}
	cases = append(cases, *c)
	s.ds.Add(casesKey, cases)
	return nil
}

// CloseCase marks the user's open case closed, filling the closure fields.
// Returns nil when the user has no open case.
func (s *Storage) CloseCase(userID string, cl iacase.Closure) (*iacase.Case, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cases, err := s.allCases()
	if err != nil {
		return nil, err
	}
	for i := range cases {
		if cases[i].UserID != userID || cases[i].Status != iacase.StatusOpen {
			continue
		}
		cases[i].Status = iacase.StatusClosed
		cases[i].ClosedBy = cl.ClosedBy
		cases[i].ClosedAt = cl.ClosedAt
		cases[i].CloseNotes = cl.Notes
		s.ds.Add(casesKey, cases)
		c := cases[i]
		return &c, nil
	}
	return nil, nil
}

// CaseHistory returns every case ever recorded for a user, open and closed,
// in creation order.
func (s *Storage) CaseHistory(userID string) ([]iacase.Case, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cases, err := s.allCases()
	if err != nil {
		return nil, err
	}
	var out []iacase.Case
	for _, c := range cases {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}
