package utility

import (
	"fmt"
	"strings"
)

// Allocation review buttons carry the applicant in their custom ID:
// alloc:approve:<userID> and alloc:deny:<userID>.
const allocPrefix = "alloc:"

const (
	allocApprove = "approve"
	allocDeny    = "deny"
)

func allocCustomID(verdict, userID string) string {
	return fmt.Sprintf("%s%s:%s", allocPrefix, verdict, userID)
}

// parseAllocCustomID splits an allocation custom ID into verdict and
// applicant user ID.
func parseAllocCustomID(customID string) (verdict, userID string, ok bool) {
	if !strings.HasPrefix(customID, allocPrefix) {
		return "", "", false
	}
	parts := strings.Split(customID, ":")
	if len(parts) != 3 || parts[2] == "" {
		return "", "", false
	}
	if parts[1] != allocApprove && parts[1] != allocDeny {
		return "", "", false
	}
	return parts[1], parts[2], true
}
