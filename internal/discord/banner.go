package discord

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"community-ops/internal/version"
)

// drawStartupBanner prints a boxed summary once the session is ready.
func drawStartupBanner(userTag, mode string, commandCount int) {
	lines := []string{
		version.AppName + " v" + version.AppVersion,
		"Account: " + userTag,
		"Mode: " + mode,
		fmt.Sprintf("Commands: %d", commandCount),
		"Go: " + runtime.Version(),
		"Started: " + time.Now().UTC().Format(time.RFC3339),
	}

	width := 0
	for _, l := range lines {
		if len(l) > width {
			width = len(l)
		}
	}
	width += 2

	border := strings.Repeat("─", width)
	fmt.Printf("\n┌%s┐\n", border)
	for _, l := range lines {
		fmt.Printf("│%s%s│\n", l, strings.Repeat(" ", width-len(l)))
	}
	fmt.Printf("└%s┘\n\n", border)
}
