package observer

import (
	"regexp"
	"strings"
)

// lifecycleKeywords are routine startup/shutdown noise that would otherwise
// drown out genuine anomalies; they are dropped from stdout only.
var lifecycleKeywords = []string{
	"starting",
	"listening on",
	"ready to accept connections",
	"shutting down",
	"graceful shutdown complete",
}

// errorPattern matches the log-level and exception vocabulary worth
// surfacing even when it arrives on stdout.
var errorPattern = regexp.MustCompile(`(?i)\b(error|fatal|panic|exception|denied|refused|timeout|oom|killed)\b`)

// Filter decides whether an event is worth including in a batch. stderr
// lines are always kept; stdout lines are kept only if they match the error
// vocabulary and are not routine lifecycle noise.
func Filter(event LogEvent) bool {
	if event.Stream == StreamStderr {
		return true
	}

	lower := strings.ToLower(event.Line)
	for _, kw := range lifecycleKeywords {
		if strings.Contains(lower, kw) {
			return false
		}
	}
	return errorPattern.MatchString(event.Line)
}
