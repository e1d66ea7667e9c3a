// Package validator implements the command safety grammar. The validator is
// intentionally intent-agnostic and entirely local: it does not trust the
// reasoner to have produced a safe command, so every command proposed by a
// capability is re-checked here before it is ever allowed to run.
package validator

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Verdict is the outcome of validating a single command.
type Verdict struct {
	Accepted bool
	Reason   string
}

var (
	shInvocationRe = regexp.MustCompile(`(?i)\b(sh|bash)\s+-c\b`)
	chainingRe     = regexp.MustCompile(`&&|\|\||;`)
	substitutionRe = regexp.MustCompile("\\$\\(|`")
	assignmentRe   = regexp.MustCompile(`\b[A-Za-z_][A-Za-z0-9_]*=\S+`)
	destructiveRes = []*regexp.Regexp{
		regexp.MustCompile(`rm\s+-rf\s+/\s*$`),
		regexp.MustCompile(`rm\s+-rf\s+/\*`),
		regexp.MustCompile(`dd\s+if=`),
		regexp.MustCompile(`(?i)mkfs(\.\S+)?\b`),
		regexp.MustCompile(`>\s*/dev/sd[a-z]\d*`),
	}
	remoteCodeExecRe = regexp.MustCompile(`(?i)(curl|wget)\b.*\|\s*(bash|sh)\b`)
)

// ValidateCommand applies the safety grammar to command given the set of
// known container identifiers. Rules are evaluated in the order below; the
// first that matches determines the rejection reason.
func ValidateCommand(command string, knownContainers map[string]struct{}) Verdict {
	trimmed := strings.TrimSpace(command)

	if !strings.HasPrefix(trimmed, "docker ") {
		return Verdict{Accepted: false, Reason: "Not a container-runtime command"}
	}
	if shInvocationRe.MatchString(trimmed) {
		return Verdict{Accepted: false, Reason: "Shell invocation"}
	}
	if strings.ContainsAny(trimmed, "|><") {
		return Verdict{Accepted: false, Reason: "Pipe / redirection"}
	}
	if chainingRe.MatchString(trimmed) {
		return Verdict{Accepted: false, Reason: "Chaining"}
	}
	if substitutionRe.MatchString(trimmed) {
		return Verdict{Accepted: false, Reason: "Substitution"}
	}
	if assignmentRe.MatchString(trimmed) {
		return Verdict{Accepted: false, Reason: "Variable assignment"}
	}
	if strings.ContainsAny(trimmed, "()") {
		return Verdict{Accepted: false, Reason: "Subshell"}
	}
	for _, re := range destructiveRes {
		if re.MatchString(trimmed) {
			return Verdict{Accepted: false, Reason: "Destructive"}
		}
	}
	if remoteCodeExecRe.MatchString(trimmed) {
		return Verdict{Accepted: false, Reason: "Remote code execution"}
	}

	matched := matchingContainers(trimmed, knownContainers)
	switch len(matched) {
	case 0:
		return Verdict{Accepted: false, Reason: "No known container referenced"}
	case 1:
		return Verdict{Accepted: true}
	default:
		sort.Strings(matched)
		return Verdict{Accepted: false, Reason: fmt.Sprintf("Multiple containers referenced: %s", strings.Join(matched, ", "))}
	}
}

// matchingContainers returns the distinct known container names that appear
// in command as a whole name: bounded on each side by the start or end of the
// command or by a character that cannot be part of a container name, so
// "cache" does not match inside "cache-replica".
func matchingContainers(command string, knownContainers map[string]struct{}) []string {
	matched := make([]string, 0, 1)
	for name := range knownContainers {
		if wordBoundaryMatch(command, name) {
			matched = append(matched, name)
		}
	}
	return matched
}

func wordBoundaryMatch(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	re := regexp.MustCompile(`(^|[^A-Za-z0-9_.-])` + regexp.QuoteMeta(needle) + `($|[^A-Za-z0-9_.-])`)
	return re.MatchString(haystack)
}
