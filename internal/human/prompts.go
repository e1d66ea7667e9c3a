// Package human implements the operator-facing prompts the orchestrator
// blocks on: feasibility questions, plan approval, and escalations.
package human

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Surface asks the operator questions over an injectable reader/writer pair,
// so tests never touch stdin/stdout.
type Surface struct {
	out io.Writer
	in  *bufio.Reader
}

// NewSurface returns a Surface that writes prompts to out and reads
// responses from in.
func NewSurface(out io.Writer, in io.Reader) *Surface {
	return &Surface{out: out, in: bufio.NewReader(in)}
}

// AskFeasibility asks a free-text question needed to assess whether a
// remediation is feasible, and returns the operator's answer verbatim.
func (s *Surface) AskFeasibility(question string) (string, error) {
	fmt.Fprintf(s.out, "\n[nightwatch] %s\n> ", question)
	return s.readLine()
}

// ConfirmPlan presents a remediation plan summary and returns true iff the
// operator approves it. Only "y" or "yes" (case-insensitive) count as approval.
func (s *Surface) ConfirmPlan(summary string) (bool, error) {
	fmt.Fprintf(s.out, "\n[nightwatch] Proposed remediation:\n%s\n Proceed? [y/N] ", summary)
	line, err := s.readLine()
	if err != nil {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

// EscalationResponse is the operator's reply to an escalation prompt: either
// a dismissal, or free-text guidance to continue with.
type EscalationResponse struct {
	Dismissed bool
	Guidance  string
}

// Escalate presents reason to the operator and returns their decision.
// Empty input and the words "stop" and "dismiss" are all the same outcome:
// dismiss the incident. Anything else is guidance to continue with.
func (s *Surface) Escalate(reason string) (EscalationResponse, error) {
	fmt.Fprintf(s.out, "\n[nightwatch] Escalation: %s\n"+
		"Reply 'dismiss' to close the incident, or provide guidance to continue.\n> ", reason)
	line, err := s.readLine()
	if err != nil {
		return EscalationResponse{}, err
	}
	trimmed := strings.TrimSpace(line)
	switch strings.ToLower(trimmed) {
	case "", "stop", "dismiss":
		return EscalationResponse{Dismissed: true}, nil
	default:
		return EscalationResponse{Guidance: trimmed}, nil
	}
}

func (s *Surface) readLine() (string, error) {
	line, err := s.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
