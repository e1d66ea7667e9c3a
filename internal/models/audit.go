package models

import "time"

// AuditEntry is one line of the structured audit log: every capability
// dispatch produces one, including the requestApproval and escalate
// dispatches that prompt the operator and dispatches that end in an error.
type AuditEntry struct {
	Timestamp     time.Time `json:"timestamp"`
	IncidentID    string    `json:"incidentId"`
	Capability    string    `json:"capability"`
	Success       bool      `json:"success"`
	Summary       string    `json:"summary"`
	AttemptCount  int       `json:"attemptCount"`
}
