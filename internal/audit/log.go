// Package audit writes the structured, append-only audit trail: one JSON
// object per line, one line per capability dispatch or human interaction.
package audit

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/nightwatch-sre/nightwatch/internal/apperr"
	"github.com/nightwatch-sre/nightwatch/internal/models"
)

// Log is a JSON-Lines audit log backed by a single file, safe for
// concurrent use by multiple incident loops.
type Log struct {
	mu   sync.Mutex
	file *os.File
}

// Open opens (creating if necessary) the audit log at path for appending.
func Open(path string) (*Log, error) {
	const op = "audit.Open"
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, apperr.New(op, "opening audit log", err)
	}
	return &Log{file: f}, nil
}

// Record appends entry as one JSON-Lines record.
func (l *Log) Record(entry models.AuditEntry) error {
	const op = "audit.Record"
	data, err := json.Marshal(entry)
	if err != nil {
		return apperr.New(op, "marshalling audit entry", err)
	}
	data = append(data, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.file.Write(data); err != nil {
		return apperr.New(op, "writing audit entry", err)
	}
	return nil
}

// Close closes the underlying file.
func (l *Log) Close() error {
	return l.file.Close()
}
