// Package knowledge persists operator-confirmed facts about the environment
// as an append-only Markdown file, so later incidents can be reasoned about
// with context earlier ones established.
package knowledge

import (
	"fmt"
	"os"

	"github.com/nightwatch-sre/nightwatch/internal/apperr"
)

const header = "# Nightwatch Knowledge\n"

// Store is an append-only fact log backed by a single Markdown file.
type Store struct {
	path string
}

// NewStore returns a Store backed by path, creating it with the standard
// header if it does not already exist.
func NewStore(path string) (*Store, error) {
	const op = "knowledge.NewStore"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if writeErr := os.WriteFile(path, []byte(header), 0o644); writeErr != nil {
			return nil, apperr.New(op, "creating knowledge file", writeErr)
		}
	} else if err != nil {
		return nil, apperr.New(op, "stat knowledge file", err)
	}
	return &Store{path: path}, nil
}

// All returns the full contents of the knowledge file as a single string,
// suitable for inclusion in a reasoner prompt.
func (s *Store) All() (string, error) {
	const op = "knowledge.All"
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", apperr.New(op, "reading knowledge file", err)
	}
	return string(data), nil
}

// Append adds a question/answer fact as a new Markdown entry.
func (s *Store) Append(question, answer string) error {
	const op = "knowledge.Append"
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return apperr.New(op, "opening knowledge file", err)
	}
	defer f.Close()

	entry := fmt.Sprintf("\n## %s\n\n%s\n", question, answer)
	if _, err := f.WriteString(entry); err != nil {
		return apperr.New(op, "appending knowledge entry", err)
	}
	return nil
}
