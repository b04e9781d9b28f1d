package tui

import (
	"net/url"
	"strings"

	"github.com/goliatone/go-userforms/pkg/validation"
)

// State collects answers in prompt order. Encoding keeps that order so the
// payload reads like a browser form submission.
type State struct {
	keys   []string
	values map[string][]string
}

// NewState returns an empty State.
func NewState() *State {
	return &State{values: make(map[string][]string)}
}

// Set replaces the values recorded under name.
func (s *State) Set(name string, values ...string) {
	if _, exists := s.values[name]; !exists {
		s.keys = append(s.keys, name)
	}
	s.values[name] = append([]string(nil), values...)
}

// Get returns the first value recorded under name.
func (s *State) Get(name string) string {
	if values := s.values[name]; len(values) > 0 {
		return values[0]
	}
	return ""
}

// Submission exposes the collected values to the validation engine.
func (s *State) Submission() validation.Submission {
	values := make(url.Values, len(s.values))
	for name, list := range s.values {
		values[name] = append([]string(nil), list...)
	}
	return validation.NewSubmission(values)
}

// Encode returns the answers URL-encoded in insertion order.
func (s *State) Encode() string {
	var b strings.Builder
	for _, name := range s.keys {
		for _, value := range s.values[name] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(name))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(value))
		}
	}
	return b.String()
}
