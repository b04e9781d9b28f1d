package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Error is a single validation failure.
type Error struct {
	Key     string `json:"key"`
	Message string `json:"message"`
}

func (e Error) Error() string {
	return e.Key + ": " + e.Message
}

// Errors is an insertion-ordered collection with unique keys. The first
// message recorded for a key wins. The zero value is ready to use; an Errors
// value belongs to a single request.
type Errors struct {
	items []Error
	index map[string]int
}

// Add records message under key unless the key is already present. It
// reports whether the entry was added.
func (e *Errors) Add(key, message string) bool {
	key = strings.TrimSpace(key)
	if key == "" {
		return false
	}
	if e.index == nil {
		e.index = make(map[string]int)
	}
	if _, exists := e.index[key]; exists {
		return false
	}
	e.index[key] = len(e.items)
	e.items = append(e.items, Error{Key: key, Message: message})
	return true
}

// AddField records an error for a field id using FieldKey.
func (e *Errors) AddField(fieldID, message string) bool {
	return e.Add(FieldKey(fieldID), message)
}

// Merge appends the entries of other that are not present yet.
func (e *Errors) Merge(other Errors) {
	for _, item := range other.items {
		e.Add(item.Key, item.Message)
	}
}

// Len returns the number of entries.
func (e Errors) Len() int {
	return len(e.items)
}

// Empty reports whether no error has been recorded.
func (e Errors) Empty() bool {
	return len(e.items) == 0
}

// Has reports whether key is present.
func (e Errors) Has(key string) bool {
	_, ok := e.index[key]
	return ok
}

// HasField reports whether the field id has an error.
func (e Errors) HasField(fieldID string) bool {
	return e.Has(FieldKey(fieldID))
}

// Get returns the message recorded under key.
func (e Errors) Get(key string) (string, bool) {
	idx, ok := e.index[key]
	if !ok {
		return "", false
	}
	return e.items[idx].Message, true
}

// Items returns the entries in insertion order.
func (e Errors) Items() []Error {
	return append([]Error(nil), e.items...)
}

// Keys returns the keys in insertion order.
func (e Errors) Keys() []string {
	out := make([]string, len(e.items))
	for i, item := range e.items {
		out[i] = item.Key
	}
	return out
}

// Messages returns the messages in insertion order.
func (e Errors) Messages() []string {
	out := make([]string, len(e.items))
	for i, item := range e.items {
		out[i] = item.Message
	}
	return out
}

// Map flattens the collection for renderers that look errors up by key.
func (e Errors) Map() map[string]string {
	if len(e.items) == 0 {
		return nil
	}
	out := make(map[string]string, len(e.items))
	for _, item := range e.items {
		out[item.Key] = item.Message
	}
	return out
}

// MarshalJSON encodes the collection as a JSON object whose member order is
// the insertion order. Members are written one by one since a map would lose
// that order.
func (e Errors) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, item := range e.items {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(item.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(item.Message)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keeping the member order, reading it
// through the encoding/json token stream.
func (e *Errors) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*e = Errors{}
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("validation: errors must be a JSON object")
	}

	var out Errors
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("validation: unexpected key token %v", keyTok)
		}
		var message string
		if err := dec.Decode(&message); err != nil {
			return fmt.Errorf("validation: decode message for %q: %w", key, err)
		}
		out.Add(key, message)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*e = out
	return nil
}
