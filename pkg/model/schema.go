package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrFieldIDMissing = errors.New("model: field id is required")
	ErrDuplicateField = errors.New("model: duplicate field id")
	ErrUnknownKind    = errors.New("model: unknown field kind")
	ErrMissingOptions = errors.New("model: field requires options")
	ErrInvalidConfirm = errors.New("model: invalid confirmation reference")
	ErrInvalidOption  = errors.New("model: invalid option")
)

// Schema is an ordered, read-only collection of fields. The zero value is an
// empty schema.
type Schema struct {
	fields []Field
	index  map[string]int
}

// NewSchema validates the supplied definitions and returns a schema that
// preserves their declaration order.
func NewSchema(fields ...Field) (Schema, error) {
	schema := Schema{
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, field := range fields {
		field.ID = strings.TrimSpace(field.ID)
		field.Kind = Kind(strings.ToLower(strings.TrimSpace(string(field.Kind))))
		field.ConfirmationOf = strings.TrimSpace(field.ConfirmationOf)
		if err := validateField(field); err != nil {
			return Schema{}, err
		}
		if _, exists := schema.index[field.ID]; exists {
			return Schema{}, fmt.Errorf("%w: %q", ErrDuplicateField, field.ID)
		}
		schema.index[field.ID] = len(schema.fields)
		schema.fields = append(schema.fields, field.clone())
	}
	if err := schema.validateConfirmations(); err != nil {
		return Schema{}, err
	}
	return schema, nil
}

// MustSchema wraps NewSchema and panics on error. Intended for static schema
// literals.
func MustSchema(fields ...Field) Schema {
	schema, err := NewSchema(fields...)
	if err != nil {
		panic(err)
	}
	return schema
}

func validateField(field Field) error {
	if field.ID == "" {
		return ErrFieldIDMissing
	}
	if !field.Kind.Valid() {
		return fmt.Errorf("%w: field %q has kind %q", ErrUnknownKind, field.ID, field.Kind)
	}
	if field.Multiple && field.Kind != KindSelect {
		return fmt.Errorf("model: field %q: multiple is only supported on select fields", field.ID)
	}
	if field.Kind.HasOptions() {
		if len(field.Options) == 0 {
			return fmt.Errorf("%w: %q", ErrMissingOptions, field.ID)
		}
		seen := make(map[string]struct{}, len(field.Options))
		for _, option := range field.Options {
			if _, dup := seen[option.Value]; dup {
				return fmt.Errorf("%w: field %q repeats value %q", ErrInvalidOption, field.ID, option.Value)
			}
			seen[option.Value] = struct{}{}
		}
	} else if len(field.Options) > 0 {
		return fmt.Errorf("%w: field %q of kind %s cannot declare options", ErrInvalidOption, field.ID, field.Kind)
	}
	if field.IsConfirmation() && field.Kind != KindPassword {
		return fmt.Errorf("%w: field %q must be a password field", ErrInvalidConfirm, field.ID)
	}
	return nil
}

func (s Schema) validateConfirmations() error {
	confirmed := make(map[string]string)
	for _, field := range s.fields {
		if !field.IsConfirmation() {
			continue
		}
		primary, ok := s.Field(field.ConfirmationOf)
		if !ok {
			return fmt.Errorf("%w: field %q confirms unknown field %q", ErrInvalidConfirm, field.ID, field.ConfirmationOf)
		}
		if primary.Kind != KindPassword || primary.IsConfirmation() {
			return fmt.Errorf("%w: field %q must confirm a primary password field", ErrInvalidConfirm, field.ID)
		}
		if other, exists := confirmed[primary.ID]; exists {
			return fmt.Errorf("%w: %q is already confirmed by %q", ErrInvalidConfirm, primary.ID, other)
		}
		confirmed[primary.ID] = field.ID
	}
	return nil
}

// Len returns the number of fields.
func (s Schema) Len() int {
	return len(s.fields)
}

// Fields returns a copy of the definitions in declaration order.
func (s Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	for i, field := range s.fields {
		out[i] = field.clone()
	}
	return out
}

// IDs returns the field ids in declaration order.
func (s Schema) IDs() []string {
	out := make([]string, len(s.fields))
	for i, field := range s.fields {
		out[i] = field.ID
	}
	return out
}

// Field looks up a definition by id.
func (s Schema) Field(id string) (Field, bool) {
	idx, ok := s.index[strings.TrimSpace(id)]
	if !ok {
		return Field{}, false
	}
	return s.fields[idx].clone(), true
}

// FirstOfKind returns the first field of the given kind in declaration order.
func (s Schema) FirstOfKind(kind Kind) (Field, bool) {
	for _, field := range s.fields {
		if field.Kind == kind {
			return field.clone(), true
		}
	}
	return Field{}, false
}

// Pairs returns the password/confirmation couples ordered by the position of
// the primary field.
func (s Schema) Pairs() []Pair {
	var pairs []Pair
	for _, field := range s.fields {
		if field.Kind != KindPassword || field.IsConfirmation() {
			continue
		}
		for _, candidate := range s.fields {
			if candidate.ConfirmationOf == field.ID {
				pairs = append(pairs, Pair{Primary: field.clone(), Confirmation: candidate.clone()})
				break
			}
		}
	}
	return pairs
}

// PairOf returns the pair the field participates in, if any.
func (s Schema) PairOf(id string) (Pair, bool) {
	for _, pair := range s.Pairs() {
		if pair.Primary.ID == id || pair.Confirmation.ID == id {
			return pair, true
		}
	}
	return Pair{}, false
}

// PrimaryPassword returns the password used for authentication: the primary
// of the first pair, or the first password field when the schema has no
// confirmation.
func (s Schema) PrimaryPassword() (Field, bool) {
	if pairs := s.Pairs(); len(pairs) > 0 {
		return pairs[0].Primary, true
	}
	return s.FirstOfKind(KindPassword)
}

// Subset returns a schema containing the fields accepted by keep, in order.
// Confirmation fields whose primary is dropped are dropped as well.
func (s Schema) Subset(keep func(Field) bool) Schema {
	out := Schema{index: make(map[string]int)}
	for _, field := range s.fields {
		if keep != nil && !keep(field) {
			continue
		}
		out.index[field.ID] = len(out.fields)
		out.fields = append(out.fields, field.clone())
	}
	filtered := Schema{index: make(map[string]int, len(out.fields))}
	for _, field := range out.fields {
		if field.IsConfirmation() {
			if _, ok := out.index[field.ConfirmationOf]; !ok {
				continue
			}
		}
		filtered.index[field.ID] = len(filtered.fields)
		filtered.fields = append(filtered.fields, field)
	}
	return filtered
}

// ProfileFields returns the fields stored as account metadata, i.e. every
// field except email and password kinds.
func (s Schema) ProfileFields() Schema {
	return s.Subset(func(field Field) bool {
		return !field.Kind.Credential()
	})
}
