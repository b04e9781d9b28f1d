package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-userforms/pkg/model"
)

// KeySuffix terminates every error key.
const KeySuffix = "_error"

// FieldKey returns the error key for a field id.
func FieldKey(fieldID string) string {
	return fieldID + KeySuffix
}

// PairStem returns the shared name of a password pair: the common prefix of
// both ids without trailing underscores, plus "s". When that spelling is one
// of the member ids the stem gets a "_pair" suffix instead, so the pair key
// never equals a member's field key.
func PairStem(pair model.Pair) string {
	a, b := pair.Primary.ID, pair.Confirmation.ID
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	stem := strings.TrimRight(a[:n], "_")
	if stem == "" {
		stem = a
	}
	if name := stem + "s"; name != a && name != b {
		return name
	}
	return stem + "_pair"
}

// PairKey returns the error key for a password pair
// ("user_password" + "user_password_confirm" gives "user_passwords_error").
func PairKey(pair model.Pair) string {
	return PairStem(pair) + KeySuffix
}

// TrimKeySuffix strips the error suffix from key.
func TrimKeySuffix(key string) string {
	return strings.TrimSuffix(key, KeySuffix)
}

// TargetsForKey maps an error key back to the field ids it should highlight.
// Pair keys resolve to both password fields; form-level keys resolve to
// nothing.
func TargetsForKey(schema model.Schema, key string) []string {
	name := TrimKeySuffix(strings.TrimSpace(key))
	if name == "" {
		return nil
	}
	if field, ok := schema.Field(name); ok {
		return []string{field.ID}
	}
	for _, pair := range schema.Pairs() {
		if PairStem(pair) == name {
			return []string{pair.Primary.ID, pair.Confirmation.ID}
		}
	}
	return nil
}

// ErrKeyCollision reports a password pair whose error key is also the error
// key of a field.
var ErrKeyCollision = errors.New("validation: pair error key collides with a field")

// CheckKeys rejects schemas where a pair key can not be told apart from a
// field key.
func CheckKeys(schema model.Schema) error {
	for _, pair := range schema.Pairs() {
		name := PairStem(pair)
		if _, ok := schema.Field(name); ok {
			return fmt.Errorf("%w: %q", ErrKeyCollision, name)
		}
	}
	return nil
}
