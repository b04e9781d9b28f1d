package validation_test

import (
	"encoding/json"
	"errors"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-userforms/pkg/model"
	"github.com/goliatone/go-userforms/pkg/validation"
)

func TestErrorsFirstMessageWins(t *testing.T) {
	var errs validation.Errors
	if !errs.Add("user_email_error", "Please enter valid email") {
		t.Fatalf("expected first add to succeed")
	}
	if errs.Add("user_email_error", "This email is already used") {
		t.Fatalf("expected duplicate add to be ignored")
	}
	if msg, _ := errs.Get("user_email_error"); msg != "Please enter valid email" {
		t.Fatalf("unexpected message %q", msg)
	}
	if errs.Len() != 1 {
		t.Fatalf("expected one entry, got %d", errs.Len())
	}
}

func TestErrorsJSONPreservesOrder(t *testing.T) {
	var errs validation.Errors
	errs.Add("zeta_error", "last alphabetically")
	errs.Add("alpha_error", `quoted "message" <b>`)

	data, err := json.Marshal(errs)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"zeta_error":"last alphabetically","alpha_error":"quoted \"message\" \u003cb\u003e"}`
	if string(data) != want {
		t.Fatalf("unexpected json\nwant: %s\n got: %s", want, data)
	}

	var decoded validation.Errors
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(errs.Items(), decoded.Items()); diff != "" {
		t.Fatalf("decoded mismatch (-want +got):\n%s", diff)
	}
}

func TestErrorsMerge(t *testing.T) {
	var a, b validation.Errors
	a.Add("one_error", "1")
	b.Add("one_error", "dup")
	b.Add("two_error", "2")
	a.Merge(b)

	if diff := cmp.Diff([]string{"1", "2"}, a.Messages()); diff != "" {
		t.Fatalf("merge mismatch (-want +got):\n%s", diff)
	}
}

func TestPairKeyAndTargets(t *testing.T) {
	schema := model.DefaultRegistrationSchema()
	pair := schema.Pairs()[0]

	if got := validation.PairKey(pair); got != "user_passwords_error" {
		t.Fatalf("unexpected pair key %q", got)
	}

	tests := map[string][]string{
		"user_passwords_error": {model.FieldPassword, model.FieldPasswordConfirm},
		"user_email_error":     {model.FieldEmail},
		"signon_error":         nil,
		"":                     nil,
	}
	for key, want := range tests {
		if diff := cmp.Diff(want, validation.TargetsForKey(schema, key)); diff != "" {
			t.Fatalf("targets for %q mismatch (-want +got):\n%s", key, diff)
		}
	}
}

func passPair(primary, confirm string) model.Schema {
	return model.MustSchema(
		model.Field{ID: primary, Kind: model.KindPassword, Required: true},
		model.Field{ID: confirm, Kind: model.KindPassword, Required: true, ConfirmationOf: primary},
	)
}

func TestPairKeyNeverMatchesMemberKey(t *testing.T) {
	tests := []struct {
		name    string
		schema  model.Schema
		wantKey string
	}{
		{name: "stem ending in s", schema: passPair("user_pass", "user_pass_confirm"), wantKey: "user_passs_error"},
		{name: "plural equals primary", schema: passPair("codes", "code_confirm"), wantKey: "code_pair_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pair := tt.schema.Pairs()[0]
			key := validation.PairKey(pair)
			if key != tt.wantKey {
				t.Fatalf("pair key = %q, want %q", key, tt.wantKey)
			}
			if key == validation.FieldKey(pair.Primary.ID) || key == validation.FieldKey(pair.Confirmation.ID) {
				t.Fatalf("pair key %q collides with a member key", key)
			}

			sub := validation.NewSubmission(url.Values{
				pair.Primary.ID:      {"secret1"},
				pair.Confirmation.ID: {"secret2"},
			})
			errs := validation.New().Validate(tt.schema, sub)
			if diff := cmp.Diff([]string{key}, errs.Keys()); diff != "" {
				t.Fatalf("error keys mismatch (-want +got):\n%s", diff)
			}
			want := []string{pair.Primary.ID, pair.Confirmation.ID}
			if diff := cmp.Diff(want, validation.TargetsForKey(tt.schema, key)); diff != "" {
				t.Fatalf("targets mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCheckKeysRejectsPairFieldCollision(t *testing.T) {
	schema := model.MustSchema(
		model.Field{ID: "user_password", Kind: model.KindPassword},
		model.Field{ID: "user_password_confirm", Kind: model.KindPassword, ConfirmationOf: "user_password"},
		model.Field{ID: "user_passwords", Kind: model.KindText},
	)
	if err := validation.CheckKeys(schema); !errors.Is(err, validation.ErrKeyCollision) {
		t.Fatalf("expected ErrKeyCollision, got %v", err)
	}
	if err := validation.CheckKeys(model.DefaultRegistrationSchema()); err != nil {
		t.Fatalf("default schema: %v", err)
	}

	result := validation.CheckSchema([]byte(`fields:
  - id: user_password
    kind: password
  - id: user_password_confirm
    kind: password
    confirmation_of: user_password
  - id: user_passwords
    kind: text
`), "collide.yaml")
	if result.Valid || len(result.Issues) != 1 || result.Issues[0].Field != "user_passwords" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestSubmissionCheckboxAndMulti(t *testing.T) {
	sub, err := validation.ParseSubmission("user_privacy=off&user_privacy=on&user_hobbies%5B%5D=&user_hobbies%5B%5D=tennis&user_messaging=off")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := sub.Checkbox("user_privacy"); got != model.CheckboxOn {
		t.Fatalf("expected on, got %q", got)
	}
	if got := sub.Checkbox("user_messaging"); got != model.CheckboxOff {
		t.Fatalf("expected off, got %q", got)
	}
	if got := sub.Checkbox("missing"); got != model.CheckboxOff {
		t.Fatalf("expected off for absent checkbox, got %q", got)
	}
	if diff := cmp.Diff([]string{"tennis"}, sub.Values("user_hobbies")); diff != "" {
		t.Fatalf("multi values mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSubmissionRejectsMalformedPayload(t *testing.T) {
	if _, err := validation.ParseSubmission("user_email=%zz"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestCheckSchema(t *testing.T) {
	ok := validation.CheckSchema([]byte("fields:\n  - id: name\n    kind: text\n"), "ok.yaml")
	if !ok.Valid || len(ok.Fields) != 1 {
		t.Fatalf("expected valid result, got %+v", ok)
	}

	bad := validation.CheckSchema([]byte("fields:\n  - id: city\n    kind: select\n"), "bad.yaml")
	if bad.Valid || len(bad.Issues) != 1 || bad.Issues[0].Field != "city" {
		t.Fatalf("unexpected result %+v", bad)
	}
}
