package validation_test

import (
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-userforms/pkg/model"
	"github.com/goliatone/go-userforms/pkg/validation"
)

func validRegistration() url.Values {
	return url.Values{
		"user_full_name":        {"Jane Doe"},
		"user_email":            {"jane@example.com"},
		"user_password":         {"secret1"},
		"user_password_confirm": {"secret1"},
		"user_city":             {"kiev"},
		"user_hobbies[]":        {"", "tennis", "football"},
		"user_message":          {"Hello"},
		"user_gender":           {"female"},
		"user_privacy":          {"off", "on"},
		"user_messaging":        {"off"},
	}
}

func TestValidateAcceptsCompleteSubmission(t *testing.T) {
	engine := validation.New()
	errs := engine.Validate(model.DefaultRegistrationSchema(), validation.NewSubmission(validRegistration()))
	if !errs.Empty() {
		t.Fatalf("expected no errors, got %v", errs.Items())
	}
}

func TestValidateEmptySubmissionOrder(t *testing.T) {
	engine := validation.New()
	errs := engine.Validate(model.DefaultRegistrationSchema(), validation.NewSubmission(url.Values{}))

	want := []validation.Error{
		{Key: "user_full_name_error", Message: "Full Name is required"},
		{Key: "user_email_error", Message: "Email is required"},
		{Key: "user_passwords_error", Message: "One or both passwords are empty"},
		{Key: "user_city_error", Message: "Please select your city"},
		{Key: "user_message_error", Message: "Message is required"},
		{Key: "user_gender_error", Message: "Please select your gender"},
		{Key: "user_privacy_error", Message: "Accepting Privacy Policy is required"},
	}
	if diff := cmp.Diff(want, errs.Items()); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestValidatePasswordPair(t *testing.T) {
	tests := []struct {
		name    string
		primary string
		confirm string
		want    string
	}{
		{name: "mismatch", primary: "abc123", confirm: "abc124", want: "Passwords do not match."},
		{name: "too short", primary: "abc", confirm: "abc", want: "Password is too short"},
		{name: "one empty", primary: "abc123", confirm: "", want: "One or both passwords are empty"},
		{name: "whitespace only", primary: "   ", confirm: "   ", want: "One or both passwords are empty"},
	}

	engine := validation.New()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			values := validRegistration()
			values.Set("user_password", tc.primary)
			values.Set("user_password_confirm", tc.confirm)

			errs := engine.Validate(model.DefaultRegistrationSchema(), validation.NewSubmission(values))
			want := []validation.Error{{Key: "user_passwords_error", Message: tc.want}}
			if diff := cmp.Diff(want, errs.Items()); diff != "" {
				t.Fatalf("errors mismatch (-want +got):\n%s", diff)
			}
			if errs.HasField(model.FieldPassword) || errs.HasField(model.FieldPasswordConfirm) {
				t.Fatalf("pair members must not carry individual errors: %v", errs.Keys())
			}
		})
	}
}

func TestValidateMinPasswordLengthOption(t *testing.T) {
	values := validRegistration()
	values.Set("user_password", "secret1")
	values.Set("user_password_confirm", "secret1")

	engine := validation.New(validation.WithMinPasswordLength(10))
	errs := engine.Validate(model.DefaultRegistrationSchema(), validation.NewSubmission(values))
	if msg, ok := errs.Get("user_passwords_error"); !ok || msg != "Password is too short" {
		t.Fatalf("expected too short error, got %v", errs.Items())
	}
}

func TestValidateEmailFormat(t *testing.T) {
	values := validRegistration()
	values.Set("user_email", "not-an-email")

	errs := validation.New().Validate(model.DefaultRegistrationSchema(), validation.NewSubmission(values))
	want := []validation.Error{{Key: "user_email_error", Message: "Please enter valid email"}}
	if diff := cmp.Diff(want, errs.Items()); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateRejectsUndeclaredOptions(t *testing.T) {
	values := validRegistration()
	values.Set("user_city", "paris")
	values["user_hobbies[]"] = []string{"chess"}

	errs := validation.New().Validate(model.DefaultRegistrationSchema(), validation.NewSubmission(values))
	want := []string{"user_city_error", "user_hobbies_error"}
	if diff := cmp.Diff(want, errs.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateRequiredCheckboxOff(t *testing.T) {
	values := validRegistration()
	values["user_privacy"] = []string{"off"}

	errs := validation.New().Validate(model.DefaultRegistrationSchema(), validation.NewSubmission(values))
	if msg, ok := errs.Get("user_privacy_error"); !ok || msg != "Accepting Privacy Policy is required" {
		t.Fatalf("expected privacy error, got %v", errs.Items())
	}
}

func TestValidateMinimalSchema(t *testing.T) {
	schema := model.MustSchema(model.Field{ID: "userFullName", Kind: model.KindText, Placeholder: "Full Name", Required: true})

	errs := validation.New().Validate(schema, validation.NewSubmission(url.Values{"userFullName": {"  "}}))
	want := []validation.Error{{Key: "userFullName_error", Message: "Full Name is required"}}
	if diff := cmp.Diff(want, errs.Items()); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestCustomMessages(t *testing.T) {
	engine := validation.New(validation.WithMessages(validation.Messages{Required: "Bitte %s ausfüllen"}))
	schema := model.MustSchema(model.Field{ID: "name", Kind: model.KindText, Label: "Name", Required: true})

	errs := engine.Validate(schema, validation.NewSubmission(url.Values{}))
	if msg, _ := errs.Get("name_error"); msg != "Bitte Name ausfüllen" {
		t.Fatalf("unexpected message %q", msg)
	}
	if engine.Messages().PasswordMismatch != "Passwords do not match." {
		t.Fatalf("expected defaults to fill unspecified messages")
	}
}
