package testsupport_test

import (
	"net/url"
	"testing"

	"github.com/goliatone/go-userforms/pkg/model"
	"github.com/goliatone/go-userforms/pkg/testsupport"
)

func TestPayloadKeepsOrderAndRepeats(t *testing.T) {
	got := testsupport.Payload("b", "1", "user_hobbies[]", "tennis", "user_hobbies[]", "foot ball")
	want := "b=1&user_hobbies%5B%5D=tennis&user_hobbies%5B%5D=foot+ball"
	if got != want {
		t.Fatalf("payload = %q, want %q", got, want)
	}
}

func TestValidRegistrationOverrides(t *testing.T) {
	values, err := url.ParseQuery(testsupport.ValidRegistration(map[string]string{
		model.FieldEmail: "other@example.com",
		model.FieldCity:  "",
	}))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := values.Get(model.FieldEmail); got != "other@example.com" {
		t.Fatalf("email = %q", got)
	}
	if values.Has(model.FieldCity) {
		t.Fatalf("expected city to be cleared")
	}
}
