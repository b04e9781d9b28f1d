package accounts

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/goliatone/go-userforms/pkg/host/memory"
	"github.com/goliatone/go-userforms/pkg/model"
	"github.com/goliatone/go-userforms/pkg/render"
	"github.com/goliatone/go-userforms/pkg/testsupport"
)

func TestEmbedFormsCarryTokenAndEndpoint(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	cases := []struct {
		op     Operation
		render func(context.Context) (string, error)
		want   []string
	}{
		{OpRegister, h.component.RegistrationForm, []string{`id="registrationForm"`, `data-success="reload"`}},
		{OpLogin, h.component.LoginForm, []string{`id="loginForm"`, `href="/forgot-password"`}},
		{OpRequestReset, h.component.ForgotPasswordForm, []string{`id="forgotPasswordForm"`, `data-success="message"`, `Check your email and follow the instructions.`}},
	}
	for _, tc := range cases {
		t.Run(string(tc.op), func(t *testing.T) {
			html, err := tc.render(ctx)
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			for _, want := range append(tc.want,
				`data-endpoint="/api/userforms/`+string(tc.op)+`"`,
				`data-operation="`+string(tc.op)+`"`,
			) {
				if !strings.Contains(html, want) {
					t.Fatalf("expected markup to contain %q\n%s", want, html)
				}
			}

			token := extractAttr(t, html, "data-token")
			if !h.host.VerifyAntiForgeryToken(ctx, token, tc.op.Purpose()) {
				t.Fatalf("embedded token does not verify for %s", tc.op)
			}
		})
	}
}

func TestResetPasswordFormInvalidLink(t *testing.T) {
	h := newHarness(t)

	html, err := h.component.ResetPasswordForm(context.Background(), url.Values{"key": {"nope"}, "login": {"jane@x.com"}})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(html, "Sorry, that key does not appear to be valid.") {
		t.Fatalf("expected invalid key message\n%s", html)
	}
	if strings.Contains(html, "<form") {
		t.Fatalf("invalid links must not render the form\n%s", html)
	}
}

func TestProfileFieldsAndSave(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.createAccount("jane@x.com", "secret1")
	if err := h.host.WriteMetadata(ctx, id, model.FieldCity, "odessa"); err != nil {
		t.Fatalf("seed metadata: %v", err)
	}

	html, err := h.component.ProfileFields(ctx, id)
	if err != nil {
		t.Fatalf("profile fields: %v", err)
	}
	for _, want := range []string{
		`<h2 class="userforms-profile-title">Extra profile information</h2>`,
		`<option value="odessa" selected>Odessa</option>`,
		`name="` + render.HiddenProfileNonce + `"`,
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected profile markup to contain %q\n%s", want, html)
		}
	}
	if strings.Contains(html, `id="user_password"`) || strings.Contains(html, `id="user_email"`) {
		t.Fatalf("credential fields must not appear on the profile\n%s", html)
	}

	nonce, err := h.host.IssueAntiForgeryToken(ctx, profilePurpose(id))
	if err != nil {
		t.Fatalf("nonce: %v", err)
	}
	form := url.Values{
		render.HiddenProfileNonce: {nonce},
		model.FieldCity:           {"kiev"},
		model.FieldHobbies + "[]": {"tennis", "football"},
	}

	saved, err := h.component.SaveProfile(ctx, id, form)
	if err != nil || saved {
		t.Fatalf("anonymous viewer must be skipped, saved=%v err=%v", saved, err)
	}

	viewer := memory.WithViewer(ctx, id)
	bad := url.Values{render.HiddenProfileNonce: {"forged"}, model.FieldCity: {"kiev"}}
	if saved, _ := h.component.SaveProfile(viewer, id, bad); saved {
		t.Fatalf("forged nonce must be skipped")
	}

	saved, err = h.component.SaveProfile(viewer, id, form)
	if err != nil || !saved {
		t.Fatalf("expected save, saved=%v err=%v", saved, err)
	}
	values, err := h.component.Profiles().Values(ctx, id)
	if err != nil {
		t.Fatalf("values: %v", err)
	}
	if diff := cmp.Diff("kiev", values[model.FieldCity]); diff != "" {
		t.Fatalf("city mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"tennis", "football"}, values[model.FieldHobbies]); diff != "" {
		t.Fatalf("hobbies mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(model.CheckboxOff, values[model.FieldPrivacy]); diff != "" {
		t.Fatalf("privacy mismatch (-want +got):\n%s", diff)
	}
}

func TestMetricsRecordOutcomes(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())
	h := newHarness(t, WithMetrics(metrics))
	h.createAccount("jane@x.com", "secret1")

	h.submit(OpLogin, testsupport.Payload(model.FieldEmail, "jane@x.com", model.FieldPassword, "secret1"))
	h.submit(OpLogin, testsupport.Payload(model.FieldEmail, "jane@x.com", model.FieldPassword, "nope"))
	h.post(OpLogin, Envelope{AntiForgeryToken: "forged"})
	h.post(OpLogin, Envelope{Operation: "register"})

	for outcome, want := range map[Outcome]float64{
		OutcomeSuccess:    1,
		OutcomeInvalid:    1,
		OutcomeForbidden:  1,
		OutcomeBadRequest: 1,
	} {
		if got := testutil.ToFloat64(metrics.Requests(OpLogin, outcome)); got != want {
			t.Fatalf("outcome %s: expected %v, got %v", outcome, want, got)
		}
	}
}

func TestRegisterRoutesPatterns(t *testing.T) {
	h := newHarness(t)
	mux := http.NewServeMux()

	patterns, err := h.component.RegisterRoutes(mux, "/auth/")
	if err != nil {
		t.Fatalf("register routes: %v", err)
	}
	want := []string{"/auth/register", "/auth/login", "/auth/request-reset", "/auth/perform-reset", "/auth/token"}
	if diff := cmp.Diff(want, patterns); diff != "" {
		t.Fatalf("patterns mismatch (-want +got):\n%s", diff)
	}

	if _, err := h.component.RegisterRoutes(nil, ""); err == nil {
		t.Fatalf("expected error for nil mux")
	}
	if got := MountPath("", OpPerformReset); got != "/perform-reset" {
		t.Fatalf("unexpected mount path %q", got)
	}
}

func TestNewRejectsIncompleteSchemas(t *testing.T) {
	platform := memory.New()
	textOnly := model.MustSchema(model.Field{ID: "user_name", Kind: model.KindText})

	if _, err := New(platform, WithRegistrationSchema(textOnly)); err == nil {
		t.Fatalf("expected error for registration schema without email/password")
	}
	if _, err := New(nil); err == nil {
		t.Fatalf("expected error for nil platform")
	}
}

func TestOpenAPIDocumentValidates(t *testing.T) {
	h := newHarness(t)
	doc := h.component.OpenAPIDocument("1.2.3")

	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal document: %v", err)
	}
	loaded, err := openapi3.NewLoader().LoadFromData(raw)
	if err != nil {
		t.Fatalf("load document: %v", err)
	}
	if err := loaded.Validate(context.Background()); err != nil {
		t.Fatalf("validate document: %v", err)
	}
	for _, op := range Operations() {
		item := loaded.Paths.Find(h.component.Endpoint(op))
		if item == nil || item.Post == nil || item.Post.OperationID != string(op) {
			t.Fatalf("missing POST operation for %s", op)
		}
	}
	if item := loaded.Paths.Find("/api/userforms/token"); item == nil || item.Get == nil {
		t.Fatalf("missing token operation")
	}
}

func extractAttr(t *testing.T, html, name string) string {
	t.Helper()
	marker := name + `="`
	start := strings.Index(html, marker)
	if start < 0 {
		t.Fatalf("attribute %s not found\n%s", name, html)
	}
	rest := html[start+len(marker):]
	end := strings.IndexByte(rest, '"')
	if end < 0 {
		t.Fatalf("unterminated attribute %s", name)
	}
	return rest[:end]
}
