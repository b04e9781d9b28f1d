package accounts

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/crypto/bcrypt"

	"github.com/goliatone/go-userforms/pkg/host"
	"github.com/goliatone/go-userforms/pkg/host/memory"
	"github.com/goliatone/go-userforms/pkg/model"
	"github.com/goliatone/go-userforms/pkg/testsupport"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type harness struct {
	t         *testing.T
	clock     *clock
	outbox    *memory.Outbox
	host      *memory.Host
	component *Component
	mux       *http.ServeMux
}

func newHarness(t *testing.T, fns ...OptionFn) *harness {
	t.Helper()
	return newHarnessWithHost(t, nil, fns...)
}

func newHarnessWithHost(t *testing.T, hostOpts []memory.Option, fns ...OptionFn) *harness {
	t.Helper()
	return newHarnessWithPlatform(t, hostOpts, nil, fns...)
}

// newHarnessWithPlatform lets wrap decorate the memory host the component
// talks to. Tokens and lookups in the harness still use the memory host.
func newHarnessWithPlatform(t *testing.T, hostOpts []memory.Option, wrap func(*memory.Host) host.Platform, fns ...OptionFn) *harness {
	t.Helper()
	clk := &clock{now: time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)}
	outbox := &memory.Outbox{}
	opts := append([]memory.Option{
		memory.WithBcryptCost(bcrypt.MinCost),
		memory.WithClock(clk.Now),
		memory.WithTokenSecret([]byte("accounts-test")),
		memory.WithMailer(outbox),
	}, hostOpts...)
	platform := memory.New(opts...)

	var target host.Platform = platform
	if wrap != nil {
		target = wrap(platform)
	}

	fns = append([]OptionFn{WithSite(Site{Name: "Example", URL: "https://example.com/"})}, fns...)
	component, err := New(target, fns...)
	if err != nil {
		t.Fatalf("new component: %v", err)
	}
	mux := http.NewServeMux()
	if _, err := component.RegisterRoutes(mux, ""); err != nil {
		t.Fatalf("register routes: %v", err)
	}
	return &harness{t: t, clock: clk, outbox: outbox, host: platform, component: component, mux: mux}
}

func (h *harness) token(op Operation) string {
	h.t.Helper()
	token, err := h.host.IssueAntiForgeryToken(context.Background(), op.Purpose())
	if err != nil {
		h.t.Fatalf("issue token: %v", err)
	}
	return token
}

func (h *harness) post(op Operation, env Envelope) *httptest.ResponseRecorder {
	h.t.Helper()
	body, err := json.Marshal(env)
	if err != nil {
		h.t.Fatalf("marshal envelope: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, h.component.Endpoint(op), strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.mux.ServeHTTP(rec, req)
	return rec
}

// submit posts payload with a valid token and returns the trimmed body.
func (h *harness) submit(op Operation, payload string) string {
	h.t.Helper()
	rec := h.post(op, Envelope{Operation: string(op), AntiForgeryToken: h.token(op), Payload: payload})
	if rec.Code != http.StatusOK {
		h.t.Fatalf("%s: expected status 200, got %d: %s", op, rec.Code, rec.Body.String())
	}
	return strings.TrimSpace(rec.Body.String())
}

func (h *harness) createAccount(email, password string) string {
	h.t.Helper()
	id, err := h.host.CreateAccount(context.Background(), email, password, email)
	if err != nil {
		h.t.Fatalf("create account: %v", err)
	}
	return id
}

func expectBody(t *testing.T, got, want string) {
	t.Helper()
	if got != want {
		t.Fatalf("unexpected body\n got: %s\nwant: %s", got, want)
	}
}

var linkPattern = regexp.MustCompile(`https://example\.com/\S+`)

func resetLinkQuery(t *testing.T, body string) url.Values {
	t.Helper()
	raw := linkPattern.FindString(body)
	if raw == "" {
		t.Fatalf("no reset link in email body:\n%s", body)
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse reset link: %v", err)
	}
	return parsed.Query()
}

func TestRegisterSuccessCreatesAccountAndProfile(t *testing.T) {
	h := newHarness(t)

	body := h.submit(OpRegister, testsupport.ValidRegistration(map[string]string{
		model.FieldEmail: "jane@x.com",
	}))
	expectBody(t, body, `{"status":1}`)

	ctx := context.Background()
	account, err := h.host.GetAccountByEmail(ctx, "jane@x.com")
	if err != nil {
		t.Fatalf("account lookup: %v", err)
	}
	if account.Login != "jane@x.com" || account.Email != "jane@x.com" {
		t.Fatalf("unexpected account: %#v", account)
	}

	city, err := h.host.ReadMetadata(ctx, account.ID, model.FieldCity)
	if err != nil || city != "kiev" {
		t.Fatalf("expected city metadata kiev, got %v (%v)", city, err)
	}
	messaging, err := h.host.ReadMetadata(ctx, account.ID, model.FieldMessaging)
	if err != nil || messaging != model.CheckboxOff {
		t.Fatalf("expected messaging metadata off, got %v (%v)", messaging, err)
	}
	password, _ := h.host.ReadMetadata(ctx, account.ID, model.FieldPassword)
	if password != nil && password != "" {
		t.Fatalf("password must never reach metadata, got %v", password)
	}
}

func TestRegisterEmailTaken(t *testing.T) {
	h := newHarness(t)
	h.createAccount("jane@x.com", "secret1")

	body := h.submit(OpRegister, testsupport.ValidRegistration(map[string]string{
		model.FieldEmail: "jane@x.com",
	}))
	expectBody(t, body, `{"status":0,"errors":{"user_email_error":"This email is already used"}}`)
}

func TestRegisterMismatchedPasswords(t *testing.T) {
	h := newHarness(t)

	body := h.submit(OpRegister, testsupport.ValidRegistration(map[string]string{
		model.FieldPassword:        "secret1",
		model.FieldPasswordConfirm: "secret2",
	}))
	expectBody(t, body, `{"status":0,"errors":{"user_passwords_error":"Passwords do not match."}}`)

	if exists, _ := h.host.AccountExistsByLoginOrEmail(context.Background(), "jane@example.com"); exists {
		t.Fatalf("no account should be created on validation failure")
	}
}

func TestRegisterAccumulatesErrorsInSchemaOrder(t *testing.T) {
	h := newHarness(t)

	body := h.submit(OpRegister, testsupport.ValidRegistration(map[string]string{
		model.FieldFullName: "",
		model.FieldEmail:    "not-an-email",
		model.FieldPrivacy:  "",
	}))
	expectBody(t, body, `{"status":0,"errors":{"user_full_name_error":"Full Name is required","user_email_error":"Please enter valid email","user_privacy_error":"Accepting Privacy Policy is required"}}`)
}

// failingHost makes selected host calls fail on top of the memory host.
type failingHost struct {
	*memory.Host
	hideExisting bool
	metaErr      error
	sessionErr   error
}

func (f *failingHost) AccountExistsByLoginOrEmail(ctx context.Context, value string) (bool, error) {
	if f.hideExisting {
		return false, nil
	}
	return f.Host.AccountExistsByLoginOrEmail(ctx, value)
}

func (f *failingHost) WriteMetadata(ctx context.Context, accountID, key string, value any) error {
	if f.metaErr != nil {
		return f.metaErr
	}
	return f.Host.WriteMetadata(ctx, accountID, key, value)
}

func (f *failingHost) EstablishSession(ctx context.Context, login, password string) (*host.Account, error) {
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	return f.Host.EstablishSession(ctx, login, password)
}

func TestHostFailurePaths(t *testing.T) {
	tests := []struct {
		name     string
		failing  failingHost
		existing bool
		op       Operation
		payload  string
		want     string
		check    func(t *testing.T, h *harness)
	}{
		{
			name:     "register race after clean pre-check",
			failing:  failingHost{hideExisting: true},
			existing: true,
			op:       OpRegister,
			payload:  testsupport.ValidRegistration(map[string]string{model.FieldEmail: "jane@x.com"}),
			want:     `{"status":0,"errors":{"user_email_error":"This email is already used"}}`,
		},
		{
			name:    "metadata write fails after create",
			failing: failingHost{metaErr: errors.New("metadata store offline")},
			op:      OpRegister,
			payload: testsupport.ValidRegistration(map[string]string{model.FieldEmail: "jane@x.com"}),
			want:    `{"status":0,"errors":{"meta_error":"Your account was created but some profile details could not be saved."}}`,
			check: func(t *testing.T, h *harness) {
				if exists, _ := h.host.AccountExistsByLoginOrEmail(context.Background(), "jane@x.com"); !exists {
					t.Fatalf("account must remain after a metadata failure")
				}
			},
		},
		{
			name:     "session cannot be established",
			failing:  failingHost{sessionErr: host.ErrSessionFailed},
			existing: true,
			op:       OpLogin,
			payload:  testsupport.Payload(model.FieldEmail, "jane@x.com", model.FieldPassword, "secret1"),
			want:     `{"status":0,"errors":{"signon_error":"Please check login or password"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			failing := tt.failing
			h := newHarnessWithPlatform(t, nil, func(base *memory.Host) host.Platform {
				failing.Host = base
				return &failing
			})
			if tt.existing {
				h.createAccount("jane@x.com", "secret1")
			}

			expectBody(t, h.submit(tt.op, tt.payload), tt.want)
			if tt.check != nil {
				tt.check(t, h)
			}
		})
	}
}

func TestLoginWrongPassword(t *testing.T) {
	h := newHarness(t)
	h.createAccount("jane@x.com", "secret1")

	body := h.submit(OpLogin, testsupport.Payload(model.FieldEmail, "jane@x.com", model.FieldPassword, "wrong-one"))
	expectBody(t, body, `{"status":0,"errors":{"user_password_error":"The password you entered is incorrect"}}`)
}

func TestLoginUnknownEmailAndSuccess(t *testing.T) {
	h := newHarness(t)
	h.createAccount("jane@x.com", "secret1")

	body := h.submit(OpLogin, testsupport.Payload(model.FieldEmail, "nobody@x.com", model.FieldPassword, "secret1"))
	expectBody(t, body, `{"status":0,"errors":{"user_email_error":"There is no user registered with that email address."}}`)

	body = h.submit(OpLogin, testsupport.Payload(model.FieldEmail, "jane@x.com", model.FieldPassword, "secret1"))
	expectBody(t, body, `{"status":1}`)
}

func TestRequestResetUnknownEmailSendsNothing(t *testing.T) {
	h := newHarness(t)

	body := h.submit(OpRequestReset, testsupport.Payload(model.FieldEmail, "ghost@x.com"))
	expectBody(t, body, `{"status":0,"errors":{"user_email_error":"There is no user registered with that email address."}}`)
	if n := len(h.outbox.Messages()); n != 0 {
		t.Fatalf("expected no email, got %d", n)
	}
}

func TestPasswordResetRoundTrip(t *testing.T) {
	h := newHarness(t)
	h.createAccount("jane@x.com", "secret1")
	ctx := context.Background()

	expectBody(t, h.submit(OpRequestReset, testsupport.Payload(model.FieldEmail, "jane@x.com")), `{"status":1}`)

	messages := h.outbox.Messages()
	if len(messages) != 1 {
		t.Fatalf("expected one email, got %d", len(messages))
	}
	msg := messages[0]
	if msg.To != "jane@x.com" || msg.Subject != "[Example] Password Reset" {
		t.Fatalf("unexpected email header: %#v", msg)
	}
	if !strings.Contains(msg.Body, "Username: jane@x.com") {
		t.Fatalf("expected username line in body:\n%s", msg.Body)
	}

	query := resetLinkQuery(t, msg.Body)
	if query.Get("action") != "rp" || query.Get("login") != "jane@x.com" || query.Get("key") == "" {
		t.Fatalf("unexpected reset link query: %v", query)
	}

	form, err := h.component.ResetPasswordForm(ctx, query)
	if err != nil {
		t.Fatalf("reset form: %v", err)
	}
	for _, want := range []string{
		`data-operation="perform-reset"`,
		`name="user_key" value="` + query.Get("key") + `"`,
		`name="user_login" value="jane@x.com"`,
	} {
		if !strings.Contains(form, want) {
			t.Fatalf("expected reset form to contain %q\n%s", want, form)
		}
	}

	body := h.submit(OpPerformReset, testsupport.Payload(
		"user_key", query.Get("key"),
		"user_login", "jane@x.com",
		model.FieldPassword, "newsecret",
		model.FieldPasswordConfirm, "newsecret",
	))
	expectBody(t, body, `{"status":1}`)

	expectBody(t, h.submit(OpLogin, testsupport.Payload(model.FieldEmail, "jane@x.com", model.FieldPassword, "newsecret")), `{"status":1}`)
}

func TestPerformResetRejectsBadKeys(t *testing.T) {
	h := newHarnessWithHost(t, []memory.Option{memory.WithResetKeyTTL(time.Hour)})
	h.createAccount("jane@x.com", "secret1")
	ctx := context.Background()

	body := h.submit(OpPerformReset, testsupport.Payload(
		"user_key", "bogus",
		"user_login", "jane@x.com",
		model.FieldPassword, "newsecret",
		model.FieldPasswordConfirm, "newsecret",
	))
	expectBody(t, body, `{"status":0,"errors":{"user_key_error":"Sorry, that key does not appear to be valid."}}`)

	h.submit(OpRequestReset, testsupport.Payload(model.FieldEmail, "jane@x.com"))
	query := resetLinkQuery(t, h.outbox.Messages()[0].Body)
	h.clock.Advance(2 * time.Hour)

	body = h.submit(OpPerformReset, testsupport.Payload(
		"user_key", query.Get("key"),
		"user_login", "jane@x.com",
		model.FieldPassword, "newsecret",
		model.FieldPasswordConfirm, "newsecret",
	))
	expectBody(t, body, `{"status":0,"errors":{"user_key_error":"Sorry, that key has expired. Please try again."}}`)

	form, err := h.component.ResetPasswordForm(ctx, query)
	if err != nil {
		t.Fatalf("reset form: %v", err)
	}
	if !strings.Contains(form, `<p class="reset-failure">Sorry, that key has expired. Please try again.</p>`) {
		t.Fatalf("expected expired message, got:\n%s", form)
	}
}

func TestPerformResetPairError(t *testing.T) {
	h := newHarness(t)
	h.createAccount("jane@x.com", "secret1")
	h.submit(OpRequestReset, testsupport.Payload(model.FieldEmail, "jane@x.com"))
	query := resetLinkQuery(t, h.outbox.Messages()[0].Body)

	body := h.submit(OpPerformReset, testsupport.Payload(
		"user_key", query.Get("key"),
		"user_login", "jane@x.com",
		model.FieldPassword, "abc",
		model.FieldPasswordConfirm, "abc",
	))
	expectBody(t, body, `{"status":0,"errors":{"user_passwords_error":"Password is too short"}}`)
}

func TestRequestResetMailFailure(t *testing.T) {
	failing := &memory.Outbox{Fail: true}
	h := newHarnessWithHost(t, []memory.Option{memory.WithMailer(failing)})
	h.createAccount("jane@x.com", "secret1")

	body := h.submit(OpRequestReset, testsupport.Payload(model.FieldEmail, "jane@x.com"))
	expectBody(t, body, `{"status":0,"errors":{"mail_error":"The e-mail could not be sent. Possible reason: your host may have disabled the mail() function."}}`)
}

func TestInvalidTokenIsFatal(t *testing.T) {
	h := newHarness(t)
	payload := testsupport.ValidRegistration(nil)

	cases := map[string]string{
		"missing":         "",
		"garbage":         "not-a-token",
		"other operation": h.token(OpLogin),
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			rec := h.post(OpRegister, Envelope{Operation: string(OpRegister), AntiForgeryToken: token, Payload: payload})
			if rec.Code != http.StatusForbidden {
				t.Fatalf("expected 403, got %d", rec.Code)
			}
			expectBody(t, strings.TrimSpace(rec.Body.String()), `{"error":"Invalid security token sent!"}`)
		})
	}

	if exists, _ := h.host.AccountExistsByLoginOrEmail(context.Background(), "jane@example.com"); exists {
		t.Fatalf("rejected requests must not create accounts")
	}
}

func TestMalformedRequests(t *testing.T) {
	h := newHarness(t)
	endpoint := h.component.Endpoint(OpLogin)

	t.Run("bad json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, endpoint, strings.NewReader(`{"operation":`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		h.mux.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("operation mismatch", func(t *testing.T) {
		rec := h.post(OpLogin, Envelope{Operation: string(OpRegister), AntiForgeryToken: h.token(OpLogin)})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("bad payload", func(t *testing.T) {
		rec := h.post(OpLogin, Envelope{AntiForgeryToken: h.token(OpLogin), Payload: "%zz"})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("oversized body", func(t *testing.T) {
		small := newHarness(t, WithMaxBodyBytes(32))
		rec := small.post(OpLogin, Envelope{AntiForgeryToken: small.token(OpLogin), Payload: strings.Repeat("a", 64)})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("wrong method", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, endpoint, nil)
		rec := httptest.NewRecorder()
		h.mux.ServeHTTP(rec, req)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", rec.Code)
		}
		if allow := rec.Header().Get("Allow"); allow != http.MethodPost {
			t.Fatalf("expected Allow POST, got %q", allow)
		}
	})
}

func TestFormEncodedEnvelope(t *testing.T) {
	h := newHarness(t)
	h.createAccount("jane@x.com", "secret1")

	form := url.Values{}
	form.Set("antiForgeryToken", h.token(OpLogin))
	form.Set("payload", testsupport.Payload(model.FieldEmail, "jane@x.com", model.FieldPassword, "secret1"))
	req := httptest.NewRequest(http.MethodPost, h.component.Endpoint(OpLogin), strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	expectBody(t, strings.TrimSpace(rec.Body.String()), `{"status":1}`)
}

func TestGuardRejects(t *testing.T) {
	h := newHarness(t, WithGuard(func(*http.Request) error {
		return StatusError{Code: http.StatusTooManyRequests}
	}))
	rec := h.post(OpLogin, Envelope{AntiForgeryToken: h.token(OpLogin)})
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

func TestTokenHandler(t *testing.T) {
	h := newHarness(t)

	req := httptest.NewRequest(http.MethodGet, "/api/userforms/token?operation=login", nil)
	rec := httptest.NewRecorder()
	h.mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body tokenBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode token body: %v", err)
	}
	if body.Operation != "login" || !h.host.VerifyAntiForgeryToken(context.Background(), body.Token, OpLogin.Purpose()) {
		t.Fatalf("unexpected token body: %#v", body)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/userforms/token?operation=nope", nil)
	rec = httptest.NewRecorder()
	h.mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown operation, got %d", rec.Code)
	}
}
