package accounts

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-userforms/pkg/validation"
)

var (
	ErrMalformedEnvelope = errors.New("accounts: malformed request envelope")
	ErrOperationMismatch = errors.New("accounts: operation does not match endpoint")
)

// Envelope is the request body the client controller posts.
type Envelope struct {
	Operation        string `json:"operation"`
	AntiForgeryToken string `json:"antiForgeryToken"`
	Payload          string `json:"payload"`
}

// Result is the single JSON body returned for an operation.
type Result struct {
	Status int                `json:"status"`
	Errors *validation.Errors `json:"errors,omitempty"`
}

// NewResult reports status 1 when errs is empty and 0 with the errors
// otherwise.
func NewResult(errs validation.Errors) Result {
	if errs.Empty() {
		return Result{Status: 1}
	}
	return Result{Status: 0, Errors: &errs}
}

// OK reports whether the result is a success.
func (r Result) OK() bool {
	return r.Status == 1
}

type errorBody struct {
	Error string `json:"error"`
}

type tokenBody struct {
	Operation string `json:"operation"`
	Token     string `json:"token"`
}

// DecodeEnvelope reads an envelope from a JSON or form-encoded body. An
// empty operation defaults to op; any other value must equal op.
func DecodeEnvelope(r *http.Request, op Operation, limit int64) (Envelope, error) {
	var env Envelope
	if r == nil || r.Body == nil {
		return env, ErrMalformedEnvelope
	}
	body := io.Reader(r.Body)
	if limit > 0 {
		body = io.LimitReader(r.Body, limit+1)
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return env, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if limit > 0 && int64(len(raw)) > limit {
		return env, fmt.Errorf("%w: body exceeds %d bytes", ErrMalformedEnvelope, limit)
	}

	if isJSON(r.Header.Get("Content-Type"), raw) {
		if err := json.Unmarshal(raw, &env); err != nil {
			return env, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
		}
	} else {
		sub, err := validation.ParseSubmission(string(raw))
		if err != nil {
			return env, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
		}
		env = Envelope{
			Operation:        sub.Value("operation"),
			AntiForgeryToken: sub.Value("antiForgeryToken"),
			Payload:          sub.Value("payload"),
		}
	}

	env.Operation = strings.TrimSpace(env.Operation)
	if env.Operation == "" {
		env.Operation = string(op)
	}
	if env.Operation != string(op) {
		return env, fmt.Errorf("%w: got %q, want %q", ErrOperationMismatch, env.Operation, op)
	}
	return env, nil
}

func isJSON(contentType string, raw []byte) bool {
	if contentType != "" {
		media, _, err := mime.ParseMediaType(contentType)
		if err == nil {
			return media == "application/json" || strings.HasSuffix(media, "+json")
		}
	}
	trimmed := strings.TrimSpace(string(raw))
	return strings.HasPrefix(trimmed, "{")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(v)
}
