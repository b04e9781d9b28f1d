package accounts

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-userforms/pkg/validation"
)

type HTTPError interface {
	error
	StatusCode() int
}

type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

// Handler returns the POST handler of op. Unknown operations answer 404.
func (c *Component) Handler(op Operation) http.Handler {
	if !op.Valid() {
		return http.NotFoundHandler()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.serve(w, r, op)
	})
}

func (c *Component) serve(w http.ResponseWriter, r *http.Request, op Operation) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	if c.opts.Guard != nil {
		if err := c.opts.Guard(r); err != nil {
			writeGuardError(w, err)
			return
		}
	}

	started := time.Now()
	outcome, errs := c.exchange(w, r, op)

	c.opts.Metrics.Observe(op, outcome, time.Since(started))
	event := c.opts.Logger.Info()
	if outcome != OutcomeSuccess {
		event = c.opts.Logger.Warn()
	}
	event = event.Str("operation", string(op)).Str("outcome", string(outcome))
	if keys := errs.Keys(); len(keys) > 0 {
		event = event.Strs("error_keys", keys)
	}
	event.Dur("elapsed", time.Since(started)).Msg("userforms request")
}

// exchange runs the request pipeline and writes exactly one response.
func (c *Component) exchange(w http.ResponseWriter, r *http.Request, op Operation) (Outcome, validation.Errors) {
	var none validation.Errors

	env, err := DecodeEnvelope(r, op, c.opts.MaxBodyBytes)
	if err != nil {
		c.opts.Logger.Debug().Err(err).Str("operation", string(op)).Msg("rejected envelope")
		writeJSON(w, http.StatusBadRequest, errorBody{Error: http.StatusText(http.StatusBadRequest)})
		return OutcomeBadRequest, none
	}

	ctx := r.Context()
	if !c.platform.VerifyAntiForgeryToken(ctx, env.AntiForgeryToken, op.Purpose()) {
		writeJSON(w, http.StatusForbidden, errorBody{Error: c.messages.InvalidToken})
		return OutcomeForbidden, none
	}

	sub, err := validation.ParseSubmission(env.Payload)
	if err != nil {
		c.opts.Logger.Debug().Err(err).Str("operation", string(op)).Msg("rejected payload")
		writeJSON(w, http.StatusBadRequest, errorBody{Error: http.StatusText(http.StatusBadRequest)})
		return OutcomeBadRequest, none
	}

	errs := c.Process(ctx, op, sub)
	writeJSON(w, http.StatusOK, NewResult(errs))
	if errs.Empty() {
		return OutcomeSuccess, errs
	}
	return OutcomeInvalid, errs
}

// TokenHandler answers GET requests with a fresh anti-forgery token for the
// operation named by the "operation" query parameter.
func (c *Component) TokenHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		if c.opts.Guard != nil {
			if err := c.opts.Guard(r); err != nil {
				writeGuardError(w, err)
				return
			}
		}
		op, err := ParseOperation(strings.TrimSpace(r.URL.Query().Get("operation")))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
			return
		}
		token, err := c.platform.IssueAntiForgeryToken(r.Context(), op.Purpose())
		if err != nil {
			c.opts.Logger.Error().Err(err).Str("operation", string(op)).Msg("issue token failed")
			writeJSON(w, http.StatusInternalServerError, errorBody{Error: http.StatusText(http.StatusInternalServerError)})
			return
		}
		writeJSON(w, http.StatusOK, tokenBody{Operation: string(op), Token: token})
	})
}

func writeGuardError(w http.ResponseWriter, err error) {
	if w == nil {
		return
	}
	if err == nil {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}
	code := http.StatusForbidden
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		code = httpErr.StatusCode()
		if code <= 0 {
			code = http.StatusForbidden
		}
	}
	http.Error(w, http.StatusText(code), code)
}
