// Package errutil bridges samber/oops errors and zerolog.
package errutil

import (
	"github.com/rs/zerolog"
	"github.com/samber/oops"
)

// LogError logs err at error level. For oops errors the code and context are
// emitted as separate fields.
func LogError(logger zerolog.Logger, msg string, err error) {
	Event(logger.Error(), err).Msg(msg)
}

// Event attaches err to ev, expanding oops metadata when present.
func Event(ev *zerolog.Event, err error) *zerolog.Event {
	if ev == nil {
		return nil
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ev.Err(err)
	}
	ev = ev.Str("error", oopsErr.Error())
	if code := oopsErr.Code(); code != nil {
		ev = ev.Interface("code", code)
	}
	if ctx := oopsErr.Context(); len(ctx) > 0 {
		ev = ev.Interface("context", ctx)
	}
	return ev
}

// Code returns the oops code of err, or nil.
func Code(err error) any {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return nil
	}
	return oopsErr.Code()
}
