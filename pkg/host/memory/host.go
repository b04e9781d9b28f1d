// Package memory is a volatile, in-process implementation of host.Platform.
// It backs the demo server, the CLI and the tests; it is not a storage
// product. Passwords are hashed with bcrypt, reset keys are stored as SHA-256
// digests, and anti-forgery tokens are short-lived HS256 JWTs bound to a
// purpose.
package memory

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/goliatone/go-userforms/pkg/host"
)

const (
	DefaultResetKeyTTL = 24 * time.Hour
	DefaultTokenTTL    = 12 * time.Hour
)

type record struct {
	account   host.Account
	createdAt time.Time
	lastLogin time.Time
}

type resetEntry struct {
	hash      string
	expiresAt time.Time
}

// Host implements host.Platform with in-memory maps guarded by a single
// RWMutex.
type Host struct {
	mu       sync.RWMutex
	accounts map[string]*record
	byLogin  map[string]string
	byEmail  map[string]string
	meta     map[string]map[string]any
	resets   map[string]resetEntry
	admins   map[string]struct{}

	now         func() time.Time
	resetTTL    time.Duration
	tokenTTL    time.Duration
	tokenSecret []byte
	bcryptCost  int
	mailer      host.Mailer
	logger      zerolog.Logger
}

var _ host.Platform = (*Host)(nil)

// Option configures a Host.
type Option func(*Host)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(h *Host) {
		if now != nil {
			h.now = now
		}
	}
}

// WithResetKeyTTL sets how long reset keys remain valid.
func WithResetKeyTTL(ttl time.Duration) Option {
	return func(h *Host) {
		if ttl > 0 {
			h.resetTTL = ttl
		}
	}
}

// WithTokenTTL sets how long anti-forgery tokens remain valid.
func WithTokenTTL(ttl time.Duration) Option {
	return func(h *Host) {
		if ttl > 0 {
			h.tokenTTL = ttl
		}
	}
}

// WithTokenSecret sets the HMAC key used to sign anti-forgery tokens. A random
// key is generated when none is supplied.
func WithTokenSecret(secret []byte) Option {
	return func(h *Host) {
		if len(secret) > 0 {
			h.tokenSecret = append([]byte(nil), secret...)
		}
	}
}

// WithBcryptCost overrides the bcrypt cost.
func WithBcryptCost(cost int) Option {
	return func(h *Host) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			h.bcryptCost = cost
		}
	}
}

// WithMailer replaces the default logging mailer.
func WithMailer(mailer host.Mailer) Option {
	return func(h *Host) {
		if mailer != nil {
			h.mailer = mailer
		}
	}
}

// WithLogger sets the logger used by the host and its default mailer.
func WithLogger(logger zerolog.Logger) Option {
	return func(h *Host) {
		h.logger = logger
	}
}

// WithAdmins grants the listed account ids the capability to edit any
// account.
func WithAdmins(ids ...string) Option {
	return func(h *Host) {
		for _, id := range ids {
			h.admins[id] = struct{}{}
		}
	}
}

// New constructs an empty Host.
func New(options ...Option) *Host {
	h := &Host{
		accounts:   make(map[string]*record),
		byLogin:    make(map[string]string),
		byEmail:    make(map[string]string),
		meta:       make(map[string]map[string]any),
		resets:     make(map[string]resetEntry),
		admins:     make(map[string]struct{}),
		now:        time.Now,
		resetTTL:   DefaultResetKeyTTL,
		tokenTTL:   DefaultTokenTTL,
		bcryptCost: bcrypt.DefaultCost,
		logger:     zerolog.Nop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(h)
	}
	if len(h.tokenSecret) == 0 {
		h.tokenSecret = make([]byte, 32)
		_, _ = rand.Read(h.tokenSecret)
	}
	if h.mailer == nil {
		h.mailer = NewLogMailer(h.logger)
	}
	return h
}
