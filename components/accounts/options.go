package accounts

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-userforms/pkg/model"
	"github.com/goliatone/go-userforms/pkg/validation"
)

const (
	DefaultBasePath     = "/api/userforms"
	DefaultMaxBodyBytes = 64 << 10
)

// GuardFunc runs before the pipeline. A non-nil error rejects the request;
// errors implementing HTTPError choose the status code.
type GuardFunc func(r *http.Request) error

// Paths are the endpoint routes relative to the base path.
type Paths struct {
	Register     string
	Login        string
	RequestReset string
	PerformReset string
	Token        string
}

// Site describes the public site the forms live on. Links in emails and
// under forms are built from it.
type Site struct {
	Name       string
	URL        string
	LoginPath  string
	ForgotPath string
	ResetPath  string
}

// Schemas holds the field schema of each form.
type Schemas struct {
	Registration model.Schema
	Login        model.Schema
	Forgot       model.Schema
	Reset        model.Schema
}

type Options struct {
	BasePath     string
	Paths        Paths
	Site         Site
	Schemas      Schemas
	Engine       *validation.Engine
	Renderer     PageRenderer
	Logger       zerolog.Logger
	Metrics      *Metrics
	Guard        GuardFunc
	MaxBodyBytes int64
	ProfileTitle string
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		BasePath: DefaultBasePath,
		Paths: Paths{
			Register:     "/register",
			Login:        "/login",
			RequestReset: "/request-reset",
			PerformReset: "/perform-reset",
			Token:        "/token",
		},
		Site: Site{
			Name:       "userforms",
			URL:        "http://localhost:8080",
			LoginPath:  "/login",
			ForgotPath: "/forgot-password",
			ResetPath:  "/reset-password",
		},
		Schemas: Schemas{
			Registration: model.DefaultRegistrationSchema(),
			Login:        model.LoginSchema(),
			Forgot:       model.ForgotPasswordSchema(),
			Reset:        model.ResetPasswordSchema(),
		},
		Logger:       zerolog.Nop(),
		MaxBodyBytes: DefaultMaxBodyBytes,
		ProfileTitle: "Extra profile information",
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}

	def := DefaultOptions()
	if strings.TrimSpace(opts.BasePath) == "" {
		opts.BasePath = def.BasePath
	}
	fillPath(&opts.Paths.Register, def.Paths.Register)
	fillPath(&opts.Paths.Login, def.Paths.Login)
	fillPath(&opts.Paths.RequestReset, def.Paths.RequestReset)
	fillPath(&opts.Paths.PerformReset, def.Paths.PerformReset)
	fillPath(&opts.Paths.Token, def.Paths.Token)
	fillPath(&opts.Site.LoginPath, def.Site.LoginPath)
	fillPath(&opts.Site.ForgotPath, def.Site.ForgotPath)
	fillPath(&opts.Site.ResetPath, def.Site.ResetPath)
	if strings.TrimSpace(opts.Site.Name) == "" {
		opts.Site.Name = def.Site.Name
	}
	opts.Site.URL = strings.TrimRight(strings.TrimSpace(opts.Site.URL), "/")

	if opts.Schemas.Registration.Len() == 0 {
		opts.Schemas.Registration = def.Schemas.Registration
	}
	if opts.Schemas.Login.Len() == 0 {
		opts.Schemas.Login = def.Schemas.Login
	}
	if opts.Schemas.Forgot.Len() == 0 {
		opts.Schemas.Forgot = def.Schemas.Forgot
	}
	if opts.Schemas.Reset.Len() == 0 {
		opts.Schemas.Reset = def.Schemas.Reset
	}
	if opts.Engine == nil {
		opts.Engine = validation.New()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return opts
}

func fillPath(dst *string, fallback string) {
	if strings.TrimSpace(*dst) == "" {
		*dst = fallback
	}
}

func WithBasePath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.BasePath = path
	}
}

func WithPaths(paths Paths) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Paths = paths
	}
}

func WithSite(site Site) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Site = site
	}
}

// WithRegistrationSchema replaces the registration fields. The schema needs
// an email field and a password field.
func WithRegistrationSchema(schema model.Schema) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Schemas.Registration = schema
	}
}

func WithSchemas(schemas Schemas) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Schemas = schemas
	}
}

func WithEngine(engine *validation.Engine) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Engine = engine
	}
}

func WithRenderer(renderer PageRenderer) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Renderer = renderer
	}
}

func WithLogger(logger zerolog.Logger) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Logger = logger
	}
}

func WithMetrics(metrics *Metrics) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Metrics = metrics
	}
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

func WithMaxBodyBytes(n int64) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.MaxBodyBytes = n
	}
}

func WithProfileTitle(title string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.ProfileTitle = title
	}
}
