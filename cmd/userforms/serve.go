package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-userforms/internal/logging"
	"github.com/goliatone/go-userforms/pkg/host/memory"
	"github.com/goliatone/go-userforms/pkg/render"
	"github.com/goliatone/go-userforms/pkg/render/template/gotemplate"
	"github.com/goliatone/go-userforms/pkg/renderers/vanilla"
)

//go:embed pages/*.tmpl
var pagesFS embed.FS

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the forms and endpoints over the in-memory host",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := logging.Logger()

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			a, err := newApp(cfg, logger, reg)
			if err != nil {
				return err
			}
			router, err := a.router(reg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.listen(ctx, router)
		},
	}
	cmd.Flags().String("addr", "", "listen address")
	cmd.Flags().String("base-path", "", "mount path of the endpoints")
	cmd.Flags().String("token-secret", "", "anti-forgery token signing secret")
	return cmd
}

// router mounts the endpoints, the demo pages, runtime assets, metrics and
// the OpenAPI document.
func (a *app) router(reg *prometheus.Registry) (http.Handler, error) {
	pages, err := newPageRenderer(a.cfg.Site.Name)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(a.logger))
	if len(a.cfg.Server.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: a.cfg.Server.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			MaxAge:         300,
		}))
	}

	r.Group(func(r chi.Router) {
		if a.cfg.Security.RateLimitRequests > 0 {
			r.Use(httprate.Limit(
				a.cfg.Security.RateLimitRequests,
				a.cfg.Security.RateLimitWindow,
				httprate.WithKeyFuncs(httprate.KeyByIP),
			))
		}
		if _, err = a.component.RegisterRoutes(r, a.cfg.Server.BasePath); err != nil {
			return
		}
	})
	if err != nil {
		return nil, err
	}

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Get("/openapi.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		_ = enc.Encode(a.component.OpenAPIDocument(version))
	})

	assetsPrefix := strings.TrimRight(a.cfg.Forms.AssetsURL, "/") + "/"
	r.Handle(assetsPrefix+"*", http.StripPrefix(assetsPrefix, http.FileServerFS(vanilla.AssetsFS())))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, a.cfg.Site.LoginPath, http.StatusFound)
	})
	r.Get("/register", pages.handle("Register", links(a), func(r *http.Request) (string, error) {
		return a.component.RegistrationForm(r.Context())
	}))
	r.Get(a.cfg.Site.LoginPath, pages.handle("Log in", links(a), func(r *http.Request) (string, error) {
		return a.component.LoginForm(r.Context())
	}))
	r.Get(a.cfg.Site.ForgotPath, pages.handle("Lost password", links(a), func(r *http.Request) (string, error) {
		return a.component.ForgotPasswordForm(r.Context())
	}))
	r.Get(a.cfg.Site.ResetPath, pages.handle("Reset password", links(a), func(r *http.Request) (string, error) {
		return a.component.ResetPasswordForm(r.Context(), r.URL.Query())
	}))
	r.Get("/profile/{id}", pages.handle("Profile", links(a), func(r *http.Request) (string, error) {
		return a.component.ProfileFields(r.Context(), chi.URLParam(r, "id"))
	}))
	r.Post("/profile/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := r.ParseForm(); err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		// The demo has no sessions: the account being edited is the viewer.
		ctx := memory.WithViewer(r.Context(), id)
		if _, err := a.component.SaveProfile(ctx, id, r.PostForm); err != nil {
			a.logger.Error().Err(err).Str("account_id", id).Msg("save profile failed")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/profile/"+id, http.StatusSeeOther)
	})
	return r, nil
}

func links(a *app) []render.Link {
	return []render.Link{
		{Href: "/register", Label: "Register"},
		{Href: a.cfg.Site.LoginPath, Label: "Log in"},
		{Href: a.cfg.Site.ForgotPath, Label: "Lost password"},
	}
}

func (a *app) listen(ctx context.Context, handler http.Handler) error {
	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           handler,
		ReadTimeout:       a.cfg.Server.ReadTimeout,
		ReadHeaderTimeout: a.cfg.Server.ReadTimeout,
		WriteTimeout:      a.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info().Str("addr", srv.Addr).Str("base_path", a.cfg.Server.BasePath).Msg("userforms listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	a.logger.Info().Msg("userforms shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

type pageRenderer struct {
	engine *gotemplate.Engine
	site   string
}

func newPageRenderer(site string) (*pageRenderer, error) {
	sub, err := fs.Sub(pagesFS, "pages")
	if err != nil {
		return nil, err
	}
	engine, err := gotemplate.New(gotemplate.WithFS(sub), gotemplate.WithSetName("userforms-pages"))
	if err != nil {
		return nil, fmt.Errorf("page templates: %w", err)
	}
	return &pageRenderer{engine: engine, site: site}, nil
}

func (p *pageRenderer) handle(title string, nav []render.Link, body func(*http.Request) (string, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		markup, err := body(r)
		if err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Str("page", title).Msg("render page failed")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if _, err := p.engine.RenderTemplate("layout", map[string]any{
			"title": title,
			"site":  p.site,
			"body":  markup,
			"links": nav,
		}, w); err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("render layout failed")
		}
	}
}

// requestLogger logs one line per request and stores a request scoped logger
// in the context.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			reqLogger := logger.With().Str("request_id", middleware.GetReqID(r.Context())).Logger()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r.WithContext(reqLogger.WithContext(r.Context())))

			reqLogger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("elapsed", time.Since(started)).
				Msg("http request")
		})
	}
}
