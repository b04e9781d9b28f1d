package main

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-userforms/components/accounts"
	"github.com/goliatone/go-userforms/internal/config"
	"github.com/goliatone/go-userforms/pkg/host/memory"
	"github.com/goliatone/go-userforms/pkg/model"
	"github.com/goliatone/go-userforms/pkg/renderers/vanilla"
	"github.com/goliatone/go-userforms/pkg/validation"
)

// app bundles what the commands share.
type app struct {
	cfg       *config.Config
	logger    zerolog.Logger
	host      *memory.Host
	renderer  *vanilla.Renderer
	engine    *validation.Engine
	component *accounts.Component
}

func newApp(cfg *config.Config, logger zerolog.Logger, reg prometheus.Registerer) (*app, error) {
	engine := validation.New(
		validation.WithMinPasswordLength(cfg.Forms.MinPasswordLength),
		validation.WithMessages(cfg.Messages),
	)

	schema, err := registrationSchema(cfg.Forms.SchemaPath)
	if err != nil {
		return nil, err
	}

	rendererOpts := []vanilla.Option{vanilla.WithAssetsURL(cfg.Forms.AssetsURL)}
	if cfg.Forms.TemplatesDir != "" {
		rendererOpts = append(rendererOpts, vanilla.WithTemplatesDir(cfg.Forms.TemplatesDir))
	}
	renderer, err := vanilla.New(rendererOpts...)
	if err != nil {
		return nil, fmt.Errorf("renderer: %w", err)
	}

	hostOpts := []memory.Option{
		memory.WithLogger(logger.With().Str("component", "host").Logger()),
		memory.WithTokenTTL(cfg.Security.TokenTTL),
		memory.WithResetKeyTTL(cfg.Security.ResetKeyTTL),
		memory.WithBcryptCost(cfg.Security.BcryptCost),
	}
	if cfg.Security.TokenSecret != "" {
		hostOpts = append(hostOpts, memory.WithTokenSecret([]byte(cfg.Security.TokenSecret)))
	}
	platform := memory.New(hostOpts...)

	componentOpts := []accounts.OptionFn{
		accounts.WithBasePath(cfg.Server.BasePath),
		accounts.WithSite(accounts.Site{
			Name:       cfg.Site.Name,
			URL:        cfg.Site.URL,
			LoginPath:  cfg.Site.LoginPath,
			ForgotPath: cfg.Site.ForgotPath,
			ResetPath:  cfg.Site.ResetPath,
		}),
		accounts.WithRegistrationSchema(schema),
		accounts.WithEngine(engine),
		accounts.WithRenderer(renderer),
		accounts.WithLogger(logger.With().Str("component", "accounts").Logger()),
	}
	if reg != nil {
		componentOpts = append(componentOpts, accounts.WithMetrics(accounts.NewMetrics(reg)))
	}
	component, err := accounts.New(platform, componentOpts...)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:       cfg,
		logger:    logger,
		host:      platform,
		renderer:  renderer,
		engine:    engine,
		component: component,
	}, nil
}

func registrationSchema(path string) (model.Schema, error) {
	if path == "" {
		return model.DefaultRegistrationSchema(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Schema{}, fmt.Errorf("read schema: %w", err)
	}
	schema, err := model.LoadSchema(data, path)
	if err != nil {
		return model.Schema{}, fmt.Errorf("load schema %s: %w", path, err)
	}
	return schema, nil
}
