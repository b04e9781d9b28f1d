package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix marks the environment variables read by Load. A double
// underscore separates levels: USERFORMS_SITE__URL sets site.url.
const EnvPrefix = "USERFORMS_"

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = EnvPrefix + "CONFIG"

// DefaultPaths are searched in order when no path is given.
var DefaultPaths = []string{"userforms.yaml", "userforms.yml"}

// FlagKeys maps command line flag names to config keys.
var FlagKeys = map[string]string{
	"addr":          "server.addr",
	"base-path":     "server.base_path",
	"site-name":     "site.name",
	"site-url":      "site.url",
	"schema":        "forms.schema_path",
	"templates-dir": "forms.templates_dir",
	"token-secret":  "security.token_secret",
	"log-level":     "logging.level",
	"log-format":    "logging.format",
}

var sliceKeys = []string{"server.cors_origins"}

// LoadOptions selects the optional layers.
type LoadOptions struct {
	// Path is a YAML file. Empty falls back to $USERFORMS_CONFIG and then
	// DefaultPaths; a missing default file is not an error.
	Path string
	// Flags are applied last; only flags listed in FlagKeys are read.
	Flags *pflag.FlagSet
}

// Load layers defaults, file, environment and flags, then validates.
func Load(opts LoadOptions) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}

	path, explicit := configPath(opts.Path)
	if path != "" {
		if _, err := os.Stat(path); err == nil || explicit {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("config: load %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}

	if opts.Flags != nil {
		provider := posflag.ProviderWithFlag(opts.Flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := FlagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(opts.Flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, fmt.Errorf("config: load flags: %w", err)
		}
	}

	if err := splitSlices(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.Messages = cfg.Messages.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func configPath(path string) (string, bool) {
	if path = strings.TrimSpace(path); path != "" {
		return path, true
	}
	if path = strings.TrimSpace(os.Getenv(ConfigPathEnvVar)); path != "" {
		return path, true
	}
	for _, candidate := range DefaultPaths {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, false
		}
	}
	return "", false
}

// envKey maps USERFORMS_SITE__RESET_PATH to site.reset_path. The config path
// variable itself is skipped.
func envKey(name string) string {
	if name == ConfigPathEnvVar {
		return ""
	}
	key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// splitSlices turns comma separated strings from env or flags into lists.
func splitSlices(k *koanf.Koanf) error {
	for _, key := range sliceKeys {
		raw, ok := k.Get(key).(string)
		if !ok {
			continue
		}
		var items []string
		for _, item := range strings.Split(raw, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		if items == nil {
			items = []string{}
		}
		if err := k.Set(key, items); err != nil {
			return fmt.Errorf("config: split %s: %w", key, err)
		}
	}
	return nil
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the struct tags of every section.
func (c *Config) Validate() error {
	if err := getValidator().Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("config: invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("config: invalid configuration: %w", err)
	}
	return nil
}
