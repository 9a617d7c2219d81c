package application

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/ports"
)

// EnvPrefix prefixes every environment override, e.g.
// CLEANLINESS_DATABASE_DSN overrides database.dsn.
const EnvPrefix = "CLEANLINESS"

// Verify interface compliance at compile time.
var _ ports.ConfigLoader = (*ViperConfigLoader)(nil)

// ViperConfigLoader loads AppConfig from an optional YAML file layered over
// DefaultAppConfig, with environment variables taking precedence over both.
type ViperConfigLoader struct {
	path string
	v    *viper.Viper
	mu   sync.Mutex
}

// NewViperConfigLoader creates a loader for the YAML file at path. An empty
// path loads defaults and environment overrides only.
func NewViperConfigLoader(path string) *ViperConfigLoader {
	return &ViperConfigLoader{path: path}
}

// Load populates config, which must be a *AppConfig, and validates it.
func (l *ViperConfigLoader) Load(_ context.Context, config any) error {
	cfg, ok := config.(*AppConfig)
	if !ok {
		return ports.NewConfigError("", fmt.Errorf("expected *AppConfig, got %T", config))
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	v, err := l.newViper()
	if err != nil {
		return err
	}
	loaded, err := decodeSettings(v)
	if err != nil {
		return err
	}
	if err := ValidateAppConfig(&loaded); err != nil {
		return ports.NewConfigError(l.path, err)
	}

	l.v = v
	*cfg = loaded
	return nil
}

// Watch reloads the file whenever it changes and passes every valid
// configuration to callback as a *AppConfig. Invalid edits are skipped.
func (l *ViperConfigLoader) Watch(ctx context.Context, config any, callback func(any)) (func(), error) {
	if l.path == "" {
		return nil, ports.NewConfigError("", ports.ErrConfigNotFound)
	}
	if err := l.Load(ctx, config); err != nil {
		return nil, err
	}

	var stopped atomic.Bool
	l.mu.Lock()
	v := l.v
	l.mu.Unlock()

	v.OnConfigChange(func(fsnotify.Event) {
		if stopped.Load() || ctx.Err() != nil {
			return
		}
		reloaded, err := decodeSettings(v)
		if err != nil {
			return
		}
		if ValidateAppConfig(&reloaded) != nil {
			return
		}
		callback(&reloaded)
	})
	v.WatchConfig()

	return func() { stopped.Store(true) }, nil
}

// newViper layers defaults, the config file and the environment.
func (l *ViperConfigLoader) newViper() (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	raw, err := yaml.Marshal(DefaultAppConfig())
	if err != nil {
		return nil, ports.NewConfigError("defaults", err)
	}
	var defaults map[string]any
	if err := yaml.Unmarshal(raw, &defaults); err != nil {
		return nil, ports.NewConfigError("defaults", err)
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if l.path != "" {
		v.SetConfigFile(l.path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
				return nil, ports.NewConfigError(l.path, ports.ErrConfigNotFound)
			}
			return nil, ports.NewConfigError(l.path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The vision service has always been located through PYTHON_API_URL.
	if err := v.BindEnv("detector.base_url", EnvPrefix+"_DETECTOR_BASE_URL", "PYTHON_API_URL"); err != nil {
		return nil, ports.NewConfigError("detector.base_url", err)
	}
	return v, nil
}

// decodeSettings converts the merged viper settings back into an AppConfig
// through YAML so that the yaml struct tags and yaml.Node parameters apply.
func decodeSettings(v *viper.Viper) (AppConfig, error) {
	var node yaml.Node
	if err := node.Encode(v.AllSettings()); err != nil {
		return AppConfig{}, ports.NewConfigError("settings", err)
	}
	// Environment values arrive as strings; let YAML re-resolve them so
	// "5" can fill an int and "30s" a duration.
	unquoteScalars(&node)

	cfg := DefaultAppConfig()
	if err := node.Decode(&cfg); err != nil {
		return AppConfig{}, ports.NewConfigError("settings", err)
	}
	return cfg, nil
}

func unquoteScalars(n *yaml.Node) {
	if n.Kind == yaml.ScalarNode && n.Tag == "!!str" {
		n.Tag = ""
		n.Style = 0
	}
	for _, c := range n.Content {
		unquoteScalars(c)
	}
}
