package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/vango-dev/vbind/internal/errors"
)

const (
	// ConfigName is the base name of the configuration file.
	ConfigName = "vbind"

	// EnvPrefix prefixes environment overrides.
	EnvPrefix = "VBIND"

	// DefaultPort is the default live server port.
	DefaultPort = 3000

	// DefaultHost is the default live server host.
	DefaultHost = "localhost"

	// DefaultRoot is the default root element selector.
	DefaultRoot = "#app"

	// DefaultReadTimeout bounds how long a websocket session may stay silent.
	DefaultReadTimeout = 60 * time.Second

	// DefaultMaxMessageSize is the largest client message accepted, in bytes.
	DefaultMaxMessageSize = 64 << 10

	// DefaultMaxNotifyDepth is the default notification nesting limit.
	DefaultMaxNotifyDepth = 100
)

// configExts are tried in order when looking for a config file.
var configExts = []string{".json", ".yaml", ".yml"}

// Config is the complete vbind configuration.
type Config struct {
	// Template is the HTML file to compile.
	Template string `mapstructure:"template"`

	// Data is the JSON or YAML file holding the initial model.
	Data string `mapstructure:"data"`

	// Root is the selector of the element to compile.
	Root string `mapstructure:"root"`

	Log      LogConfig      `mapstructure:"log"`
	Server   ServerConfig   `mapstructure:"server"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Reactive ReactiveConfig `mapstructure:"reactive"`

	// Actions are named model writes usable as v-on handlers.
	Actions []ActionConfig `mapstructure:"actions"`

	configPath string
}

// LogConfig selects the log handler.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level"`

	// Format is text or json.
	Format string `mapstructure:"format"`
}

// ServerConfig contains live server settings.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`

	// Watch reloads sessions when the template or data file changes.
	Watch bool `mapstructure:"watch"`

	// ReadTimeout closes sessions that stay silent for longer.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`

	// HeartbeatInterval is the time between websocket pings. Zero picks
	// 30s, or half of ReadTimeout when that is shorter.
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`

	// MaxMessageSize is the largest client message accepted, in bytes.
	MaxMessageSize int64 `mapstructure:"max_message_size"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Path      string `mapstructure:"path"`
}

// ReactiveConfig tunes the reactive core.
type ReactiveConfig struct {
	// MaxNotifyDepth bounds nested notifications. Negative disables the guard.
	MaxNotifyDepth int `mapstructure:"max_notify_depth"`
}

// ActionConfig is one named action.
type ActionConfig struct {
	Name string `mapstructure:"name"`

	// Set holds assignments in "key=value" or "key+=number" form.
	Set []string `mapstructure:"set"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("template", "")
	v.SetDefault("data", "")
	v.SetDefault("root", DefaultRoot)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("server.host", DefaultHost)
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.watch", false)
	v.SetDefault("server.read_timeout", DefaultReadTimeout)
	v.SetDefault("server.heartbeat_interval", time.Duration(0))
	v.SetDefault("server.max_message_size", DefaultMaxMessageSize)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.namespace", "vbind")
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("reactive.max_notify_depth", DefaultMaxNotifyDepth)
	v.SetDefault("actions", []any{})
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// New returns a Config holding the defaults.
func New() *Config {
	v := viper.New()
	setDefaults(v)
	cfg, _ := decode(v, "")
	return cfg
}

// Load reads the configuration file at path. An empty path looks for
// vbind.json, vbind.yaml or vbind.yml in the working directory and falls
// back to defaults when none exists.
func Load(path string) (*Config, error) {
	if path == "" {
		found, ok := Find(".")
		if !ok {
			return decode(newViper(), "")
		}
		path = found
	}

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			return nil, errors.New("E031").
				WithFile(path).
				WithDetail("No configuration file at " + path).
				WithSuggestion("Create " + ConfigName + ".json or omit --config to use defaults")
		}
		return nil, errors.New("E031").WithFile(path).Wrap(err)
	}
	return decode(v, path)
}

func decode(v *viper.Viper, path string) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New("E031").WithFile(path).Wrap(err)
	}
	cfg.configPath = path
	return &cfg, nil
}

// Find returns the first vbind config file in dir.
func Find(dir string) (string, bool) {
	for _, ext := range configExts {
		p := filepath.Join(dir, ConfigName+ext)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, true
		}
	}
	return "", false
}

// Path returns the file the config was loaded from, or "".
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory relative paths resolve against.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return "."
	}
	return filepath.Dir(c.configPath)
}

func (c *Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir(), p)
}

// TemplatePath returns the template path resolved against Dir.
func (c *Config) TemplatePath() string {
	return c.resolve(c.Template)
}

// DataPath returns the data file path resolved against Dir, or "".
func (c *Config) DataPath() string {
	return c.resolve(c.Data)
}

// Address returns host:port for the live server.
func (c *Config) Address() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	invalid := func(detail string) error {
		return errors.New("E030").WithFile(c.configPath).WithDetail(detail)
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return invalid("server.port must be between 0 and 65535")
	}
	if strings.TrimSpace(c.Root) == "" {
		return invalid("root must name the element to compile")
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return invalid(err.Error())
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return invalid("log.format must be text or json, got " + strconv.Quote(c.Log.Format))
	}
	if c.Server.ReadTimeout < 0 {
		return invalid("server.read_timeout must not be negative")
	}
	if c.Server.HeartbeatInterval < 0 {
		return invalid("server.heartbeat_interval must not be negative")
	}
	if c.Server.HeartbeatInterval > 0 && c.Server.ReadTimeout > 0 && c.Server.HeartbeatInterval >= c.Server.ReadTimeout {
		return invalid("server.heartbeat_interval must be shorter than server.read_timeout")
	}
	if c.Server.MaxMessageSize <= 0 {
		return invalid("server.max_message_size must be positive")
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return invalid("metrics.path must start with /")
	}

	seen := make(map[string]bool, len(c.Actions))
	for i, a := range c.Actions {
		if a.Name == "" {
			return invalid("actions[" + strconv.Itoa(i) + "] has no name")
		}
		if seen[a.Name] {
			return invalid("action " + strconv.Quote(a.Name) + " is defined twice")
		}
		seen[a.Name] = true
		for _, s := range a.Set {
			if _, err := ParseAssignment(s); err != nil {
				return invalid("action " + strconv.Quote(a.Name) + ": " + err.Error())
			}
		}
	}
	return nil
}
