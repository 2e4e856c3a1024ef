package execlog

import (
	"os"
	"strings"

	smerrors "github.com/Station-Manager/errors"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config controls where and how the pipeline writes.
type Config struct {
	// LogDir holds error.json, combined.json and ExecutionLog.json. Relative
	// paths are joined to the service's working directory.
	LogDir string `koanf:"log_dir" validate:"required"`
	// ProjectRoot is trimmed from resolved source paths. Empty means the
	// working directory.
	ProjectRoot string `koanf:"project_root"`
	// Environment set to "production" disables the console mirror.
	Environment string `koanf:"env" validate:"oneof=development production"`
	// Level is the minimum severity written to combined.json.
	Level         string `koanf:"level" validate:"oneof=info success warn warning error"`
	MaxFileSizeMB int    `koanf:"max_file_size_mb" validate:"gte=0,lte=102400"`
	NoColor       bool   `koanf:"no_color"`
	TimeFormat    string `koanf:"time_format"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		LogDir:        "logs",
		Environment:   EnvDevelopment,
		Level:         Success.Level(),
		MaxFileSizeMB: 100,
	}
}

func defaultValues() map[string]any {
	d := DefaultConfig()
	return map[string]any{
		"log_dir":          d.LogDir,
		"project_root":     d.ProjectRoot,
		"env":              d.Environment,
		"level":            d.Level,
		"max_file_size_mb": d.MaxFileSizeMB,
		"no_color":         d.NoColor,
		"time_format":      d.TimeFormat,
	}
}

// LoadConfig loads configuration from multiple sources with priority:
// 1. Environment variables prefixed EXECLOG_ (highest priority)
// 2. The YAML file at path, when path is not empty
// 3. Default values (lowest priority)
func LoadConfig(path string) (*Config, error) {
	const op smerrors.Op = "execlog.LoadConfig"
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaultValues(), "."), nil); err != nil {
		return nil, smerrors.New(op).Err(err).Msg(errMsgConfigLoad)
	}

	if path != emptyString {
		if _, err := os.Stat(path); err != nil {
			return nil, smerrors.New(op).Err(err).Msg(errMsgConfigLoad)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, smerrors.New(op).Err(err).Msg(errMsgConfigLoad)
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			return strings.ToLower(strings.TrimPrefix(key, envPrefix)), value
		},
	}), nil); err != nil {
		return nil, smerrors.New(op).Err(err).Msg(errMsgConfigLoad)
	}

	var cfg Config
	if err := k.Unmarshal(emptyString, &cfg); err != nil {
		return nil, smerrors.New(op).Err(err).Msg(errMsgConfigLoad)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// production reports whether the console mirror must stay off.
func (c *Config) production() bool {
	return strings.EqualFold(c.Environment, EnvProduction)
}
