// Package config loads the optional plafond configuration file.
package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/plafond/plafond/pkg/audit"
)

// Config is the file-configurable subset of plafond's behavior. Command
// line flags override whatever the file says; threshold validation happens
// in the auditor, not here.
type Config struct {
	Thresholds Thresholds `mapstructure:"thresholds"`
	Workers    int        `mapstructure:"workers"`
	Log        Log        `mapstructure:"log"`
}

// Thresholds are usage/hard-limit ratios.
type Thresholds struct {
	Warning  float64 `mapstructure:"warning"`
	Critical float64 `mapstructure:"critical"`
}

// Log configures the console logger.
type Log struct {
	Level string `mapstructure:"level"`
}

// Load reads a YAML config file into a Config. An empty path yields the
// defaults; a named but missing file is an error. PLAFOND_* environment
// variables override file values (PLAFOND_WORKERS, PLAFOND_LOG_LEVEL, ...).
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetDefault("thresholds.warning", audit.DefaultWarnRatio)
	v.SetDefault("thresholds.critical", audit.DefaultCritRatio)
	v.SetDefault("workers", audit.DefaultWorkers)
	v.SetDefault("log.level", "info")

	v.SetEnvPrefix("PLAFOND")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrapf(err, "config: read %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "config: unmarshal")
	}
	return cfg, nil
}
