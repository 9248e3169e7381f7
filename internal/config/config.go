// Copyright (c) 2026 Kilu Team
// Kilu - actions map command-line front end
// This source code is licensed under the MIT license found in the LICENSE file.

// Package config loads the kilu configuration. Values are layered by
// Viper: defaults, then the kilu.yaml file found in the user, system or
// current directory (or given explicitly), then KILU_* environment
// variables, then command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the complete kilu configuration.
type Config struct {
	Language   string     `mapstructure:"language" yaml:"language,omitempty"`
	ActionsMap string     `mapstructure:"actionsmap" yaml:"actionsmap,omitempty"`
	Log        LogConfig  `mapstructure:"log" yaml:"log"`
	Lock       LockConfig `mapstructure:"lock" yaml:"lock"`
	Auth       AuthConfig `mapstructure:"auth" yaml:"auth"`
}

// LogConfig configures the diagnostic log file.
type LogConfig struct {
	File  string `mapstructure:"file" yaml:"file,omitempty"`
	Level string `mapstructure:"level" yaml:"level"`
}

// LockConfig configures the lock serializing action runs.
type LockConfig struct {
	Path    string        `mapstructure:"path" yaml:"path,omitempty"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// AuthConfig configures the bundled authentication actions.
type AuthConfig struct {
	PasswordHash      string `mapstructure:"password_hash" yaml:"password_hash,omitempty"`
	MinPasswordLength int    `mapstructure:"min_password_length" yaml:"min_password_length"`
}

// Defaults returns the default value of every key.
func Defaults() map[string]any {
	return map[string]any{
		"language":                 "",
		"actionsmap":               "",
		"log.file":                 "",
		"log.level":                "info",
		"lock.path":                DefaultLockPath(),
		"lock.timeout":             "5s",
		"auth.password_hash":       "",
		"auth.min_password_length": 4,
	}
}

// DefaultLockPath returns the per-user lock file, in the user cache
// directory when there is one. A lock shared by every user of the host
// would be created with the first user's ownership.
func DefaultLockPath() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "kilu", "kilu.lock")
	}
	return filepath.Join(os.TempDir(), fmt.Sprintf("kilu-%d.lock", os.Getuid()))
}

// flagKeys maps command-line flag names to configuration keys where they
// differ.
var flagKeys = map[string]string{
	"lang": "language",
}

// GetConfigPath returns the full path of the user or system configuration
// file.
func GetConfigPath(system bool) (string, error) {
	var configDir string
	var err error

	if system {
		switch runtime.GOOS {
		case "windows":
			configDir = filepath.Join(os.Getenv("ProgramData"), "Kilu")
		default:
			configDir = "/etc/kilu"
		}
	} else {
		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		configDir = filepath.Join(configDir, "kilu")
	}

	return filepath.Join(configDir, "kilu.yaml"), nil
}

// LoadConfig builds a T from the layered sources. explicitPath, when set,
// replaces the file search. flags may be nil; changed flags override every
// other source. A missing configuration file is not an error.
func LoadConfig[T any](flags *pflag.FlagSet, defaults map[string]any, explicitPath *string) (T, error) {
	var c T
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("kilu")
	v.SetConfigType("yaml")
	if explicitPath != nil && *explicitPath != "" {
		v.SetConfigFile(*explicitPath)
	} else {
		if userConfigPath, err := GetConfigPath(false); err == nil {
			v.AddConfigPath(filepath.Dir(userConfigPath))
		}
		if systemConfigPath, err := GetConfigPath(true); err == nil {
			v.AddConfigPath(filepath.Dir(systemConfigPath))
		}
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return c, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix("kilu")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		var bindErr error
		flags.VisitAll(func(f *pflag.Flag) {
			key := f.Name
			if k, ok := flagKeys[key]; ok {
				key = k
			}
			if _, known := defaults[key]; !known {
				return
			}
			if err := v.BindPFlag(key, f); err != nil && bindErr == nil {
				bindErr = err
			}
		})
		if bindErr != nil {
			return c, bindErr
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("decoding config: %w", err)
	}
	return c, nil
}

// UsedConfigFile returns the configuration file LoadConfig would read, or ""
// when there is none.
func UsedConfigFile(explicitPath *string) string {
	if explicitPath != nil && *explicitPath != "" {
		return *explicitPath
	}
	candidates := []string{}
	if p, err := GetConfigPath(false); err == nil {
		candidates = append(candidates, p)
	}
	if p, err := GetConfigPath(true); err == nil {
		candidates = append(candidates, p)
	}
	candidates = append(candidates, "kilu.yaml")
	for _, p := range candidates {
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p
		}
	}
	return ""
}

// WriteConfigFile writes c to the user or system configuration file and
// returns its path.
func WriteConfigFile[T any](c *T, system bool) (string, error) {
	path, err := GetConfigPath(system)
	if err != nil {
		return "", err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("could not create config directory %s: %w", configDir, err)
	}

	// The file may hold the administration password hash.
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}
