// Copyright (c) 2026 Kilu Team
// Kilu - actions map command-line front end
// This source code is licensed under the MIT license found in the LICENSE file.

package config_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/spf13/pflag"

	cfg "github.com/Harlan22/kilu/internal/config"
)

// isolate points the user config directory and working directory at an
// empty temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)
	t.Setenv("HOME", tmp)
	t.Setenv("AppData", tmp)
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(tmp); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return tmp
}

func TestLoadConfig_DefaultsWithoutFile(t *testing.T) {
	isolate(t)

	got, err := cfg.LoadConfig[cfg.Config](nil, cfg.Defaults(), nil)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if got.Lock.Timeout != 5*time.Second {
		t.Fatalf("expected 5s lock timeout, got %v", got.Lock.Timeout)
	}
	if got.Log.Level != "info" || got.Auth.MinPasswordLength != 4 {
		t.Fatalf("unexpected defaults: %+v", got)
	}
}

func TestLoadConfig_ReadsExplicitFile(t *testing.T) {
	tmp := isolate(t)
	body := "language: de\nlock:\n  timeout: 2s\nauth:\n  password_hash: abc\n"
	file := filepath.Join(tmp, "cfg.yaml")
	if err := os.WriteFile(file, []byte(body), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	got, err := cfg.LoadConfig[cfg.Config](nil, cfg.Defaults(), &file)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if got.Language != "de" {
		t.Fatalf("expected de, got %q", got.Language)
	}
	if got.Lock.Timeout != 2*time.Second {
		t.Fatalf("expected 2s, got %v", got.Lock.Timeout)
	}
	if got.Auth.PasswordHash != "abc" {
		t.Fatalf("expected password hash from file, got %q", got.Auth.PasswordHash)
	}
}

func TestLoadConfig_LocalFile(t *testing.T) {
	tmp := isolate(t)
	if err := os.WriteFile(filepath.Join(tmp, "kilu.yaml"), []byte("log:\n  level: debug\n"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	got, err := cfg.LoadConfig[cfg.Config](nil, cfg.Defaults(), nil)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if got.Log.Level != "debug" {
		t.Fatalf("expected debug from ./kilu.yaml, got %q", got.Log.Level)
	}
	if used := cfg.UsedConfigFile(nil); used != "kilu.yaml" {
		t.Fatalf("expected ./kilu.yaml to be reported, got %q", used)
	}
}

func TestLoadConfig_BrokenConfig_ReturnsParseError(t *testing.T) {
	tmp := isolate(t)
	file := filepath.Join(tmp, "broken.yaml")
	if err := os.WriteFile(file, []byte("language: [unclosed\n"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := cfg.LoadConfig[cfg.Config](nil, cfg.Defaults(), &file); err == nil {
		t.Fatalf("expected parse error for broken config")
	}
}

func TestLoadConfig_EnvThenFlags(t *testing.T) {
	isolate(t)
	t.Setenv("KILU_LANGUAGE", "fr")
	t.Setenv("KILU_LOCK_TIMEOUT", "1s")

	got, err := cfg.LoadConfig[cfg.Config](nil, cfg.Defaults(), nil)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if got.Language != "fr" || got.Lock.Timeout != time.Second {
		t.Fatalf("expected env values, got %+v", got)
	}

	flags := pflag.NewFlagSet("kilu", pflag.ContinueOnError)
	flags.String("lang", "", "language")
	flags.String("unrelated", "", "not a config key")
	if err := flags.Set("lang", "de"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	got, err = cfg.LoadConfig[cfg.Config](flags, cfg.Defaults(), nil)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if got.Language != "de" {
		t.Fatalf("expected flag to override env, got %q", got.Language)
	}
}

func TestWriteConfigFile_RoundTrip(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("user config dir is not redirected by XDG_CONFIG_HOME on windows")
	}
	isolate(t)

	c := cfg.Config{Language: "fr"}
	c.Lock.Timeout = 3 * time.Second
	c.Auth.MinPasswordLength = 8

	path, err := cfg.WriteConfigFile(&c, false)
	if err != nil {
		t.Fatalf("WriteConfigFile failed: %v", err)
	}
	want, err := cfg.GetConfigPath(false)
	if err != nil {
		t.Fatalf("GetConfigPath failed: %v", err)
	}
	if path != want {
		t.Fatalf("expected %s, got %s", want, path)
	}
	st, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected config file at %s, stat error: %v", path, err)
	}
	if st.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600 permissions, got %v", st.Mode().Perm())
	}

	got, err := cfg.LoadConfig[cfg.Config](nil, cfg.Defaults(), nil)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if got.Language != "fr" || got.Lock.Timeout != 3*time.Second || got.Auth.MinPasswordLength != 8 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestGetConfigPath(t *testing.T) {
	p, err := cfg.GetConfigPath(true)
	if err != nil {
		t.Fatalf("GetConfigPath(true) failed: %v", err)
	}
	if filepath.Base(p) != "kilu.yaml" {
		t.Fatalf("unexpected system config path %s", p)
	}
	if runtime.GOOS != "windows" && p != "/etc/kilu/kilu.yaml" {
		t.Fatalf("unexpected system config path %s", p)
	}
}

func TestDefaultLockPathIsPerUser(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("cache directory layout checked on linux only")
	}
	tmp := isolate(t)
	cache := filepath.Join(tmp, "cache")
	t.Setenv("XDG_CACHE_HOME", cache)

	want := filepath.Join(cache, "kilu", "kilu.lock")
	if got := cfg.DefaultLockPath(); got != want {
		t.Fatalf("DefaultLockPath() = %q, want %q", got, want)
	}
	got, err := cfg.LoadConfig[cfg.Config](nil, cfg.Defaults(), nil)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if got.Lock.Path != want {
		t.Fatalf("expected default lock path %q, got %q", want, got.Lock.Path)
	}
	if filepath.Dir(got.Lock.Path) == os.TempDir() {
		t.Fatalf("lock must not live directly in the shared temp dir: %q", got.Lock.Path)
	}
}
