/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package config loads the user configuration: a YAML file in the user scope,
// merged over Defaults and then overridden by DD_* environment variables.
// The Postgres DSN is a secret and lives in the OS keyring, not in the file.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

type GeneralConfig struct {
	DataDir          string `yaml:"data_dir"`
	DefaultColor     string `yaml:"default_color"`      // palette hex selected when the editor opens
	DefaultFieldType string `yaml:"default_field_type"` // full | half | 7v7
	TelemetryOptIn   bool   `yaml:"telemetry_opt_in"`
}

type StorageConfig struct {
	Backend string `yaml:"backend"` // file | sqlite | postgres
	Path    string `yaml:"path"`    // file or sqlite path; empty means inside data_dir
	// The Postgres DSN is not stored on disk; see Load.
}

type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	RateLimitRPS   float64  `yaml:"rate_limit_rps"`
	RateLimitBurst int      `yaml:"rate_limit_burst"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// AppConfig is the persisted configuration document.
type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	General       GeneralConfig `yaml:"general"`
	Storage       StorageConfig `yaml:"storage"`
	Server        ServerConfig  `yaml:"server"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{DataDir: defaultDataDir(), DefaultColor: "#10b981", DefaultFieldType: "full"},
		Storage:       StorageConfig{Backend: "file"},
		Server:        ServerConfig{Addr: "127.0.0.1:8088", AllowedOrigins: []string{"*"}, RateLimitRPS: 10, RateLimitBurst: 20},
		Logging:       LoggingConfig{Level: "info", Format: "text"},
	}
}

// Env var names used as overrides.
const (
	EnvConfigFile     = "DD_CONFIG"
	EnvDataDir        = "DD_DATA_DIR"
	EnvTelemetryOptIn = "DD_TELEMETRY_OPT_IN"
	EnvStorageBackend = "DD_STORAGE_BACKEND"
	EnvStoragePath    = "DD_STORAGE_PATH"
	EnvPostgresDSN    = "DD_POSTGRES_DSN"
	EnvServerAddr     = "DD_SERVER_ADDR"
	EnvServerOrigins  = "DD_SERVER_ORIGINS"
	EnvServerRPS      = "DD_SERVER_RPS"
	EnvLogLevel       = "DD_LOG_LEVEL"
	EnvLogFormat      = "DD_LOG_FORMAT"
	EnvLogSource      = "DD_LOG_SOURCE"
	EnvLogFile        = "DD_LOG_FILE"
)

const (
	keyringService = "DrillDesigner"
	keyringDSN     = "postgres_dsn"
)

// SecretStore abstracts the OS keyring so tests can swap it.
type SecretStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

type osKeyring struct{}

func (osKeyring) Get(service, key string) (string, error) { return keyring.Get(service, key) }
func (osKeyring) Set(service, key, value string) error    { return keyring.Set(service, key, value) }
func (osKeyring) Delete(service, key string) error        { return keyring.Delete(service, key) }

var secrets SecretStore = osKeyring{}

// UseSecretStore replaces the keyring backend and returns a func restoring the previous one.
func UseSecretStore(s SecretStore) (restore func()) {
	prev := secrets
	secrets = s
	return func() { secrets = prev }
}

func userBase() string {
	switch runtime.GOOS {
	case "windows":
		if base := os.Getenv("AppData"); base != "" {
			return filepath.Join(base, "DrillDesigner")
		}
		return filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming", "DrillDesigner")
	case "darwin":
		return filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "DrillDesigner")
	default:
		if x := os.Getenv("XDG_CONFIG_HOME"); x != "" {
			return filepath.Join(x, "drilldesigner")
		}
		return filepath.Join(os.Getenv("HOME"), ".config", "drilldesigner")
	}
}

func defaultDataDir() string { return filepath.Join(userBase(), "data") }

// ConfigPath returns the config file path; DD_CONFIG wins over the per-user location.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigFile)); p != "" {
		return p, nil
	}
	base := userBase()
	if !filepath.IsAbs(base) {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment. Missing files are skipped; variables already set are kept.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return err
		}
	}
	return nil
}

// Load reads the config file (if present), applies defaults and env overrides,
// and returns the Postgres DSN from DD_POSTGRES_DSN or the keyring.
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, "", err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, "", err
		}
		mergeInto(&cfg, &fileCfg)
	}
	applyEnvOverrides(&cfg)

	dsn := strings.TrimSpace(os.Getenv(EnvPostgresDSN))
	if dsn == "" {
		dsn, _ = secrets.Get(keyringService, keyringDSN)
	}
	return cfg, dsn, nil
}

// Save writes the YAML file with 0600 permissions and stores a non-empty DSN in the keyring.
func Save(cfg AppConfig, dsn string) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if dsn != "" {
		return secrets.Set(keyringService, keyringDSN, dsn)
	}
	return nil
}

// ForgetDSN removes the stored Postgres DSN.
func ForgetDSN() error {
	err := secrets.Delete(keyringService, keyringDSN)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// StoragePath resolves the storage location for the configured backend: the
// database file for sqlite, the document directory for file.
func (c AppConfig) StoragePath() string {
	if p := strings.TrimSpace(c.Storage.Path); p != "" {
		return p
	}
	switch c.Storage.Backend {
	case "sqlite":
		return filepath.Join(c.General.DataDir, "drill.sqlite")
	default:
		return filepath.Join(c.General.DataDir, "drills")
	}
}

func mergeInto(dst, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	setStr(&dst.General.DataDir, src.General.DataDir)
	setStr(&dst.General.DefaultColor, src.General.DefaultColor)
	setStr(&dst.General.DefaultFieldType, src.General.DefaultFieldType)
	dst.General.TelemetryOptIn = src.General.TelemetryOptIn

	if b := strings.ToLower(strings.TrimSpace(src.Storage.Backend)); b != "" {
		dst.Storage.Backend = b
	}
	setStr(&dst.Storage.Path, src.Storage.Path)

	setStr(&dst.Server.Addr, src.Server.Addr)
	if len(src.Server.AllowedOrigins) > 0 {
		dst.Server.AllowedOrigins = append([]string(nil), src.Server.AllowedOrigins...)
	}
	if src.Server.RateLimitRPS > 0 {
		dst.Server.RateLimitRPS = src.Server.RateLimitRPS
	}
	if src.Server.RateLimitBurst > 0 {
		dst.Server.RateLimitBurst = src.Server.RateLimitBurst
	}

	if v := strings.ToLower(strings.TrimSpace(src.Logging.Level)); v != "" {
		dst.Logging.Level = v
	}
	if v := strings.ToLower(strings.TrimSpace(src.Logging.Format)); v != "" {
		dst.Logging.Format = v
	}
	dst.Logging.Source = src.Logging.Source
	setStr(&dst.Logging.File, src.Logging.File)
}

func setStr(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func truthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

func applyEnvOverrides(cfg *AppConfig) {
	env := func(k string) string { return strings.TrimSpace(os.Getenv(k)) }
	setStr(&cfg.General.DataDir, env(EnvDataDir))
	if v := env(EnvTelemetryOptIn); v != "" {
		cfg.General.TelemetryOptIn = truthy(v)
	}
	if v := env(EnvStorageBackend); v != "" {
		cfg.Storage.Backend = strings.ToLower(v)
	}
	setStr(&cfg.Storage.Path, env(EnvStoragePath))
	setStr(&cfg.Server.Addr, env(EnvServerAddr))
	if v := env(EnvServerOrigins); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.Server.AllowedOrigins = origins
	}
	if v := env(EnvServerRPS); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.Server.RateLimitRPS = f
		}
	}
	if v := env(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := env(EnvLogFormat); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := env(EnvLogSource); v != "" {
		cfg.Logging.Source = truthy(v)
	}
	setStr(&cfg.Logging.File, env(EnvLogFile))
}

var overridable = map[string]string{
	"general.data_dir":         EnvDataDir,
	"general.telemetry_opt_in": EnvTelemetryOptIn,
	"storage.backend":          EnvStorageBackend,
	"storage.path":             EnvStoragePath,
	"server.addr":              EnvServerAddr,
	"server.allowed_origins":   EnvServerOrigins,
	"server.rate_limit_rps":    EnvServerRPS,
	"logging.level":            EnvLogLevel,
	"logging.format":           EnvLogFormat,
	"logging.source":           EnvLogSource,
	"logging.file":             EnvLogFile,
}

// EnvOverrideFor reports which env var, if any, currently overrides the dotted config key.
func EnvOverrideFor(key string) (string, bool) {
	name, ok := overridable[key]
	if !ok || os.Getenv(name) == "" {
		return "", false
	}
	return name, true
}
