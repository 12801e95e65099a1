package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/skillsenselab/hostagent/logger"
)

// envPrefix scopes environment overrides, e.g. HOSTAGENT_SERVER_PORT or
// HOSTAGENT_HAPROXY_SOCKET.
const envPrefix = "HOSTAGENT_"

// FileSystem abstracts file lookups so loader tests need no real files.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

type realFileSystem struct{}

func (realFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (realFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// LoaderConfig holds loader dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string
	EnvFile    string
}

// LoaderOption customizes loading.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

var configSearchPaths = []string{
	"./config.yml",
	"./config/config.yml",
	"/etc/hostagent/config.yml",
}

var envSearchPaths = []string{
	"./.env",
	"/etc/hostagent/.env",
}

func load(cfg *Config, opts ...LoaderOption) error {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = realFileSystem{}
	}

	v := viper.New()

	if file := resolve(lc.FileSystem, lc.ConfigFile, configSearchPaths); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			logger.Warn("config file unreadable, continuing with defaults", map[string]interface{}{
				"file":  file,
				"error": err.Error(),
			})
		}
	}

	if file := resolve(lc.FileSystem, lc.EnvFile, envSearchPaths); file != "" {
		if err := lc.FileSystem.LoadEnv(file); err != nil {
			logger.Warn(".env file unreadable, skipping", map[string]interface{}{
				"file":  file,
				"error": err.Error(),
			})
		}
	}

	bindEnvOverrides(v)

	return v.Unmarshal(cfg)
}

func resolve(fs FileSystem, explicit string, searchPaths []string) string {
	if explicit != "" {
		return explicit
	}
	for _, path := range searchPaths {
		if fs.Exists(path) {
			return path
		}
	}
	return ""
}

// bindEnvOverrides sets every HOSTAGENT_* environment variable into viper
// under all plausible nesting splits, so HOSTAGENT_SERVER_READ_TIMEOUT
// reaches server.read_timeout without a per-key binding table.
func bindEnvOverrides(v *viper.Viper) {
	for _, env := range os.Environ() {
		key, value, found := strings.Cut(env, "=")
		if !found || !strings.HasPrefix(key, envPrefix) {
			continue
		}
		for _, variant := range keyVariants(strings.TrimPrefix(key, envPrefix)) {
			v.Set(variant, value)
		}
	}
}

// keyVariants expands SERVER_READ_TIMEOUT into server.read_timeout,
// server.read.timeout, and so on, since underscores are ambiguous between
// nesting separators and key-internal underscores.
func keyVariants(envKey string) []string {
	lowered := strings.ToLower(envKey)
	parts := strings.Split(lowered, "_")
	if len(parts) == 1 {
		return []string{lowered}
	}

	seen := map[string]bool{}
	variants := []string{}
	add := func(key string) {
		if !seen[key] {
			seen[key] = true
			variants = append(variants, key)
		}
	}

	add(lowered)
	add(strings.ReplaceAll(lowered, "_", "."))
	for i := 1; i < len(parts); i++ {
		add(strings.Join(parts[:i], ".") + "." + strings.Join(parts[i:], "_"))
	}
	return variants
}
