// Package config resolves who is operating the tool and where its data
// lives. Precedence, lowest to highest: built-in defaults, the profile
// config file (~/.dandori/config.env, dotenv format), then process
// environment variables.
package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variable keys. The config.env file uses the same keys.
const (
	EnvUsername    = "DD_USERNAME"
	EnvProfile     = "DD_PROFILE"
	EnvDataPath    = "DD_DATA_PATH"
	EnvArchivePath = "DD_ARCHIVE_PATH"
)

// ConfigFileName is the dotenv file read from the dandori home directory.
const ConfigFileName = "config.env"

// Config holds the resolved session settings.
type Config struct {
	// Username is the principal recorded as task owner and requester.
	Username string

	// Profile namespaces the data files; empty means the unnamed default
	// profile stored directly under the dandori home.
	Profile string

	// DataPath is the task table location. The suffix selects the backend
	// (.yaml or .db).
	DataPath string

	// ArchivePath is reserved for a future split of archived tasks into
	// their own file; resolved and created alongside DataPath.
	ArchivePath string
}

// Load resolves the configuration from the given environment. Callers
// normally pass EnvMap(os.Environ()); tests inject their own map.
func Load(env map[string]string) (Config, error) {
	home, err := homeDir(env)
	if err != nil {
		return Config{}, err
	}

	merged := map[string]string{}

	fileVars, err := readConfigFile(filepath.Join(home, ConfigFileName))
	if err != nil {
		return Config{}, err
	}

	for k, v := range fileVars {
		merged[k] = v
	}

	// Process environment wins over the config file.
	for _, k := range []string{EnvUsername, EnvProfile, EnvDataPath, EnvArchivePath} {
		if v, ok := env[k]; ok && v != "" {
			merged[k] = v
		}
	}

	cfg := Config{
		Username: merged[EnvUsername],
		Profile:  merged[EnvProfile],
	}

	if cfg.Username == "" {
		cfg.Username = osUsername()
	}

	profileDir := home
	if cfg.Profile != "" {
		profileDir = filepath.Join(home, cfg.Profile)
	}

	cfg.DataPath = merged[EnvDataPath]
	if cfg.DataPath == "" {
		cfg.DataPath = filepath.Join(profileDir, "tasks.yaml")
	}

	cfg.ArchivePath = merged[EnvArchivePath]
	if cfg.ArchivePath == "" {
		cfg.ArchivePath = filepath.Join(profileDir, "archive.yaml")
	}

	return cfg, nil
}

// homeDir returns the dandori home (~/.dandori), creating it if missing.
func homeDir(env map[string]string) (string, error) {
	base := env["HOME"]
	if base == "" {
		var err error

		base, err = os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("config: resolve home: %w", err)
		}
	}

	dir := filepath.Join(base, ".dandori")

	err := os.MkdirAll(dir, 0o750)
	if err != nil {
		return "", fmt.Errorf("config: create home: %w", err)
	}

	return dir, nil
}

// readConfigFile parses the dotenv config file; a missing file is fine.
func readConfigFile(path string) (map[string]string, error) {
	_, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}

		return nil, fmt.Errorf("config: stat %s: %w", path, err)
	}

	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return vars, nil
}

// osUsername falls back to the OS account name, then "anonymous".
func osUsername() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}

	return "anonymous"
}

// EnvMap converts os.Environ() style KEY=VALUE pairs into a map.
func EnvMap(environ []string) map[string]string {
	env := make(map[string]string, len(environ))

	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}

	return env
}
