// Package branding provides compile-time identity values for the CLI.
//
// Forkers running their own update repository edit branding.yaml, then
// rebuild. Go's //go:embed bakes the file into the binary.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName       string `yaml:"cli_name"`
	DisplayName   string `yaml:"display_name"`
	Description   string `yaml:"description"`
	HomeDir       string `yaml:"home_dir"`
	EnvPrefix     string `yaml:"env_prefix"`
	GoModule      string `yaml:"go_module"`
	RepositoryURL string `yaml:"repository_url"`
}

func load() {
	once.Do(func() {
		// Hard defaults in case the embedded file is missing/empty.
		defaults = brand{
			CLIName:       "sentra-install",
			DisplayName:   "Sentra Installer",
			Description:   "Installs and updates Sentra instances from the online repository",
			HomeDir:       ".sentra",
			EnvPrefix:     "SENTRA",
			GoModule:      "github.com/sentra-labs/installer",
			RepositoryURL: "https://updates.sentra-labs.io/repository",
		}
		// Overlay with embedded YAML values.
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "sentra-install").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME (e.g., ".sentra").
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g., "SENTRA").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// RepositoryURL returns the default base URL of the update repository.
func RepositoryURL() string { load(); return defaults.RepositoryURL }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("TIMEOUT") → "SENTRA_TIMEOUT".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
