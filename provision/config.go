package provision

import (
	"fmt"

	"github.com/mstoykov/envconfig"
	"gopkg.in/guregu/null.v3"
)

// The embedded defaults. With no environment overrides set, a setup run is
// fully fixed by these values.
const (
	defaultChromeURL = "https://dl.google.com/linux/direct/google-chrome-stable_current_amd64.deb"

	defaultChromeBinary   = "google-chrome"
	defaultPythonBinary   = "python3"
	defaultProjectDirName = "selenium-project"
	defaultVenvName       = "venv"
)

// AptPackages is the fixed set of OS-level dependencies installed before the
// browser: download/archive utilities, the scripting runtime, its package
// installer and its virtual-environment tool.
var AptPackages = []string{"wget", "curl", "unzip", "python3", "python3-pip", "python3-venv"}

// Config holds the provisioning options. Every field has an embedded default
// and can be overridden through the environment.
type Config struct {
	ChromeURL      null.String `json:"chromeURL" envconfig:"SELENV_CHROME_URL"`
	ChromeBinary   null.String `json:"chromeBinary" envconfig:"SELENV_CHROME_BINARY"`
	PythonBinary   null.String `json:"pythonBinary" envconfig:"SELENV_PYTHON_BINARY"`
	ProjectDirName null.String `json:"projectDirName" envconfig:"SELENV_PROJECT_DIR"`
	VenvName       null.String `json:"venvName" envconfig:"SELENV_VENV_NAME"`
}

// NewConfig creates a new Config instance with the embedded default values.
func NewConfig() Config {
	return Config{
		ChromeURL:      null.NewString(defaultChromeURL, false),
		ChromeBinary:   null.NewString(defaultChromeBinary, false),
		PythonBinary:   null.NewString(defaultPythonBinary, false),
		ProjectDirName: null.NewString(defaultProjectDirName, false),
		VenvName:       null.NewString(defaultVenvName, false),
	}
}

// Apply saves non-zero config values from the passed config in the receiver.
func (c Config) Apply(cfg Config) Config {
	if cfg.ChromeURL.Valid {
		c.ChromeURL = cfg.ChromeURL
	}
	if cfg.ChromeBinary.Valid {
		c.ChromeBinary = cfg.ChromeBinary
	}
	if cfg.PythonBinary.Valid {
		c.PythonBinary = cfg.PythonBinary
	}
	if cfg.ProjectDirName.Valid {
		c.ProjectDirName = cfg.ProjectDirName
	}
	if cfg.VenvName.Valid {
		c.VenvName = cfg.VenvName
	}
	return c
}

// GetConsolidatedConfig combines the default values with the environment
// overrides and returns the final result.
func GetConsolidatedConfig(env map[string]string) (Config, error) {
	result := NewConfig()

	envConfig := Config{}
	if err := envconfig.Process("", &envConfig, func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}); err != nil {
		return result, fmt.Errorf("could not read the environment configuration: %w", err)
	}

	return result.Apply(envConfig), nil
}
