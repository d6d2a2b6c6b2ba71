package config

import (
	"crypto/subtle"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/benschg/benjamin-grauer-personal-webpage-sub000/pkg/privacy"
)

// Store drivers.
const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Env vars that override the config file.
const (
	EnvAPIKey      = "ANTHROPIC_API_KEY"
	EnvAccessToken = "CV_ACCESS_TOKEN"
)

// Config represents the application configuration.
type Config struct {
	Name             string        `json:"name"`
	AnthropicAPIKey  string        `json:"anthropic_api_key,omitempty"`
	BaselineLocation string        `json:"baseline_location"`
	Store            StoreConfig   `json:"store"`
	Access           AccessConfig  `json:"access"`
	Models           ModelsConfig  `json:"models,omitempty"`
	Pandoc           PandocConfig  `json:"pandoc"`
	Defaults         DefaultConfig `json:"defaults"`

	// AccessToken is the token presented by the current operator. It is read
	// from CV_ACCESS_TOKEN and never written to the file.
	AccessToken string `json:"-"`
}

// StoreConfig selects where variants are persisted.
type StoreConfig struct {
	Driver string `json:"driver"`
	Path   string `json:"path,omitempty"`
	// Watch picks up changes other processes make to the database file.
	Watch bool `json:"watch,omitempty"`
}

// AccessConfig lists the tokens that authenticate a viewer.
type AccessConfig struct {
	Tokens []AccessToken `json:"tokens,omitempty"`
}

// AccessToken is one accepted token and its capabilities.
type AccessToken struct {
	Token      string `json:"token"`
	References bool   `json:"references,omitempty"`
}

// ModelsConfig holds model selection for variant generation.
type ModelsConfig struct {
	Generation string `json:"generation,omitempty"`
}

// PandocConfig holds pandoc-related configuration.
type PandocConfig struct {
	TemplatePath string `json:"template_path,omitempty"`
}

// DefaultConfig holds default values for commands.
type DefaultConfig struct {
	OutputDir string `json:"output_dir"`
}

// GetGenerationModel returns the generation model or default if not specified.
func (c *Config) GetGenerationModel() (model string) {
	if c.Models.Generation != "" {
		model = c.Models.Generation
		return model
	}
	model = "claude-sonnet-4-20250514"
	return model
}

// DefaultDir returns ~/.cv-variants.
func DefaultDir() (dir string, err error) {
	var homeDir string
	homeDir, err = os.UserHomeDir()
	if err != nil {
		err = errors.Wrap(err, "failed to get user home directory")
		return dir, err
	}
	dir = filepath.Join(homeDir, ".cv-variants")
	return dir, err
}

// Load reads configuration from file with environment variable overrides.
func Load(configPath string) (cfg Config, err error) {
	path := configPath
	if path == "" {
		var dir string
		dir, err = DefaultDir()
		if err != nil {
			return cfg, err
		}
		path = filepath.Join(dir, "config.json")
	}

	var data []byte
	data, err = os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			err = errors.Errorf("config file not found: %s (run 'cv init' to create)", path)
			return cfg, err
		}
		err = errors.Wrapf(err, "failed to read config file: %s", path)
		return cfg, err
	}

	err = json.Unmarshal(data, &cfg)
	if err != nil {
		err = errors.Wrapf(err, "failed to parse config file: %s", path)
		return cfg, err
	}

	if apiKey := os.Getenv(EnvAPIKey); apiKey != "" {
		cfg.AnthropicAPIKey = apiKey
	}
	cfg.AccessToken = os.Getenv(EnvAccessToken)

	// Relative paths are relative to the config file.
	base := filepath.Dir(path)
	cfg.BaselineLocation = resolvePath(base, cfg.BaselineLocation)
	cfg.Store.Path = resolvePath(base, cfg.Store.Path)
	cfg.Pandoc.TemplatePath = resolvePath(base, cfg.Pandoc.TemplatePath)

	err = cfg.Validate()
	if err != nil {
		err = errors.Wrap(err, "config validation failed")
		return cfg, err
	}

	return cfg, err
}

// Validate checks that all required configuration is present and fills in
// defaults.
func (c *Config) Validate() (err error) {
	if c.Name == "" {
		err = errors.New("name is required in config")
		return err
	}

	if c.BaselineLocation == "" {
		err = errors.New("baseline_location is required in config")
		return err
	}

	_, err = os.Stat(c.BaselineLocation)
	if os.IsNotExist(err) {
		err = errors.Errorf("baseline file not found: %s", c.BaselineLocation)
		return err
	}
	err = nil

	switch c.Store.Driver {
	case "":
		c.Store.Driver = DriverSQLite
	case DriverSQLite, DriverMemory:
	default:
		err = errors.Errorf("unknown store.driver %q: must be %q or %q", c.Store.Driver, DriverSQLite, DriverMemory)
		return err
	}

	if c.Store.Driver == DriverSQLite && c.Store.Path == "" {
		c.Store.Path = filepath.Join(filepath.Dir(c.BaselineLocation), "variants.db")
	}

	for i, t := range c.Access.Tokens {
		if t.Token == "" {
			err = errors.Errorf("access.tokens[%d]: token must not be empty", i)
			return err
		}
	}

	if c.Defaults.OutputDir == "" {
		c.Defaults.OutputDir = "./cv"
	}

	return err
}

// RequireAPIKey reports a missing API key. Only generation needs one.
func (c *Config) RequireAPIKey() (err error) {
	if c.AnthropicAPIKey == "" {
		err = errors.Errorf("anthropic_api_key is required (set in config or %s env var)", EnvAPIKey)
		return err
	}
	return err
}

// Viewer returns what token grants. An empty or unknown token yields an
// unauthenticated viewer.
func (c *Config) Viewer(token string) (v privacy.Viewer) {
	if token == "" {
		return v
	}
	for _, t := range c.Access.Tokens {
		if subtle.ConstantTimeCompare([]byte(t.Token), []byte(token)) == 1 {
			v.Authenticated = true
			v.CanViewReferences = t.References
			return v
		}
	}
	return v
}

// CurrentViewer is Viewer for the token from CV_ACCESS_TOKEN.
func (c *Config) CurrentViewer() (v privacy.Viewer) {
	v = c.Viewer(c.AccessToken)
	return v
}

// InitConfig creates a default configuration file.
func InitConfig(configPath string) (err error) {
	path := configPath
	if path == "" {
		var dir string
		dir, err = DefaultDir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "config.json")
	}

	dir := filepath.Dir(path)
	err = os.MkdirAll(dir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create config directory: %s", dir)
		return err
	}

	_, err = os.Stat(path)
	if err == nil {
		err = errors.Errorf("config file already exists: %s", path)
		return err
	}

	defaultConfig := Config{
		Name:             "your-name",
		BaselineLocation: filepath.Join(dir, "cv.yaml"),
		Store: StoreConfig{
			Driver: DriverSQLite,
			Path:   filepath.Join(dir, "variants.db"),
		},
		Access: AccessConfig{
			Tokens: []AccessToken{{Token: "change-me", References: true}},
		},
		Pandoc: PandocConfig{
			TemplatePath: filepath.Join(dir, "cv-template.latex"),
		},
		Defaults: DefaultConfig{
			OutputDir: "./cv",
		},
	}

	var data []byte
	data, err = json.MarshalIndent(defaultConfig, "", "  ")
	if err != nil {
		err = errors.Wrap(err, "failed to marshal default config")
		return err
	}

	err = os.WriteFile(path, data, 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write config file: %s", path)
		return err
	}

	return err
}

func resolvePath(base, p string) (out string) {
	if p == "" || filepath.IsAbs(p) {
		out = p
		return out
	}
	out = filepath.Join(base, p)
	return out
}
