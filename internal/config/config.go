package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the optional YAML configuration file. Flags and environment
// variables take precedence over it.
type Config struct {
	Confluence ConfluenceConfig `yaml:"confluence"`
}

type ConfluenceConfig struct {
	OrgName  string `yaml:"org_name"`
	Username string `yaml:"username"`
	APIToken string `yaml:"api_token"`
	SpaceKey string `yaml:"space_key"`
}

// Options carries the raw CLI inputs before resolution.
type Options struct {
	Username   string
	Password   string
	OrgName    string
	SpaceKey   string
	ConfigFile string
	NoSSL      bool
}

// Settings is the fully resolved configuration a run needs. Every field is
// guaranteed non-empty.
type Settings struct {
	BaseURL  string
	Username string
	APIToken string
	SpaceKey string
}

// Load reads and parses a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &config, nil
}

// ResolveConfigPath returns the config file to use: the explicit path when
// given, a config.yaml in the working directory when present, otherwise the
// per-user config location.
func ResolveConfigPath(path string) string {
	if path != "" {
		return path
	}
	if info, err := os.Stat("config.yaml"); err == nil && !info.IsDir() {
		return "config.yaml"
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(dir, "confpub", "config.yaml")
}

// Resolve merges flags, environment variables, and the config file, in that
// precedence order, and validates that everything a run needs is present.
// All failures here are configuration errors raised before any network call.
func Resolve(opts Options) (*Settings, error) {
	var fileCfg ConfluenceConfig
	if path := ResolveConfigPath(opts.ConfigFile); path != "" {
		if _, err := os.Stat(path); err == nil {
			cfg, err := Load(path)
			if err != nil {
				return nil, err
			}
			fileCfg = cfg.Confluence
		} else if opts.ConfigFile != "" {
			// An explicitly named file must exist.
			return nil, fmt.Errorf("failed to read config file: %s", opts.ConfigFile)
		}
	}

	username := firstOf(opts.Username, os.Getenv("CONFLUENCE_USERNAME"), fileCfg.Username)
	password := firstOf(opts.Password, os.Getenv("CONFLUENCE_PASSWORD"), fileCfg.APIToken)
	orgName := firstOf(opts.OrgName, os.Getenv("CONFLUENCE_ORGNAME"), fileCfg.OrgName)
	spaceKey := firstOf(opts.SpaceKey, fileCfg.SpaceKey)

	if username == "" {
		return nil, fmt.Errorf("username is required (set --username or CONFLUENCE_USERNAME)")
	}
	if password == "" {
		return nil, fmt.Errorf("password is required (set --password or CONFLUENCE_PASSWORD)")
	}
	if orgName == "" {
		return nil, fmt.Errorf("orgname is required (set --orgname or CONFLUENCE_ORGNAME)")
	}
	if spaceKey == "" {
		return nil, fmt.Errorf("space key is required (pass it as the second argument or set confluence.space_key)")
	}

	scheme := "https"
	if opts.NoSSL {
		scheme = "http"
	}

	return &Settings{
		BaseURL:  fmt.Sprintf("%s://%s.atlassian.net/wiki", scheme, orgName),
		Username: username,
		APIToken: password,
		SpaceKey: spaceKey,
	}, nil
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
