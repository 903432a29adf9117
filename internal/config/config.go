// Package config resolves the site and API credentials a command runs
// with. Environment variables take priority over named contexts in the
// YAML configuration file; resolution happens once per invocation, before
// any network call.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"sigs.k8s.io/yaml"
)

// DefaultContext is the context consulted when --context is not given.
const DefaultContext = "prd"

// Context holds one resolved set of credentials.
type Context struct {
	Site   string `json:"site"`
	APIKey string `json:"api_key"`
	AppKey string `json:"app_key"`
}

// File is the on-disk configuration layout:
//
//	contexts:
//	  prd:
//	    site: datadoghq.eu
//	    api_key: ...
//	    app_key: ...
type File struct {
	Contexts map[string]Context `json:"contexts"`
}

// DefaultPath returns ~/.config/ddogctl/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".config", "ddogctl", "config.yaml")
}

// Load reads and parses the configuration file at path (DefaultPath when
// empty). A missing file is not an error; it loads as empty.
func Load(path string) (File, error) {
	if path == "" {
		path = DefaultPath()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return File{}, nil
		}
		return File{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	var cfg File
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return File{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ResolveContext resolves (site, api key, app key) with priority:
//  1. environment: DD_SITE, DD_API_KEY, DD_APP_KEY
//  2. the named YAML context (DefaultContext when contextName is empty)
//
// When any credential is present in the environment, the environment wins
// and only a missing site may still come from the YAML context. Failing to
// produce a usable site is a configuration error.
func ResolveContext(contextName, configPath string) (Context, error) {
	envSite := os.Getenv("DD_SITE")
	envAPIKey := os.Getenv("DD_API_KEY")
	envAppKey := os.Getenv("DD_APP_KEY")

	if envSite != "" || envAPIKey != "" || envAppKey != "" {
		ctx := Context{Site: envSite, APIKey: envAPIKey, AppKey: envAppKey}
		if ctx.Site == "" {
			cfg, err := Load(configPath)
			if err != nil {
				return Context{}, err
			}
			if named, ok := cfg.Contexts[nameOrDefault(contextName)]; ok {
				ctx.Site = named.Site
			}
		}
		if ctx.Site == "" {
			return Context{}, fmt.Errorf("could not resolve site: set DD_SITE or define it in the YAML context")
		}
		return ctx, nil
	}

	cfg, err := Load(configPath)
	if err != nil {
		return Context{}, err
	}
	if len(cfg.Contexts) == 0 {
		return Context{}, fmt.Errorf("no credentials in environment and no contexts in %s: set DD_SITE/DD_API_KEY/DD_APP_KEY or create the configuration file", pathOrDefault(configPath))
	}
	selected := nameOrDefault(contextName)
	ctx, ok := cfg.Contexts[selected]
	if !ok {
		return Context{}, fmt.Errorf("context %q not found in configuration file", selected)
	}
	if ctx.Site == "" {
		return Context{}, fmt.Errorf("context %q is missing site", selected)
	}
	return ctx, nil
}

func nameOrDefault(name string) string {
	if name == "" {
		return DefaultContext
	}
	return name
}

func pathOrDefault(path string) string {
	if path == "" {
		return DefaultPath()
	}
	return path
}
