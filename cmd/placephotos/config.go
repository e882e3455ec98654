package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"

	placephotos "github.com/mekanbudur/go-placephotos"
)

// appConfig is the on-disk configuration, TOML with env-var overrides.
// The env names match the original tooling so existing scripts keep working.
type appConfig struct {
	Paths struct {
		AppJS     string `toml:"app_js"`
		WebRoot   string `toml:"web_root"`
		OutDir    string `toml:"out_dir"`
		Overrides string `toml:"overrides"`
	} `toml:"paths"`
	Fetch struct {
		Force            bool    `toml:"force"`
		Limit            int     `toml:"limit"`
		SleepSec         float64 `toml:"sleep_sec"`
		MaxRetries       int     `toml:"max_retries"`
		RejectDuplicates bool    `toml:"reject_duplicates"`
		UserAgent        string  `toml:"user_agent"`
	} `toml:"fetch"`
	Providers struct {
		CommonsBaseURL       string `toml:"commons_base_url"`
		OpenverseBaseURL     string `toml:"openverse_base_url"`
		OpenverseLicenseType string `toml:"openverse_license_type"`
	} `toml:"providers"`
}

func defaultAppConfig() appConfig {
	var c appConfig
	c.Paths.AppJS = filepath.Join("src", "Web", "wwwroot", "js", "app.js")
	c.Paths.WebRoot = filepath.Join("src", "Web", "wwwroot")
	c.Paths.Overrides = filepath.Join("tools", "place_image_overrides.json")
	c.Fetch.Limit = 999
	c.Fetch.SleepSec = 0.8
	c.Fetch.MaxRetries = 3
	return c
}

// loadAppConfig reads the optional TOML file and applies env overrides.
// A missing config file is fine; a malformed one is an error.
func loadAppConfig(path string) (appConfig, error) {
	c := defaultAppConfig()

	if path == "" {
		path = "placephotos.toml"
	}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// defaults + env only
	case err != nil:
		return c, err
	default:
		if err := toml.Unmarshal(data, &c); err != nil {
			return c, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if v := os.Getenv("APP_JS"); v != "" {
		c.Paths.AppJS = v
	}
	if v := os.Getenv("WEB_WWWROOT"); v != "" {
		c.Paths.WebRoot = v
	}
	if v := os.Getenv("OUT_DIR"); v != "" {
		c.Paths.OutDir = v
	}
	if v := os.Getenv("OVERRIDES"); v != "" {
		c.Paths.Overrides = v
	}
	if v := os.Getenv("FORCE"); v != "" {
		c.Fetch.Force = v == "1"
	}
	if v := os.Getenv("LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Fetch.Limit = n
		}
	}
	if v := os.Getenv("SLEEP_SEC"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Fetch.SleepSec = f
		}
	}

	if c.Paths.OutDir == "" {
		c.Paths.OutDir = filepath.Join(c.Paths.WebRoot, "img", "place-photos")
	}
	return c, nil
}

// pipelineConfig builds the core Config value object from the app config.
func (c appConfig) pipelineConfig() *placephotos.Config {
	cfg := &placephotos.Config{
		OutDir:           c.Paths.OutDir,
		WebRoot:          c.Paths.WebRoot,
		Force:            c.Fetch.Force,
		Limit:            c.Fetch.Limit,
		PoliteDelay:      time.Duration(c.Fetch.SleepSec * float64(time.Second)),
		MaxRetries:       c.Fetch.MaxRetries,
		RejectDuplicates: c.Fetch.RejectDuplicates,
		UserAgent:        c.Fetch.UserAgent,
	}
	if c.Providers.CommonsBaseURL != "" || c.Providers.OpenverseBaseURL != "" || c.Providers.OpenverseLicenseType != "" {
		cfg.Providers = []placephotos.SearchProvider{
			&placephotos.CommonsProvider{BaseURL: c.Providers.CommonsBaseURL, UserAgent: cfg.UserAgent},
			&placephotos.OpenverseProvider{
				BaseURL:     c.Providers.OpenverseBaseURL,
				UserAgent:   cfg.UserAgent,
				LicenseType: c.Providers.OpenverseLicenseType,
			},
		}
	}
	return cfg
}
