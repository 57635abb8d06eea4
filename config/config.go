package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ProjectDir   string `json:"project_dir"`
	OutputDir    string `json:"output_dir"`
	DataCacheDir string `json:"data_cache_dir"`

	// CompanyKeyword narrows the filing filter to companies whose name
	// contains the keyword. Empty keeps every convertible-bond filing.
	CompanyKeyword string `json:"company_keyword"`

	// Venues is the listing fallback order used when resolving prices.
	Venues []string `json:"venues"`

	CacheEnabled bool `json:"cache_enabled"`
	Debug        bool `json:"debug"`

	// Notify webhook configuration
	NotifyEndpoint string `json:"notify_endpoint"`
	NotifyToken    string `json:"notify_token"`
}

func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()

	cfg := &Config{
		ProjectDir:   currentDir,
		OutputDir:    filepath.Join(currentDir, "reports"),
		DataCacheDir: filepath.Join(currentDir, "data", "cache"),

		CompanyKeyword: "",
		Venues:         []string{"TW", "TWO"},

		CacheEnabled: true,
		Debug:        false,
	}

	// Load environment variables from .env file
	_ = godotenv.Load()

	// Override with environment variables if they exist
	cfg.loadFromEnv()

	return cfg
}

func (c *Config) loadFromEnv() {
	if val := os.Getenv("BONDWATCH_PROJECT_DIR"); val != "" {
		c.ProjectDir = val
	}
	if val := os.Getenv("BONDWATCH_OUTPUT_DIR"); val != "" {
		c.OutputDir = val
	}
	if val := os.Getenv("BONDWATCH_DATA_CACHE_DIR"); val != "" {
		c.DataCacheDir = val
	}

	if val := os.Getenv("BONDWATCH_COMPANY_KEYWORD"); val != "" {
		c.CompanyKeyword = val
	}
	if val := os.Getenv("BONDWATCH_VENUES"); val != "" {
		venues := make([]string, 0, 2)
		for _, v := range strings.Split(val, ",") {
			if v = strings.TrimSpace(v); v != "" {
				venues = append(venues, v)
			}
		}
		if len(venues) > 0 {
			c.Venues = venues
		}
	}

	if val := os.Getenv("BONDWATCH_CACHE_ENABLED"); val != "" {
		if cache, err := strconv.ParseBool(val); err == nil {
			c.CacheEnabled = cache
		}
	}
	if val := os.Getenv("BONDWATCH_DEBUG"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Debug = enabled
		}
	}

	if val := os.Getenv("BONDWATCH_NOTIFY_ENDPOINT"); val != "" {
		c.NotifyEndpoint = val
	}
	if val := os.Getenv("BONDWATCH_NOTIFY_TOKEN"); val != "" {
		c.NotifyToken = val
	}
}

func (c *Config) EnsureDirectories() error {
	dirs := []string{c.ProjectDir, c.OutputDir, c.DataCacheDir}
	for _, dir := range dirs {
		path := strings.TrimSpace(dir)
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", path, err)
		}
	}
	return nil
}
