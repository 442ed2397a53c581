package main

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type uiConfig struct {
	Theme          string              `yaml:"theme,omitempty"`
	PageSize       int                 `yaml:"page_size,omitempty"`
	DefaultSection string              `yaml:"default_section,omitempty"`
	HiddenColumns  map[string][]string `yaml:"hidden_columns,omitempty"`
	ExportsDir     string              `yaml:"exports_dir,omitempty"`
}

func loadUIConfig() (*uiConfig, string) {
	configDir, err := resolveConfigDir()
	if err != nil {
		return &uiConfig{}, "ui.yaml"
	}
	path := filepath.Join(configDir, "ui.yaml")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return &uiConfig{}, path
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return &uiConfig{}, path
	}
	var cfg uiConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return &uiConfig{}, path
	}
	return &cfg, path
}

func saveUIConfig(cfg *uiConfig, path string) error {
	if cfg == nil {
		cfg = &uiConfig{}
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *uiConfig) pageSizeOrDefault() int {
	if c == nil || c.PageSize <= 0 {
		return defaultPageSize
	}
	for _, option := range pageSizeOptions {
		if c.PageSize == option {
			return c.PageSize
		}
	}
	return defaultPageSize
}

func (c *uiConfig) hiddenColumnsFor(section string) []string {
	if c == nil || c.HiddenColumns == nil {
		return nil
	}
	return c.HiddenColumns[section]
}

func (c *uiConfig) setHiddenColumns(section string, keys []string) {
	if c.HiddenColumns == nil {
		c.HiddenColumns = make(map[string][]string)
	}
	if len(keys) == 0 {
		delete(c.HiddenColumns, section)
		return
	}
	c.HiddenColumns[section] = keys
}
