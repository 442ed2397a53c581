package main

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultAPIBase        = "https://api.manrongroup.com/api"
	defaultRealEstateBase = "https://realestate.manrongroup.com/api"
)

// envString returns the trimmed value of key, or fallback when unset/blank.
func envString(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func apiBaseURL() string {
	return strings.TrimRight(envString("BACKOFFICE_API_URL", defaultAPIBase), "/")
}

func realEstateBaseURL() string {
	return strings.TrimRight(envString("BACKOFFICE_REALESTATE_API_URL", defaultRealEstateBase), "/")
}

// analyticsBaseURLs resolves the ordered fallback list for the analytics
// client. BACKOFFICE_ANALYTICS_URLS is comma separated; blanks are skipped.
// With nothing configured, both regular bases are tried in order.
func analyticsBaseURLs() []string {
	raw := envString("BACKOFFICE_ANALYTICS_URLS", "")
	if raw == "" {
		return []string{apiBaseURL(), realEstateBaseURL()}
	}
	var bases []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		bases = append(bases, strings.TrimRight(part, "/"))
	}
	if len(bases) == 0 {
		return []string{apiBaseURL(), realEstateBaseURL()}
	}
	return bases
}

// resolveConfigDir picks the directory holding ui.yaml, session.db and
// audit.log. BACKOFFICE_CONFIG_DIR wins; otherwise the platform user
// config dir, with a homedir dotfile fallback for odd environments.
func resolveConfigDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv("BACKOFFICE_CONFIG_DIR")); dir != "" {
		return dir, nil
	}
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, "backoffice"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".backoffice"), nil
}

func resolveExportsDir(cfg *uiConfig) (string, error) {
	if dir := strings.TrimSpace(os.Getenv("BACKOFFICE_EXPORTS_DIR")); dir != "" {
		return dir, nil
	}
	if cfg != nil && strings.TrimSpace(cfg.ExportsDir) != "" {
		return cfg.ExportsDir, nil
	}
	base, err := resolveConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "exports"), nil
}
