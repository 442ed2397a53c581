package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	theme := flag.String("theme", "", "Markdown rendering theme: auto, light, or dark")
	flag.Parse()

	godotenv.Load()

	cfg, cfgPath := loadUIConfig()
	if *theme != "" {
		cfg.Theme = *theme
	}

	configDir, err := resolveConfigDir()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	store, err := openSessionStore(configDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	defer store.Close()

	exportsDir, err := resolveExportsDir(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	audit := newAuditLogger(filepath.Join(configDir, "audit.log"), uuid.NewString())
	audit.Log("session.start", map[string]any{"exports_dir": exportsDir})
	defer audit.Log("session.end", nil)

	env := appEnv{
		cfg:        cfg,
		cfgPath:    cfgPath,
		store:      store,
		audit:      audit,
		api:        newAPIClient(apiBaseURL(), store, audit),
		realty:     newAPIClient(realEstateBaseURL(), store, audit),
		analytics:  newFallbackClient(analyticsBaseURLs(), store, audit),
		exportsDir: exportsDir,
	}

	if _, err := tea.NewProgram(
		newModel(env),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	).Run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
