package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/verso-cli/verso/internal/app"
	"github.com/verso-cli/verso/internal/llm"
	"github.com/verso-cli/verso/internal/store"
	"github.com/verso-cli/verso/internal/tutor"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	eventRepo := st.EventRepo()
	prefsRepo := st.PrefsRepo()

	prefs, err := prefsRepo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load preferences: %w", err)
	}

	opts := app.Options{
		EventRepo: eventRepo,
		PrefsRepo: prefsRepo,
		Prefs:     prefs,
	}

	provider, err := llm.NewProviderFromEnv(ctx, eventRepo)
	if err != nil {
		provider, err = llm.NewProviderFromPrefs(ctx, prefs, eventRepo)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Model provider not configured:", err)
		fmt.Fprintln(os.Stderr, "Set an API key (e.g. GEMINI_API_KEY) or run: verso key set <provider> <key>")
	} else {
		opts.Gateway = tutor.NewGateway(provider, tutor.DefaultConfig())
	}

	return app.Run(opts)
}
