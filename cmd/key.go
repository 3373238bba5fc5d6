package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/verso-cli/verso/internal/llm"
	"github.com/verso-cli/verso/internal/store"
	"github.com/verso-cli/verso/internal/tutor"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage the stored model API credential",
}

var keySetCmd = &cobra.Command{
	Use:   "set <provider> <api-key>",
	Short: "Save an API credential (anthropic, openai, gemini, openrouter)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, key := args[0], args[1]
		model, _ := cmd.Flags().GetString("model")

		cfg := llm.DefaultConfig()
		cfg.Provider = provider
		cfg.SetAPIKey(key)
		if err := cfg.Validate(); err != nil {
			return err
		}

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		s, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		ctx := context.Background()
		prefs, err := s.PrefsRepo().Load(ctx)
		if err != nil {
			return fmt.Errorf("load preferences: %w", err)
		}
		prefs.Provider = provider
		prefs.APIKey = key
		prefs.Model = model
		if err := s.PrefsRepo().Save(ctx, prefs); err != nil {
			return fmt.Errorf("save preferences: %w", err)
		}

		fmt.Printf("Saved %s credential.\n", provider)
		return nil
	},
}

var keyCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Probe the configured credential with a minimal model call",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		s, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		eventRepo := s.EventRepo()
		provider, err := llm.NewProviderFromEnv(ctx, eventRepo)
		if err != nil {
			prefs, perr := s.PrefsRepo().Load(ctx)
			if perr != nil {
				return fmt.Errorf("load preferences: %w", perr)
			}
			provider, err = llm.NewProviderFromPrefs(ctx, prefs, eventRepo)
		}
		if err != nil {
			return fmt.Errorf("no credential configured: %w", err)
		}

		gateway := tutor.NewGateway(provider, tutor.DefaultConfig())
		result := gateway.ValidateKey(ctx)

		fmt.Printf("Model:  %s\n", provider.ModelID())
		fmt.Printf("Result: %s\n", result)
		if result != tutor.ProbeValid {
			return fmt.Errorf("credential check failed")
		}
		return nil
	},
}

func init() {
	keySetCmd.Flags().String("model", "", "Preferred model ID (provider default when empty)")

	keyCmd.AddCommand(keySetCmd)
	keyCmd.AddCommand(keyCheckCmd)
}
