package cmd

import (
	"fmt"

	"github.com/chatdeck/cli/internal/settings"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var closeCmd = &cobra.Command{
	Use:     "close <session-id>",
	Short:   "Close a chat session",
	Long:    `Delete a chat session. The browser and its conversation are gone for good.`,
	Example: `  chatdeck close abc123xyz`,
	Args:    cobra.ExactArgs(1),
	RunE:    runClose,
}

func init() {
	rootCmd.AddCommand(closeCmd)
}

func runClose(cmd *cobra.Command, args []string) error {
	sessionID := args[0]
	ctx := cmd.Context()

	cfg, err := settings.Load()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	h, err := newHost(hostOptionsFromSettings(cfg))
	if err != nil {
		return err
	}

	handle, err := h.Get(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}

	if err := h.CloseSession(ctx, handle); err != nil {
		return fmt.Errorf("failed to close session: %w", err)
	}

	pterm.Success.Printf("Closed session: %s\n", sessionID)
	return nil
}
