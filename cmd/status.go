package cmd

import (
	"fmt"

	"github.com/chatdeck/cli/internal/chat"
	"github.com/chatdeck/cli/internal/settings"
	"github.com/chatdeck/cli/pkg/util"
	"github.com/kernel/kernel-go-sdk"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <session-id>",
	Short: "Check a chat session's readiness",
	Long: `Run the readiness check against an existing chat session.

The check inspects the live page for the composer in its default state
and reports ready, not-ready, or unknown.`,
	Example: `  chatdeck status abc123xyz

  # JSON output for scripting
  chatdeck status abc123xyz -o json

  # Raw Kernel API response for the session
  chatdeck status abc123xyz -o raw`,
	Args: cobra.ExactArgs(1),
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringP("output", "o", "", "Output format: json for the readiness result, raw for the Kernel API response")

	rootCmd.AddCommand(statusCmd)
}

// StatusResult is the JSON output of the status command.
type StatusResult struct {
	SessionID   string `json:"session_id"`
	LiveViewURL string `json:"live_view_url,omitempty"`
	Readiness   string `json:"readiness"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	sessionID := args[0]
	outputFormat, _ := cmd.Flags().GetString("output")

	ctx := cmd.Context()

	if outputFormat == "raw" {
		client, err := util.GetKernelClient()
		if err != nil {
			return err
		}
		browser, err := client.Browsers.Get(ctx, sessionID, kernel.BrowserGetParams{})
		if err != nil {
			return fmt.Errorf("failed to get session: %w", err)
		}
		return util.PrintPrettyJSON(browser)
	}

	cfg, err := settings.Load()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	h, err := newHost(hostOptionsFromSettings(cfg))
	if err != nil {
		return err
	}

	if outputFormat != "json" {
		pterm.Info.Printf("Checking session: %s\n", sessionID)
	}

	handle, err := h.Get(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}

	state := chat.NewReadinessProbe(h).Check(ctx, handle)

	if outputFormat == "json" {
		return util.PrintJSON(StatusResult{
			SessionID:   handle.ID,
			LiveViewURL: handle.LiveViewURL,
			Readiness:   state.String(),
		})
	}

	pterm.Println()
	tableData := pterm.TableData{
		{"Property", "Value"},
		{"Session ID", handle.ID},
		{"Live View URL", util.OrDash(handle.LiveViewURL)},
	}
	switch state {
	case chat.ReadinessReady:
		tableData = append(tableData, []string{"Readiness", pterm.Green("Ready")})
	case chat.ReadinessNotReady:
		tableData = append(tableData, []string{"Readiness", pterm.Yellow("Not Ready")})
	default:
		tableData = append(tableData, []string{"Readiness", pterm.Red("Unknown")})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(tableData).Render()

	pterm.Println()
	switch state {
	case chat.ReadinessReady:
		pterm.Success.Println("Session is ready.")
	case chat.ReadinessNotReady:
		pterm.Warning.Println("Session is loaded but the composer is not in its default state yet.")
	default:
		pterm.Warning.Println("Could not determine page state. The session may still be loading;")
		pterm.Printf("  check the live view: %s\n", util.OrDash(handle.LiveViewURL))
	}

	return nil
}
