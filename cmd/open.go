package cmd

import (
	"context"
	"fmt"

	"github.com/chatdeck/cli/internal/chat"
	"github.com/chatdeck/cli/internal/settings"
	"github.com/chatdeck/cli/pkg/util"
	"github.com/pkg/browser"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var openCmd = &cobra.Command{
	Use:   "open",
	Short: "Open a single chat session",
	Long: `Create a new Kernel browser session, navigate it to the chat site, and
drive it to a confirmed-ready state.

The session outlives the command; use 'chatdeck send' to talk to it,
'chatdeck status' to re-check it, and 'chatdeck close' to delete it.`,
	Example: `  # Open a session and print its ID
  chatdeck open

  # Open and watch it in the browser
  chatdeck open --live-view

  # Open and drop straight into the chat bar
  chatdeck open --bar`,
	RunE: runOpen,
}

func init() {
	openCmd.Flags().IntP("timeout", "t", 0, "Session timeout in seconds (0 uses the default)")
	openCmd.Flags().BoolP("stealth", "s", false, "Create the browser in stealth mode")
	openCmd.Flags().BoolP("headless", "H", false, "Create the browser in headless mode")
	openCmd.Flags().String("url", "", "Chat URL to navigate to (overrides settings)")
	openCmd.Flags().String("viewport", "", "Browser viewport size (e.g., 1440x900)")
	openCmd.Flags().Bool("live-view", false, "Open the live view in your local browser")
	openCmd.Flags().Bool("bar", false, "Start the chat bar after opening")

	rootCmd.AddCommand(openCmd)
}

func runOpen(cmd *cobra.Command, args []string) error {
	timeout, _ := cmd.Flags().GetInt("timeout")
	stealth, _ := cmd.Flags().GetBool("stealth")
	headless, _ := cmd.Flags().GetBool("headless")
	url, _ := cmd.Flags().GetString("url")
	viewport, _ := cmd.Flags().GetString("viewport")
	liveView, _ := cmd.Flags().GetBool("live-view")
	startBar, _ := cmd.Flags().GetBool("bar")

	ctx := cmd.Context()

	cfg, err := settings.Load()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	opts := hostOptionsFromSettings(cfg)
	if timeout > 0 {
		opts.TimeoutSeconds = int64(timeout)
	}
	if stealth {
		opts.Stealth = true
	}
	if headless {
		opts.Headless = true
	}
	if url != "" {
		opts.DefaultURL = url
	}
	if viewport != "" {
		width, height, err := parseViewport(viewport)
		if err != nil {
			return fmt.Errorf("invalid viewport: %w", err)
		}
		opts.ViewportWidth = width
		opts.ViewportHeight = height
	}

	h, err := newHost(opts)
	if err != nil {
		return err
	}

	if startBar {
		return runBarWithHost(ctx, h, cfg)
	}

	pterm.Info.Println("Creating session...")
	handle, err := h.CreateSession(ctx)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	pterm.Info.Printf("Created session: %s\n", handle.ID)
	pterm.Info.Println("Loading chat site...")

	if err := h.LoadDefaultURL(ctx, handle); err != nil {
		_ = h.CloseSession(context.Background(), handle)
		return fmt.Errorf("failed to load chat site: %w", err)
	}

	spinner, _ := pterm.DefaultSpinner.Start("Waiting for the composer to be ready...")
	driver := chat.NewDriver(chat.NewReadinessProbe(h), chat.DefaultDriverConfig())
	ready := driver.Drive(ctx, handle)
	_ = spinner.Stop()

	readyLabel := pterm.Green("confirmed")
	if !ready {
		readyLabel = pterm.Yellow("unconfirmed")
	}

	pterm.Println()
	tableData := pterm.TableData{
		{"Property", "Value"},
		{"Session ID", handle.ID},
		{"Live View URL", util.FirstOrDash(handle.LiveViewURL, "(not exposed)")},
		{"Readiness", readyLabel},
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(tableData).Render()

	pterm.Println()
	pterm.Info.Println("Next steps:")
	pterm.Printf("  chatdeck send %s \"Hello!\"\n", handle.ID)
	pterm.Printf("  chatdeck status %s\n", handle.ID)
	pterm.Printf("  chatdeck close %s\n", handle.ID)

	if liveView && handle.LiveViewURL != "" {
		_ = browser.OpenURL(handle.LiveViewURL)
	}

	return nil
}

// parseViewport parses a viewport string like "1440x900" into width and height.
func parseViewport(viewport string) (int64, int64, error) {
	var width, height int64
	n, err := fmt.Sscanf(viewport, "%dx%d", &width, &height)
	if err != nil || n != 2 {
		return 0, 0, fmt.Errorf("invalid format, expected WIDTHxHEIGHT")
	}
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("dimensions must be positive")
	}
	return width, height, nil
}
