package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/chatdeck/cli/internal/chat"
	"github.com/chatdeck/cli/internal/host"
	"github.com/chatdeck/cli/internal/settings"
	"github.com/chatdeck/cli/internal/shortcut"
	"github.com/chatdeck/cli/pkg/util"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/pterm/pterm"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var barCmd = &cobra.Command{
	Use:   "bar",
	Short: "Start the chat bar",
	Long: `Start the long-running chat bar: a keyboard-driven surface over a deck
of chat sessions.

Sessions are created and confirmed ready ahead of demand, so switching to
a new chat is instant. Type a message to send it to the active chat.

Special commands:
  /new          - Open a new chat
  /next         - Switch to the next chat
  /close        - Close the active chat
  /list         - List open chats
  /status       - Show pool and queue state
  /quit, /exit  - Exit the bar (open sessions keep running)

Configured keyboard chords (for example cmd+n) typed as a line trigger the
same actions.`,
	Example: `  chatdeck bar`,
	RunE: runBar,
}

func init() {
	rootCmd.AddCommand(barCmd)
}

var (
	barHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#5F5FD7")).
			Padding(0, 2)
	barActiveStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#87D787"))
)

func runBar(cmd *cobra.Command, args []string) error {
	cfg, err := settings.Load()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	h, err := newHost(hostOptionsFromSettings(cfg))
	if err != nil {
		return err
	}

	return runBarWithHost(cmd.Context(), h, cfg)
}

// dispatcherFromSettings binds the configured chords to bar events.
func dispatcherFromSettings(cfg *settings.Settings) (*shortcut.Dispatcher, error) {
	chords := cfg.Shortcuts()
	return shortcut.NewDispatcher(map[shortcut.Event]string{
		shortcut.EventNewChat:    chords[settings.KeyShortcutNewChat],
		shortcut.EventNextChat:   chords[settings.KeyShortcutNextChat],
		shortcut.EventCloseChat:  chords[settings.KeyShortcutCloseChat],
		shortcut.EventFocusInput: chords[settings.KeyShortcutFocus],
	})
}

func runBarWithHost(ctx context.Context, h *host.KernelHost, cfg *settings.Settings) error {
	dispatcher, err := dispatcherFromSettings(cfg)
	if err != nil {
		return fmt.Errorf("invalid shortcut configuration: %w", err)
	}

	presenter := chat.PresenterFunc(func(s *chat.Session, index, total int) {
		label := fmt.Sprintf("chat %d/%d", index+1, total)
		pterm.Println(barActiveStyle.Render(fmt.Sprintf("» %s  %s", label, s.ID())))
	})

	coord := chat.New(ctx, h, chat.DefaultConfig(), presenter)
	defer coord.Close()

	fmt.Println(barHeaderStyle.Render("chatdeck"))
	pterm.Println()
	pterm.Info.Println("Warming sessions... type a message, /help for commands.")
	pterm.Println()

	coord.Prewarm()
	coord.NewChat()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		pterm.Print(pterm.Cyan("You: "))

		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if ev, ok := dispatcher.Lookup(input); ok {
			handleBarEvent(coord, ev)
			continue
		}

		if strings.HasPrefix(input, "/") {
			handled, shouldExit := handleBarCommand(coord, dispatcher, input)
			if shouldExit {
				pterm.Info.Println("Goodbye!")
				return nil
			}
			if handled {
				continue
			}
		}

		sendToActiveChat(ctx, coord, h, input)
	}

	return scanner.Err()
}

func handleBarEvent(coord *chat.Coordinator, ev shortcut.Event) {
	switch ev {
	case shortcut.EventNewChat:
		coord.NewChat()
	case shortcut.EventNextChat:
		coord.NextChat()
	case shortcut.EventCloseChat:
		coord.CloseChat()
	case shortcut.EventFocusInput:
		if info, ok := coord.ActiveSession(); ok {
			pterm.Info.Printf("Composer focused in %s\n", info.ID)
		}
	}
}

func handleBarCommand(coord *chat.Coordinator, dispatcher *shortcut.Dispatcher, input string) (handled bool, shouldExit bool) {
	switch strings.ToLower(strings.Fields(input)[0]) {
	case "/quit", "/exit", "/q":
		return true, true

	case "/new":
		coord.NewChat()
		return true, false

	case "/next":
		coord.NextChat()
		return true, false

	case "/close":
		coord.CloseChat()
		return true, false

	case "/list":
		snap := coord.Snapshot()
		if len(snap.Sessions) == 0 {
			pterm.Info.Println("No open chats.")
			return true, false
		}
		now := time.Now()
		rows := lo.Map(snap.Sessions, func(s chat.SessionInfo, i int) []string {
			marker := " "
			if i == snap.Active {
				marker = "*"
			}
			ready := "unconfirmed"
			if s.Ready {
				ready = "ready"
			}
			return []string{marker, fmt.Sprintf("%d", i+1), s.ID, ready, util.FormatAge(s.OpenedAt, now)}
		})
		tableData := append(pterm.TableData{{"", "#", "Session", "Readiness", "Age"}}, rows...)
		_ = pterm.DefaultTable.WithHasHeader().WithData(tableData).Render()
		return true, false

	case "/status":
		snap := coord.Snapshot()
		pterm.Info.Printf("Open chats: %d  Pool: %d ready  In flight: %d  Queued: %d\n",
			len(snap.Sessions), snap.PoolSize, snap.InFlight, snap.QueueLen)
		return true, false

	case "/help", "/?":
		pterm.Println()
		pterm.Info.Println("Available commands:")
		pterm.Println("  /new          - Open a new chat")
		pterm.Println("  /next         - Switch to the next chat")
		pterm.Println("  /close        - Close the active chat")
		pterm.Println("  /list         - List open chats")
		pterm.Println("  /status       - Show pool and queue state")
		pterm.Println("  /quit, /exit  - Exit the bar")
		pterm.Println()
		pterm.Info.Println("Configured chords:")
		for chord, ev := range dispatcher.Bindings() {
			pterm.Printf("  %-14s- %s\n", chord, ev)
		}
		pterm.Println()
		return true, false

	default:
		pterm.Warning.Printf("Unknown command: %s (use /help for available commands)\n", input)
		return true, false
	}
}

func sendToActiveChat(ctx context.Context, coord *chat.Coordinator, h *host.KernelHost, message string) {
	info, ok := coord.ActiveSession()
	if !ok {
		pterm.Warning.Println("No active chat yet; try again in a moment or use /new.")
		return
	}

	spinner, _ := pterm.DefaultSpinner.Start("Waiting for reply...")
	response, err := h.SendMessage(ctx, chat.SessionHandle{ID: info.ID, LiveViewURL: info.LiveViewURL}, message, 2*time.Minute)
	_ = spinner.Stop()

	if err != nil {
		pterm.Error.Printf("Send failed: %v\n", err)
		return
	}

	pterm.Println()
	pterm.Print(pterm.Green("Claude: "))
	fmt.Println(response)
	pterm.Println()
}
