package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/chatdeck/cli/internal/settings"
	"github.com/chatdeck/cli/pkg/util"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var sendCmd = &cobra.Command{
	Use:   "send <session-id> [message]",
	Short: "Send a message to a chat session",
	Long: `Send a single message to a chat session and print the reply.

The message can be provided as:
- A command line argument
- From stdin (piped input)
- From a file (using --file)

This command is designed for scripting and automation. For interactive
use, see 'chatdeck bar'.`,
	Example: `  # Send a message as argument
  chatdeck send abc123 "What is 2+2?"

  # Pipe a message from stdin
  echo "Explain this error" | chatdeck send abc123

  # Read message from a file
  chatdeck send abc123 -f prompt.txt

  # Output as JSON for scripting
  chatdeck send abc123 "Hello" --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSend,
}

func init() {
	sendCmd.Flags().StringP("file", "f", "", "Read message from file")
	sendCmd.Flags().Int("timeout", 120, "Response timeout in seconds")
	sendCmd.Flags().Bool("json", false, "Output response as JSON")
	sendCmd.Flags().Bool("raw", false, "Output raw response without formatting")

	rootCmd.AddCommand(sendCmd)
}

// SendResponse represents the JSON output of the send command.
type SendResponse struct {
	SessionID string `json:"session_id"`
	Response  string `json:"response"`
}

func runSend(cmd *cobra.Command, args []string) error {
	sessionID := args[0]
	filePath, _ := cmd.Flags().GetString("file")
	timeout, _ := cmd.Flags().GetInt("timeout")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	rawOutput, _ := cmd.Flags().GetBool("raw")

	ctx := cmd.Context()

	message, err := resolveMessage(args, filePath)
	if err != nil {
		return err
	}
	if message == "" {
		return fmt.Errorf("no message provided. Provide a message as an argument, via stdin, or with --file")
	}

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

	if !jsonOutput && !rawOutput {
		pterm.Info.Printf("Sending message to session: %s\n", handle.ID)
	}

	response, err := h.SendMessage(ctx, handle, message, time.Duration(timeout)*time.Second)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	if jsonOutput {
		return util.PrintJSON(SendResponse{SessionID: handle.ID, Response: response})
	}
	if rawOutput {
		fmt.Print(response)
		return nil
	}

	pterm.Println()
	pterm.Success.Println("Response:")
	pterm.Println()
	fmt.Println(response)
	return nil
}

// resolveMessage collects the message from arguments, a file, or stdin,
// in that order of preference.
func resolveMessage(args []string, filePath string) (string, error) {
	if len(args) > 1 {
		return strings.Join(args[1:], " "), nil
	}
	if filePath != "" {
		content, err := os.ReadFile(filePath)
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		return strings.TrimSpace(string(content)), nil
	}
	stat, _ := os.Stdin.Stat()
	if (stat.Mode() & os.ModeCharDevice) == 0 {
		content, err := io.ReadAll(bufio.NewReader(os.Stdin))
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return strings.TrimSpace(string(content)), nil
	}
	return "", nil
}
