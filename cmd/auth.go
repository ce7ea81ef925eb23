package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/chatdeck/cli/internal/auth"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the Kernel API key and login helpers",
	Long: `Manage the Kernel API key used to create browser sessions.

The key is stored in the OS keychain. CHATDECK_API_KEY and KERNEL_API_KEY
environment variables take precedence over the stored key.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var authLoginCmd = &cobra.Command{
	Use:   "login [api-key]",
	Short: "Store an API key in the keychain",
	Example: `  chatdeck auth login sk-...

  # Pipe the key to keep it out of shell history
  pbpaste | chatdeck auth login`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAuthLogin,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active API key and its expiry",
	RunE:  runAuthStatus,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored API key",
	RunE:  runAuthLogout,
}

var authTotpCmd = &cobra.Command{
	Use:   "totp",
	Short: "Generate a two-factor login code",
	Long: `Generate a TOTP code for the chat site's two-factor prompt from a
stored base32 secret. Store the secret once with --set, then run the
bare command whenever the live view asks for a code.`,
	Example: `  # Store the secret once
  chatdeck auth totp --set JBSWY3DPEHPK3PXP

  # Generate a code
  chatdeck auth totp`,
	RunE: runAuthTotp,
}

func init() {
	authTotpCmd.Flags().String("set", "", "Store a base32 TOTP secret in the keychain")

	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authTotpCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	var key string
	if len(args) == 1 {
		key = args[0]
	} else {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) == 0 {
			content, err := io.ReadAll(bufio.NewReader(os.Stdin))
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			key = strings.TrimSpace(string(content))
		}
	}
	if key == "" {
		return fmt.Errorf("no API key provided. Pass it as an argument or pipe it to stdin")
	}

	if err := auth.NewStore().Save(key); err != nil {
		return err
	}
	pterm.Success.Println("API key stored in the keychain.")
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	store := auth.NewStore()
	key, err := store.ResolveAPIKey()
	if err != nil {
		return err
	}

	source := "keychain"
	if os.Getenv(auth.EnvAPIKey) != "" {
		source = auth.EnvAPIKey
	} else if os.Getenv(auth.EnvKernelAPIKey) != "" {
		source = auth.EnvKernelAPIKey
	}

	info, err := auth.Inspect(key)
	if err != nil {
		return err
	}

	tableData := pterm.TableData{
		{"Property", "Value"},
		{"Key", auth.Redact(key)},
		{"Source", source},
	}
	if info.Opaque {
		tableData = append(tableData, []string{"Type", "opaque"})
	} else {
		tableData = append(tableData, []string{"Type", "JWT"})
		if info.Subject != "" {
			tableData = append(tableData, []string{"Subject", info.Subject})
		}
		if !info.ExpiresAt.IsZero() {
			tableData = append(tableData, []string{"Expires", info.ExpiresAt.Local().Format(time.RFC1123)})
		}
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(tableData).Render()

	if info.Expired() {
		pterm.Println()
		pterm.Warning.Println("The key has expired. Store a fresh one with 'chatdeck auth login'.")
	}
	return nil
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	if err := auth.NewStore().Delete(); err != nil {
		return err
	}
	pterm.Success.Println("API key removed from the keychain.")
	return nil
}

func runAuthTotp(cmd *cobra.Command, args []string) error {
	store := auth.NewStore()

	if secret, _ := cmd.Flags().GetString("set"); secret != "" {
		if err := store.SaveTOTPSecret(secret); err != nil {
			return err
		}
		pterm.Success.Println("TOTP secret stored in the keychain.")
		return nil
	}

	secret, err := store.LoadTOTPSecret()
	if err != nil {
		return err
	}

	code, err := auth.GenerateTOTP(secret)
	if err != nil {
		return err
	}

	fmt.Println(code)
	remaining := auth.TOTPWindowRemaining(time.Now())
	pterm.Info.Printf("Valid for %ds\n", int(remaining.Seconds()))
	return nil
}
