package cmd

import (
	"fmt"

	"github.com/chatdeck/cli/internal/settings"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Read and write persisted settings",
	Long: `Read and write chatdeck settings.

Settings live in ~/.config/chatdeck/config.yaml and cover shortcut
chords, the chat URL, page zoom, stealth/headless session creation, and
the user-scripts directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all settings and their current values",
	RunE:  runSettingsList,
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one setting's value",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsGet,
}

var settingsSetCmd = &cobra.Command{
	Use:     "set <key> <value>",
	Short:   "Set a setting and persist it",
	Example: `  chatdeck settings set shortcuts.new_chat "cmd+shift+n"`,
	Args:    cobra.ExactArgs(2),
	RunE:    runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsListCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsList(cmd *cobra.Command, args []string) error {
	cfg, err := settings.Load()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	tableData := pterm.TableData{{"Key", "Value"}}
	for _, key := range settings.Keys() {
		value, err := cfg.Get(key)
		if err != nil {
			return err
		}
		tableData = append(tableData, []string{key, fmt.Sprintf("%v", value)})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(tableData).Render()

	pterm.Println()
	pterm.Info.Printf("Config file: %s\n", cfg.Path())
	return nil
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	cfg, err := settings.Load()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	value, err := cfg.Get(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("%v\n", value)
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	cfg, err := settings.Load()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if err := cfg.Set(args[0], args[1]); err != nil {
		return err
	}
	pterm.Success.Printf("Set %s = %s\n", args[0], args[1])
	return nil
}
