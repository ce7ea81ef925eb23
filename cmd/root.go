// Package cmd implements the chatdeck command tree.
package cmd

import (
	"fmt"

	"strings"

	"github.com/chatdeck/cli/internal/host"
	"github.com/chatdeck/cli/internal/settings"
	"github.com/chatdeck/cli/pkg/util"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// metadata holds build-time values injected via ldflags.
var metadata = struct {
	Version string
}{
	Version: "dev",
}

var rootCmd = &cobra.Command{
	Use:   "chatdeck",
	Short: "A multi-chat deck for claude.ai on Kernel cloud browsers",
	Long: `chatdeck keeps a deck of chat sessions warm in Kernel cloud browsers so
opening a new chat is instant.

Sessions are created ahead of demand, navigated to the chat site, and
confirmed ready before you ask for them. The chat bar gives you one
keyboard-driven surface over all of them.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.Version = metadata.Version

	// Accept underscores in flag names so settings keys paste cleanly.
	rootCmd.PersistentFlags().SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
}

// Root returns the top-level command for execution by main.
func Root() *cobra.Command {
	return rootCmd
}

// newHost builds a KernelHost from persisted settings, with flag overrides
// already folded into opts by the caller.
func newHost(opts host.Options) (*host.KernelHost, error) {
	client, err := util.GetKernelClient()
	if err != nil {
		return nil, err
	}
	h, err := host.New(client, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to configure session host: %w", err)
	}
	return h, nil
}

// hostOptionsFromSettings maps persisted settings onto host options.
func hostOptionsFromSettings(s *settings.Settings) host.Options {
	return host.Options{
		DefaultURL:     s.ChatURL(),
		Stealth:        s.Stealth(),
		Headless:       s.Headless(),
		Zoom:           s.Zoom(),
		UserScriptsDir: s.UserScriptsDir(),
	}
}
