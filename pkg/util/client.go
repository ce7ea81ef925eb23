package util

import (
	"fmt"
	"os"

	"github.com/chatdeck/cli/internal/auth"
	kernel "github.com/kernel/kernel-go-sdk"
	"github.com/kernel/kernel-go-sdk/option"
)

// GetKernelClient creates a Kernel SDK client using the API key from
// the environment or the keychain. CHATDECK_BASE_URL overrides the API
// endpoint for development.
func GetKernelClient() (kernel.Client, error) {
	apiKey, err := auth.NewStore().ResolveAPIKey()
	if err != nil {
		return kernel.Client{}, fmt.Errorf("failed to resolve API key: %w", err)
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if baseURL := os.Getenv("CHATDECK_BASE_URL"); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return kernel.NewClient(opts...), nil
}
