package host

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kernel/kernel-go-sdk"

	"github.com/chatdeck/cli/internal/chat"
)

// Options configure the sessions a KernelHost creates.
type Options struct {
	// DefaultURL is where new sessions navigate. Empty means DefaultChatURL.
	DefaultURL string

	// TimeoutSeconds is the requested browser lifetime. Zero means
	// DefaultSessionTimeoutSeconds.
	TimeoutSeconds int64

	Stealth  bool
	Headless bool

	// ViewportWidth and ViewportHeight size the browser viewport. Both
	// zero leaves the Kernel default.
	ViewportWidth  int64
	ViewportHeight int64

	// Zoom applied to the chat page after navigation. Zero leaves the page
	// at its native zoom.
	Zoom float64

	// UserScriptsDir, when set, is scanned for extra .js files injected
	// into every new session after the built-in boot script.
	UserScriptsDir string
}

// KernelHost implements chat.Host on Kernel cloud browsers.
type KernelHost struct {
	client kernel.Client
	opts   Options
	boot   []string
}

// New builds a KernelHost, loading user scripts up front so a bad scripts
// directory fails at startup rather than on the first session.
func New(client kernel.Client, opts Options) (*KernelHost, error) {
	if opts.DefaultURL == "" {
		opts.DefaultURL = DefaultChatURL
	}
	if opts.TimeoutSeconds == 0 {
		opts.TimeoutSeconds = DefaultSessionTimeoutSeconds
	}

	boot := []string{PageBootScript}
	if opts.UserScriptsDir != "" {
		extra, err := LoadUserScripts(opts.UserScriptsDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load user scripts: %w", err)
		}
		boot = append(boot, extra...)
	}

	return &KernelHost{client: client, opts: opts, boot: boot}, nil
}

// CreateSession allocates a new Kernel browser, waits out the post-create
// consistency window, and installs the boot scripts.
func (k *KernelHost) CreateSession(ctx context.Context) (chat.SessionHandle, error) {
	params := kernel.BrowserNewParams{
		TimeoutSeconds: kernel.Opt(k.opts.TimeoutSeconds),
	}
	if k.opts.Stealth {
		params.Stealth = kernel.Opt(true)
	}
	if k.opts.Headless {
		params.Headless = kernel.Opt(true)
	}
	if k.opts.ViewportWidth > 0 && k.opts.ViewportHeight > 0 {
		params.Viewport = kernel.BrowserViewportParam{
			Width:  k.opts.ViewportWidth,
			Height: k.opts.ViewportHeight,
		}
	}

	browser, err := k.client.Browsers.New(ctx, params)
	if err != nil {
		return chat.SessionHandle{}, fmt.Errorf("failed to create browser: %w", err)
	}
	h := chat.SessionHandle{ID: browser.SessionID, LiveViewURL: browser.BrowserLiveViewURL}

	if err := k.waitAccessible(ctx, h.ID); err != nil {
		_ = k.client.Browsers.DeleteByID(context.Background(), h.ID)
		return chat.SessionHandle{}, fmt.Errorf("browser not accessible: %w", err)
	}

	if err := k.installBootScripts(ctx, h); err != nil {
		// Boot scripts only smooth over UX friction; the session is still
		// usable without them.
		slog.Warn("host: boot script install failed", "session", h.ID, "error", err)
	}

	slog.Debug("host: session created", "session", h.ID)
	return h, nil
}

// LoadDefaultURL navigates the session's page to the chat site and applies
// the configured zoom.
func (k *KernelHost) LoadDefaultURL(ctx context.Context, h chat.SessionHandle) error {
	code := fmt.Sprintf(`
		const pages = context.pages();
		const page = pages.length > 0 ? pages[0] : await context.newPage();
		await page.goto(%s, { waitUntil: 'domcontentloaded' });
	`, jsString(k.opts.DefaultURL))

	if _, err := k.execute(ctx, h.ID, code, 60); err != nil {
		return fmt.Errorf("failed to load chat site: %w", err)
	}

	if k.opts.Zoom != 0 {
		if err := k.SetZoom(ctx, h, k.opts.Zoom); err != nil {
			slog.Warn("host: zoom apply failed", "session", h.ID, "error", err)
		}
	}
	return nil
}

// CheckReadiness runs the readiness probe script. The script may nudge the
// page toward the default mode as a side effect of checking.
func (k *KernelHost) CheckReadiness(ctx context.Context, h chat.SessionHandle) (chat.Readiness, error) {
	result, err := k.execute(ctx, h.ID, CheckReadyScript, readinessTimeoutSec)
	if err != nil {
		return chat.ReadinessUnknown, err
	}

	var out struct {
		State string `json:"state"`
	}
	if err := decodeResult(result, &out); err != nil {
		return chat.ReadinessUnknown, err
	}

	switch out.State {
	case "ready":
		return chat.ReadinessReady, nil
	case "notReady":
		return chat.ReadinessNotReady, nil
	default:
		return chat.ReadinessUnknown, nil
	}
}

// FocusComposer moves input focus to the message composer. Best effort; an
// unfocused composer is not an error worth surfacing.
func (k *KernelHost) FocusComposer(ctx context.Context, h chat.SessionHandle) error {
	_, err := k.execute(ctx, h.ID, FocusComposerScript, focusTimeoutSec)
	return err
}

// CloseSession deletes the browser.
func (k *KernelHost) CloseSession(ctx context.Context, h chat.SessionHandle) error {
	if err := k.client.Browsers.DeleteByID(ctx, h.ID); err != nil {
		return fmt.Errorf("failed to delete browser: %w", err)
	}
	return nil
}

// Get resolves an existing browser into a session handle.
func (k *KernelHost) Get(ctx context.Context, id string) (chat.SessionHandle, error) {
	browser, err := k.client.Browsers.Get(ctx, id, kernel.BrowserGetParams{})
	if err != nil {
		return chat.SessionHandle{}, fmt.Errorf("failed to get browser: %w", err)
	}
	return chat.SessionHandle{ID: browser.SessionID, LiveViewURL: browser.BrowserLiveViewURL}, nil
}

// SendMessage sends text into the session's chat and waits for the reply.
func (k *KernelHost) SendMessage(ctx context.Context, h chat.SessionHandle, message string, timeout time.Duration) (string, error) {
	script := fmt.Sprintf(`
process.env.CHATDECK_MESSAGE = %s;
process.env.CHATDECK_TIMEOUT_MS = '%d';

%s
`, jsString(message), timeout.Milliseconds(), SendMessageScript)

	// Buffer over the response timeout for script setup.
	result, err := k.execute(ctx, h.ID, script, int64(timeout.Seconds())+30)
	if err != nil {
		return "", fmt.Errorf("failed to send message: %w", err)
	}

	var out struct {
		Response string `json:"response"`
		Warning  string `json:"warning"`
	}
	if err := decodeResult(result, &out); err != nil {
		return "", err
	}
	if out.Warning != "" {
		slog.Warn("host: send completed with warning", "session", h.ID, "warning", out.Warning)
	}
	if out.Response == "" {
		return "", fmt.Errorf("empty response")
	}
	return out.Response, nil
}

// SetZoom applies a zoom factor to the chat page.
func (k *KernelHost) SetZoom(ctx context.Context, h chat.SessionHandle, zoom float64) error {
	code := fmt.Sprintf(`
		const pages = context.pages();
		if (pages.length > 0) {
			await pages[0].evaluate((z) => { document.body.style.zoom = z; }, %g);
		}
	`, zoom)
	_, err := k.execute(ctx, h.ID, code, focusTimeoutSec)
	return err
}

// waitAccessible polls until the browser answers GET requests. This covers
// eventual consistency right after creation.
func (k *KernelHost) waitAccessible(ctx context.Context, id string) error {
	for attempt := 1; attempt <= accessiblePollAttempts; attempt++ {
		if _, err := k.client.Browsers.Get(ctx, id, kernel.BrowserGetParams{}); err == nil {
			return nil
		}
		if attempt < accessiblePollAttempts {
			select {
			case <-time.After(accessiblePollDelayMS * time.Millisecond):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return fmt.Errorf("browser %s not accessible after %d attempts", id, accessiblePollAttempts)
}

// installBootScripts registers every boot script as a context init script so
// it runs in each page before the site's own code.
func (k *KernelHost) installBootScripts(ctx context.Context, h chat.SessionHandle) error {
	var b strings.Builder
	for _, script := range k.boot {
		fmt.Fprintf(&b, "await context.addInitScript({ content: %s });\n", jsString(script))
	}
	_, err := k.execute(ctx, h.ID, b.String(), 30)
	return err
}

// execute runs a Playwright script against a browser and normalizes script
// failures into errors.
func (k *KernelHost) execute(ctx context.Context, id, code string, timeoutSec int64) (any, error) {
	result, err := k.client.Browsers.Playwright.Execute(ctx, id, kernel.BrowserPlaywrightExecuteParams{
		Code:       code,
		TimeoutSec: kernel.Opt(timeoutSec),
	})
	if err != nil {
		return nil, fmt.Errorf("script execution failed: %w", err)
	}
	if !result.Success {
		if result.Error != "" {
			return nil, fmt.Errorf("script failed: %s", result.Error)
		}
		return nil, fmt.Errorf("script failed")
	}
	return result.Result, nil
}

// decodeResult converts a script's loosely typed result into out via a JSON
// roundtrip.
func decodeResult(result any, out any) error {
	if result == nil {
		return nil
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to parse result: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to parse result: %w", err)
	}
	return nil
}

// jsString returns a JSON-encoded string suitable for embedding in JavaScript.
func jsString(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Sprintf(`"%s"`, strings.ReplaceAll(s, `"`, `\"`))
	}
	return string(b)
}
