// Package update checks GitHub for newer chatdeck releases and figures
// out how the running binary was installed so we can suggest (or run)
// the right upgrade command.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
)

const latestReleaseURL = "https://api.github.com/repos/chatdeck/cli/releases/latest"

// InstallMethod identifies how the binary was installed.
type InstallMethod string

const (
	InstallMethodBrew    InstallMethod = "brew"
	InstallMethodNPM     InstallMethod = "npm"
	InstallMethodPNPM    InstallMethod = "pnpm"
	InstallMethodBun     InstallMethod = "bun"
	InstallMethodUnknown InstallMethod = "unknown"
)

type releaseResponse struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// FetchLatest queries GitHub for the latest release tag and its URL.
func FetchLatest(ctx context.Context) (tag string, releaseURL string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, latestReleaseURL, nil)
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("unexpected status %d from GitHub releases API", resp.StatusCode)
	}

	var release releaseResponse
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", "", fmt.Errorf("failed to decode release response: %w", err)
	}
	if release.TagName == "" {
		return "", "", fmt.Errorf("release response missing tag name")
	}
	return release.TagName, release.HTMLURL, nil
}

// IsNewerVersion reports whether latest is a strictly newer semantic
// version than current. Both accept an optional "v" prefix.
func IsNewerVersion(current, latest string) (bool, error) {
	cur, err := semver.NewVersion(strings.TrimPrefix(current, "v"))
	if err != nil {
		return false, fmt.Errorf("invalid current version %q: %w", current, err)
	}
	lat, err := semver.NewVersion(strings.TrimPrefix(latest, "v"))
	if err != nil {
		return false, fmt.Errorf("invalid latest version %q: %w", latest, err)
	}
	return lat.GreaterThan(cur), nil
}

func pathMatchesNPM(path string) bool {
	return strings.Contains(path, "/.npm-global/") ||
		strings.Contains(path, "/.npm/") ||
		strings.Contains(path, "/node_modules/") ||
		strings.Contains(path, "/share/npm/")
}

func pathMatchesBun(path string) bool {
	return strings.Contains(path, "/.bun/")
}

func pathMatchesPNPM(path string) bool {
	return strings.Contains(path, "/pnpm/") ||
		strings.Contains(path, "/.pnpm/")
}

func pathMatchesHomebrew(path string) bool {
	return strings.Contains(path, "/homebrew/") ||
		strings.Contains(path, "/Cellar/") ||
		strings.Contains(path, "/.linuxbrew/")
}

type installMethodRule struct {
	method InstallMethod
	check  func(path string) bool
}

// installMethodRules returns detection rules in precedence order. The
// node package manager paths are checked before Homebrew because pnpm
// and bun installs can live under a Homebrew-managed prefix.
func installMethodRules() []installMethodRule {
	return []installMethodRule{
		{InstallMethodNPM, pathMatchesNPM},
		{InstallMethodBun, pathMatchesBun},
		{InstallMethodPNPM, pathMatchesPNPM},
		{InstallMethodBrew, pathMatchesHomebrew},
	}
}

// DetectInstallMethod inspects the running executable's path to guess
// the install method. It also returns the resolved binary path for use
// in manual-upgrade instructions.
func DetectInstallMethod() (InstallMethod, string) {
	exe, err := os.Executable()
	if err != nil {
		return InstallMethodUnknown, ""
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}

	for _, r := range installMethodRules() {
		if r.check(exe) {
			return r.method, exe
		}
	}
	return InstallMethodUnknown, exe
}

// suggestUpgradeCommandForMethod returns the upgrade command we print
// when a newer version is available.
func suggestUpgradeCommandForMethod(method InstallMethod) string {
	switch method {
	case InstallMethodNPM:
		return "npm i -g @chatdeck/cli@latest"
	case InstallMethodPNPM:
		return "pnpm add -g @chatdeck/cli@latest"
	case InstallMethodBun:
		return "bun add -g @chatdeck/cli@latest"
	default:
		return "brew upgrade chatdeck/tap/chatdeck"
	}
}

// SuggestUpgradeCommand detects the install method and returns the
// matching upgrade command.
func SuggestUpgradeCommand() string {
	method, _ := DetectInstallMethod()
	return suggestUpgradeCommandForMethod(method)
}
