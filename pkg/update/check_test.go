package update

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestUpgradeCommandForMethod(t *testing.T) {
	tests := []struct {
		method   InstallMethod
		expected string
	}{
		{InstallMethodBrew, "brew upgrade chatdeck/tap/chatdeck"},
		{InstallMethodNPM, "npm i -g @chatdeck/cli@latest"},
		{InstallMethodPNPM, "pnpm add -g @chatdeck/cli@latest"},
		{InstallMethodBun, "bun add -g @chatdeck/cli@latest"},
		{InstallMethodUnknown, "brew upgrade chatdeck/tap/chatdeck"},
	}
	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			assert.Equal(t, tt.expected, suggestUpgradeCommandForMethod(tt.method))
		})
	}
}

func TestIsNewerVersion(t *testing.T) {
	tests := []struct {
		name     string
		current  string
		latest   string
		expected bool
	}{
		{"patch bump", "v1.2.3", "v1.2.4", true},
		{"same version", "v1.2.3", "1.2.3", false},
		{"older latest", "v2.0.0", "v1.9.9", false},
		{"minor bump without prefix", "0.4.0", "0.5.0", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IsNewerVersion(tt.current, tt.latest)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestIsNewerVersionRejectsDevBuilds(t *testing.T) {
	_, err := IsNewerVersion("dev", "v1.0.0")
	assert.Error(t, err)
}

func TestPathMatchesNPM(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"/home/user/.npm-global/bin/chatdeck", true},
		{"/home/user/.npm/bin/chatdeck", true},
		{"/usr/local/lib/node_modules/.bin/chatdeck", true},
		{"/home/user/.local/share/npm/bin/chatdeck", true},
		{"/opt/homebrew/bin/chatdeck", false},
		{"/home/user/.bun/bin/chatdeck", false},
		{"/home/user/.local/share/pnpm/chatdeck", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, pathMatchesNPM(tt.path))
		})
	}
}

func TestPathMatchesBun(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"/home/user/.bun/bin/chatdeck", true},
		{"/home/user/.npm-global/bin/chatdeck", false},
		{"/opt/homebrew/bin/chatdeck", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, pathMatchesBun(tt.path))
		})
	}
}

func TestPathMatchesPNPM(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"/home/user/.local/share/pnpm/chatdeck", true},
		{"/home/user/.pnpm/global/chatdeck", true},
		{"/home/user/.npm-global/bin/chatdeck", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, pathMatchesPNPM(tt.path))
		})
	}
}

func TestPathMatchesHomebrew(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"/opt/homebrew/bin/chatdeck", true},
		{"/usr/local/Cellar/chatdeck/1.0/bin/chatdeck", true},
		{"/home/linuxbrew/.linuxbrew/Cellar/chatdeck/1.0/bin/chatdeck", true},
		{"/home/user/.npm-global/bin/chatdeck", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, pathMatchesHomebrew(tt.path))
		})
	}
}

func TestInstallMethodRulesPathPrecedence(t *testing.T) {
	rules := installMethodRules()

	detect := func(path string) InstallMethod {
		for _, r := range rules {
			if r.check(path) {
				return r.method
			}
		}
		return InstallMethodUnknown
	}

	assert.Equal(t, InstallMethodNPM, detect("/home/user/.npm-global/bin/chatdeck"))
	assert.Equal(t, InstallMethodBun, detect("/home/user/.bun/bin/chatdeck"))
	assert.Equal(t, InstallMethodBrew, detect("/opt/homebrew/bin/chatdeck"))
	assert.Equal(t, InstallMethodPNPM, detect("/home/user/.local/share/pnpm/chatdeck"))
	assert.Equal(t, InstallMethodUnknown, detect("/usr/local/bin/chatdeck"))
}
