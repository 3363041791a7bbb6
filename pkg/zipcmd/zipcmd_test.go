package zipcmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokensOrder(t *testing.T) {
	items := Items{
		Prefix:       "host",
		RelativeRoot: "/tmp/top/host_out",
		ListFiles:    []string{"/tmp/host.list"},
		Files:        []string{"/tmp/a.jar", "/tmp/b.jar"},
		Dirs:         []string{"/tmp/extra"},
	}
	tokens, err := items.Tokens()
	require.NoError(t, err)

	// Token order is a contract with the archive tool.
	assert.Equal(t, []string{
		"-P", "host",
		"-C", "/tmp/top/host_out",
		"-l", "/tmp/host.list",
		"-f", "/tmp/a.jar",
		"-f", "/tmp/b.jar",
		"-D", "/tmp/extra",
	}, tokens)
}

func TestTokensOmitsEmptyPrefixAndRoot(t *testing.T) {
	tokens, err := Items{Files: []string{"/tmp/list"}}.Tokens()
	require.NoError(t, err)
	assert.Equal(t, []string{"-f", "/tmp/list"}, tokens)
}

func TestTokensEmptyFails(t *testing.T) {
	_, err := Items{Prefix: "host", RelativeRoot: "/root"}.Tokens()
	require.ErrorIs(t, err, ErrNoItems)
	assert.Contains(t, err.Error(), "host")
}

func TestBaseCommand(t *testing.T) {
	cmd := BaseCommand("/top/prebuilts/soong_zip", "/top/out/dist", "general-tests.zip")
	assert.Equal(t, []string{
		"/top/prebuilts/soong_zip", "-d", "-o", "/top/out/dist/general-tests.zip",
	}, cmd)
}
