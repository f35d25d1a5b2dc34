package exports

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
exports:
  - path: /data
    clients:
      - 10.0.0.0/8
      - 192.0.2.7
  - path: /public
    read_only: true
`

func TestParse(t *testing.T) {
	table, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)
	require.Len(t, table.Entries(), 2)

	e, ok := table.Lookup("/data")
	require.True(t, ok)
	assert.False(t, e.ReadOnly)
	assert.Len(t, e.Clients, 2)

	e, ok = table.Lookup("/public")
	require.True(t, ok)
	assert.True(t, e.ReadOnly)

	_, ok = table.Lookup("/missing")
	assert.False(t, ok)
}

func TestParseRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"empty":         "exports: []\n",
		"relative path": "exports:\n  - path: data\n",
		"bad cidr":      "exports:\n  - path: /d\n    clients: [\"10.0.0.0/99\"]\n",
		"bad ip":        "exports:\n  - path: /d\n    clients: [\"nonsense\"]\n",
		"not yaml":      "{{{",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(input))
			assert.Error(t, err)
		})
	}
}

func TestAllowed(t *testing.T) {
	table, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	data, _ := table.Lookup("/data")
	public, _ := table.Lookup("/public")

	assert.True(t, table.Allowed(data, net.ParseIP("10.1.2.3")))
	assert.True(t, table.Allowed(data, net.ParseIP("192.0.2.7")))
	assert.False(t, table.Allowed(data, net.ParseIP("192.0.2.8")))
	assert.False(t, table.Allowed(data, nil), "unparsable client addresses are refused")

	// No allowlist admits everyone.
	assert.True(t, table.Allowed(public, net.ParseIP("203.0.113.50")))
}

func TestWildcard(t *testing.T) {
	table, err := Parse([]byte("exports:\n  - path: /d\n    clients: [\"*\"]\n"))
	require.NoError(t, err)
	e, _ := table.Lookup("/d")
	assert.True(t, table.Allowed(e, net.ParseIP("198.51.100.1")))
}

func TestCheck(t *testing.T) {
	table, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	ro, ok := table.Check("/public", net.ParseIP("203.0.113.50"))
	assert.True(t, ok)
	assert.True(t, ro)

	_, ok = table.Check("/data", net.ParseIP("203.0.113.50"))
	assert.False(t, ok)

	_, ok = table.Check("/missing", net.ParseIP("10.0.0.1"))
	assert.False(t, ok)
}

func TestDefault(t *testing.T) {
	table := Default()
	ro, ok := table.Check("/", net.ParseIP("203.0.113.50"))
	assert.True(t, ok)
	assert.False(t, ro)
}
