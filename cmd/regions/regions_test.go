package regions

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandListsRegions(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	cmd := Command()
	cmd.SetOut(&buf)
	cmd.SetArgs(nil)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "US-NY    New York\n")
}
