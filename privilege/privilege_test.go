package privilege

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireWithoutRoot(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("running as root, cannot test the unprivileged path")
	}

	tok, err := Require()
	require.ErrorIs(t, err, ErrInsufficient)
	assert.False(t, tok.Elevated())
}

func TestUnchecked(t *testing.T) {
	assert.True(t, Unchecked().Elevated())
}

func TestZeroTokenIsNotElevated(t *testing.T) {
	assert.False(t, Token{}.Elevated())
}
