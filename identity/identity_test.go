package identity

import (
	"os/user"
	"runtime"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupCurrentUser(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uids are not numeric on windows")
	}

	current, err := user.Current()
	require.NoError(t, err)

	id, err := Lookup(current.Username)
	require.NoError(t, err)

	assert.Equal(t, current.Username, id.Username)
	assert.Equal(t, current.HomeDir, id.HomeDir)
	assert.Equal(t, current.Uid, strconv.FormatUint(uint64(id.UID), 10))
	assert.Equal(t, current.Gid, strconv.FormatUint(uint64(id.GID), 10))
}

func TestLookupUnknownUser(t *testing.T) {
	_, err := Lookup("polyjuice-no-such-user")

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "polyjuice-no-such-user", notFound.Username)
}
