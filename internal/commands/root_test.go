package commands

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/deepwork/internal/config"
	"github.com/balkashynov/deepwork/internal/models"
	"github.com/balkashynov/deepwork/internal/parser"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	addUserFlag(cmd)
	return cmd
}

func TestUserID(t *testing.T) {
	a := &app{cfg: &config.Config{AdminUserID: 77}}

	id, err := a.userID(newUserCmd())
	require.NoError(t, err)
	assert.Equal(t, int64(77), id)

	cmd := newUserCmd()
	require.NoError(t, cmd.Flags().Set("user", "42"))
	id, err = a.userID(cmd)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestUserID_NoneConfigured(t *testing.T) {
	a := &app{cfg: &config.Config{}}
	_, err := a.userID(newUserCmd())
	assert.ErrorIs(t, err, errNoUser)
}

func TestCommandsRegistered(t *testing.T) {
	for _, name := range []string{"serve", "start", "stop", "status", "stats", "birthday", "notify", "version"} {
		c, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, c.Name())
	}
	c, _, err := rootCmd.Find([]string{"birthday", "set"})
	require.NoError(t, err)
	assert.Equal(t, "set", c.Name())
}

func TestDayIn(t *testing.T) {
	ny := time.FixedZone("EST", -5*60*60)

	day, err := dayIn("16.03.2024", ny)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-16", models.DateKey(day.In(ny)))

	_, err = dayIn("2024-03-16", ny)
	assert.ErrorIs(t, err, parser.ErrDateFormat)
}
