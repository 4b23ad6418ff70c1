package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCommand_Subcommands(t *testing.T) {
	cmd := NewRootCommand()

	for _, path := range [][]string{
		{"migrate", "up"},
		{"migrate", "down"},
		{"migrate", "version"},
		{"reconcile"},
		{"collect"},
		{"giveaway", "approve"},
		{"giveaway", "reject"},
		{"giveaway", "end"},
		{"giveaway", "winner"},
		{"giveaway", "results"},
		{"giveaway", "stats"},
		{"giveaway", "list"},
	} {
		found, _, err := cmd.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], found.Name())
	}
}

func TestRootCommand_RejectsUnknownFormat(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--format", "yaml", "migrate", "version", "--dsn", "postgres://unused"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestMigrateDown_RejectsNonNumericSteps(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"migrate", "down", "many", "--dsn", "postgres://unused"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid steps")
}

func TestGiveawayCommands_RejectNonPositiveID(t *testing.T) {
	for _, sub := range []string{"approve", "winner", "stats"} {
		cmd := NewRootCommand()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"giveaway", sub, "0"})

		err := cmd.Execute()
		require.Error(t, err, sub)
		assert.Contains(t, err.Error(), "must be positive", sub)
	}
}

func TestOutputFormatter(t *testing.T) {
	var buf bytes.Buffer
	out := &OutputFormatter{Format: "json", Writer: &buf}
	require.NoError(t, out.Print(map[string]int{"fixed": 2}, "fixed 2"))
	assert.JSONEq(t, `{"fixed": 2}`, buf.String())

	buf.Reset()
	out.Format = "text"
	require.NoError(t, out.Print(nil, "fixed 2"))
	assert.Equal(t, "fixed 2\n", buf.String())
}
