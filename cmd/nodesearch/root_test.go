package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := newRootCmd()
	names := make([]string, 0, len(cmd.Commands()))
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"serve", "index", "reindex", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "nodesearch dev"), out)
}

func TestReindexCmd_RequiresTarget(t *testing.T) {
	_, err := execute(t, "reindex")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--all")
}

func TestIndexCmd_HasCreateAndDelete(t *testing.T) {
	cmd, _, err := newRootCmd().Find([]string{"index", "create"})
	require.NoError(t, err)
	assert.Equal(t, "create", cmd.Name())

	cmd, _, err = newRootCmd().Find([]string{"index", "delete"})
	require.NoError(t, err)
	assert.Equal(t, "delete", cmd.Name())
}
