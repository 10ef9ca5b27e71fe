package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRootCmd(t *testing.T) {
	root := newRootCmd()

	names := make([]string, 0, len(root.Commands()))
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	require.Subset(t, names, []string{"serve", "migrate", "sweep-overdue", "create-user"})

	sweep, _, err := root.Find([]string{"sweep-overdue"})
	require.NoError(t, err)
	require.NotNil(t, sweep.Flags().Lookup("publish"))

	create, _, err := root.Find([]string{"create-user"})
	require.NoError(t, err)
	require.Equal(t, "ADMIN", create.Flags().Lookup("role").DefValue)
}

func TestLoadConfig_BadLogLevel(t *testing.T) {
	_, err := loadConfig(&rootFlags{logLevel: "loud"})
	require.Error(t, err)
}
