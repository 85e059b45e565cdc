package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/m3rciful/trustbot/core/buildinfo"
)

func TestVersionCommand(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())
	require.Equal(t, buildinfo.String()+"\n", out.String())
}

func TestConfigFlagWinsOverEnv(t *testing.T) {
	t.Setenv("CONFIG_PATH", "/etc/trustbot/env.yaml")
	root := newRootCmd()
	require.NoError(t, root.PersistentFlags().Set("config", "flag.yaml"))
	t.Cleanup(func() { cfgFile = "" })

	path, err := runnerOptions().ResolveConfigPath()
	require.NoError(t, err)
	require.Equal(t, "flag.yaml", path)
}

func TestMigrateReportsMissingConfig(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"migrate", "--config", t.TempDir() + "/missing.yaml"})
	require.ErrorContains(t, root.Execute(), "load config")
}
