package cmd

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/trustbot/core/config"
	coretelegram "github.com/m3rciful/trustbot/core/telegram"
)

type carrier struct{ cfg coreconfig.Config }

func (c *carrier) CoreConfig() *coreconfig.Config { return &c.cfg }

type fakeApp struct {
	closed  bool
	started bool
}

func (a *fakeApp) TelegramRunOptions() (coretelegram.RunOptions, error) {
	return coretelegram.RunOptions{
		OnStart: func(context.Context, coretelegram.Runtime) error { a.started = true; return nil },
	}, nil
}

func (a *fakeApp) Close() error {
	a.closed = true
	return nil
}

func TestRunWiresHooksAndCloses(t *testing.T) {
	app := &fakeApp{}
	var gotPath string
	err := Run(Options{
		ConfigPath: "bot.yaml",
		LoadConfig: func(path string) (ConfigCarrier, error) {
			gotPath = path
			return &carrier{}, nil
		},
		Bootstrap:      func(context.Context, ConfigCarrier) (TelegramApp, error) { return app, nil },
		ShutdownLogger: func() error { return nil },
		RunTelegram: func(ctx context.Context, opts coretelegram.RunOptions) error {
			require.NoError(t, opts.OnStart(ctx, coretelegram.Runtime{}))
			return opts.OnStop(ctx, coretelegram.Runtime{})
		},
	})
	require.NoError(t, err)
	require.Equal(t, "bot.yaml", gotPath)
	require.True(t, app.started)
	require.True(t, app.closed)
}

func TestRunBootstrapFailure(t *testing.T) {
	boom := errors.New("boom")
	err := Run(Options{
		ConfigPath:     "bot.yaml",
		LoadConfig:     func(string) (ConfigCarrier, error) { return &carrier{}, nil },
		Bootstrap:      func(context.Context, ConfigCarrier) (TelegramApp, error) { return nil, boom },
		ShutdownLogger: func() error { return nil },
	})
	require.ErrorIs(t, err, boom)
}

func TestResolveConfigPath(t *testing.T) {
	t.Setenv("TRUSTBOT_CONFIG", "env.yaml")
	p, err := Options{ConfigEnvVar: "TRUSTBOT_CONFIG", DefaultConfigPath: "default.yaml"}.ResolveConfigPath()
	require.NoError(t, err)
	require.Equal(t, "env.yaml", p)

	t.Setenv("TRUSTBOT_CONFIG", "")
	p, err = Options{ConfigEnvVar: "TRUSTBOT_CONFIG", DefaultConfigPath: "default.yaml"}.ResolveConfigPath()
	require.NoError(t, err)
	require.Equal(t, "default.yaml", p)

	_, err = Options{ConfigEnvVar: "TRUSTBOT_CONFIG"}.ResolveConfigPath()
	require.Error(t, err)
}
