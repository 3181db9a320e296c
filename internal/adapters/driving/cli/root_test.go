package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Subcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}
	for _, want := range []string{"serve", "mcp", "orders", "environments", "categories", "classify", "push", "schedule", "config", "version"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestExecute_Bootstrap(t *testing.T) {
	original := bootstrap
	defer func() {
		SetBootstrap(original)
		configPath = ""
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	}()

	var gotPath string
	closed := 0
	SetBootstrap(func(path string) (*Services, error) {
		gotPath = path
		s := testServices()
		s.Close = func() error {
			closed++
			return nil
		}
		return s, nil
	})

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"--config", "/etc/infoflex/config.toml", "classify", "byte", "broms"})

	require.NoError(t, Execute(context.Background()))
	assert.Equal(t, "/etc/infoflex/config.toml", gotPath)
	assert.Contains(t, buf.String(), "Bromsar")
	assert.Equal(t, 1, closed)
	assert.Nil(t, active)
}

func TestExecute_BootstrapError(t *testing.T) {
	original := bootstrap
	defer func() {
		SetBootstrap(original)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	}()

	SetBootstrap(func(string) (*Services, error) {
		return nil, errors.New("no such file")
	})

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"environments"})

	err := Execute(context.Background())
	assert.EqualError(t, err, "loading configuration: no such file")
	assert.Nil(t, active)
}

func TestExecute_CloseError(t *testing.T) {
	original := bootstrap
	defer func() {
		SetBootstrap(original)
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	}()

	SetBootstrap(func(string) (*Services, error) {
		s := testServices()
		s.Close = func() error { return errors.New("close failed") }
		return s, nil
	})

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"categories"})

	assert.EqualError(t, Execute(context.Background()), "close failed")
}

func TestSetup_WithoutBootstrap(t *testing.T) {
	original := bootstrap
	SetBootstrap(nil)
	defer SetBootstrap(original)

	err := setup(rootCmd, nil)
	assert.ErrorIs(t, err, errNotConfigured)
}

func TestCurrent_NotConfigured(t *testing.T) {
	s, err := current()
	assert.Nil(t, s)
	assert.ErrorIs(t, err, errNotConfigured)
}
