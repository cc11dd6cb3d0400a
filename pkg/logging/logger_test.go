package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_StdoutText(t *testing.T) {
	closer, err := Init(Config{Level: "debug"})
	require.NoError(t, err)
	defer closer.Close()

	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
	_, isText := logrus.StandardLogger().Formatter.(*logrus.TextFormatter)
	assert.True(t, isText)
}

func TestInit_RotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "modules.log")
	closer, err := Init(Config{Level: "info", Format: "json", File: path, MaxSizeMB: 1})
	require.NoError(t, err)

	Component("test").WithField("module_id", "m1").Info("hello")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"component":"test"`)
	assert.Contains(t, string(data), `"module_id":"m1"`)

	logrus.SetOutput(os.Stdout)
}

func TestInit_Invalid(t *testing.T) {
	_, err := Init(Config{Level: "loud"})
	assert.Error(t, err)
	_, err = Init(Config{Format: "xml"})
	assert.Error(t, err)
}
