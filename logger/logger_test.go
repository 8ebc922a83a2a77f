package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProjectLoggerIsShared(t *testing.T) {
	assert.Same(t, GetProjectLogger(), GetProjectLogger())
}

func TestSetLevelAndOutput(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	defer GetProjectLogger().SetLevel(logrus.InfoLevel)

	require.NoError(t, SetLevel("warn"))
	GetProjectLogger().Info("hidden")
	GetProjectLogger().WithField("slot", 2).Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "slot=2")

	assert.Error(t, SetLevel("loud"))
}
