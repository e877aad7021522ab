package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesRotatedFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	log, err := New(dir, "payment-links", false)
	require.NoError(t, err)

	log.Info("link created")
	_ = log.Sync()

	data, err := os.ReadFile(filepath.Join(dir, "payment-links.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "link created")
}

func TestNewStdoutOnly(t *testing.T) {
	log, err := New("", "payment-links", true)
	require.NoError(t, err)
	assert.NotNil(t, log)
}
