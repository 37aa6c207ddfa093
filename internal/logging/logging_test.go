package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFallsBackToInfo(t *testing.T) {
	logger := NewWithOutput(&bytes.Buffer{}, "verbose", "text")
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}

func TestAreaFieldInJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithOutput(&buf, "debug", "json")

	Area(logger, AreaOrder).Info("order created")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ORDER", entry["area"])
	assert.Equal(t, "order created", entry["msg"])
}
