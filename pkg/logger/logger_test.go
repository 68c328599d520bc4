package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyValuesBecomeFields(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&logrus.JSONFormatter{})

	log := NewWithLogrus(l).With("profileId", "p1")
	log.Error("redemption failed", "rewardId", "r1", "error", errors.New("boom"), "dangling")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "redemption failed", entry["msg"])
	assert.Equal(t, "p1", entry["profileId"])
	assert.Equal(t, "r1", entry["rewardId"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "(missing)", entry["dangling"])
}
