package log_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bijuliyatra/bijuli-client/pkg/log"
)

func TestLogger_Info_WritesFieldsAndContextFields(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := log.New(log.LevelInfo, log.WithWriter(buf))

	ctx := logger.WithContext(context.Background(), log.Fields{"requestID": "req-1"})
	logger.
		WithField("stationID", 7).
		WithError(errors.New("boom")).
		Info(ctx, "availability loaded")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "availability loaded", record["msg"])
	assert.Equal(t, "req-1", record["requestID"])
	assert.Equal(t, "boom", record["error"])
	assert.EqualValues(t, 7, record["stationID"])
}

func TestLogger_Debug_SkippedBelowLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := log.New(log.LevelWarn, log.WithWriter(buf))

	logger.Debug(context.Background(), "hidden")
	logger.Info(context.Background(), "hidden")

	assert.Zero(t, buf.Len())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, log.LevelDebug, log.ParseLevel("DEBUG"))
	assert.Equal(t, log.LevelDisabled, log.ParseLevel("disabled"))
	assert.Equal(t, log.LevelInfo, log.ParseLevel("verbose"))
}
