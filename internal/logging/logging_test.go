package logging

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(InfoLevel, FormatJSON, &buf).Named(ComponentEngine)

	log.Info("record created", zap.String("entity", "adherents"))
	log.Debug("dropped below level")
	require.NoError(t, log.Sync())

	out := buf.String()
	assert.Contains(t, out, `"msg":"record created"`)
	assert.Contains(t, out, `"component":"engine"`)
	assert.Contains(t, out, `"entity":"adherents"`)
	assert.NotContains(t, out, "dropped below level")
}

func TestNew_ConsoleFormatDefaultsToWarn(t *testing.T) {
	var buf bytes.Buffer
	log := New("", "", &buf)

	log.Info("hidden")
	log.Warn("shown")
	require.NoError(t, log.Sync())

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), " | ")
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	named := zap.NewNop().Sugar().Named("x")
	assert.Same(t, named, OrNop(named))
}

func TestFor_ConcurrentCallers(t *testing.T) {
	var wg sync.WaitGroup
	loggers := make([]*zap.SugaredLogger, 16)
	for i := range loggers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			loggers[i] = For(ComponentEngine)
		}(i)
	}
	wg.Wait()

	for _, log := range loggers {
		require.NotNil(t, log)
		assert.Equal(t, ComponentEngine, log.Desugar().Name())
	}
}
