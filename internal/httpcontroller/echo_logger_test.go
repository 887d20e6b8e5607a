package httpcontroller

import (
	"bytes"
	"testing"

	gommonlog "github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"

	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/logger"
)

func TestEchoLoggerLevels(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := newEchoLogger(logger.NewSlogLogger(&buf, logger.LogLevelTrace), false)

	assert.Equal(t, gommonlog.INFO, l.Level())
	l.Debugf("hidden %d", 1)
	l.Infof("shown %d", 2)
	l.Warnj(gommonlog.JSON{"k": "v"})

	l.SetLevel(gommonlog.ERROR)
	l.Warn("hidden warn")
	l.Error("shown error")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown 2")
	assert.Contains(t, out, "shown error")
	assert.Contains(t, out, "level=WARN")

	assert.Panics(t, func() { l.Panic("boom") })
}
