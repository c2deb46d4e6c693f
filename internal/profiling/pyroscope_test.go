package profiling

import (
	"testing"

	"github.com/devicedesk/devicedesk/internal/config"
	"github.com/devicedesk/devicedesk/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartDisabled(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Profiling.Enabled = false

	p, err := Start(cfg, logger.NewNopLogger())
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.NoError(t, p.Stop())
}
