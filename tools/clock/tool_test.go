package clock

import (
	"context"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/teachassist/tools"
)

func TestRun(t *testing.T) {
	fixed := time.Date(2024, time.March, 1, 12, 30, 0, 0, time.UTC)
	tool := New(WithNow(func() time.Time { return fixed }))
	ctx := context.Background()

	out, err := tool.Run(ctx, &Input{})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01T12:30:00Z", out.Time)
	assert.Equal(t, "UTC", out.Timezone)
	assert.Equal(t, "Friday", out.Weekday)

	out, err = tool.Run(ctx, &Input{Timezone: "Asia/Dhaka"})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01T18:30:00+06:00", out.Time)

	_, err = tool.Run(ctx, &Input{Timezone: "Mars/Olympus"})
	assert.ErrorIs(t, err, tools.ErrInvalidArguments)
}
