package unit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestartPlanKeepsInventoryOrder(t *testing.T) {
	plan, err := RestartPlan([]ServiceUnit{
		{Filename: "shop.service"},
		{Filename: "billing.service"},
		{Filename: "reports.service"},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"shop.service", "billing.service", "reports.service"}, plan)
}

func TestRestartPlanOrdersServicesBeforeTimers(t *testing.T) {
	plan, err := RestartPlan([]ServiceUnit{
		{Filename: "reports.service", TimerFilename: "reports.timer"},
		{Filename: "shop.service"},
		{Filename: "cleanup.service", TimerFilename: "cleanup.timer"},
	})

	require.NoError(t, err)
	require.Len(t, plan, 5)

	index := make(map[string]int, len(plan))
	for i, name := range plan {
		index[name] = i
	}
	assert.Less(t, index["reports.service"], index["reports.timer"])
	assert.Less(t, index["cleanup.service"], index["cleanup.timer"])
	assert.Less(t, index["reports.service"], index["shop.service"])
}

func TestRestartPlanEmpty(t *testing.T) {
	plan, err := RestartPlan(nil)
	require.NoError(t, err)
	assert.Empty(t, plan)
}
