package chatsync_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samandareo/quick-brand-admin/internal/chatsync"
	"github.com/samandareo/quick-brand-admin/internal/models"
)

func TestGroupByDay_Labels(t *testing.T) {
	now := time.Date(2025, time.March, 12, 15, 0, 0, 0, time.UTC)

	msgs := []models.Message{
		msgAt("m1", "admin_u1", models.SenderTypeUser, now.AddDate(0, 0, -7)),
		msgAt("m2", "admin_u1", models.SenderTypeAdmin, now.AddDate(0, 0, -1).Add(-time.Hour)),
		msgAt("m3", "admin_u1", models.SenderTypeUser, now.AddDate(0, 0, -1)),
		msgAt("m4", "admin_u1", models.SenderTypeUser, now.Add(-time.Hour)),
	}

	groups := chatsync.GroupByDay(msgs, now)
	require.Len(t, groups, 3)

	assert.Equal(t, "Wednesday, 05 Mar 2025", groups[0].Label)
	require.Len(t, groups[0].Messages, 1)

	assert.Equal(t, "Yesterday", groups[1].Label)
	require.Len(t, groups[1].Messages, 2)
	assert.Equal(t, "m2", groups[1].Messages[0].ID)

	assert.Equal(t, "Today", groups[2].Label)
	assert.Equal(t, "m4", groups[2].Messages[0].ID)
}

func TestGroupByDay_Empty(t *testing.T) {
	assert.Empty(t, chatsync.GroupByDay(nil, time.Now()))
}

func TestGroupByDay_MidnightBoundary(t *testing.T) {
	now := time.Date(2025, time.March, 12, 0, 30, 0, 0, time.UTC)

	msgs := []models.Message{
		msgAt("m1", "admin_u1", models.SenderTypeUser, now.Add(-time.Hour)), // 23:30 yesterday
		msgAt("m2", "admin_u1", models.SenderTypeUser, now.Add(-15*time.Minute)),
	}

	groups := chatsync.GroupByDay(msgs, now)
	require.Len(t, groups, 2)
	assert.Equal(t, "Yesterday", groups[0].Label)
	assert.Equal(t, "Today", groups[1].Label)
}
