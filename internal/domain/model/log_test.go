package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestLogEntry_Stamp(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.FixedZone("BRT", -3*3600))

	t.Run("fills missing id, time and level", func(t *testing.T) {
		var e LogEntry
		e.Stamp(now)
		assert.False(t, e.ID.IsZero())
		assert.Equal(t, now.UTC(), e.Timestamp)
		assert.Equal(t, LevelInfo, e.Level)
	})

	t.Run("keeps what the caller set", func(t *testing.T) {
		id := primitive.NewObjectID()
		at := now.Add(-time.Hour)
		e := LogEntry{ID: id, Timestamp: at, Level: LevelError}
		e.Stamp(now)
		assert.Equal(t, id, e.ID)
		assert.Equal(t, at, e.Timestamp)
		assert.Equal(t, LevelError, e.Level)
	})
}

func TestLogEntry_IsAudit(t *testing.T) {
	assert.False(t, (&LogEntry{Message: "request"}).IsAudit())
	assert.True(t, (&LogEntry{ActionType: ActionCalculate}).IsAudit())
}

func TestActivityScope_Valid(t *testing.T) {
	for _, s := range []ActivityScope{ScopeAll, ScopeAdmin, ScopeUser} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, ActivityScope("auditor").Valid())
}

func TestActivityScope_ActionsDoNotOverlap(t *testing.T) {
	admin := ScopeAdmin.Actions()
	for _, a := range ScopeUser.Actions() {
		assert.NotContains(t, admin, a)
	}
	assert.Contains(t, ScopeUser.Actions(), ActionRegister)
}
