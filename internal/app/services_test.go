//go:build !integration

package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/compliance-track/config"
	"github.com/guttosm/compliance-track/internal/domain/model"
	"github.com/guttosm/compliance-track/internal/service"
)

func TestInitializeServices(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.SessionConfig
	}{
		{"default limits", config.SessionConfig{TTL: 2 * time.Hour, MaxSessions: 10000}},
		{"zero values fall back to store defaults", config.SessionConfig{}},
		{"small store", config.SessionConfig{TTL: time.Minute, MaxSessions: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			components := InitializeServices(tt.cfg)
			defer components.Stop()

			assert.NotNil(t, components.Estimator)
			assert.NotNil(t, components.SessionStore)
		})
	}
}

func TestServiceComponents_SessionUsesEstimator(t *testing.T) {
	components := InitializeServices(config.SessionConfig{TTL: time.Minute, MaxSessions: 10})
	defer components.Stop()

	sess, err := components.SessionStore.Create()
	require.NoError(t, err)

	name := "Styrene"
	_, err = sess.UpdateSubstance(1, service.SubstancePatch{Name: &name})
	require.NoError(t, err)

	results, err := sess.Calculate()
	require.NoError(t, err)
	require.Len(t, results, 1)
	// Q=1, A=600, Lp=0.1, D=1, F=1000.
	assert.InDelta(t, 0.06, results[0].MigrationValue, 1e-12)
	assert.Empty(t, results[0].Verdicts)
	assert.Equal(t, model.SubstanceID(1), results[0].Substance.ID)
}
