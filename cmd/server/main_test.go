package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/S-Corkum/search-gateway/internal/config"
	"github.com/S-Corkum/search-gateway/internal/model"
)

func TestDedicatedStrategies_EmptyOverrides(t *testing.T) {
	strategies := dedicatedStrategies(config.TenantConfig{})
	assert.Empty(t, strategies)
}

func TestDedicatedStrategies_AppliesOverridesAndDefaults(t *testing.T) {
	cfg := config.TenantConfig{
		Overrides: map[string]config.TenantOverride{
			"acme-corp": {Dedicated: true, IndexName: "acme-corp-index", ShardCount: 6, ReplicaCount: 2},
			"small-co":  {Dedicated: false},
		},
	}

	strategies := dedicatedStrategies(cfg)

	acme, ok := strategies["acme-corp"]
	require.True(t, ok)
	assert.Equal(t, model.RoutingDedicated, acme.Strategy)
	assert.Equal(t, "acme-corp-index", acme.IndexName)
	assert.Equal(t, 6, acme.ShardCount)
	assert.Equal(t, 2, acme.ReplicaCount)

	small, ok := strategies["small-co"]
	require.True(t, ok)
	assert.Equal(t, model.RoutingShared, small.Strategy)
	assert.Equal(t, "small-co-index", small.IndexName)
	assert.Equal(t, 3, small.ShardCount)
	assert.Equal(t, 1, small.ReplicaCount)
}
