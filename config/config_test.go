// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/openrti/ltime"
)

func TestDefaults(t *testing.T) {
	c, err := New()
	require.NoError(t, err)
	require.Equal(t, defaultRTINode, c.RTINode)
	require.Equal(t, ltime.Integer64, c.LogicalTime)
	require.Equal(t, HLAEvoked, c.CallbackModel)
}

func TestWithOptions(t *testing.T) {
	c, err := New(
		WithRTINode("sim.example.org:8989"),
		WithLogicalTime(ltime.Float64),
		WithCallbackModel(HLAImmediate),
		WithFOMPaths("restaurant.xml", "supplement.xml"),
	)
	require.NoError(t, err)
	require.Equal(t, "sim.example.org:8989", c.RTINode)
	require.Equal(t, ltime.Float64, c.LogicalTime)
	require.Equal(t, HLAImmediate, c.CallbackModel)
	require.Len(t, c.FOMPaths, 2)
}

func TestInvalidRTINode(t *testing.T) {
	_, err := New(WithRTINode("not-a-host-port"))
	require.ErrorIs(t, err, ErrInvalidRTINode)
}
