// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package set

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAdd(t *testing.T) {
	require := require.New(t)

	s := make(Set[string])
	require.Empty(s)

	// Add single element
	s.Add("a")
	require.Len(s, 1)
	require.True(s.Contains("a"))

	// Add multiple elements
	s.Add("b", "c")
	require.Len(s, 3)
	require.True(s.Contains("b"))
	require.True(s.Contains("c"))

	// Add duplicate
	s.Add("a")
	require.Len(s, 3)
}

func TestContains(t *testing.T) {
	require := require.New(t)

	s := make(Set[string])
	s.Add("a", "b", "c")
	require.True(s.Contains("a"))
	require.True(s.Contains("b"))
	require.True(s.Contains("c"))
	require.False(s.Contains("d"))
}

func TestRemove(t *testing.T) {
	require := require.New(t)

	s := make(Set[int])
	s.Add(1, 2, 3, 4, 5)

	// Remove single element
	s.Remove(3)
	require.Len(s, 4)
	require.False(s.Contains(3))

	// Remove multiple elements
	s.Remove(1, 5)
	require.Len(s, 2)
	require.False(s.Contains(1))
	require.False(s.Contains(5))
	require.True(s.Contains(2))
	require.True(s.Contains(4))

	// Remove non-existent element
	s.Remove(10)
	require.Len(s, 2)
}
