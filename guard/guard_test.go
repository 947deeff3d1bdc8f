// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package guard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCounter map[string]int

func (f fakeCounter) CountByOrigin(_ context.Context, origin string) (int, error) {
	return f[origin], nil
}

type failingCounter struct{}

func (failingCounter) CountByOrigin(context.Context, string) (int, error) {
	return 0, errors.New("store down")
}

type fixedReputation bool

func (f fixedReputation) IsSuspicious(context.Context, string) bool { return bool(f) }

func TestCheckOriginCap_Boundary(t *testing.T) {
	ctx := context.Background()
	counts := fakeCounter{}
	g := New(nil, nil, counts)

	// The nth vote is checked against n-1 already recorded
	for vote := 1; vote <= 10; vote++ {
		counts["203.0.113.5"] = vote - 1
		ok, err := g.CheckOriginCap(ctx, "203.0.113.5", 10)
		require.NoError(t, err)
		assert.True(t, ok, "vote %d should be allowed", vote)
	}

	for _, already := range []int{10, 11, 50} {
		counts["203.0.113.5"] = already
		ok, err := g.CheckOriginCap(ctx, "203.0.113.5", 10)
		require.NoError(t, err)
		assert.False(t, ok, "vote %d should be denied", already+1)
	}
}

func TestCheckOriginCap_CapOfOne(t *testing.T) {
	ctx := context.Background()
	g := New(nil, nil, fakeCounter{"198.51.100.7": 1})

	ok, err := g.CheckOriginCap(ctx, "198.51.100.7", 1)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = g.CheckOriginCap(ctx, "203.0.113.5", 1)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCheckOriginCap_StoreError(t *testing.T) {
	g := New(nil, nil, failingCounter{})
	_, err := g.CheckOriginCap(context.Background(), "203.0.113.5", 10)
	assert.Error(t, err)
}

func TestCheckReputation(t *testing.T) {
	ctx := context.Background()

	assert.False(t, New(nil, nil, nil).CheckReputation(ctx, "203.0.113.5"), "no checker means not suspicious")
	assert.True(t, New(fixedReputation(true), nil, nil).CheckReputation(ctx, "203.0.113.5"))
	assert.False(t, New(fixedReputation(false), nil, nil).CheckReputation(ctx, "203.0.113.5"))

	var disabled *ReputationClient
	assert.False(t, New(disabled, nil, nil).CheckReputation(ctx, "203.0.113.5"), "nil client is disabled")
}
