package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusFilter_Matches(t *testing.T) {
	assert.True(t, FilterAll.Matches(StatusUnknown))
	assert.True(t, StatusFilter("").Matches(StatusOutOfStock))
	assert.True(t, FilterInStock.Matches(StatusInStock))
	assert.False(t, FilterInStock.Matches(StatusOutOfStock))
	assert.True(t, FilterOutOfStock.Matches(StatusOutOfStock))
	assert.False(t, FilterOutOfStock.Matches(StatusUnknown))
}

func TestStatusFilter_IsValid(t *testing.T) {
	assert.True(t, FilterAll.IsValid())
	assert.True(t, StatusFilter("").IsValid())
	assert.False(t, StatusFilter("sold").IsValid())
}

func TestSortOrder_IsValid(t *testing.T) {
	for _, o := range []SortOrder{SortLedger, SortName, SortPrice, SortPriceDesc, SortChange} {
		assert.True(t, o.IsValid(), o)
	}
	assert.False(t, SortOrder("random").IsValid())
}

func TestProduct_PriceChange(t *testing.T) {
	assert.InDelta(t, -0.1, (&Product{TargetPrice: 100, LastPrice: 90}).PriceChange(), 1e-9)
	assert.InDelta(t, 0.25, (&Product{TargetPrice: 80, LastPrice: 100}).PriceChange(), 1e-9)
	assert.Zero(t, (&Product{TargetPrice: 0, LastPrice: 100}).PriceChange())
	assert.Zero(t, (&Product{TargetPrice: 100}).PriceChange())
}
