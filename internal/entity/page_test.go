package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPages_NumbersAndJoined(t *testing.T) {
	p := Pages{3: "c", 1: "a", 2: ""}

	assert.Equal(t, []int{1, 2, 3}, p.Numbers())
	assert.Equal(t, "a  c", p.Joined())
	assert.Equal(t, 3, p.Last())
	assert.Equal(t, 3, p.Len())
}

func TestPages_Append(t *testing.T) {
	first := PagesFromSlice([]string{"one", "two"})
	second := PagesFromSlice([]string{"three"})

	all := first.Append(second)

	assert.Equal(t, Pages{1: "one", 2: "two", 3: "three"}, all)
	assert.Equal(t, Pages{1: "one", 2: "two"}, first, "receiver unchanged")
}

func TestPages_Empty(t *testing.T) {
	var p Pages
	assert.Zero(t, p.Last())
	assert.Empty(t, p.Joined())
	assert.Equal(t, Pages{1: "x"}, p.Append(Pages{1: "x"}))
}

func TestRuleSet_Lookups(t *testing.T) {
	rs := RuleSet{Rules: []Rule{
		{ID: 6, PositivePoints: 10, PositiveKeywords: []string{"cec"}},
		{ID: 24, PositivePoints: 5},
	}}

	assert.Equal(t, []int{6, 24}, rs.IDs())
	assert.Equal(t, 15.0, rs.MaxTotal())
	r, ok := rs.Rule(24)
	assert.True(t, ok)
	assert.False(t, r.HasKeywords())
	_, ok = rs.Rule(99)
	assert.False(t, ok)
}

func TestPages_Offset(t *testing.T) {
	assert.Equal(t, Pages{11: "a", 12: "b"}, Pages{1: "a", 2: "b"}.Offset(10))
}
