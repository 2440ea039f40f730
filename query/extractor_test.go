package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_PricePatterns(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		min    *float64
		max    *float64
		target *float64
	}{
		{
			name: "over sets min price",
			text: "looking for tutoring over $30",
			min:  ptr(30),
		},
		{
			name: "more than sets min price",
			text: "photography gigs more than $100",
			min:  ptr(100),
		},
		{
			name: "less than sets max price",
			text: "moving help less than $50",
			max:  ptr(50),
		},
		{
			name:   "around sets target price",
			text:   "guitar lessons around $40",
			target: ptr(40),
		},
		{
			name: "case insensitive",
			text: "Gigs OVER $25 please",
			min:  ptr(25),
		},
		{
			name: "min and max together",
			text: "more than $30 but less than $60",
			min:  ptr(30),
			max:  ptr(60),
		},
		{
			name: "first match wins for repeated pattern",
			text: "over $20, no wait, over $35",
			min:  ptr(20),
		},
		{
			name: "dollar sign without digits leaves field unset",
			text: "something over $ maybe",
		},
		{
			name: "no patterns at all",
			text: "help me find a dog walker",
		},
		{
			name: "empty text",
			text: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			constraints := Extract(tt.text)
			assertPrice(t, "MinPrice", constraints.MinPrice, tt.min)
			assertPrice(t, "MaxPrice", constraints.MaxPrice, tt.max)
			assertPrice(t, "TargetPrice", constraints.TargetPrice, tt.target)
		})
	}
}

func TestExtract_Exclusions(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "single exclusion",
			text: "find gigs, not tutoring",
			want: []string{"tutoring"},
		},
		{
			name: "exclusion lowercased",
			text: "anything but NOT Tutoring",
			want: []string{"tutoring"},
		},
		{
			name: "exclusion stops at punctuation",
			text: "not tutoring, something creative instead",
			want: []string{"tutoring"},
		},
		{
			name: "multi word exclusion capped at three words",
			text: "not graphic design work this month",
			want: []string{"graphic design work"},
		},
		{
			name: "multiple exclusions",
			text: "not tutoring. also not babysitting",
			want: []string{"tutoring", "babysitting"},
		},
		{
			name: "duplicate exclusions collapse",
			text: "not tutoring, not tutoring",
			want: []string{"tutoring"},
		},
		{
			name: "no exclusions",
			text: "photography gigs around campus",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			constraints := Extract(tt.text)
			assert.Equal(t, tt.want, constraints.Exclusions)
		})
	}
}

func TestExtract_Immutable(t *testing.T) {
	// Two extractions over the same text must agree; extraction holds no state.
	first := Extract("not tutoring over $30")
	second := Extract("not tutoring over $30")

	require.NotNil(t, first.MinPrice)
	require.NotNil(t, second.MinPrice)
	assert.Equal(t, *first.MinPrice, *second.MinPrice)
	assert.Equal(t, first.Exclusions, second.Exclusions)
}

func TestExtract_IsZero(t *testing.T) {
	assert.True(t, Extract("just browsing").IsZero())
	assert.False(t, Extract("around $15").IsZero())
	assert.False(t, Extract("not cleaning").IsZero())
}

func assertPrice(t *testing.T, field string, got, want *float64) {
	t.Helper()
	if want == nil {
		assert.Nil(t, got, field)
		return
	}
	require.NotNil(t, got, field)
	assert.Equal(t, *want, *got, field)
}

func ptr(v float64) *float64 {
	return &v
}
