package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	ts := NewTextService()

	assert.Equal(t, "js-100", ts.Slugify("JS-100"))
	assert.Equal(t, "red-m", ts.Slugify(" Red / M "))
	assert.Equal(t, "c-1", ts.Slugify("C--1"))
	assert.Equal(t, "платье", ts.Slugify("Платье"))
	assert.Equal(t, "", ts.Slugify("  ***  "))
}

func TestClearAndReduce(t *testing.T) {
	ts := NewTextService()

	cleaned := ts.ClearAndReduce("<p>Good shirt</p> see https://example.com/x now", 100)
	assert.NotContains(t, cleaned, "<p>")
	assert.NotContains(t, cleaned, "https://")
	assert.Contains(t, cleaned, "Good shirt")

	long := ts.ClearAndReduce("one two three four five", 9)
	assert.LessOrEqual(t, len(long), 9)
}
