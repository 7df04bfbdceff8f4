package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateCorrelationTagLength(t *testing.T) {
	tag, err := GenerateCorrelationTag()
	assert.NoError(t, err)
	assert.Equal(t, correlationTagLength, len(tag))
}

func TestGenerateCorrelationTagCharset(t *testing.T) {
	tag, err := GenerateCorrelationTag()
	assert.NoError(t, err)
	for _, r := range tag {
		assert.True(t, strings.ContainsRune(hexBytes, r), "unexpected character %q", r)
	}
}

func TestGenerateCorrelationTagUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		tag, err := GenerateCorrelationTag()
		assert.NoError(t, err)
		assert.False(t, seen[tag], "tag collision after %d generations", i)
		seen[tag] = true
	}
}
