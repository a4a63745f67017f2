package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestURLMatchesAny(t *testing.T) {
	assert.True(t, urlMatchesAny("https://squid-api.tjek.com/v2/incito/doc", ereklambladPatterns))
	assert.True(t, urlMatchesAny("https://example.se/paged-publications/abc/pages/1", ereklambladPatterns))
	assert.False(t, urlMatchesAny("https://analytics.example.com/track", ereklambladPatterns))
	assert.True(t, urlMatchesAny("https://api.coop.se/external/offers", coopPatterns))
	assert.False(t, urlMatchesAny("https://www.coop.se/", coopPatterns))
}

func TestCaptureBufferCopiesResponses(t *testing.T) {
	buf := &CaptureBuffer{}
	buf.add(CapturedResponse{URL: "https://x/incito/1"})

	first := buf.Responses()
	buf.add(CapturedResponse{URL: "https://x/incito/2"})

	assert.Len(t, first, 1)
	assert.Len(t, buf.Responses(), 2)
}
