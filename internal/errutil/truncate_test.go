package errutil_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oai-harvest/harvester/internal/errutil"
)

func TestTruncateMiddle_ShortStringUnchanged(t *testing.T) {
	assert.Equal(t, "short message", errutil.TruncateMiddle("short message", 200, 200))
}

func TestTruncateMiddle_ExactBoundaryUnchanged(t *testing.T) {
	s := strings.Repeat("a", 400)
	assert.Equal(t, s, errutil.TruncateMiddle(s, 200, 200))
}

func TestTruncateMiddle_LongStringKeepsHeadAndTail(t *testing.T) {
	s := strings.Repeat("a", 200) + strings.Repeat("b", 1000) + strings.Repeat("c", 200)
	out := errutil.TruncateMiddle(s, 200, 200)

	assert.True(t, strings.HasPrefix(out, strings.Repeat("a", 200)))
	assert.True(t, strings.HasSuffix(out, strings.Repeat("c", 200)))
	assert.Contains(t, out, "...[truncated]...")
	assert.Less(t, len(out), len(s))
}

func TestTruncateMiddle_HandlesMultibyteRunes(t *testing.T) {
	s := strings.Repeat("é", 10) + strings.Repeat("x", 1000) + strings.Repeat("é", 10)
	out := errutil.TruncateMiddle(s, 10, 10)

	assert.True(t, strings.HasPrefix(out, strings.Repeat("é", 10)))
	assert.True(t, strings.HasSuffix(out, strings.Repeat("é", 10)))
}
