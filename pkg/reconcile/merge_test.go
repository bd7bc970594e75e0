package reconcile_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/karlo0/bqdc/pkg/reconcile"
)

const canonicalMax = 1024

func TestMergeDescriptions(t *testing.T) {
	capped := strings.Repeat("a", canonicalMax)
	longer := capped + strings.Repeat("b", 6)

	tests := []struct {
		name      string
		canonical string
		tagged    string
		want      string
	}{
		{"tagged empty", "from canonical", "", "from canonical"},
		{"canonical empty", "", "from tags", "from tags"},
		{"both empty", "", "", ""},
		{"tagged shorter loses", "a longer canonical text", "short", "a longer canonical text"},
		{"equal length keeps tagged", "aaaa", "bbbb", "bbbb"},
		{"tagged longer wins below cap", "short", "a longer tagged text", "a longer tagged text"},
		{"cap hit recovers tail", capped, longer, capped + "bbbbbb"},
		{"cap hit with equal tagged", capped, capped, capped},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := reconcile.MergeDescriptions(tt.canonical, tt.tagged, canonicalMax)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Boundary required by the policy: canonical at exactly 1024 bytes and a
// 1030-byte tagged copy yields canonical plus the tagged tail past 1024.
func TestMergeDescriptionsTruncationBoundary(t *testing.T) {
	canonical := strings.Repeat("x", 1024)
	tagged := strings.Repeat("x", 1024) + "recove"

	got := reconcile.MergeDescriptions(canonical, tagged, canonicalMax)
	assert.Len(t, got, 1030)
	assert.Equal(t, canonical+"recove", got)

	// One byte short of the cap is not truncation evidence.
	almost := strings.Repeat("x", 1023)
	assert.Equal(t, tagged, reconcile.MergeDescriptions(almost, tagged, canonicalMax))
}
