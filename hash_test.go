package scval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashString(t *testing.T) {
	for _, test := range []struct {
		Name     string
		Input    string
		Expected uint32
	}{
		{Name: "Empty string", Input: "", Expected: 0x00001505},
		{Name: "Single char", Input: "a", Expected: hashRef("a")},
		{Name: "Identifier", Input: "catalog", Expected: hashRef("catalog")},
		{Name: "Is deterministic", Input: "book", Expected: hashRef("book")},
	} {
		t.Run(test.Name, func(t *testing.T) {
			assert.Equal(t, test.Expected, HashString(test.Input))
		})
	}
}

func TestHashStringStableAcrossCalls(t *testing.T) {
	assert.Equal(t, HashString("AUTHOR"), HashString("AUTHOR"))
	assert.NotEqual(t, HashString("AUTHOR"), HashString("DATE"))
}

func TestHashBytesMatchesHashString(t *testing.T) {
	assert.Equal(t, HashString("publish_date"), HashBytes([]byte("publish_date")))
}

// hashRef is a from-scratch transcription of the DJBX-XOR algorithm
// used only to cross-check HashString's output in tests, independent
// of the implementation under test.
func hashRef(s string) uint32 {
	var h uint32 = 5381
	for i := 0; i < len(s); i++ {
		h = ((h << 5) + h) ^ uint32(s[i])
	}
	return h
}
