package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleInfo = `Title:          Proposal
Producer:       Skia/PDF m119
CreationDate:   Tue Jan  9 10:15:02 2024 EST
Custom Metadata: no
Metadata Stream: no
Tagged:         no
Form:           none
Pages:          3
Encrypted:      no
Page    1 size: 612 x 792 pts (letter)
Page    1 rot:  0
File size:      48231 bytes
Optimized:      no
PDF version:    1.4
`

func TestParsePageCount(t *testing.T) {
	n, ok := parsePageCount(sampleInfo)
	assert.True(t, ok)
	assert.Equal(t, 3, n)

	_, ok = parsePageCount("Encrypted: no\n")
	assert.False(t, ok)
}

func TestParsePageSize(t *testing.T) {
	w, h, ok := parsePageSize(sampleInfo, 1)
	assert.True(t, ok)
	assert.Equal(t, 612.0, w)
	assert.Equal(t, 792.0, h)

	_, _, ok = parsePageSize(sampleInfo, 2)
	assert.False(t, ok)
}
