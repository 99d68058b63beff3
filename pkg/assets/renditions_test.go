package assets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRendition(t *testing.T) {
	r, err := ParseRendition("smallGridIcon")
	require.NoError(t, err)
	assert.Equal(t, RenditionSmallGrid, r)

	_, err = ParseRendition("posterIcon")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownRendition)

	_, err = ParseRendition("")
	assert.Error(t, err)
}

func TestRenditionSizes(t *testing.T) {
	assert.Equal(t, 176, RenditionLargeGrid.Size())
	assert.Equal(t, 88, RenditionSmallGrid.Size())
	assert.Equal(t, 64, RenditionQuickShortcut.Size())
	assert.Equal(t, 44, RenditionList.Size())
}

func TestRenditions_CoversTable(t *testing.T) {
	all := Renditions()
	assert.Len(t, all, len(renditionSpecs))
	for _, r := range all {
		_, ok := renditionSpecs[r]
		assert.True(t, ok)
	}
}
