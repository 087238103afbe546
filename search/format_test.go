package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timewinder-dev/treesearch/tree"
)

func TestFormatResult(t *testing.T) {
	e := newEngine(t, config(2, 3, 4))
	found, err := e.Search(tree.Sample(), 11)
	require.NoError(t, err)
	missing, err := e.Search(tree.Sample(), 15)
	require.NoError(t, err)

	out := FormatResult(int64(11), found)
	assert.Contains(t, out, "found 11")
	assert.Contains(t, out, found.RunID.String())

	out = FormatResult(int64(15), missing)
	assert.Contains(t, out, "not found")
	assert.Contains(t, out, "11\n")

	summary := FormatSummary([]*Result[int64]{found, missing})
	assert.Contains(t, summary, "Searches:      2")
	assert.Contains(t, summary, "Found:         1")
}
