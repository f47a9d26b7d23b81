package pageview

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLayoutSnapshot(t *testing.T) {
	data := []byte(`{
		"pages": [
			{"number": 1, "fragments": [{"pmStart": 0, "pmEnd": 120}]},
			{"number": 2, "fragments": [{"pmStart": 120, "pmEnd": 260}, {"pmStart": 40, "pmEnd": 300}]}
		],
		"pageSize": {"width": 612, "height": 792},
		"pageGap": 10
	}`)

	layout, err := ParseLayoutSnapshot(data)
	require.NoError(t, err)
	require.Len(t, layout.Pages, 2)
	require.Equal(t, 1, layout.Pages[0].Number)
	require.Equal(t, 792.0, layout.PageSize.Height)
	require.Equal(t, 10.0, layout.PageGap)

	start, end, ok := layout.Pages[0].Range()
	require.True(t, ok)
	require.Equal(t, 0, start)
	require.Equal(t, 120, end)

	// A page's range is the min start / max end over all its fragments.
	start, end, ok = layout.Pages[1].Range()
	require.True(t, ok)
	require.Equal(t, 40, start)
	require.Equal(t, 300, end)
}

func TestParseLayoutSnapshotMalformed(t *testing.T) {
	_, err := ParseLayoutSnapshot([]byte(`{"pages": [`))
	require.ErrorIs(t, err, ErrMalformedLayout)
}

func TestParseLayoutSnapshotNoPages(t *testing.T) {
	_, err := ParseLayoutSnapshot([]byte(`{"pages": [], "pageSize": {"width": 612, "height": 792}}`))
	require.ErrorIs(t, err, ErrNoPages)
}

func TestPageRangeNoFragments(t *testing.T) {
	p := Page{Number: 1}
	_, _, ok := p.Range()
	require.False(t, ok)
}
