package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPUMB_ParseDocument_DropsSummary(t *testing.T) {
	table := [][]string{pumbHeader(),
		{"2024-01-05\n13:15:00", "", "", "125.50 UAH", "", "", "Coffee House", "Списання"},
	}
	table = append(table, pumbSummary()...)

	eng := newPUMBEngine(&fakeExtractor{tables: map[string][][]string{"jan.pdf": table}}, kyiv)
	rows, err := eng.parseDocument("jan.pdf")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Coffee House", rows[0].description)
}

func TestPUMB_MergesPageBreakFragments(t *testing.T) {
	// The second physical row carries no amount: it is the continuation of
	// the first, split by a page break.
	table := [][]string{pumbHeader(),
		{"2024-01-05\n13:15:00", "", "", "125.50 UAH", "", "", "Coffee", "Списання"},
		{"", "", "", "", "", "", "House Lviv", ""},
	}
	table = append(table, pumbSummary()...)

	eng := newPUMBEngine(&fakeExtractor{tables: map[string][][]string{"jan.pdf": table}}, kyiv)
	rows, err := eng.parseDocument("jan.pdf")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	f, err := eng.parseRow(rows[0])
	require.NoError(t, err)
	assert.Equal(t, "Coffee House Lviv", f.description)
	assert.Equal(t, int64(-12550), f.amount)
}

func TestPUMB_ParseRow_InflowSign(t *testing.T) {
	eng := newPUMBEngine(nil, kyiv)

	f, err := eng.parseRow(row{
		date:        "2024-01-05\n13:15:00",
		amount:      "200.00 UAH",
		description: "Зарахування коштів",
		kind:        "Надходження",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(20000), f.amount)
	assert.Equal(t, time.Date(2024, 1, 5, 13, 15, 0, 0, kyiv), f.time)
}

func TestPUMB_ParseRow_CollapsesWhitespace(t *testing.T) {
	eng := newPUMBEngine(nil, kyiv)

	f, err := eng.parseRow(row{
		date:        "2024-01-05\n13:15:00",
		amount:      "125.50 UAH",
		description: "Coffee\nHouse   Lviv",
		kind:        "Списання",
	})
	require.NoError(t, err)
	assert.Equal(t, "Coffee House Lviv", f.description)
}

func TestPUMB_ParseRow_BadAmount(t *testing.T) {
	eng := newPUMBEngine(nil, kyiv)

	_, err := eng.parseRow(row{
		date:        "2024-01-05\n13:15:00",
		amount:      "garbage",
		description: "x",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing amount")
}

func TestPUMB_PostProcess_DeduplicatesKeepingLast(t *testing.T) {
	// Overlapping monthly exports repeat the same logical statements.
	eng := newPUMBEngine(nil, kyiv)
	rows := []row{
		{date: "2024-01-05\n13:15:00", amount: "125.50 UAH", description: "from january export", kind: "Списання"},
		{date: "2024-01-06\n10:00:00", amount: "80.00 UAH", description: "only once", kind: "Списання"},
		{date: "2024-01-05\n13:15:00", amount: "125.50 UAH", description: "from february export", kind: "Списання"},
	}

	got, err := eng.postProcess(rows)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "only once", got[0].description)
	assert.Equal(t, "from february export", got[1].description)
}
