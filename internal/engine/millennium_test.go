package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var lisbon = func() *time.Location {
	loc, err := time.LoadLocation("Europe/Lisbon")
	if err != nil {
		panic(err)
	}
	return loc
}()

// stubRates serves one fixed rate for every day.
type stubRates struct {
	rate   float64
	loaded bool
}

func (s *stubRates) Load(from, to time.Time) error {
	s.loaded = true
	return nil
}

func (s *stubRates) Rate(day time.Time) (float64, bool) { return s.rate, true }

func millTable() [][]string {
	pad := func(desc, debit, credit string) []string {
		return []string{"01.15", "01.15", desc, debit, credit, "1 000.00"}
	}
	return [][]string{
		{"", "", "EXTRATO", "", "", ""},
		pad("SALDO INICIAL", "", ""),
		pad("COMPRA CONTINENTE", "45.00", ""),
		pad("A TRANSPORTAR", "", ""),
		pad("garbage between pages", "", ""),
		pad("TRANSPORTE", "", ""),
		pad("TRF RECEBIDA", "", "1 200.00"),
		pad("SALDO FINAL", "", ""),
		pad("after the data window", "9.99", ""),
	}
}

func TestMillennium_ParseDocument_WindowAndPageBreaks(t *testing.T) {
	extract := &fakeExtractor{tables: map[string][][]string{"Extrato Combinado 2024001.pdf": millTable()}}
	eng := newMillenniumEngine(extract, lisbon, &stubRates{rate: 42})

	rows, err := eng.parseDocument("Extrato Combinado 2024001.pdf")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "COMPRA CONTINENTE", rows[0].description)
	assert.Equal(t, "TRF RECEBIDA", rows[1].description)
	// The year comes from the file name.
	assert.Equal(t, "01.15.2024", rows[0].date)
}

func TestMillennium_RejectsUnexpectedFileName(t *testing.T) {
	eng := newMillenniumEngine(&fakeExtractor{}, lisbon, &stubRates{rate: 42})
	_, err := eng.parseDocument("random.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected report file name")
}

func TestMillennium_PostProcessLoadsRates(t *testing.T) {
	rates := &stubRates{rate: 42}
	eng := newMillenniumEngine(nil, lisbon, rates)

	_, err := eng.postProcess([]row{{date: "01.15.2024", debit: "45.00"}})
	require.NoError(t, err)
	assert.True(t, rates.loaded)
}

func TestMillennium_ParseRow_ConvertsCurrency(t *testing.T) {
	eng := newMillenniumEngine(nil, lisbon, &stubRates{rate: 42.5})

	debit, err := eng.parseRow(row{date: "01.15.2024", description: "COMPRA", debit: "45.00"})
	require.NoError(t, err)
	// -45.00 EUR * 42.5 = -1912.50 UAH = -191250 kopiykas.
	assert.Equal(t, int64(-191250), debit.amount)
	assert.Equal(t, "€45.00", debit.comment)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, lisbon), debit.time)

	credit, err := eng.parseRow(row{date: "01.15.2024", description: "TRF", credit: "1200.00"})
	require.NoError(t, err)
	assert.Equal(t, int64(5100000), credit.amount)
	assert.Equal(t, "€1200.00", credit.comment)
}
