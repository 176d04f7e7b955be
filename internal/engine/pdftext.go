package engine

import (
	"fmt"
	"os/exec"
	"regexp"
	"strings"
)

// PDFTextExtractor extracts tabular rows from a PDF by shelling out to
// pdftotext with layout preservation and splitting columns on runs of
// whitespace. It is best-effort glue around an external tool; engines are
// tested against extracted rows directly.
//
// Gap splitting cannot represent an empty interior cell: a row whose debit
// column is blank comes back one cell short, not with an empty cell at the
// column's index. Layouts that depend on empty cells at fixed positions
// (the positional Millennium table, PUMB page-break continuation rows)
// need an extractor that cuts lines at known column offsets instead.
type PDFTextExtractor struct{}

var columnGapRe = regexp.MustCompile(`\s{2,}`)

// ExtractTable runs pdftotext -layout and splits each non-blank line into
// cells on gaps of two or more spaces.
func (PDFTextExtractor) ExtractTable(path string) ([][]string, error) {
	out, err := exec.Command("pdftotext", "-layout", path, "-").Output()
	if err != nil {
		return nil, fmt.Errorf("running pdftotext on %s: %w", path, err)
	}

	var table [][]string
	for _, line := range strings.Split(string(out), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		cells := columnGapRe.Split(strings.TrimSpace(line), -1)
		table = append(table, cells)
	}
	return table, nil
}
