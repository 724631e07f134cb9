package services

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/custodia-labs/gamefit/internal/core/domain"
)

// SanitizeText normalises a quote to NFKC, collapses whitespace runs into a
// single space and trims both ends.
func SanitizeText(s string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(s)), " ")
}

// BuildCorpus flattens a quote table into documents, one per non-empty quote.
// Order is row-major then column-major, matching the table. The result is
// deterministic and never contains an empty text.
func BuildCorpus(quotes *domain.QuoteTable) []domain.Document {
	if quotes == nil {
		return nil
	}

	docs := make([]domain.Document, 0, len(quotes.Rows))
	for _, row := range quotes.Rows {
		name := row.GameName
		if name == "" {
			name = "Game " + row.GameID
		}

		for _, q := range row.Quotes {
			text := SanitizeText(q.Text)
			if text == "" {
				continue
			}
			docs = append(docs, domain.Document{
				GameID:        row.GameID,
				GameName:      name,
				DimensionCode: q.DimensionCode,
				Text:          fmt.Sprintf("[%s] %s", q.DimensionCode, text),
				RawText:       text,
			})
		}
	}
	return docs
}

// partition splits n items into consecutive [start, end) ranges of at most size.
func partition(n, size int) [][2]int {
	if size <= 0 {
		size = n
	}
	var ranges [][2]int
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		ranges = append(ranges, [2]int{start, end})
	}
	return ranges
}
