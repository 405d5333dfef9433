package tiingo

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// tickerRow is one line of supported_tickers.csv.
type tickerRow struct {
	Ticker    string
	Exchange  string
	AssetType string
	Currency  string
	StartDate string
	EndDate   string
}

// usable reports whether the row is a USD listing on a wanted exchange (indices always pass)
// whose end date is empty or not older than cutoff.
func (r tickerRow) usable(exchanges map[string]struct{}, cutoff time.Time) bool {
	if r.Ticker == "" {
		return false
	}
	isIndex := strings.EqualFold(r.AssetType, "index")
	if _, ok := exchanges[strings.ToUpper(r.Exchange)]; !ok && !isIndex {
		return false
	}
	if !isIndex && r.Currency != "" && !strings.EqualFold(r.Currency, "USD") {
		return false
	}
	if r.EndDate == "" {
		return true
	}
	end, err := parseDate(r.EndDate)
	if err != nil {
		return false
	}
	return !end.Before(cutoff)
}

var requiredColumns = []string{"ticker", "exchange", "assetType", "priceCurrency", "startDate", "endDate"}

// parseSupportedTickers reads the first CSV file inside the zip archive.
func parseSupportedTickers(body []byte) ([]tickerRow, error) {
	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	var csvFile *zip.File
	for _, f := range zr.File {
		if strings.HasSuffix(strings.ToLower(f.Name), ".csv") {
			csvFile = f
			break
		}
	}
	if csvFile == nil {
		return nil, errors.New("no csv file in archive")
	}
	rc, err := csvFile.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", csvFile.Name, err)
	}
	defer rc.Close()

	r := csv.NewReader(rc)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	var rows []tickerRow
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		field := func(col string) string {
			i := idx[col]
			if i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		rows = append(rows, tickerRow{
			Ticker:    strings.ToUpper(field("ticker")),
			Exchange:  field("exchange"),
			AssetType: field("assetType"),
			Currency:  field("priceCurrency"),
			StartDate: field("startDate"),
			EndDate:   field("endDate"),
		})
	}
	return rows, nil
}
