package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"aShareScanner/internal/domain"
)

const barDateLayout = "2006-01-02"

var barHeader = []string{"date", "symbol", "open", "high", "low", "close", "volume"}

// WriteBarsToCSV writes daily bars to filename, creating parent directories.
func WriteBarsToCSV(bars []*domain.PriceBar, filename string) error {
	if dir := filepath.Dir(filename); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory '%s': %w", dir, err)
		}
	}
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	writer.Write(barHeader)

	for _, b := range bars {
		writer.Write([]string{
			b.Date.Format(barDateLayout),
			b.Symbol,
			strconv.FormatFloat(b.Open, 'f', -1, 64),
			strconv.FormatFloat(b.High, 'f', -1, 64),
			strconv.FormatFloat(b.Low, 'f', -1, 64),
			strconv.FormatFloat(b.Close, 'f', -1, 64),
			strconv.FormatFloat(b.Volume, 'f', -1, 64),
		})
	}
	writer.Flush()
	return writer.Error()
}

// ReadBarsFromCSV reads bars written by WriteBarsToCSV. Rows must be in ascending date order.
func ReadBarsFromCSV(filename string) ([]*domain.PriceBar, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", filename, err)
	}
	if strings.Join(header, ",") != strings.Join(barHeader, ",") {
		return nil, fmt.Errorf("unexpected header in %s: %v", filename, header)
	}

	var bars []*domain.PriceBar
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", filename, line, err)
		}
		bar, err := parseBar(rec)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", filename, line, err)
		}
		if n := len(bars); n > 0 && !bar.Date.After(bars[n-1].Date) {
			return nil, fmt.Errorf("%s line %d: date %s is not after %s", filename, line,
				bar.Date.Format(barDateLayout), bars[n-1].Date.Format(barDateLayout))
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func parseBar(rec []string) (*domain.PriceBar, error) {
	date, err := time.Parse(barDateLayout, rec[0])
	if err != nil {
		return nil, fmt.Errorf("parsing date '%s': %w", rec[0], err)
	}
	vals := make([]float64, 5)
	for i := range vals {
		vals[i], err = strconv.ParseFloat(rec[i+2], 64)
		if err != nil {
			return nil, fmt.Errorf("parsing %s '%s': %w", barHeader[i+2], rec[i+2], err)
		}
	}
	return &domain.PriceBar{
		Date:   date,
		Symbol: rec[1],
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, nil
}

// ReportRow is one line of the scan export.
type ReportRow struct {
	Symbol         string
	Name           string
	CompositeScore *float64 // nil when the analysis was inconclusive
	RiskTier       domain.RiskTier
	Action         domain.Action
	StopLoss       float64
}

var reportHeader = []string{"symbol", "name", "composite_score", "risk_tier", "action", "stop_loss"}

// WriteReport writes rows as CSV with two-decimal prices and scores.
func WriteReport(w io.Writer, rows []ReportRow) error {
	writer := csv.NewWriter(w)
	writer.Write(reportHeader)
	for _, r := range rows {
		score := ""
		if r.CompositeScore != nil {
			score = FormatPrice(*r.CompositeScore)
		}
		writer.Write([]string{
			r.Symbol,
			r.Name,
			score,
			string(r.RiskTier),
			string(r.Action),
			FormatPrice(r.StopLoss),
		})
	}
	writer.Flush()
	return writer.Error()
}

// WriteReportFile writes rows to filename, creating parent directories.
func WriteReportFile(rows []ReportRow, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("failed to create directory for '%s': %w", filename, err)
	}
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteReport(file, rows)
}

// FormatPrice rounds half away from zero to two decimals.
func FormatPrice(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
