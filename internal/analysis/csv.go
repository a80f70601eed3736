package analysis

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/OrtalNisim/PX-OMS/internal/models"
)

// Row is one line of an analytics CSV export. Blank numeric cells parse
// as zero.
type Row struct {
	DemandID       string  // Demand ID
	DemandName     string  // Demand Name
	Hour           int     // Hour bucket of the aggregation
	Cost           float64 // Cost
	Revenue        float64 // Revenue
	Profit         float64 // Profit $ as exported; derived KPIs recompute it from Cost and Revenue
	MarginPct      float64 // Margin %
	BidRatePct     float64 // Demand Bid Rate %
	Responses      float64 // Supply Responses
	Impressions    float64 // Supply Impressions
	WinRatePct     float64 // Demand Win Rate %
	SRPM           float64 // sRPM $ as exported; recomputed like Profit
	SupplyBidfloor float64 // Supply Bidfloor
	OurBidfloor    float64 // Our Bidfloor
	DemandECPM     float64 // Demand eCPM
}

// LoadRows reads an analytics CSV export from disk.
func LoadRows(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv export: %w", err)
	}
	defer f.Close()
	return ReadRows(f)
}

// ReadRows parses analytics rows from r. The header row names the
// columns; known columns may appear in any order and unknown ones are
// ignored.
func ReadRows(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // exports pad or truncate trailing cells

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	var rows []Row
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv record: %w", err)
		}
		line++
		row, err := parseRow(index, rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, errors.New("csv contains no data rows")
	}
	return rows, nil
}

func parseRow(index map[string]int, rec []string) (Row, error) {
	row := Row{
		DemandID:   cell(index, rec, "Demand ID"),
		DemandName: cell(index, rec, "Demand Name"),
	}

	hour, err := intCell(index, rec, "Hour")
	if err != nil {
		return Row{}, err
	}
	row.Hour = hour

	for _, col := range []struct {
		name string
		dst  *float64
	}{
		{"Cost", &row.Cost},
		{"Revenue", &row.Revenue},
		{"Profit $", &row.Profit},
		{"Margin %", &row.MarginPct},
		{"Demand Bid Rate %", &row.BidRatePct},
		{"Supply Responses", &row.Responses},
		{"Supply Impressions", &row.Impressions},
		{"Demand Win Rate %", &row.WinRatePct},
		{"sRPM $", &row.SRPM},
		{"Supply Bidfloor", &row.SupplyBidfloor},
		{"Our Bidfloor", &row.OurBidfloor},
		{"Demand eCPM", &row.DemandECPM},
	} {
		v, err := floatCell(index, rec, col.name)
		if err != nil {
			return Row{}, err
		}
		*col.dst = v
	}
	return row, nil
}

func cell(index map[string]int, rec []string, name string) string {
	i, ok := index[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func floatCell(index map[string]int, rec []string, name string) (float64, error) {
	s := cell(index, rec, name)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("column %q: invalid number %q", name, s)
	}
	return v, nil
}

func intCell(index map[string]int, rec []string, name string) (int, error) {
	s := cell(index, rec, name)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("column %q: invalid integer %q", name, s)
	}
	return v, nil
}

// LatestHour narrows rows to the most recent hour that delivered
// impressions. Zero-impression rows within that hour are kept.
func LatestHour(rows []Row) ([]Row, int, error) {
	last, found := 0, false
	for _, r := range rows {
		if r.Impressions > 0 && (!found || r.Hour > last) {
			last = r.Hour
			found = true
		}
	}
	if !found {
		return nil, 0, errors.New("no rows with impressions")
	}
	var out []Row
	for _, r := range rows {
		if r.Hour == last {
			out = append(out, r)
		}
	}
	return out, last, nil
}

// ArmWindow builds the performance window for the first row whose demand
// name contains armContains, case insensitive.
func ArmWindow(rows []Row, armContains string) (*models.PerformanceWindow, error) {
	needle := strings.ToLower(armContains)
	for _, r := range rows {
		if strings.Contains(strings.ToLower(r.DemandName), needle) {
			return &models.PerformanceWindow{
				Margin:      r.MarginPct,
				Impressions: r.Impressions,
				Revenue:     r.Revenue,
				Cost:        r.Cost,
				BidRate:     r.BidRatePct,
				Responses:   r.Responses,
			}, nil
		}
	}
	return nil, fmt.Errorf("no row matching %q", armContains)
}
