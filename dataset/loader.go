package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Column names expected in the daily table header.
const (
	ColID        = "id"
	ColDate      = "date"
	ColSteps     = "steps"
	ColSleep     = "minutesAsleep"
	ColRestingHR = "resting_hr"
)

// Load reads a daily health-metrics CSV from disk.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open daily table: %w", err)
	}
	defer f.Close()
	return ReadTable(f)
}

// ReadTable parses participant-day rows into per-participant series sorted
// ascending by date. Negative or unparseable metric values become missing;
// a missing required column or unparseable date aborts with
// *MalformedInputError. Duplicate participant-day rows keep the first
// occurrence.
func ReadTable(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &MalformedInputError{Reason: "empty table: no header row"}
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{ColID, ColDate, ColSteps, ColSleep} {
		if _, ok := cols[required]; !ok {
			return nil, &MalformedInputError{Reason: fmt.Sprintf("required column %q not found", required)}
		}
	}
	hrCol, hasHR := cols[ColRestingHR]

	byID := make(map[string][]DailyRecord)
	rows := 0
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		line++

		id := strings.TrimSpace(row[cols[ColID]])
		if id == "" {
			return nil, &MalformedInputError{Reason: "empty participant id", Line: line}
		}
		date, err := time.Parse(dateLayout, strings.TrimSpace(row[cols[ColDate]]))
		if err != nil {
			return nil, &MalformedInputError{Reason: fmt.Sprintf("unparseable date %q", row[cols[ColDate]]), Line: line}
		}

		rec := DailyRecord{
			ParticipantID: id,
			Date:          date.UTC(),
			Steps:         parseCount(row[cols[ColSteps]]),
			SleepMinutes:  parseCount(row[cols[ColSleep]]),
		}
		if hasHR {
			rec.RestingHR = parseOptionalFloat(row[hrCol])
		}
		rec.Weekday = rec.Date.Weekday().String()
		rec.IsWeekend = isWeekend(rec.Date)

		byID[id] = append(byID[id], rec)
		rows++
	}

	table := &Table{Rows: rows, HasRestingHR: hasHR}
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		recs := byID[id]
		sort.SliceStable(recs, func(i, j int) bool {
			return recs[i].Date.Before(recs[j].Date)
		})
		table.Series = append(table.Series, ParticipantSeries{ID: id, Records: dedupeByDate(recs)})
	}
	return table, nil
}

// parseCount interprets a non-negative integer metric cell. Blank,
// unparseable, and negative values are missing, not errors.
func parseCount(cell string) *int {
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil || math.IsNaN(v) || v < 0 {
		return nil
	}
	n := int(math.Round(v))
	return &n
}

func parseOptionalFloat(cell string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil || math.IsNaN(v) || v < 0 {
		return nil
	}
	return &v
}

func dedupeByDate(recs []DailyRecord) []DailyRecord {
	out := make([]DailyRecord, 0, len(recs))
	for _, rec := range recs {
		if n := len(out); n > 0 && rec.Date.Equal(out[n-1].Date) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func isWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
