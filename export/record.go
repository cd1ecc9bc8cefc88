// Package export serializes selected windows and run artifacts. The persona
// record written here is the sole contract with the downstream
// statistics/insights stage.
package export

import (
	"math"

	"github.com/lifesnaps/persona-extract/window"
)

// FormatVersion identifies the on-disk schema for persona records.
const FormatVersion = "persona_window_v1"

// DayEntry is one dated observation in a persona record. Steps and
// sleep_hours are null on days where the metric is missing.
type DayEntry struct {
	Date       string   `json:"date"`
	Steps      *int     `json:"steps"`
	SleepHours *float64 `json:"sleep_hours"`
	RestingHR  *float64 `json:"resting_hr,omitempty"`
}

// PersonaRecord is the externally visible shape of a selected window.
type PersonaRecord struct {
	Persona   string     `json:"persona"`
	ID        string     `json:"id"`
	StartDate string     `json:"start_date"`
	Days      []DayEntry `json:"days"`
}

// BuildRecord converts a window into its persona record: weekday-prefixed
// date strings and sleep minutes converted to hours rounded to 2 decimals.
func BuildRecord(persona string, w window.Window) PersonaRecord {
	rec := PersonaRecord{
		Persona:   persona,
		ID:        w.ParticipantID,
		StartDate: w.Start.Format("2006-01-02"),
		Days:      make([]DayEntry, 0, len(w.Days)),
	}
	for _, day := range w.Days {
		entry := DayEntry{
			Date:      day.Date.Format("Monday, 2006-01-02"),
			Steps:     day.Steps,
			RestingHR: day.RestingHR,
		}
		if day.SleepMinutes != nil {
			h := roundTo(float64(*day.SleepMinutes)/60.0, 2)
			entry.SleepHours = &h
		}
		rec.Days = append(rec.Days, entry)
	}
	return rec
}

func roundTo(v float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(v*pow) / pow
}
