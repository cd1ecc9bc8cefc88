package export

import (
	"encoding/json"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	personas "github.com/lifesnaps/persona-extract"
)

// CandidateRow is one scored window in the candidate pool artifact.
// Component breakdowns are carried as a JSON object string.
type CandidateRow struct {
	Persona    string  `parquet:"name=persona, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	ID         string  `parquet:"name=id, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	StartDate  string  `parquet:"name=start_date, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	EndDate    string  `parquet:"name=end_date, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Score      float64 `parquet:"name=score, type=DOUBLE"`
	Components string  `parquet:"name=components, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// CandidateRows flattens scored candidates into table rows.
func CandidateRows(cands []personas.ScoredCandidate) []CandidateRow {
	rows := make([]CandidateRow, 0, len(cands))
	for _, c := range cands {
		components := ""
		if data, err := json.Marshal(c.Components); err == nil {
			components = string(data)
		}
		rows = append(rows, CandidateRow{
			Persona:    c.Persona,
			ID:         c.Window.ParticipantID,
			StartDate:  c.Window.Start.Format("2006-01-02"),
			EndDate:    c.Window.End.Format("2006-01-02"),
			Score:      c.Score,
			Components: components,
		})
	}
	return rows
}

// WriteCandidatesParquet writes the candidate pool as a SNAPPY-compressed
// parquet table.
func WriteCandidatesParquet(path string, rows []CandidateRow) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	pw, err := writer.NewParquetWriter(fw, new(CandidateRow), 4)
	if err != nil {
		_ = fw.Close()
		return err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, row := range rows {
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			_ = fw.Close()
			return err
		}
	}
	if err := pw.WriteStop(); err != nil {
		_ = fw.Close()
		return err
	}
	return fw.Close()
}
