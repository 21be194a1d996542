package services

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"handwriting-dataset-api/store"
)

// ExportRecord is one row of the published dataset. Only fields needed for
// model training are included.
type ExportRecord struct {
	ID            string `json:"id"`
	Text          string `json:"text"`
	ContributorID int    `json:"contributor_id"`
	CreatedAt     string `json:"created_at"`
}

// ExportService serializes every approved sample into a downloadable dataset
// artifact. Pending and rejected samples never appear in the output.
type ExportService struct {
	store store.SampleStore
}

// NewExportService wires the export over a sample store.
func NewExportService(st store.SampleStore) *ExportService {
	return &ExportService{store: st}
}

// Records collects the approved samples in a stable order so repeated runs
// over unchanged data produce identical output.
func (s *ExportService) Records() ([]ExportRecord, error) {
	samples, err := s.store.ListApproved()
	if err != nil {
		return nil, err
	}
	records := make([]ExportRecord, 0, len(samples))
	for _, sample := range samples {
		records = append(records, ExportRecord{
			ID:            sample.SampleID,
			Text:          sample.CorrectedText,
			ContributorID: sample.ContributorID,
			CreatedAt:     sample.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return records, nil
}

// JSON renders the dataset as an indented list of records.
func (s *ExportService) JSON() ([]byte, error) {
	records, err := s.Records()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(records, "", "  ")
}

// CSV renders the dataset as delimited text with a header row. encoding/csv
// quotes the text column when it contains delimiters or newlines.
func (s *ExportService) CSV() ([]byte, error) {
	records, err := s.Records()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"id", "text", "contributor_id", "created_at"}); err != nil {
		return nil, err
	}
	for _, r := range records {
		if err := w.Write([]string{r.ID, r.Text, strconv.Itoa(r.ContributorID), r.CreatedAt}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportFilename builds the download name for a dataset artifact.
// Format: pashto-ocr-dataset-YYYY-MM-DD.<ext>
func ExportFilename(ext string, now time.Time) string {
	return fmt.Sprintf("pashto-ocr-dataset-%s.%s", now.Format("2006-01-02"), ext)
}
