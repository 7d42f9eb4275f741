package storage

import (
	"encoding/json"
	"io"
	"os"
)

type ExportData struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Dt      float64      `json:"dt"`
	Steps   int          `json:"steps"`
	Times   []float64    `json:"times"`
	Series  SeriesValues `json:"series"`
	Metrics Values       `json:"metrics"`
}

// ExportJSON writes a stored run, metadata and series, as one JSON document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	times, series, err := s.LoadSeries(runID)
	if err != nil {
		return err
	}

	data := ExportData{
		ID:      meta.ID,
		Name:    meta.Name,
		Dt:      meta.Dt,
		Steps:   len(times),
		Times:   times,
		Series:  series,
		Metrics: meta.Metrics,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportCSV copies the series file of a run to w.
func (s *Store) ExportCSV(w io.Writer, runID string) error {
	if _, err := s.Load(runID); err != nil {
		return err
	}
	f, err := os.Open(s.SeriesPath(runID))
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}
