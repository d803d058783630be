package storage

import (
	"encoding/json"
	"io"
	"os"
)

type ExportData struct {
	ID      string             `json:"id"`
	Model   string             `json:"model"`
	Seed    int64              `json:"seed"`
	Steps   int                `json:"steps"`
	Names   []string           `json:"names"`
	Ticks   []int              `json:"ticks"`
	Traces  [][]float64        `json:"traces"`
	Params  map[string]float64 `json:"params"`
	Metrics map[string]float64 `json:"metrics"`
}

// ExportJSON writes a stored run (metadata plus traces) as one JSON
// document.
func ExportJSON(w io.Writer, meta *RunMetadata, names []string, ticks []int, traces [][]float64) error {
	data := ExportData{
		ID:      meta.ID,
		Model:   meta.Model,
		Seed:    meta.Seed,
		Steps:   meta.Steps,
		Names:   names,
		Ticks:   ticks,
		Traces:  traces,
		Params:  meta.Params,
		Metrics: meta.Metrics,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportJSONStdout is ExportJSON to standard output.
func ExportJSONStdout(meta *RunMetadata, names []string, ticks []int, traces [][]float64) error {
	return ExportJSON(os.Stdout, meta, names, ticks, traces)
}
