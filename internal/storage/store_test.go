package storage

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/san-kum/opinionlab/internal/opinion"
)

func sampleResult() *opinion.Result {
	return &opinion.Result{
		Names:      []string{"follower_accuracy", "overall_accuracy"},
		Ticks:      []int{0, 1, 2},
		Traces:     [][]float64{{0.5, 0.5}, {0.52, 0.51}, {0.55, 0.53}},
		StepsTaken: 3,
		Metrics:    map[string]float64{"mean_follower_accuracy": 0.523},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	params := map[string]float64{"agents": 300, "informed": 0.3}
	runID, err := st.Save("social", 42, params, sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if meta.Model != "social" || meta.Seed != 42 || meta.Steps != 3 {
		t.Errorf("unexpected metadata: %+v", meta)
	}
	if meta.Params["agents"] != 300 {
		t.Errorf("expected agents param 300, got %f", meta.Params["agents"])
	}
	if meta.Metrics["mean_follower_accuracy"] != 0.523 {
		t.Errorf("metrics lost in round trip: %+v", meta.Metrics)
	}
}

func TestLoadTraces(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save("social", 1, nil, sampleResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	names, ticks, traces, err := st.LoadTraces(runID)
	if err != nil {
		t.Fatalf("load traces failed: %v", err)
	}

	if len(names) != 2 || names[0] != "follower_accuracy" {
		t.Errorf("unexpected names: %v", names)
	}
	if len(ticks) != 3 || ticks[2] != 2 {
		t.Errorf("unexpected ticks: %v", ticks)
	}
	if len(traces) != 3 || traces[2][0] != 0.55 {
		t.Errorf("unexpected traces: %v", traces)
	}
}

func TestList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected empty store, got %d runs", len(runs))
	}

	if _, err := st.Save("rfim", 2, nil, sampleResult()); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 || runs[0].Model != "rfim" {
		t.Errorf("unexpected runs: %+v", runs)
	}
}

func TestListMissingDir(t *testing.T) {
	st := New("does-not-exist")

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list on missing dir should not fail: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestExportJSON(t *testing.T) {
	meta := &RunMetadata{ID: "social_1", Model: "social", Seed: 5, Steps: 3}

	var buf bytes.Buffer
	err := ExportJSON(&buf, meta,
		[]string{"follower_accuracy"}, []int{0, 1}, [][]float64{{0.5}, {0.6}})
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var out ExportData
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("export is not valid json: %v", err)
	}

	if out.ID != "social_1" || len(out.Traces) != 2 {
		t.Errorf("unexpected export: %+v", out)
	}
}
