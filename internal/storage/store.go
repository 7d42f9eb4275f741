package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	seriesFile   = "series.csv"
	snapshotFile = "snapshot.json"
)

var ErrRunNotFound = errors.New("run not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Timestamp  time.Time      `json:"timestamp"`
	Seed       int64          `json:"seed"`
	Dt         float64        `json:"dt"`
	Ticks      int            `json:"ticks"`
	StepsTaken int            `json:"steps_taken"`
	Width      int            `json:"width"`
	Height     int            `json:"height"`
	Config     *config.Config `json:"config,omitempty"`
	Metrics    Values         `json:"metrics"`
	Errors     []string       `json:"errors,omitempty"`
}

// Values is a metric map whose NaN and Inf entries are stored as null and
// read back as NaN.
type Values map[string]float64

func (v Values) MarshalJSON() ([]byte, error) {
	out := make(map[string]*float64, len(v))
	for name, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			out[name] = nil
			continue
		}
		x := x
		out[name] = &x
	}
	return json.Marshal(out)
}

func (v *Values) UnmarshalJSON(data []byte) error {
	var in map[string]*float64
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*v = make(Values, len(in))
	for name, x := range in {
		if x == nil {
			(*v)[name] = math.NaN()
			continue
		}
		(*v)[name] = *x
	}
	return nil
}

// SeriesValues is a set of metric columns with the same null encoding as
// Values.
type SeriesValues map[string][]float64

func (sv SeriesValues) MarshalJSON() ([]byte, error) {
	out := make(map[string][]*float64, len(sv))
	for name, col := range sv {
		enc := make([]*float64, len(col))
		for i, x := range col {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				continue
			}
			x := x
			enc[i] = &x
		}
		out[name] = enc
	}
	return json.Marshal(out)
}

func (sv *SeriesValues) UnmarshalJSON(data []byte) error {
	var in map[string][]*float64
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*sv = make(SeriesValues, len(in))
	for name, col := range in {
		dec := make([]float64, len(col))
		for i, x := range col {
			if x == nil {
				dec[i] = math.NaN()
				continue
			}
			dec[i] = *x
		}
		(*sv)[name] = dec
	}
	return nil
}

// Save writes a run directory holding metadata, the per-tick metric series
// and the final cloth snapshot. The directory is assembled under a hidden
// temporary name and only appears under its run ID once every file is
// written.
func (s *Store) Save(name string, cfg *config.Config, result *sim.Result) (string, error) {
	if !result.Final.IsFinite() {
		return "", fmt.Errorf("save %s: final snapshot: %w", name, cloth.ErrUnstable)
	}
	if err := s.Init(); err != nil {
		return "", err
	}

	now := time.Now()
	runID := fmt.Sprintf("%s_%d", name, now.Unix())
	runDir := filepath.Join(s.baseDir, runID)
	for n := 1; exists(runDir); n++ {
		runID = fmt.Sprintf("%s_%d_%d", name, now.Unix(), n)
		runDir = filepath.Join(s.baseDir, runID)
	}

	tmpDir, err := os.MkdirTemp(s.baseDir, ".tmp-"+runID+"-")
	if err != nil {
		return "", err
	}
	if err := writeRun(tmpDir, runID, name, now, cfg, result); err != nil {
		os.RemoveAll(tmpDir)
		return "", err
	}
	if err := os.Rename(tmpDir, runDir); err != nil {
		os.RemoveAll(tmpDir)
		return "", err
	}
	return runID, nil
}

func writeRun(dir, runID, name string, now time.Time, cfg *config.Config, result *sim.Result) error {
	meta := RunMetadata{
		ID:         runID,
		Name:       name,
		Timestamp:  now,
		Seed:       cfg.Run.Seed,
		Dt:         cfg.Run.Dt,
		Ticks:      cfg.Run.Ticks,
		StepsTaken: result.StepsTaken,
		Width:      result.Final.Width,
		Height:     result.Final.Height,
		Config:     cfg,
		Metrics:    result.Metrics,
	}
	for _, err := range result.Errors {
		meta.Errors = append(meta.Errors, err.Error())
	}

	if err := writeJSON(filepath.Join(dir, metadataFile), meta); err != nil {
		return err
	}
	if err := writeSeries(filepath.Join(dir, seriesFile), result); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, snapshotFile), result.Final)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// SeriesNames returns metric names in column order.
func SeriesNames(series map[string][]float64) []string {
	names := make([]string, 0, len(series))
	for name := range series {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func writeSeries(path string, result *sim.Result) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	w := csv.NewWriter(f)
	names := SeriesNames(result.Series)
	if err := w.Write(append([]string{"time"}, names...)); err != nil {
		return err
	}

	for i, t := range result.Times {
		row := []string{strconv.FormatFloat(t, 'f', 6, 64)}
		for _, name := range names {
			val := 0.0
			if i < len(result.Series[name]) {
				val = result.Series[name][i]
			}
			row = append(row, strconv.FormatFloat(val, 'g', 10, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", runID, ErrRunNotFound)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// SeriesPath is the CSV file of a run.
func (s *Store) SeriesPath(runID string) string {
	return filepath.Join(s.baseDir, runID, seriesFile)
}

// LoadSeries reads back the per-tick metric columns of a run.
func (s *Store) LoadSeries(runID string) ([]float64, map[string][]float64, error) {
	file, err := os.Open(s.SeriesPath(runID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%s: %w", runID, ErrRunNotFound)
		}
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	series := make(map[string][]float64)
	if len(records) == 0 {
		return []float64{}, series, nil
	}

	header := records[0]
	for _, name := range header[1:] {
		series[name] = make([]float64, 0, len(records)-1)
	}
	times := make([]float64, 0, len(records)-1)

	for _, record := range records[1:] {
		if len(record) != len(header) {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		times = append(times, t)
		for j := 1; j < len(record); j++ {
			val, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				val = 0
			}
			series[header[j]] = append(series[header[j]], val)
		}
	}

	return times, series, nil
}

func (s *Store) LoadSnapshot(runID string) (cloth.Snapshot, error) {
	snap, err := LoadSnapshot(filepath.Join(s.baseDir, runID, snapshotFile))
	if errors.Is(err, os.ErrNotExist) {
		return snap, fmt.Errorf("%s: %w", runID, ErrRunNotFound)
	}
	return snap, err
}

// SaveSnapshot writes a cloth snapshot as JSON. A snapshot holding NaN or
// Inf is rejected with cloth.ErrUnstable.
func SaveSnapshot(path string, snap cloth.Snapshot) error {
	if !snap.IsFinite() {
		return fmt.Errorf("save snapshot: %w", cloth.ErrUnstable)
	}
	return writeJSON(path, snap)
}

func LoadSnapshot(path string) (cloth.Snapshot, error) {
	var snap cloth.Snapshot
	data, err := os.ReadFile(path)
	if err != nil {
		return snap, err
	}
	err = json.Unmarshal(data, &snap)
	return snap, err
}
