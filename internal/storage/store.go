package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/particlesim/internal/particle"
	"github.com/san-kum/particlesim/internal/scenario"
	"github.com/san-kum/particlesim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	finalFile    = "final.txt"
	eventsFile   = "events.csv"
)

// Store keeps one directory per completed run holding its metadata, the
// end-of-run report and the log of applied events.
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
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Source    string             `json:"source,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
	Width     int                `json:"width"`
	Duration  float64            `json:"duration"`
	Particles int                `json:"particles"`
	Elapsed   time.Duration      `json:"elapsed_ns"`
	Stats     sim.Stats          `json:"stats"`
	Metrics   map[string]float64 `json:"metrics"`
}

func (s *Store) Save(meta RunMetadata, final []particle.State, events []EventRecord) (string, error) {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	runID := fmt.Sprintf("%s_%d", meta.Name, meta.Timestamp.UnixNano())
	meta.ID = runID
	meta.Particles = len(final)
	meta.Metrics = finite(meta.Metrics)

	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	finalOut, err := os.Create(filepath.Join(runDir, finalFile))
	if err != nil {
		return "", err
	}
	defer finalOut.Close()
	if err := scenario.Write(finalOut, meta.Width, meta.Duration, final); err != nil {
		return "", err
	}

	if err := writeEvents(filepath.Join(runDir, eventsFile), events); err != nil {
		return "", err
	}

	return runID, nil
}

// finite drops undefined metrics such as a mean free time with no repeat
// collisions; JSON has no NaN.
func finite(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[k] = v
		}
	}
	return out
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeEvents(path string, events []EventRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(eventHeader); err != nil {
		return err
	}
	for _, ev := range events {
		if err := w.Write(ev.row()); err != nil {
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
		if !entry.IsDir() {
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
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadFinal reads the end-of-run report back as a scenario, so a finished run
// can seed a new one.
func (s *Store) LoadFinal(runID string) (*scenario.Scenario, error) {
	return scenario.Load(filepath.Join(s.baseDir, runID, finalFile))
}

func (s *Store) LoadEvents(runID string) ([]EventRecord, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, eventsFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(eventHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []EventRecord{}, nil
	}

	events := make([]EventRecord, 0, len(records)-1)
	for i, rec := range records[1:] {
		ev, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("storage: %s line %d: %w", eventsFile, i+2, err)
		}
		events = append(events, ev)
	}
	return events, nil
}

type exportData struct {
	Metadata *RunMetadata     `json:"metadata"`
	Final    []particle.State `json:"final"`
	Events   []EventRecord    `json:"events"`
}

// ExportJSON writes a run's metadata, final state and event log as one JSON
// document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	final, err := s.LoadFinal(runID)
	if err != nil {
		return err
	}
	events, err := s.LoadEvents(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(exportData{Metadata: meta, Final: final.Particles, Events: events})
}

func ftoa(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
