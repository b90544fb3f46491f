package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type ScenarioConfig struct {
	ID         int
	Name       string
	Experiment string
	Mode       string
	Seed       uint64
	Level      float64
	Target     float64
	Trials     int64 // Fixed mode
	TrialCap   int64 // Adaptive mode
}

type RunRecord struct {
	ID         int
	Scenario   int // ScenarioConfig.ID
	Repetition int
	Seed       uint64
	Target     float64
	Mean       float64
	HalfWidth  float64
	Reason     string
	// Extrapolation of a fixed run towards Target, zero otherwise
	ProjectedTrials int64
	ProjectedTime   time.Duration
	RunMetric
}

type BatchRecord struct {
	Run int // RunRecord.ID
	BatchMetric
}

type Writer struct {
	baseDir string
}

func NewWriter(root, name string) (*Writer, error) {
	// Create a subfolder named by current timestamp
	timestamp := time.Now().UTC().Format("20060102T150405Z")
	baseDir := filepath.Join(root, name, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) WriteScenarioConfigs(configs []ScenarioConfig) error {
	header := []string{"id", "name", "experiment", "mode", "seed", "level", "target", "trials", "trial_cap"}
	rows := make([][]string, 0, len(configs))
	for _, config := range configs {
		rows = append(rows, []string{
			strconv.Itoa(config.ID),
			config.Name,
			config.Experiment,
			config.Mode,
			strconv.FormatUint(config.Seed, 10),
			formatFloat(config.Level),
			formatFloat(config.Target),
			strconv.FormatInt(config.Trials, 10),
			strconv.FormatInt(config.TrialCap, 10),
		})
	}
	return w.write("scenario_configs.csv", "scenario configs", header, rows)
}

func (w *Writer) WriteRunRecords(records []RunRecord) error {
	header := []string{"id", "scenario", "repetition", "seed", "mode", "target", "trials", "batches",
		"mean", "half_width", "reason", "start_time", "end_time", "duration", "projected_trials", "projected_time"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.ID),
			strconv.Itoa(record.Scenario),
			strconv.Itoa(record.Repetition),
			strconv.FormatUint(record.Seed, 10),
			record.Mode,
			formatFloat(record.Target),
			strconv.FormatInt(record.Trials, 10),
			strconv.Itoa(record.Batches),
			formatFloat(record.Mean),
			formatFloat(record.HalfWidth),
			record.Reason,
			record.StartTime.Format(time.RFC3339),
			record.EndTime.Format(time.RFC3339),
			record.Duration.String(),
			strconv.FormatInt(record.ProjectedTrials, 10),
			record.ProjectedTime.String(),
		})
	}
	return w.write("run_records.csv", "run records", header, rows)
}

func (w *Writer) WriteBatchRecords(records []BatchRecord) error {
	header := []string{"run", "batch", "size", "trials", "mean", "half_width", "elapsed"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.Run),
			strconv.Itoa(record.Batch),
			strconv.FormatInt(record.Size, 10),
			strconv.FormatInt(record.Trials, 10),
			formatFloat(record.Mean),
			formatFloat(record.HalfWidth),
			record.Elapsed.String(),
		})
	}
	return w.write("batch_records.csv", "batch records", header, rows)
}

func (w *Writer) write(file, what string, header []string, rows [][]string) error {
	path := filepath.Join(w.baseDir, file)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s file: %w", what, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)

	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write %s header: %w", what, err)
	}
	err = writer.WriteAll(rows)
	if err != nil {
		return fmt.Errorf("failed to write %s rows: %w", what, err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
