// ABOUTME: Export functionality for cached schedules.
// ABOUTME: Supports JSON, YAML, and Markdown export formats.
package storage

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/workouts/internal/models"
	"gopkg.in/yaml.v3"
)

// ExportData represents the full export format for cached schedules.
type ExportData struct {
	Version    string             `json:"version" yaml:"version"`
	ExportedAt time.Time          `json:"exported_at" yaml:"exported_at"`
	Tool       string             `json:"tool" yaml:"tool"`
	Schedules  []*models.Schedule `json:"schedules" yaml:"schedules"`
}

// GetAllData retrieves all schedules for export.
func (d *DB) GetAllData() (*ExportData, error) {
	schedules, err := d.ListSchedules()
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}

	return &ExportData{
		Version:    "1.0",
		ExportedAt: time.Now(),
		Tool:       "workouts",
		Schedules:  schedules,
	}, nil
}

// ExportJSON exports all data as JSON.
func (d *DB) ExportJSON() ([]byte, error) {
	data, err := d.GetAllData()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

// ExportYAML exports all data as YAML.
func (d *DB) ExportYAML() ([]byte, error) {
	data, err := d.GetAllData()
	if err != nil {
		return nil, err
	}

	yamlData := struct {
		Version    string             `yaml:"version"`
		ExportedAt string             `yaml:"exported_at"`
		Tool       string             `yaml:"tool"`
		Schedules  []*models.Schedule `yaml:"schedules"`
	}{
		Version:    data.Version,
		ExportedAt: data.ExportedAt.Format(time.RFC3339),
		Tool:       data.Tool,
		Schedules:  data.Schedules,
	}

	return yaml.Marshal(yamlData)
}

// ExportMarkdown exports schedules as Markdown, one section per schedule
// and one table per exercise group.
func (d *DB) ExportMarkdown() (string, error) {
	data, err := d.GetAllData()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Workout Schedules - %s\n\n", data.ExportedAt.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", data.ExportedAt.Format(time.RFC3339)))

	if len(data.Schedules) == 0 {
		sb.WriteString("No schedules cached.\n")
		return sb.String(), nil
	}

	for _, s := range data.Schedules {
		sb.WriteString(fmt.Sprintf("## %s\n\n", s.Name))
		for _, w := range s.Workouts {
			sb.WriteString(fmt.Sprintf("### %s\n\n", w.Name))
			for _, key := range models.OrderedGroupKeys(w) {
				sb.WriteString(fmt.Sprintf("#### %s\n\n", key))
				sb.WriteString("| Exercise | Sets | Reps | Weight | Notes |\n")
				sb.WriteString("|----------|------|------|--------|-------|\n")
				for _, e := range w.Exercises[key] {
					sb.WriteString(fmt.Sprintf("| %s | %d | %s | %s | %s |\n",
						e.Name, e.Sets, intOrBlank(e.Reps), strOrBlank(e.Weight), strOrBlank(e.Notes)))
				}
				sb.WriteString("\n")
			}
		}
	}

	return sb.String(), nil
}

func intOrBlank(n *int) string {
	if n == nil {
		return ""
	}
	return fmt.Sprintf("%d", *n)
}

func strOrBlank(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
