// Package history persists triage reports as JSON files so past analyses
// can be listed and re-read after a run.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"rftriage/pkg/triage"
)

// ReportMetadata is a lightweight view of a stored report for listing.
type ReportMetadata struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Test      string    `json:"test"`
	Status    string    `json:"status"`
	Model     string    `json:"model"`
	Exception string    `json:"exception,omitempty"`
}

// Store handles report persistence under a single directory.
type Store struct {
	reportsDir string
}

// NewStore creates a report store rooted at dataDir.
func NewStore(dataDir string) (*Store, error) {
	reportsDir := filepath.Join(dataDir, "reports")

	if err := os.MkdirAll(reportsDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create reports directory: %w", err)
	}

	return &Store{reportsDir: reportsDir}, nil
}

// Save writes a report to disk, assigning an ID if it has none.
func (s *Store) Save(report *triage.Report) error {
	if report.ID == "" {
		report.ID = uuid.New().String()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now()
	}

	path := filepath.Join(s.reportsDir, report.ID+".json")

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	// Reports carry failure messages and environment details, keep them user-only.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}

	return nil
}

// Load reads a report by ID.
func (s *Store) Load(id string) (*triage.Report, error) {
	path := filepath.Join(s.reportsDir, id+".json")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report file: %w", err)
	}

	var report triage.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}

	return &report, nil
}

// List returns metadata for all stored reports, newest first.
func (s *Store) List() ([]ReportMetadata, error) {
	entries, err := os.ReadDir(s.reportsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read reports directory: %w", err)
	}

	var reports []ReportMetadata

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.reportsDir, entry.Name()))
		if err != nil {
			continue // Skip unreadable files
		}

		var report triage.Report
		if err := json.Unmarshal(data, &report); err != nil {
			continue // Skip corrupted files
		}

		reports = append(reports, ReportMetadata{
			ID:        report.ID,
			CreatedAt: report.CreatedAt,
			Test:      report.Test,
			Status:    report.Status,
			Model:     report.Model,
			Exception: report.Facts.Exception,
		})
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})

	return reports, nil
}

// Delete removes a stored report.
func (s *Store) Delete(id string) error {
	path := filepath.Join(s.reportsDir, id+".json")

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete report file: %w", err)
	}

	return nil
}
