package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/EstoreFactory109/SellerQI-sub007/pkg/migrate"
)

func TestIssueCacheMigrationContainsSchemas(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_issue_cache_tables.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no issue cache migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS issue_summaries",
		"CREATE TABLE IF NOT EXISTS issues_data",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_issue_summaries_key",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_issues_data_key",
		"payload JSONB",
		"is_stale BOOLEAN NOT NULL DEFAULT false",
		"calculation_source TEXT",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestSummaryMetricMigrationContainsSchemas(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_summary_metric_tables.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no summary metric migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS financial_summaries",
		"CREATE TABLE IF NOT EXISTS ppc_summaries",
		"CREATE TABLE IF NOT EXISTS account_health_records",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_financial_summaries_key",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationsDirectoryValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migrations dir invalid: %v", err)
	}
}
