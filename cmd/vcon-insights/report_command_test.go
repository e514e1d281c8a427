package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReportCommandRendersDaily(t *testing.T) {
	env := setupCLIEnv(t)
	ds := processedDataset(t, env)

	out, err := runCLI(t, env, "report", "-i", ds)
	if err != nil {
		t.Fatalf("report: %v", err)
	}

	requireContains(t, out, "Daily Report - April 3, 2025")
	requireContains(t, out, "Report ID: daily_20250403")
	requireContains(t, out, "Window: 2025-04-03 to 2025-04-03")
	requireContains(t, out, "Key Metrics")
	requireContains(t, out, "Total calls")
}

func TestReportCommandWritesJSON(t *testing.T) {
	env := setupCLIEnv(t)
	ds := processedDataset(t, env)
	target := filepath.Join(env.baseDir, "weekly.json")

	out, err := runCLI(t, env, "report", "-i", ds, "-f", "weekly", "-o", target)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	requireContains(t, out, "Wrote weekly report to "+target)

	body, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	requireContains(t, string(body), `"report_id": "weekly_20250328_20250403"`)
	requireContains(t, string(body), `"key_metrics"`)
}

func TestReportCommandBadFrequency(t *testing.T) {
	env := setupCLIEnv(t)
	ds := processedDataset(t, env)

	_, err := runCLI(t, env, "report", "-i", ds, "-f", "hourly")
	if err == nil {
		t.Fatal("expected an error for an unsupported frequency")
	}
	requireContains(t, err.Error(), `unknown report frequency "hourly"`)
}
