package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cliTestEnv struct {
	baseDir    string
	dataDir    string
	outputDir  string
	configPath string
}

func setupCLIEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	env := &cliTestEnv{
		baseDir:    base,
		dataDir:    filepath.Join(base, "data"),
		outputDir:  filepath.Join(base, "output"),
		configPath: filepath.Join(base, "config.toml"),
	}
	if err := os.MkdirAll(env.dataDir, 0o755); err != nil {
		t.Fatalf("mkdir data dir: %v", err)
	}
	t.Setenv("HOME", filepath.Join(base, "home"))
	writeCLITestConfig(t, env)
	return env
}

func writeCLITestConfig(t *testing.T, env *cliTestEnv) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\ninput_glob = %q\noutput_dir = %q\ndatabase_path = %q\n\n[export]\nformats = [\"csv\"]\nprefix = %q\n",
		filepath.Join(env.dataDir, "*.json"),
		env.outputDir,
		filepath.Join(env.baseDir, "warehouse", "insights.db"),
		"spa_analysis",
	)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write test config: %v", err)
	}
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stdout)
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

const conversationBatch = `[
	{
		"id": "cli-conv-1",
		"subject": "Facial booking",
		"created_at": "2025-04-02T10:15:00Z",
		"vcon_json": {
			"parties": [
				{"name": "Marta Reyes", "email": "marta@feelgoodspas.com", "location": "Downtown"},
				{"name": "Jo Fox", "tel": "+15550002001"}
			],
			"dialog": [
				{"type": "text", "party": 0, "duration": 20, "body": "Thank you for calling Feel Good Spas, this is Marta."},
				{"type": "text", "party": 1, "duration": 45, "body": "I would like to book a facial for Saturday."}
			]
		}
	},
	{
		"id": "cli-conv-2",
		"subject": "Refund request",
		"created_at": "2025-04-02T15:40:00Z",
		"vcon_json": {
			"parties": [
				{"name": "Omar Diaz", "email": "omar@feelgoodspas.com", "location": "Riverside"},
				{"name": "Lee Chan", "tel": "+15550002002"}
			],
			"dialog": [
				{"type": "text", "party": 0, "duration": 25, "body": "Thank you for calling, my name is Omar."},
				{"type": "text", "party": 1, "duration": 80, "body": "There is a problem with my invoice, I was charged twice and I want a refund."}
			]
		}
	}
]`

const conversationSingle = `{
	"id": "cli-conv-3",
	"subject": "Opening hours",
	"created_at": "2025-04-03T09:05:00Z",
	"vcon_json": {
		"parties": [
			{"name": "Marta Reyes", "email": "marta@feelgoodspas.com", "location": "Downtown"},
			{"name": "Ann Poe", "tel": "+15550002003"}
		],
		"dialog": [
			{"type": "text", "party": 0, "duration": 15, "body": "Thank you for calling Feel Good Spas."},
			{"type": "text", "party": 1, "duration": 30, "body": "What time do you open tomorrow?"}
		]
	}
}`

func writeConversationFixtures(t *testing.T, env *cliTestEnv) {
	t.Helper()
	for name, payload := range map[string]string{
		"batch.json":  conversationBatch,
		"single.json": conversationSingle,
	} {
		if err := os.WriteFile(filepath.Join(env.dataDir, name), []byte(payload), 0o644); err != nil {
			t.Fatalf("write fixture %s: %v", name, err)
		}
	}
}

// processedDataset runs the process command over the fixtures and returns the
// CSV it produced.
func processedDataset(t *testing.T, env *cliTestEnv) string {
	t.Helper()
	writeConversationFixtures(t, env)
	out := filepath.Join(env.outputDir, "dataset.csv")
	if _, err := runCLI(t, env, "process", "-o", out); err != nil {
		t.Fatalf("process: %v", err)
	}
	return out
}
