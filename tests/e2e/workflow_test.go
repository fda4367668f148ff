package e2e

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

const onboardingAnswers = `name: Sam
dissatisfaction: Drifting through weeks without shipping anything
complaint: Not enough time
five_years: Same desk, same job, same excuses
ideal_life: Mornings writing, afternoons building my own product
identity: I am the type of person who finishes what I start
biggest_goal: Launch the product and get ten paying customers
`

func TestEndToEndWorkflow(t *testing.T) {
	// Allow overriding bin dir via env var, default to ../../bin (relative to tests/e2e)
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get cwd: %v", err)
	}
	binDir := os.Getenv("ARCHITECT_BIN_DIR")
	if binDir == "" {
		binDir = filepath.Join(cwd, "..", "..", "bin")
	}
	binDir, _ = filepath.Abs(binDir)
	cliPath := filepath.Join(binDir, "architect")
	if _, err := os.Stat(cliPath); os.IsNotExist(err) {
		t.Skipf("CLI binary not found at %s. Build it with 'go build -o bin/architect ./cmd/architect' first.", cliPath)
	}

	// Isolate HOME so the default config lands in the temp dir, and drop any
	// API keys so replies come from the offline fallback.
	tempDir := t.TempDir()
	var env []string
	for _, e := range os.Environ() {
		switch {
		case strings.HasPrefix(e, "HOME="),
			strings.HasPrefix(e, "XDG_CONFIG_HOME="),
			strings.HasPrefix(e, "ARCHITECT_"),
			strings.HasPrefix(e, "OPENAI_"):
			continue
		}
		env = append(env, e)
	}
	env = append(env,
		"HOME="+tempDir,
		"XDG_CONFIG_HOME="+tempDir,
		"ARCHITECT_LLM_MAXRETRIES=0",
	)

	dbPath := filepath.Join(tempDir, "journal.json")
	answersPath := filepath.Join(tempDir, "answers.yaml")
	if err := os.WriteFile(answersPath, []byte(onboardingAnswers), 0o600); err != nil {
		t.Fatalf("Failed to write answers: %v", err)
	}

	run := func(args ...string) string {
		t.Helper()
		return runCmd(t, cliPath, env, nil, append([]string{"--db", dbPath}, args...)...)
	}

	// 1. Initialize storage and config
	out := run("init")
	if !strings.Contains(out, "Initialized architect storage") {
		t.Fatalf("unexpected init output: %s", out)
	}
	if _, err := os.Stat(filepath.Join(tempDir, ".config", "architect", "config.yaml")); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	// 2. Onboard from a file
	out = run("onboard", "--from", answersPath)
	if !strings.Contains(out, "Welcome, Sam") {
		t.Fatalf("unexpected onboard output: %s", out)
	}

	// 3. Write two entries; without a key the reply is the offline fallback
	out = run("write", "--category", "business", "Closed", "the", "first", "deal")
	if !strings.Contains(out, "The Architect:") {
		t.Fatalf("write did not print a reply: %s", out)
	}
	out = runCmd(t, cliPath, env, strings.NewReader("Skipped the gym again\n"), "--db", dbPath, "write", "-c", "habits")
	if !strings.Contains(out, "Habits entry saved") {
		t.Fatalf("unexpected write output: %s", out)
	}

	// 4. History is most recent first
	out = run("history")
	first := strings.Index(out, "Skipped the gym again")
	second := strings.Index(out, "Closed the first deal")
	if first < 0 || second < 0 || first > second {
		t.Fatalf("history not in reverse chronological order:\n%s", out)
	}

	// 5. Stats
	var stats struct {
		TotalEntries  int `json:"totalEntries"`
		CurrentStreak int `json:"currentStreak"`
		DaysActive    int `json:"daysActive"`
	}
	if err := json.Unmarshal([]byte(run("stats", "--json")), &stats); err != nil {
		t.Fatalf("stats --json is not JSON: %v", err)
	}
	if stats.TotalEntries != 2 || stats.CurrentStreak != 1 || stats.DaysActive != 1 {
		t.Errorf("stats = %+v, want 2 entries, streak 1, 1 day", stats)
	}

	// 6. Export
	exportPath := filepath.Join(tempDir, "export.yaml")
	run("export", "--format", "yaml", "--output", exportPath)
	data, err := os.ReadFile(exportPath)
	if err != nil {
		t.Fatalf("export not written: %v", err)
	}
	if !bytes.Contains(data, []byte("Closed the first deal")) || !bytes.Contains(data, []byte("name: Sam")) {
		t.Errorf("export missing content:\n%s", data)
	}

	// 7. Delete the account
	run("profile", "delete", "--yes")
	out = run("stats")
	if !strings.Contains(out, "Entries:     0") {
		t.Errorf("entries survived account deletion:\n%s", out)
	}
}

func runCmd(t *testing.T, path string, env []string, stdin *strings.Reader, args ...string) string {
	t.Helper()
	cmd := exec.Command(path, args...)
	cmd.Env = env
	if stdin != nil {
		cmd.Stdin = stdin
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("Command %s %v failed: %v\nOutput: %s", path, args, err, out)
	}
	return string(out)
}
