package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
}

func setupCLITestEnv(t *testing.T, rcPort string) *cliTestEnv {
	t.Helper()
	base := t.TempDir()
	content := fmt.Sprintf(`[rc]
port = %s
user = "admin"
pass = "secret"

[paths]
mount_list = %q
task_list = %q
run_log = %q
schedule_file = %q
cache_dir = %q
log_dir = %q
history_db = %q
`,
		rcPort,
		filepath.Join(base, "mounts.json"),
		filepath.Join(base, "tasks.json"),
		filepath.Join(base, "run.log"),
		filepath.Join(base, "schedule.json"),
		filepath.Join(base, "cache"),
		filepath.Join(base, "logs"),
		filepath.Join(base, "history.db"),
	)
	configPath := filepath.Join(base, "config.toml")
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return &cliTestEnv{baseDir: base, configPath: configPath}
}

func runCLI(t *testing.T, configPath string, args []string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// fakeRCServer answers the readiness probe and serves a fixed mount list.
func fakeRCServer(t *testing.T, mountPoints []map[string]string) (*httptest.Server, string) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		case strings.HasSuffix(r.URL.Path, "mount/listmounts"):
			_ = json.NewEncoder(w).Encode(map[string]any{"mountPoints": mountPoints})
		default:
			http.Error(w, `{"error":"unknown"}`, http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	parsed, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("parse server url: %v", err)
	}
	return srv, parsed.Port()
}

func TestCLIHealthcheckHealthy(t *testing.T) {
	_, port := fakeRCServer(t, []map[string]string{
		{"Fs": "remote:media", "MountPoint": "/mnt/media"},
	})
	env := setupCLITestEnv(t, port)
	if err := os.WriteFile(filepath.Join(env.baseDir, "mounts.json"),
		[]byte(`[{"fs":"remote:media","mountPoint":"/mnt/media"}]`), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, env.configPath, []string{"healthcheck"})
	if err != nil {
		t.Fatalf("healthcheck: %v", err)
	}
	if !strings.Contains(out, "healthy") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestCLIHealthcheckReportsMissingMount(t *testing.T) {
	_, port := fakeRCServer(t, nil)
	env := setupCLITestEnv(t, port)
	if err := os.WriteFile(filepath.Join(env.baseDir, "mounts.json"),
		[]byte(`[{"fs":"remote:media","mountPoint":"/mnt/media"}]`), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, env.configPath, []string{"healthcheck"})
	if err == nil {
		t.Fatal("expected unhealthy result")
	}
	if !strings.Contains(out, "missing mount: remote:media at /mnt/media") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestCLIHealthcheckFailsWhenDaemonDown(t *testing.T) {
	srv, port := fakeRCServer(t, nil)
	env := setupCLITestEnv(t, port)
	srv.Close()

	if _, _, err := runCLI(t, env.configPath, []string{"healthcheck"}); err == nil {
		t.Fatal("expected readiness failure")
	}
}

func TestCLIMountsWithoutDeclarations(t *testing.T) {
	_, port := fakeRCServer(t, nil)
	env := setupCLITestEnv(t, port)

	out, _, err := runCLI(t, env.configPath, []string{"mounts"})
	if err != nil {
		t.Fatalf("mounts: %v", err)
	}
	if !strings.Contains(out, "No mounts declared.") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestCLIMountsTable(t *testing.T) {
	_, port := fakeRCServer(t, []map[string]string{
		{"Fs": "remote:media", "MountPoint": "/mnt/media"},
	})
	env := setupCLITestEnv(t, port)
	if err := os.WriteFile(filepath.Join(env.baseDir, "mounts.json"),
		[]byte(`[
			{"fs":"remote:media","mountPoint":"/mnt/media"},
			{"fs":"remote:backup","mountPoint":"/mnt/backup"}
		]`), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, env.configPath, []string{"mounts"})
	if err != nil {
		t.Fatalf("mounts: %v", err)
	}
	if !strings.Contains(out, "mounted") || !strings.Contains(out, "missing") {
		t.Fatalf("expected both states in output: %q", out)
	}
	if !strings.Contains(out, "remote:backup") {
		t.Fatalf("missing remote in output: %q", out)
	}
}

func TestCLIJobsEmptyHistory(t *testing.T) {
	_, port := fakeRCServer(t, nil)
	env := setupCLITestEnv(t, port)

	out, _, err := runCLI(t, env.configPath, []string{"jobs"})
	if err != nil {
		t.Fatalf("jobs: %v", err)
	}
	if !strings.Contains(out, "No job submissions recorded.") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestCLIExecuteTaskRejectsMalformedPayload(t *testing.T) {
	_, port := fakeRCServer(t, nil)
	env := setupCLITestEnv(t, port)

	if _, _, err := runCLI(t, env.configPath, []string{"execute-task", "{not json"}); err == nil {
		t.Fatal("expected payload parse error")
	}
}
