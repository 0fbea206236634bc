package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stanza/internal/config"
	"stanza/internal/services"
	"stanza/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, pauses string) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("STANZA_API_TOKEN", "")

	testsupport.StubFFprobe(t, cfg, "42.5")
	testsupport.StubFFmpeg(t, cfg, false)
	if pauses != "" {
		testsupport.StubPauseDetector(t, cfg, pauses)
	} else {
		cfg.Media.PauseDetectorBinary = filepath.Join(base, "bin", "missing-detector")
	}

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func mustRunCLI(t *testing.T, configPath string, args ...string) string {
	t.Helper()
	out, err := runCLI(t, configPath, args...)
	if err != nil {
		t.Fatalf("stanza %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func requireKind(t *testing.T, err, kind error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", kind)
	}
	if services.KindOf(err) != services.KindOf(kind) {
		t.Fatalf("expected %v error, got %v", kind, err)
	}
}

// seedPoem imports a three-line fragment and uploads one track for it.
func (env *cliTestEnv) seedPoem(t *testing.T) {
	t.Helper()
	poem := filepath.Join(env.baseDir, "poem.txt")
	if err := os.WriteFile(poem, []byte("Мороз и солнце\n\nдень чудесный\r\nЕщё ты дремлешь\n"), 0o644); err != nil {
		t.Fatalf("write poem: %v", err)
	}
	mustRunCLI(t, env.configPath, "fragment", "import", "Зимнее утро", poem)

	audio := filepath.Join(env.baseDir, "reading.mp3")
	testsupport.WriteFile(t, audio, 2048)
	mustRunCLI(t, env.configPath, "track", "add", "1", audio, "--title", "Reading")
}
