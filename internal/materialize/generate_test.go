package materialize

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/osp-containers/materializer/internal/fragments"
)

var testTime = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func TestGenerate(t *testing.T) {
	frags := []fragments.Fragment{
		{Name: "client_secret", Data: []byte("s3cr3t\n")},
		{Name: "crypto_passphrase", Data: []byte("opensesame\n")},
		{Name: "unrelated", Data: []byte("ignored\n")},
	}

	got := Generate(frags, OIDCDirectives, testTime)
	want := "# Generated by materializer at 2026-03-14T09:26:53Z\n" +
		"OIDCClientSecret \"s3cr3t\"\n" +
		"OIDCCryptoPassphrase \"opensesame\"\n"

	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Errorf("Generate mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateStripsTrailingNewlines(t *testing.T) {
	frags := []fragments.Fragment{
		{Name: "client_secret", Data: []byte("s3cr3t\r\n")},
	}

	got := string(Generate(frags, OIDCDirectives, testTime))
	if !strings.Contains(got, "OIDCClientSecret \"s3cr3t\"\n") {
		t.Errorf("Expected trailing newline stripped inside the quotes, got:\n%s", got)
	}
}

func TestGenerateHeaderOnly(t *testing.T) {
	got := string(Generate(nil, OIDCDirectives, testTime))
	if got != "# Generated by materializer at 2026-03-14T09:26:53Z\n" {
		t.Errorf("Expected header-only output, got:\n%s", got)
	}
}

func TestGeneratorRun(t *testing.T) {
	tmpDir := t.TempDir()

	secretsDir := filepath.Join(tmpDir, "oidc")
	if err := os.Mkdir(secretsDir, 0755); err != nil {
		t.Fatalf("Failed to create secrets dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(secretsDir, "client_secret"), []byte("s3cr3t\n"), 0600); err != nil {
		t.Fatalf("Failed to write fragment: %v", err)
	}

	outputFile := filepath.Join(tmpDir, "oidc-secrets.conf")
	generator := Generator{
		Source:     fragments.Source{Dir: secretsDir},
		OutputFile: outputFile,
		Now:        func() time.Time { return testTime },
	}
	if err := generator.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	got, err := os.ReadFile(outputFile)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	want := "# Generated by materializer at 2026-03-14T09:26:53Z\n" +
		"OIDCClientSecret \"s3cr3t\"\n"
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Errorf("Output mismatch (-want +got):\n%s", diff)
	}

	info, err := os.Stat(outputFile)
	if err != nil {
		t.Fatalf("Failed to stat output: %v", err)
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		t.Errorf("Expected owner-only permissions, got %v", perm)
	}
}

func TestGeneratorMissingSecretsDir(t *testing.T) {
	tmpDir := t.TempDir()

	outputFile := filepath.Join(tmpDir, "oidc-secrets.conf")
	generator := Generator{
		Source:     fragments.Source{Dir: filepath.Join(tmpDir, "nonexistent")},
		OutputFile: outputFile,
		Now:        func() time.Time { return testTime },
	}
	if err := generator.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	got, err := os.ReadFile(outputFile)
	if err != nil {
		t.Fatalf("Expected output file to exist without a secrets dir: %v", err)
	}
	if string(got) != "# Generated by materializer at 2026-03-14T09:26:53Z\n" {
		t.Errorf("Expected header-only file, got:\n%s", got)
	}
}

func TestGeneratorTruncatesAndTightens(t *testing.T) {
	tmpDir := t.TempDir()

	outputFile := filepath.Join(tmpDir, "oidc-secrets.conf")
	// Pre-existing world-readable file from an earlier image build.
	if err := os.WriteFile(outputFile, []byte("stale content\n"), 0644); err != nil {
		t.Fatalf("Failed to write stale output: %v", err)
	}

	generator := Generator{
		Source:     fragments.Source{Dir: filepath.Join(tmpDir, "nonexistent")},
		OutputFile: outputFile,
		Now:        func() time.Time { return testTime },
	}
	if err := generator.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	got, err := os.ReadFile(outputFile)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	if strings.Contains(string(got), "stale") {
		t.Errorf("Expected prior content truncated, got:\n%s", got)
	}

	info, err := os.Stat(outputFile)
	if err != nil {
		t.Fatalf("Failed to stat output: %v", err)
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		t.Errorf("Expected pre-existing file tightened to owner-only, got %v", perm)
	}
}
