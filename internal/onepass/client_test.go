package onepass

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetToken(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("environment token", func(t *testing.T) {
		expected := "ops_test_token"
		os.Setenv("OP_SERVICE_ACCOUNT_TOKEN", expected)
		defer os.Unsetenv("OP_SERVICE_ACCOUNT_TOKEN")

		got, err := getToken("")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if got != expected {
			t.Errorf("Expected token %q, got %q", expected, got)
		}
	})

	t.Run("file token", func(t *testing.T) {
		os.Unsetenv("OP_SERVICE_ACCOUNT_TOKEN")
		expected := "ops_test_token_from_file"
		tokenFile := filepath.Join(tmpDir, "token")
		if err := os.WriteFile(tokenFile, []byte(expected+"\n"), 0600); err != nil {
			t.Fatalf("Failed to write token file: %v", err)
		}

		got, err := getToken(tokenFile)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if got != expected {
			t.Errorf("Expected token %q, got %q", expected, got)
		}
	})

	t.Run("empty token file", func(t *testing.T) {
		os.Unsetenv("OP_SERVICE_ACCOUNT_TOKEN")
		tokenFile := filepath.Join(tmpDir, "empty")
		if err := os.WriteFile(tokenFile, []byte("\n"), 0600); err != nil {
			t.Fatalf("Failed to write token file: %v", err)
		}

		if _, err := getToken(tokenFile); err == nil {
			t.Error("Expected error for empty token file")
		}
	})

	t.Run("missing token file", func(t *testing.T) {
		os.Unsetenv("OP_SERVICE_ACCOUNT_TOKEN")
		if _, err := getToken(filepath.Join(tmpDir, "nonexistent")); err == nil {
			t.Error("Expected error with missing token file")
		}
	})
}

func TestEnabled(t *testing.T) {
	tmpDir := t.TempDir()

	os.Unsetenv("OP_SERVICE_ACCOUNT_TOKEN")
	if Enabled(filepath.Join(tmpDir, "nonexistent")) {
		t.Error("Expected Enabled to be false with no token sources")
	}

	tokenFile := filepath.Join(tmpDir, "token")
	if err := os.WriteFile(tokenFile, []byte("tok"), 0600); err != nil {
		t.Fatalf("Failed to write token file: %v", err)
	}
	if !Enabled(tokenFile) {
		t.Error("Expected Enabled to be true with a token file present")
	}

	os.Setenv("OP_SERVICE_ACCOUNT_TOKEN", "tok")
	defer os.Unsetenv("OP_SERVICE_ACCOUNT_TOKEN")
	if !Enabled(filepath.Join(tmpDir, "nonexistent")) {
		t.Error("Expected Enabled to be true with the environment token set")
	}
}

// Note: client initialization against the real service requires a valid
// token, so it is not covered here.
