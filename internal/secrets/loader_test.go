package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	keyFile := filepath.Join(dir, "key")
	if err := os.WriteFile(keyFile, []byte("  from-file\n"), 0o600); err != nil {
		t.Fatalf("write key file: %v", err)
	}
	emptyFile := filepath.Join(dir, "empty")
	if err := os.WriteFile(emptyFile, []byte("\n"), 0o600); err != nil {
		t.Fatalf("write empty file: %v", err)
	}

	t.Setenv("ATS_TEST_PRIMARY", "")
	t.Setenv("ATS_TEST_FALLBACK", " from-env ")

	tests := []struct {
		name    string
		src     Source
		want    string
		wantErr string
	}{
		{name: "file wins", src: Source{File: keyFile, Value: "inline", Env: []string{"ATS_TEST_FALLBACK"}}, want: "from-file"},
		{name: "inline", src: Source{Value: " inline ", Env: []string{"ATS_TEST_FALLBACK"}}, want: "inline"},
		{name: "env in order", src: Source{Env: []string{"ATS_TEST_PRIMARY", "ATS_TEST_FALLBACK"}}, want: "from-env"},
		{name: "empty file", src: Source{Name: "gemini api key", File: emptyFile}, wantErr: "gemini api key file"},
		{name: "missing file", src: Source{File: filepath.Join(dir, "absent")}, wantErr: "reading secret"},
		{name: "nothing", src: Source{Name: "openai api key", Env: []string{"ATS_TEST_PRIMARY"}}, wantErr: "checked ATS_TEST_PRIMARY"},
		{name: "nothing without env", src: Source{}, wantErr: "secret is not configured"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Load(tc.src)
			if tc.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
