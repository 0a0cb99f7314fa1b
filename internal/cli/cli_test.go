package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/fatih/color"

	"narraive/internal/domain"
)

type fakeService struct {
	mu      sync.Mutex
	queries int
}

func (f *fakeService) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/upload", func(w http.ResponseWriter, r *http.Request) {
		_, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			return
		}
		if strings.HasSuffix(header.Filename, ".png") {
			_, _ = w.Write([]byte(`{"error":"Unsupported file type"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"text": "Contents of " + header.Filename + "."})
	})
	mux.HandleFunc("/api/query", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.queries++
		f.mu.Unlock()
		var req domain.QueryRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		answers := make([]domain.Answer, 0, len(req.Documents))
		for _, d := range req.Documents {
			answers = append(answers, domain.Answer{DocID: d.ID, Answer: "about " + req.Question, Citation: "(see above text)"})
		}
		_ = json.NewEncoder(w).Encode(answers)
	})
	mux.HandleFunc("/api/theme", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"theme": "perseverance"})
	})
	mux.HandleFunc("/api/narrate", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"summary": "Once upon a time."})
	})
	return mux
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	color.NoColor = true
	dir := t.TempDir()
	base := []string{"--config", filepath.Join(dir, "missing.yaml"), "--log-file", filepath.Join(dir, "test.log")}
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append(args, base...))
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func writeDocs(t *testing.T, names ...string) []string {
	t.Helper()
	dir := t.TempDir()
	var paths []string
	for _, n := range names {
		p := filepath.Join(dir, n)
		if err := os.WriteFile(p, []byte("raw "+n), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		paths = append(paths, p)
	}
	return paths
}

func TestUnknownFlag(t *testing.T) {
	_, errOut, err := run(t, "tui-nope", "--help-nope")
	if err == nil {
		t.Fatal("expected an error for unknown flag")
	}
	if !strings.Contains(errOut, "unknown flag") {
		t.Fatalf("unexpected stderr: %s", errOut)
	}
}

func TestAskPrintsAnswersAndExports(t *testing.T) {
	svc := &fakeService{}
	server := httptest.NewServer(svc.handler(t))
	defer server.Close()

	exportDir := t.TempDir()
	files := writeDocs(t, "alpha.txt", "beta.pdf", "gamma.png")
	args := append([]string{"ask", "-q", "gophers", "--export", "txt", "--base-url", server.URL, "--export-dir", exportDir}, files...)
	out, errOut, err := run(t, args...)
	if err != nil {
		t.Fatalf("ask failed: %v\n%s", err, errOut)
	}
	for _, want := range []string{"uploaded alpha.txt", "uploaded beta.pdf", "alpha.txt\nAnswer: about gophers\nCitation: (see above text)", "beta.pdf\nAnswer: about gophers"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "gamma.png") {
		t.Fatalf("unsupported file should have been skipped:\n%s", out)
	}
	if !strings.Contains(errOut, "1 file(s) skipped") {
		t.Fatalf("expected skip warning, got: %s", errOut)
	}
	data, err := os.ReadFile(filepath.Join(exportDir, "alpha.txt.txt"))
	if err != nil {
		t.Fatalf("expected txt export: %v", err)
	}
	if string(data) != "Answer: about gophers\nCitation: (see above text)" {
		t.Fatalf("unexpected export: %q", data)
	}
	if svc.queries != 1 {
		t.Fatalf("expected a single batched query, got %d", svc.queries)
	}
}

func TestAskBlankQuestionSkipsQuery(t *testing.T) {
	svc := &fakeService{}
	server := httptest.NewServer(svc.handler(t))
	defer server.Close()

	args := append([]string{"ask", "-q", "  ", "--base-url", server.URL}, writeDocs(t, "a.txt")...)
	if _, _, err := run(t, args...); err == nil || !strings.Contains(err.Error(), "blank") {
		t.Fatalf("expected blank question error, got %v", err)
	}
	if svc.queries != 0 {
		t.Fatalf("expected no query, got %d", svc.queries)
	}
}

func TestAskFailsWhenNothingUploads(t *testing.T) {
	svc := &fakeService{}
	server := httptest.NewServer(svc.handler(t))
	defer server.Close()

	args := append([]string{"ask", "-q", "why", "--base-url", server.URL}, writeDocs(t, "pic.png")...)
	if _, _, err := run(t, args...); err != errNoUploads {
		t.Fatalf("expected errNoUploads, got %v", err)
	}
	if svc.queries != 0 {
		t.Fatalf("expected no query, got %d", svc.queries)
	}
}

func TestThemeAndNarrateCommands(t *testing.T) {
	server := httptest.NewServer((&fakeService{}).handler(t))
	defer server.Close()
	file := writeDocs(t, "story.txt")[0]

	out, _, err := run(t, "theme", file, "--base-url", server.URL)
	if err != nil || !strings.Contains(out, "Theme of story.txt\nperseverance") {
		t.Fatalf("theme: %v\n%s", err, out)
	}
	out, _, err = run(t, "narrate", file, "--base-url", server.URL)
	if err != nil || !strings.Contains(out, "Narration of story.txt\nOnce upon a time.") {
		t.Fatalf("narrate: %v\n%s", err, out)
	}
}

func TestEnvironmentOverridesBaseURL(t *testing.T) {
	t.Setenv("NARRAIVE_BASE_URL", "http://env.example:1234")
	out, _, err := run(t, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "http://env.example:1234") {
		t.Fatalf("expected env base URL in output:\n%s", out)
	}
}

func TestFlagBeatsEnvironment(t *testing.T) {
	t.Setenv("NARRAIVE_BASE_URL", "http://env.example:1234")
	out, _, err := run(t, "config", "show", "--base-url", "http://flag.example:9")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "http://flag.example:9") || strings.Contains(out, "env.example") {
		t.Fatalf("expected flag base URL to win:\n%s", out)
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "narraive", "config.yaml")
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"config", "init", "--config", path, "--log-file", filepath.Join(t.TempDir(), "l.log")})
	if err := root.Execute(); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config written: %v", err)
	}
	if !strings.Contains(out.String(), "wrote "+path) {
		t.Fatalf("unexpected output: %s", out.String())
	}
}

func TestExpandPaths(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"[ab].txt", "a.txt", "b.txt"} {
		if err := os.WriteFile(filepath.Join(dir, n), []byte(n), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	got := expandPaths([]string{
		filepath.Join(dir, "[ab].txt"),
		filepath.Join(dir, "?.txt"),
		filepath.Join(dir, "missing.txt"),
	})
	want := []string{
		filepath.Join(dir, "[ab].txt"),
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "b.txt"),
		filepath.Join(dir, "missing.txt"),
	}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("expandPaths = %v, want %v", got, want)
	}
}

func TestAskCountsSkipsAfterGlobExpansion(t *testing.T) {
	svc := &fakeService{}
	server := httptest.NewServer(svc.handler(t))
	defer server.Close()

	files := writeDocs(t, "one.txt", "two.txt", "pic.png")
	pattern := filepath.Join(filepath.Dir(files[0]), "*")
	out, errOut, err := run(t, "ask", "-q", "why", "--base-url", server.URL, pattern)
	if err != nil {
		t.Fatalf("ask failed: %v\n%s", err, errOut)
	}
	if !strings.Contains(out, "uploaded one.txt") || !strings.Contains(out, "uploaded two.txt") {
		t.Fatalf("expected both text files uploaded:\n%s", out)
	}
	if !strings.Contains(errOut, "1 file(s) skipped") {
		t.Fatalf("expected one skipped file, got: %q", errOut)
	}
}
