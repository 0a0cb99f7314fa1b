package export

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ledongthuc/pdf"
)

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"txt": FormatText, ".PDF": FormatPDF, " pdf ": FormatPDF} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("docx"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestFileName(t *testing.T) {
	cases := map[string]string{
		"report.pdf":    "report.pdf.txt",
		"../etc/passwd": ".._etc_passwd.txt",
		"":              "Unknown.txt",
		"..":            "Unknown.txt",
		"Unknown":       "Unknown.txt",
	}
	for in, want := range cases {
		if got := FileName(in, FormatText); got != want {
			t.Fatalf("FileName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWriteText(t *testing.T) {
	dir := t.TempDir()
	text := "Answer: héllo\nCitation: line 3"
	path, err := Write(dir, "notes.txt", text, FormatText)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if path != filepath.Join(dir, "notes.txt.txt") {
		t.Fatalf("unexpected path: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != text {
		t.Fatalf("expected raw text, got %q", data)
	}
}

func TestWritePDFIsReadable(t *testing.T) {
	dir := t.TempDir()
	path, err := Write(dir, "Unknown", "Answer: hello world\nCitation: page two", FormatPDF)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if filepath.Base(path) != "Unknown.pdf" {
		t.Fatalf("unexpected file name: %s", path)
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		t.Fatalf("open pdf: %v", err)
	}
	defer f.Close()
	if r.NumPage() != 1 {
		t.Fatalf("expected a single page, got %d", r.NumPage())
	}
	plain, err := r.GetPlainText()
	if err != nil {
		t.Fatalf("plain text: %v", err)
	}
	data, _ := io.ReadAll(plain)
	if !strings.Contains(string(data), "Answer: hello world") {
		t.Fatalf("expected answer text in pdf, got %q", data)
	}
}

func TestRenderPDFHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderPDF(&buf, ""); err != nil {
		t.Fatalf("RenderPDF: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("expected PDF header, got %q", buf.Bytes()[:8])
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	if _, err := Write(t.TempDir(), "a", "x", Format("docx")); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}
