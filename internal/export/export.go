package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"

	"narraive/internal/domain"
)

// Format is the kind of file an answer is exported to.
type Format string

const (
	FormatText Format = "txt"
	FormatPDF  Format = "pdf"
)

var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat accepts "txt" or "pdf" in any case, with or without a leading dot.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".")) {
	case FormatText:
		return FormatText, nil
	case FormatPDF:
		return FormatPDF, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Write saves text as <dir>/<name>.<format> and returns the path written.
func Write(dir, name, text string, format Format) (string, error) {
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, FileName(name, format))
	var err error
	switch format {
	case FormatText:
		err = os.WriteFile(path, []byte(text), 0o644)
	case FormatPDF:
		err = writePDF(path, text)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, string(format))
	}
	if err != nil {
		return "", err
	}
	return path, nil
}

// FileName derives the export file name from a document label. Separators
// are replaced so the file always lands in the export directory.
func FileName(name string, format Format) string {
	clean := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == os.PathSeparator || r == 0 {
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if clean == "" || clean == "." || clean == ".." {
		clean = domain.UnknownDocument
	}
	return clean + "." + string(format)
}

const (
	pdfFontSize   = 16.0
	pdfOriginX    = 10.0
	pdfOriginY    = 10.0
	pdfLineFactor = 1.15
)

// RenderPDF draws text on a single A4 page in the default core font,
// starting at the fixed top-left origin. Lines running past the page are clipped.
func RenderPDF(w io.Writer, text string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", pdfFontSize)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	lineHeight := pdf.PointConvert(pdfFontSize * pdfLineFactor)
	y := pdfOriginY
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		pdf.Text(pdfOriginX, y, tr(line))
		y += lineHeight
	}
	return pdf.Output(w)
}

func writePDF(path, text string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := RenderPDF(f, text); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
