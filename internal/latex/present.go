package latex

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	// NotCompiledMessage is shown while no PDF exists yet.
	NotCompiledMessage = "Compile the resume to see PDF preview here."

	previewLimit = 4000
)

// Payload is a compiled PDF ready for display or download.
type Payload struct {
	Ready   bool
	Message string

	Path string
	// Name is the download file name.
	Name string
	Data []byte

	Pages   int
	Preview string
}

// Present loads artifactPath into memory. A missing artifact yields a payload
// with Ready false rather than an error.
func Present(artifactPath string) (Payload, error) {
	info, err := os.Stat(artifactPath)
	if err != nil || !info.Mode().IsRegular() {
		return Payload{Message: NotCompiledMessage}, nil
	}
	data, err := os.ReadFile(artifactPath)
	if err != nil {
		return Payload{}, fmt.Errorf("latex: read %s: %w", artifactPath, err)
	}
	p := Payload{
		Ready: true,
		Path:  artifactPath,
		Name:  filepath.Base(artifactPath),
		Data:  data,
	}
	p.Pages, p.Preview = inspect(data)
	p.Message = fmt.Sprintf("%s · %s", p.Name, humanBytes(len(data)))
	if p.Pages > 0 {
		p.Message += fmt.Sprintf(" · %d page(s)", p.Pages)
	}
	return p, nil
}

// MIMEType is always application/pdf.
func (p Payload) MIMEType() string {
	return "application/pdf"
}

// DataURI returns the inline-embeddable form of the document.
func (p Payload) DataURI() string {
	if !p.Ready {
		return ""
	}
	return "data:" + p.MIMEType() + ";base64," + base64.StdEncoding.EncodeToString(p.Data)
}

// SaveTo writes the document into dir under its download name.
func (p Payload) SaveTo(dir string) (string, error) {
	if !p.Ready {
		return "", fmt.Errorf("latex: nothing compiled yet")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("latex: ensure %s: %w", dir, err)
	}
	target := filepath.Join(dir, p.Name)
	if samePath(target, p.Path) {
		return target, nil
	}
	if err := os.WriteFile(target, p.Data, 0o644); err != nil {
		return "", fmt.Errorf("latex: write %s: %w", target, err)
	}
	return target, nil
}

// inspect extracts the page count and plain text. Malformed documents just
// produce no preview.
func inspect(data []byte) (pages int, preview string) {
	defer func() {
		if r := recover(); r != nil {
			pages, preview = 0, ""
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, ""
	}
	pages = reader.NumPage()
	var b strings.Builder
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
		if b.Len() > previewLimit {
			break
		}
	}
	return pages, Tail(strings.TrimSpace(b.String()), previewLimit)
}

func samePath(a, b string) bool {
	if b == "" {
		return false
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

func humanBytes(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
