package clipboard

import "github.com/atotto/clipboard"

// Writer puts text on a clipboard.
type Writer interface {
	WriteAll(text string) error
}

// System is the OS clipboard.
type System struct{}

func (System) WriteAll(text string) error { return clipboard.WriteAll(text) }

// Available reports whether the OS has a clipboard utility the client can drive.
func Available() bool { return !clipboard.Unsupported }

// Memory keeps the last written text; used when no system clipboard exists.
type Memory struct {
	Text string
}

func (m *Memory) WriteAll(text string) error {
	m.Text = text
	return nil
}
