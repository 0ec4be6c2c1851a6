package output

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	stdoutStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA"))

	stderrStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))
)

// Renderer turns blocks into display text. A plain renderer returns the
// text unchanged.
type Renderer struct {
	stdout lipgloss.Style
	stderr lipgloss.Style
	plain  bool
}

// NewRenderer creates a renderer; styled selects lipgloss colors
func NewRenderer(styled bool) *Renderer {
	return &Renderer{
		stdout: stdoutStyle,
		stderr: stderrStyle,
		plain:  !styled,
	}
}

// Render renders every block in order
func (r *Renderer) Render(blocks []Block) string {
	var b strings.Builder
	for _, blk := range blocks {
		b.WriteString(r.RenderText(blk.Descriptor, blk.Text))
	}
	return b.String()
}

// RenderText styles text as if written to fd. Styling is applied per line so
// line breaks survive untouched.
func (r *Renderer) RenderText(fd uint32, text string) string {
	if r.plain || text == "" {
		return text
	}
	style := r.stdout
	if fd == Stderr {
		style = r.stderr
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = style.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

// Styled returns a sink that writes rendered chunks through to next
func (r *Renderer) Styled(next Sink) Sink {
	return Func(func(o Output) {
		next.Write(Output{Descriptor: o.Descriptor, Data: r.RenderText(o.Descriptor, o.Data)})
	})
}
