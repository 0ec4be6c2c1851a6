package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/atomic"

	"github.com/wippyai/watim-playground/output"
	"github.com/wippyai/watim-playground/playground"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	okStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444"))
)

type compileFunc func(ctx context.Context, source string, sink output.Sink) (playground.Outcome, error)

type editorModel struct {
	ctx      context.Context
	err      error
	compile  compileFunc
	renderer *output.Renderer
	gen      *atomic.Uint64
	running  *sync.Mutex
	filename string
	status   string
	last     string
	editor   textarea.Model
	output   viewport.Model
	debounce time.Duration
	timeout  time.Duration
	width    int
	height   int
}

// recompileMsg fires once the debounce delay after an edit has passed
type recompileMsg struct {
	gen uint64
}

type compiledMsg struct {
	err     error
	blocks  []output.Block
	outcome playground.Outcome
	elapsed time.Duration
	gen     uint64
}

type savedMsg struct {
	err error
}

func newEditorModel(ctx context.Context, filename, source string, compile compileFunc) *editorModel {
	ta := textarea.New()
	ta.ShowLineNumbers = true
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.SetValue(source)
	ta.Focus()

	return &editorModel{
		ctx:      ctx,
		compile:  compile,
		renderer: output.NewRenderer(true),
		gen:      atomic.NewUint64(0),
		running:  &sync.Mutex{},
		filename: filename,
		last:     source,
		editor:   ta,
		output:   viewport.New(80, 10),
		debounce: 300 * time.Millisecond,
		timeout:  10 * time.Second,
	}
}

func (m *editorModel) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.schedule(0))
}

// schedule starts a new generation and asks for a recompile after d. Any
// result from an older generation is dropped when it arrives.
func (m *editorModel) schedule(d time.Duration) tea.Cmd {
	gen := m.gen.Inc()
	m.status = "compiling..."
	return tea.Tick(d, func(time.Time) tea.Msg {
		return recompileMsg{gen: gen}
	})
}

func (m *editorModel) runCompile(gen uint64, source string) tea.Cmd {
	return func() tea.Msg {
		m.running.Lock()
		defer m.running.Unlock()

		// a newer edit arrived while waiting for the previous run
		if gen != m.gen.Load() {
			return compiledMsg{gen: gen}
		}

		ctx, cancel := withTimeout(m.ctx, m.timeout)
		defer cancel()

		tr := &output.Transcript{}
		began := time.Now()
		out, err := m.compile(ctx, source, tr)
		return compiledMsg{
			gen:     gen,
			blocks:  tr.Blocks(),
			outcome: out,
			err:     err,
			elapsed: time.Since(began),
		}
	}
}

func (m *editorModel) save() tea.Msg {
	return savedMsg{err: os.WriteFile(m.filename, []byte(m.editor.Value()), 0o644)}
}

func (m *editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "ctrl+s":
			return m, m.save
		case "ctrl+r":
			return m, m.schedule(0)
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.output, cmd = m.output.Update(msg)
			return m, cmd
		}

	case recompileMsg:
		if msg.gen != m.gen.Load() {
			return m, nil
		}
		return m, m.runCompile(msg.gen, m.editor.Value())

	case compiledMsg:
		if msg.gen != m.gen.Load() {
			return m, nil
		}
		m.showResult(msg)
		return m, nil

	case savedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.status = "saved " + m.filename
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	if v := m.editor.Value(); v != m.last {
		m.last = v
		return m, tea.Batch(cmd, m.schedule(m.debounce))
	}
	return m, cmd
}

func (m *editorModel) showResult(msg compiledMsg) {
	m.err = msg.err
	m.output.SetContent(m.renderer.Render(msg.blocks))
	m.output.GotoBottom()

	res := msg.outcome.Result
	switch {
	case msg.err != nil:
		m.status = "failed"
	case !res.Ran:
		m.status = fmt.Sprintf("%s: not a command", msg.outcome.Stage)
	case msg.outcome.Stage == playground.StageCompile:
		m.status = fmt.Sprintf("compile failed (exit %d)", res.ExitCode)
	default:
		m.status = fmt.Sprintf("exit %d in %s", res.ExitCode, msg.elapsed.Round(time.Millisecond))
	}
}

func (m *editorModel) resize(width, height int) {
	m.width, m.height = width, height

	// title, status and help lines, plus two bordered panes
	avail := height - 3 - 4
	if avail < 4 {
		avail = 4
	}
	editorHeight := avail * 3 / 5
	m.editor.SetWidth(width - 2)
	m.editor.SetHeight(editorHeight)
	m.output.Width = width - 2
	m.output.Height = avail - editorHeight
}

func (m *editorModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("watim playground"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n")
	b.WriteString(paneStyle.Render(m.editor.View()))
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	case strings.HasPrefix(m.status, "exit 0"):
		b.WriteString(okStyle.Render(m.status))
	default:
		b.WriteString(m.status)
	}
	b.WriteString("\n")
	b.WriteString(paneStyle.Render(m.output.View()))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("ctrl+s save • ctrl+r rerun • pgup/pgdn scroll output • esc quit"))

	return b.String()
}
