package cli

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/custodia-labs/curator/internal/core/domain"
)

// palette holds the colours used for status output.
type palette struct {
	Info     lipgloss.Color
	Warning  lipgloss.Color
	Error    lipgloss.Color
	Critical lipgloss.Color
	Accent   lipgloss.Color
}

func defaultPalette() palette {
	return palette{
		Info:     lipgloss.Color("#06B6D4"), // Cyan
		Warning:  lipgloss.Color("#F9E2AF"), // Yellow
		Error:    lipgloss.Color("#F38BA8"), // Red
		Critical: lipgloss.Color("#F38BA8"),
		Accent:   lipgloss.Color("#7C3AED"), // Purple
	}
}

// statusPrinter writes pipeline status lines, coloured when w is a terminal.
type statusPrinter struct {
	mu     sync.Mutex
	w      io.Writer
	labels map[domain.StatusLevel]lipgloss.Style
}

func newStatusPrinter(w io.Writer) *statusPrinter {
	p := &statusPrinter{
		w:      w,
		labels: make(map[domain.StatusLevel]lipgloss.Style),
	}

	colour := !noColour && isTerminal(w)
	c := defaultPalette()
	for level, col := range map[domain.StatusLevel]lipgloss.Color{
		domain.StatusInfo:     c.Info,
		domain.StatusWarning:  c.Warning,
		domain.StatusError:    c.Error,
		domain.StatusCritical: c.Critical,
	} {
		style := lipgloss.NewStyle()
		if colour {
			style = style.Foreground(col).Bold(level >= domain.StatusError)
		}
		p.labels[level] = style
	}
	return p
}

// Status implements domain.StatusFunc.
func (p *statusPrinter) Status(level domain.StatusLevel, msg string) {
	label, ok := p.labels[level]
	if !ok {
		label = p.labels[domain.StatusInfo]
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "%s %s\n", label.Render(fmt.Sprintf("[%s]", level)), msg)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
