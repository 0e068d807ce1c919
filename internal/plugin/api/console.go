package api

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Color is a named terminal color available to scripts.
type Color string

// Supported colors.
const (
	ColorRed     Color = "red"
	ColorGreen   Color = "green"
	ColorBlue    Color = "blue"
	ColorYellow  Color = "yellow"
	ColorCyan    Color = "cyan"
	ColorMagenta Color = "magenta"
	ColorWhite   Color = "white"
	ColorBlack   Color = "black"
)

// Colors lists the supported colors.
var Colors = []Color{
	ColorRed, ColorGreen, ColorBlue, ColorYellow,
	ColorCyan, ColorMagenta, ColorWhite, ColorBlack,
}

// ansiCodes maps colors to the basic 16-color ANSI palette.
var ansiCodes = map[Color]lipgloss.Color{
	ColorBlack:   lipgloss.Color("0"),
	ColorRed:     lipgloss.Color("1"),
	ColorGreen:   lipgloss.Color("2"),
	ColorYellow:  lipgloss.Color("3"),
	ColorBlue:    lipgloss.Color("4"),
	ColorMagenta: lipgloss.Color("5"),
	ColorCyan:    lipgloss.Color("6"),
	ColorWhite:   lipgloss.Color("7"),
}

// ParseColor resolves a color name case-insensitively.
func ParseColor(name string) (Color, bool) {
	c := Color(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := ansiCodes[c]; !ok {
		return "", false
	}
	return c, true
}

// Console is the output sink shared by every plugin invocation.
// Each call writes one whole line under a lock, so concurrent plugins never
// interleave within a line. Ordering across plugins is unspecified.
type Console struct {
	mu       sync.Mutex
	out      io.Writer
	errOut   io.Writer
	noColor  bool
	renderer *lipgloss.Renderer
}

// NewConsole creates a console writing script output to out and
// diagnostics to errOut. With noColor set, colored prints are written
// as plain text.
func NewConsole(out, errOut io.Writer, noColor bool) *Console {
	return &Console{
		out:      out,
		errOut:   errOut,
		noColor:  noColor,
		renderer: lipgloss.NewRenderer(out),
	}
}

// Println writes msg followed by a newline to the output stream.
func (c *Console) Println(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, msg)
}

// PrintColor writes msg in color to the output stream.
func (c *Console) PrintColor(msg string, color Color) {
	code, ok := ansiCodes[color]
	if !ok || c.noColor {
		c.Println(msg)
		return
	}
	styled := c.renderer.NewStyle().Foreground(code).Render(msg)

	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, styled)
}

// Errorln writes msg followed by a newline to the diagnostic stream.
func (c *Console) Errorln(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.errOut, msg)
}
