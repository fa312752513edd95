package repl

import (
	"fmt"
	"io"
	"os"
	"strings"

	"intbridge/errors"

	"golang.org/x/term"
)

const (
	colorReset   = "\033[0m"
	colorPrimary = "\033[36m"
	colorMuted   = "\033[90m"
	colorSuccess = "\033[32m"
	colorError   = "\033[31m"
	colorWarning = "\033[33m"
)

// DisplayManager formats REPL output
type DisplayManager struct {
	out       io.Writer
	useColors bool
	width     int
}

// NewDisplayManager creates a display manager writing to out. The width is
// taken from the terminal when out is one.
func NewDisplayManager(out io.Writer, useColors bool) *DisplayManager {
	dm := &DisplayManager{out: out, useColors: useColors, width: 80}
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			dm.width = w
		}
	} else {
		dm.useColors = false
	}
	return dm
}

func (dm *DisplayManager) paint(color, text string) string {
	if !dm.useColors {
		return text
	}
	return color + text + colorReset
}

// ShowResult prints a command result
func (dm *DisplayManager) ShowResult(result string) {
	if result == "" {
		return
	}
	fmt.Fprintln(dm.out, dm.paint(colorSuccess, result))
}

// ShowError prints err the way a Python-style host would report it
func (dm *DisplayManager) ShowError(err error) {
	fmt.Fprintln(dm.out, dm.paint(colorError, errors.Translate(err).String()))
}

// ShowWarning prints a warning line
func (dm *DisplayManager) ShowWarning(message string) {
	fmt.Fprintln(dm.out, dm.paint(colorWarning, "warning: "+message))
}

// ShowWelcome prints the banner
func (dm *DisplayManager) ShowWelcome(profile string) {
	fmt.Fprintln(dm.out, dm.paint(colorPrimary, "intbridge "+Version+" - native integer marshalling"))
	fmt.Fprintf(dm.out, "platform profile %s. Type ':help' for commands, ':quit' to exit.\n", profile)
	fmt.Fprintln(dm.out, dm.paint(colorMuted, "End a line with \\ to continue it."))
	fmt.Fprintln(dm.out)
}

// ShowHelp lists the evaluator's commands
func (dm *DisplayManager) ShowHelp(eval *Evaluator) {
	fmt.Fprintln(dm.out, dm.paint(colorPrimary, "Commands:"))
	for _, name := range eval.Commands() {
		usage, help, _ := eval.Usage(name)
		dm.showEntry(usage, help)
	}
	dm.showEntry(":limits", "same as limits")
	dm.showEntry(":profile", "show the platform profile")
	dm.showEntry(":help", "show this help")
	dm.showEntry(":quit", "exit")
	fmt.Fprintln(dm.out)
	fmt.Fprintln(dm.out, "Any other input is run as Lua, e.g. intbridge.as_long(2^40)")
}

func (dm *DisplayManager) showEntry(usage, help string) {
	const column = 48
	if len(usage)+4 > column || dm.width < column+len(help) {
		fmt.Fprintf(dm.out, "  %s\n      %s\n", usage, dm.paint(colorMuted, help))
		return
	}
	fmt.Fprintf(dm.out, "  %s%s%s\n", usage, strings.Repeat(" ", column-2-len(usage)), dm.paint(colorMuted, help))
}
