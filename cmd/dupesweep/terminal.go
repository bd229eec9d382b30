package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/dupesweep/sweep/disposition"
	"github.com/ZanzyTHEbar/dupesweep/sweep/ports"

	"github.com/mattn/go-isatty"
)

// terminal is the line-based Interactor used by the CLI
type terminal struct {
	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer
}

func newTerminal(in io.Reader, out, errOut io.Writer) *terminal {
	return &terminal{in: bufio.NewReader(in), out: out, errOut: errOut}
}

func (t *terminal) Output(message string) {
	fmt.Fprintln(t.out, message)
}

func (t *terminal) Warning(message string) {
	fmt.Fprintln(t.out, message)
}

func (t *terminal) Error(message string, err error) {
	fmt.Fprintf(t.errOut, "Error: %s: %v\n", message, err)
}

// Prompt reads one line; a final line without a newline still counts
func (t *terminal) Prompt(message string) (string, error) {
	fmt.Fprint(t.out, message)
	line, err := t.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

var _ ports.Interactor = (*terminal)(nil)

func isInteractive(r io.Reader) bool {
	file, ok := r.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// promptMode shows the three-option menu. Anything unrecognised takes no
// action; answered is false in that case and the notice is already printed.
func promptMode(ui ports.Interactor) (mode disposition.Mode, answered bool) {
	ui.Output("Choose an action:")
	for i, m := range disposition.Modes {
		ui.Output(fmt.Sprintf("%d - %s", i+1, m.Describe()))
	}

	answer, err := ui.Prompt("Enter your choice (1/2/3): ")
	if err != nil {
		ui.Error("failed to read choice", err)
		ui.Warning("No action taken.")
		return disposition.ModeKeepAll, false
	}

	mode, err = disposition.ParseMode(answer)
	if err != nil {
		ui.Warning("Invalid option. No action taken.")
		return disposition.ModeKeepAll, false
	}
	return mode, true
}
