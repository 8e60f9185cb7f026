// Package cli provides the command-line interface for the trading engine.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// Color codes for terminal output
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorCyan   = "\033[36m"
	ColorBold   = "\033[1m"
	ColorDim    = "\033[2m"
)

// Output handles formatted output for the CLI.
type Output struct {
	writer       io.Writer
	jsonMode     bool
	colorEnabled bool
}

// NewOutput creates a new Output instance.
func NewOutput(cmd *cobra.Command) *Output {
	jsonMode, _ := cmd.Flags().GetBool("json")
	return &Output{
		writer:       cmd.OutOrStdout(),
		jsonMode:     jsonMode,
		colorEnabled: !jsonMode && isTerminal(),
	}
}

// isTerminal checks if stdout is a terminal.
func isTerminal() bool {
	fileInfo, _ := os.Stdout.Stat()
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// IsJSON returns true if JSON output mode is enabled.
func (o *Output) IsJSON() bool {
	return o.jsonMode
}

// JSON outputs data as indented JSON.
func (o *Output) JSON(data interface{}) error {
	encoder := json.NewEncoder(o.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Printf writes formatted output.
func (o *Output) Printf(format string, args ...interface{}) {
	fmt.Fprintf(o.writer, format, args...)
}

// Println writes a line of output.
func (o *Output) Println(args ...interface{}) {
	fmt.Fprintln(o.writer, args...)
}

func (o *Output) colored(color, s string) string {
	if !o.colorEnabled {
		return s
	}
	return color + s + ColorReset
}

// Success prints a green status line.
func (o *Output) Success(format string, args ...interface{}) {
	o.Println(o.colored(ColorGreen, "✓ "+fmt.Sprintf(format, args...)))
}

// Warn prints a yellow status line.
func (o *Output) Warn(format string, args ...interface{}) {
	o.Println(o.colored(ColorYellow, "! "+fmt.Sprintf(format, args...)))
}

// Error prints a red status line.
func (o *Output) Error(format string, args ...interface{}) {
	o.Println(o.colored(ColorRed, "✗ "+fmt.Sprintf(format, args...)))
}

// Header prints a bold section header.
func (o *Output) Header(s string) {
	o.Println(o.colored(ColorBold, s))
}

// PnL formats a P&L value green or red.
func (o *Output) PnL(v float64) string {
	s := fmt.Sprintf("%+.2f", v)
	if v >= 0 {
		return o.colored(ColorGreen, s)
	}
	return o.colored(ColorRed, s)
}
