package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/gookit/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/dbsmedya/dicttree/internal/taxonomy"
)

// outputWriter is used for printing output, can be overridden in tests
var outputWriter io.Writer = os.Stdout

// setOutputWriter sets the output writer (used for testing)
func setOutputWriter(w io.Writer) {
	outputWriter = w
}

// resetOutputWriter resets output to stdout (used for testing)
func resetOutputWriter() {
	outputWriter = os.Stdout
}

const (
	formatText = "text"
	formatJSON = "json"
)

// outputFormat is shared by every command that prints data.
var outputFormat string

func addFormatFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&outputFormat, "format", formatText, "Output format (text, json)")
}

func checkFormat() error {
	switch outputFormat {
	case formatText, formatJSON, "":
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want text or json)", outputFormat)
	}
}

func jsonOutput() bool {
	return outputFormat == formatJSON
}

// printJSON writes v as indented JSON.
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(outputWriter, string(data))
	return err
}

// printHeader prints a formatted header
func printHeader(format string, args ...interface{}) {
	title := fmt.Sprintf(format, args...)
	width := visualWidth(title) + 4
	fmt.Fprintln(outputWriter, strings.Repeat("=", width))
	fmt.Fprintf(outputWriter, "  %s\n", color.Bold.Sprint(title))
	fmt.Fprintln(outputWriter, strings.Repeat("=", width))
}

// printSection prints a section header
func printSection(title string) {
	fmt.Fprintf(outputWriter, "[%s]\n", title)
	fmt.Fprintln(outputWriter, strings.Repeat("-", visualWidth(title)+2))
}

// visualWidth returns the terminal width of s, counting wide (CJK) runes as two.
func visualWidth(s string) int {
	return runewidth.StringWidth(s)
}

// padRight pads s with spaces to width terminal columns.
func padRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// styleName colors a type name by status.
func styleName(rec taxonomy.Record) string {
	if rec.Status == taxonomy.StatusDisabled {
		return color.FgGray.Sprint(rec.Name)
	}
	return rec.Name
}

func styleKey(key string) string {
	return color.FgCyan.Sprint(key)
}

func statusText(s taxonomy.Status) string {
	if s == taxonomy.StatusDisabled {
		return color.FgYellow.Sprint("disabled")
	}
	return color.FgGreen.Sprint("enabled")
}

// optionTable prints options as aligned label, value and id columns.
func optionTable(options []taxonomy.Option) {
	labelWidth, valueWidth := 0, 0
	for _, o := range options {
		labelWidth = max(labelWidth, visualWidth(o.Label))
		valueWidth = max(valueWidth, visualWidth(o.Value))
	}
	for _, o := range options {
		id := "-"
		if o.ID != 0 {
			id = fmt.Sprintf("#%d", o.ID)
		}
		fmt.Fprintf(outputWriter, "  %s  %s  %s\n",
			padRight(o.Label, labelWidth),
			styleKey(padRight(o.Value, valueWidth)),
			color.FgGray.Sprint(id))
	}
}
