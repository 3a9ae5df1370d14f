// Package main provides UI utilities for the docpulse CLI.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/docpulse/docpulse/internal/domain"
)

// uiWriter provides user-friendly terminal output.
type uiWriter struct {
	noColor bool
}

func newUI(noColor bool) *uiWriter {
	return &uiWriter{noColor: noColor}
}

// Success prints a success message.
func (ui *uiWriter) Success(format string, args ...interface{}) {
	if ui.noColor {
		fmt.Printf("✓ %s\n", fmt.Sprintf(format, args...))
	} else {
		color.New(color.FgGreen).Printf("✓ %s\n", fmt.Sprintf(format, args...))
	}
}

// Error prints an error message.
func (ui *uiWriter) Error(format string, args ...interface{}) {
	if ui.noColor {
		fmt.Fprintf(os.Stderr, "✗ %s\n", fmt.Sprintf(format, args...))
	} else {
		color.New(color.FgRed).Fprintf(os.Stderr, "✗ %s\n", fmt.Sprintf(format, args...))
	}
}

// Info prints an info message.
func (ui *uiWriter) Info(format string, args ...interface{}) {
	if ui.noColor {
		fmt.Printf("ℹ %s\n", fmt.Sprintf(format, args...))
	} else {
		color.New(color.FgCyan).Printf("ℹ %s\n", fmt.Sprintf(format, args...))
	}
}

// PrintResults renders the per-page orientation table.
func (ui *uiWriter) PrintResults(results []domain.PageResult) {
	fmt.Printf("%-6s %-12s %-8s %-8s %-8s\n", "PAGE", "ORIENTATION", "ASPECT", "WIDTH", "HEIGHT")
	for _, r := range results {
		line := fmt.Sprintf("%-6d %-12s %-8.2f %-8d %-8d",
			r.Page, r.Orientation, r.AspectRatio, r.Width, r.Height)
		switch {
		case ui.noColor:
			fmt.Println(line)
		case r.IsVertical:
			color.New(color.FgYellow).Println(line)
		default:
			color.New(color.FgGreen).Println(line)
		}
	}
}
