package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
)

var (
	panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444466")).
		Padding(0, 2)

	title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00ffff"))

	metricLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899")).
			Width(28)

	metricValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ccff")).
			Bold(true)
)

// summary renders a titled box of key/value rows with the metrics sorted
// by name underneath.
func summary(heading string, rows [][2]string, metrics map[string]float64) string {
	var sb strings.Builder
	sb.WriteString(title.Render(heading))
	sb.WriteString("\n")
	for _, r := range rows {
		sb.WriteString("\n" + metricLabel.Render(r[0]) + metricValue.Render(r[1]))
	}

	if len(metrics) > 0 {
		names := make([]string, 0, len(metrics))
		for name := range metrics {
			names = append(names, name)
		}
		sort.Strings(names)
		sb.WriteString("\n")
		for _, name := range names {
			sb.WriteString("\n" + metricLabel.Render(name) + metricValue.Render(fmt.Sprintf("%.6g", metrics[name])))
		}
	}
	return panel.Render(sb.String())
}

type colorPrinter struct {
	red    *color.Color
	green  *color.Color
	yellow *color.Color
	cyan   *color.Color
}

// colors is replaced once flags are parsed; the default covers errors
// raised before that.
var colors *colorPrinter

func init() {
	colors = newColorPrinter(false)
}

func newColorPrinter(disable bool) *colorPrinter {
	c := &colorPrinter{
		red:    color.New(color.FgRed),
		green:  color.New(color.FgGreen),
		yellow: color.New(color.FgYellow),
		cyan:   color.New(color.FgCyan),
	}
	if disable {
		for _, col := range []*color.Color{c.red, c.green, c.yellow, c.cyan} {
			col.DisableColor()
		}
	}
	return c
}

func (c *colorPrinter) Red(s string) string    { return c.red.Sprint(s) }
func (c *colorPrinter) Green(s string) string  { return c.green.Sprint(s) }
func (c *colorPrinter) Yellow(s string) string { return c.yellow.Sprint(s) }
func (c *colorPrinter) Cyan(s string) string   { return c.cyan.Sprint(s) }
