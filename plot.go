package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/urfave/cli/v2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// runPlot renders the per-op latency of every entrant in a bench CSV as a
// bar chart.
func runPlot(c *cli.Context) error {
	f, err := os.Open(c.String("in"))
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return fmt.Errorf("plot: read %s: %w", c.String("in"), err)
	}
	if len(rows) < 2 {
		return fmt.Errorf("plot: %s has no data rows", c.String("in"))
	}

	var names []string
	var values plotter.Values
	for _, row := range rows[1:] {
		latency, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			return fmt.Errorf("plot: bad latency %q: %w", row[3], err)
		}
		name := row[0]
		if row[1] != "" {
			name += "/" + row[1]
		}
		names = append(names, name)
		values = append(values, latency)
	}

	p := plot.New()
	p.Title.Text = "Per-op latency"
	p.Y.Label.Text = "ns/op"
	p.X.Tick.Label.Rotation = 0.5

	bars, err := plotter.NewBarChart(values, vg.Points(24))
	if err != nil {
		return fmt.Errorf("plot: %w", err)
	}
	p.Add(bars)
	p.NominalX(names...)

	if err := p.Save(8*vg.Inch, 4*vg.Inch, c.String("out")); err != nil {
		return fmt.Errorf("plot: save: %w", err)
	}
	fmt.Printf("Chart written to %s\n", c.String("out"))
	return nil
}
