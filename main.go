// Command treeidx drives the ordered index structures in this repository:
// throughput benchmarks across all entrants, an oracle cross-check of the
// B+ tree against the reference map, result plotting and an interactive REPL.
package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "treeidx",
		Usage: "benchmark and exercise the ordered index structures",
		Commands: []*cli.Command{
			{
				Name:  "bench",
				Usage: "run the throughput benchmark across all entrants",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "ops", Value: 5000000, Usage: "operations per iteration"},
					&cli.Int64Flag{Name: "keys", Value: 50000, Usage: "key space size"},
					&cli.IntFlag{Name: "find", Value: 70, Usage: "percentage of finds"},
					&cli.IntFlag{Name: "insert", Value: 20, Usage: "percentage of inserts"},
					&cli.IntFlag{Name: "iters", Value: 5, Usage: "iterations per entrant"},
					&cli.IntSliceFlag{Name: "orders", Value: cli.NewIntSlice(8, 32, 128), Usage: "tree orders to sweep"},
					&cli.Int64Flag{Name: "seed", Value: 0, Usage: "stream seed"},
					&cli.BoolFlag{Name: "naive", Usage: "include the linear-scan baseline"},
					&cli.StringFlag{Name: "out", Value: "results.csv", Usage: "CSV output path"},
				},
				Action: runBench,
			},
			{
				Name:  "plot",
				Usage: "render a latency chart from a bench CSV",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "in", Value: "results.csv", Usage: "bench CSV to read"},
					&cli.StringFlag{Name: "out", Value: "results.png", Usage: "chart output path"},
				},
				Action: runPlot,
			},
			{
				Name:  "check",
				Usage: "cross-check the B+ tree against the reference map",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "ops", Value: 100000, Usage: "operations in the stream"},
					&cli.Int64Flag{Name: "keys", Value: 100000, Usage: "key space size"},
					&cli.IntFlag{Name: "order", Value: 16, Usage: "tree order"},
					&cli.Int64Flag{Name: "seed", Value: 0, Usage: "stream seed"},
				},
				Action: runCheck,
			},
			{
				Name:  "repl",
				Usage: "interactive session against a live B+ tree",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "order", Value: 4, Usage: "tree order"},
				},
				Action: runRepl,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
