package main

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/btree-query-bench/treeidx/index"
	"github.com/btree-query-bench/treeidx/index/bptree"
	"github.com/btree-query-bench/treeidx/index/btree"
	"github.com/btree-query-bench/treeidx/index/listindex"
	"github.com/btree-query-bench/treeidx/index/lsm"
	"github.com/btree-query-bench/treeidx/index/refmap"
)

// BenchResult is one CSV row of a throughput run.
type BenchResult struct {
	Name      string
	Config    string
	Operation string
	LatencyNs int64
	MemMB     uint64
	Objects   uint64
}

type MemoryStats struct {
	AllocMB      uint64
	TotalAllocMB uint64
	HeapObjects  uint64
}

// GetDetailedMem samples live heap usage. GC runs first so the numbers
// reflect retained data, not garbage.
func GetDetailedMem() MemoryStats {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	return MemoryStats{
		AllocMB:      m.Alloc / 1024 / 1024,
		TotalAllocMB: m.TotalAlloc / 1024 / 1024,
		HeapObjects:  m.HeapObjects,
	}
}

func Record(w *csv.Writer, res BenchResult) {
	w.Write([]string{
		res.Name,
		res.Config,
		res.Operation,
		strconv.FormatInt(res.LatencyNs, 10),
		strconv.FormatUint(res.MemMB, 10),
		strconv.FormatUint(res.Objects, 10),
	})
}

// entrant is one structure in a throughput run. make builds a fresh instance
// per iteration; close releases it (nil when nothing to release).
type entrant struct {
	name   string
	config string
	make   func() (index.Index, error)
	close  func(index.Index) error
}

func entrants(orders []int, naive bool) []entrant {
	var es []entrant
	for _, o := range orders {
		es = append(es, entrant{
			name:   "bplustree",
			config: strconv.Itoa(o),
			make:   func() (index.Index, error) { return bptree.NewTree(o), nil },
		})
		es = append(es, entrant{
			name:   "btree",
			config: strconv.Itoa(o),
			make:   func() (index.Index, error) { return btree.New((o + 1) / 2), nil },
		})
	}
	es = append(es, entrant{
		name: "refmap",
		make: func() (index.Index, error) { return refmap.New(), nil },
	})
	es = append(es, entrant{
		name:  "pebble",
		make:  func() (index.Index, error) { return lsm.OpenMem() },
		close: func(i index.Index) error { return i.(*lsm.LSM).Close() },
	})
	if naive {
		es = append(es, entrant{
			name: "listindex",
			make: func() (index.Index, error) { return listindex.New(), nil },
		})
	}
	return es
}

func runBench(c *cli.Context) error {
	numOps := c.Int("ops")
	maxKey := c.Int64("keys")
	pctFind := c.Int("find")
	pctInsert := c.Int("insert")
	iters := c.Int("iters")
	if pctFind+pctInsert > 100 {
		return fmt.Errorf("find and insert percentages sum to more than 100")
	}

	rng := rand.New(rand.NewSource(c.Int64("seed")))
	ops := GenerateMixOps(rng, numOps, maxKey, pctFind, pctInsert)

	f, err := os.Create(c.String("out"))
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	w.Write([]string{"Structure", "Config", "TestType", "LatencyNs", "MemMB", "HeapObjects"})

	fmt.Printf("Running throughput benchmark: %d ops, key space %d\n", numOps, maxKey)
	fmt.Printf("  Find: %d%%   Insert: %d%%   Remove: %d%%\n", pctFind, pctInsert, 100-pctFind-pctInsert)

	finds := make(map[string]int64)
	for _, e := range entrants(c.IntSlice("orders"), c.Bool("naive")) {
		label := e.name
		if e.config != "" {
			label += " (order " + e.config + ")"
		}
		fmt.Printf("Testing %-24s", label)

		var found int64
		start := time.Now()
		for i := 0; i < iters; i++ {
			idx, err := e.make()
			if err != nil {
				return fmt.Errorf("bench: %s: %w", e.name, err)
			}
			found = ExecuteOps(idx, ops)
			if e.close != nil {
				if err := e.close(idx); err != nil {
					return fmt.Errorf("bench: %s: %w", e.name, err)
				}
			}
		}
		elapsed := time.Since(start)

		transactions := int64(len(ops)) * int64(iters)
		color.Green(": %0.3f kTPS", float64(transactions)/elapsed.Seconds()/1000)

		stats := GetDetailedMem()
		Record(w, BenchResult{
			Name:      e.name,
			Config:    e.config,
			Operation: "Throughput",
			LatencyNs: elapsed.Nanoseconds() / transactions,
			MemMB:     stats.AllocMB,
			Objects:   stats.HeapObjects,
		})
		finds[e.name] = found
	}
	w.Flush()

	// Every entrant ran the same stream, so the find counts must agree.
	if finds["bplustree"] != finds["refmap"] {
		color.Red("Incorrect results: bplustree found %d, refmap found %d",
			finds["bplustree"], finds["refmap"])
		return fmt.Errorf("bench: entrants disagree")
	}
	fmt.Printf("Results written to %s\n", c.String("out"))
	return w.Error()
}
