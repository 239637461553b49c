package main

import (
	"fmt"
	"math/rand"
	"slices"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/btree-query-bench/treeidx/index"
	"github.com/btree-query-bench/treeidx/index/bptree"
	"github.com/btree-query-bench/treeidx/index/refmap"
)

// CrossCheck replays a uniform op stream against both indexes, comparing
// every return value and the running size. Returns the index of the first
// diverging op, or -1.
func CrossCheck(subject, oracle index.Index, ops []TestOp) (int, error) {
	for i := range ops {
		key := ops[i].Key
		var same bool
		switch ops[i].Op {
		case OpFind:
			same = subject.Find(key).AtEnd() == oracle.Find(key).AtEnd()
		case OpInsert:
			same = subject.Insert(key, benchValue).AtEnd() == oracle.Insert(key, benchValue).AtEnd()
		case OpUpdate:
			same = subject.Update(key, benchValue) == oracle.Update(key, benchValue)
		case OpUpsert:
			same = subject.Upsert(key, benchValue).AtEnd() == oracle.Upsert(key, benchValue).AtEnd()
		case OpRemove:
			same = subject.Remove(key) == oracle.Remove(key)
		}
		if !same {
			return i, fmt.Errorf("op %d: %s %d diverged", i, ops[i].Op, key)
		}
		if s, o := subject.Size(), oracle.Size(); s != o {
			return i, fmt.Errorf("op %d: size %d, oracle %d", i, s, o)
		}
	}
	return -1, nil
}

func runCheck(c *cli.Context) error {
	rng := rand.New(rand.NewSource(c.Int64("seed")))
	ops := GenerateUniformOps(rng, c.Int("ops"), c.Int64("keys"))

	tree := bptree.NewTree(c.Int("order"))
	oracle := refmap.New()

	fmt.Printf("Replaying %d ops over key space %d (order %d)\n",
		len(ops), c.Int64("keys"), c.Int("order"))
	if i, err := CrossCheck(tree, oracle, ops); err != nil {
		color.Red("FAIL at op %d: %v", i, err)
		return err
	}

	forward := tree.CollectKeys(nil, false)
	if want := oracle.CollectKeys(nil, false); !slices.Equal(forward, want) {
		color.Red("FAIL: forward enumeration diverges from oracle")
		return fmt.Errorf("check: enumeration mismatch")
	}
	backward := tree.CollectKeys(nil, true)
	slices.Reverse(backward)
	if !slices.Equal(forward, backward) {
		color.Red("FAIL: backward enumeration is not the reverse of forward")
		return fmt.Errorf("check: enumeration mismatch")
	}
	if err := tree.Verify(); err != nil {
		color.Red("FAIL: %v", err)
		return err
	}

	color.Green("OK: %d ops, final size %d, tree verified", len(ops), tree.Size())
	return nil
}
