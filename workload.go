package main

import (
	"math/rand"

	"github.com/btree-query-bench/treeidx/index"
)

// Op identifies one operation in a generated stream.
type Op int

const (
	OpFind Op = iota
	OpInsert
	OpUpdate
	OpUpsert
	OpRemove
	opCount
)

func (o Op) String() string {
	switch o {
	case OpFind:
		return "find"
	case OpInsert:
		return "insert"
	case OpUpdate:
		return "update"
	case OpUpsert:
		return "upsert"
	case OpRemove:
		return "remove"
	}
	return "unknown"
}

// TestOp is one operation of a pre-generated stream.
type TestOp struct {
	Op  Op
	Key int64
}

// GenerateUniformOps draws ops uniformly from all five operations over
// [0, maxKey). This is the stream the oracle cross-check runs.
func GenerateUniformOps(rng *rand.Rand, n int, maxKey int64) []TestOp {
	ops := make([]TestOp, 0, n)
	for i := 0; i < n; i++ {
		ops = append(ops, TestOp{Op: Op(rng.Intn(int(opCount))), Key: rng.Int63n(maxKey)})
	}
	return ops
}

// GenerateMixOps draws find/insert/remove operations in the given
// percentages (remove takes the remainder). This is the throughput stream.
func GenerateMixOps(rng *rand.Rand, n int, maxKey int64, percentFind, percentInsert int) []TestOp {
	ops := make([]TestOp, 0, n)
	for i := 0; i < n; i++ {
		p := rng.Intn(100)
		key := rng.Int63n(maxKey)
		switch {
		case p < percentFind:
			ops = append(ops, TestOp{Op: OpFind, Key: key})
		case p < percentFind+percentInsert:
			ops = append(ops, TestOp{Op: OpInsert, Key: key})
		default:
			ops = append(ops, TestOp{Op: OpRemove, Key: key})
		}
	}
	return ops
}

// ExecuteOps runs the stream against idx and returns the number of
// successful finds. The count is compared across entrants after a run as a
// cheap correctness cross-check.
func ExecuteOps(idx index.Index, ops []TestOp) int64 {
	var finds int64
	for i := range ops {
		switch ops[i].Op {
		case OpFind:
			if !idx.Find(ops[i].Key).AtEnd() {
				finds++
			}
		case OpInsert:
			idx.Insert(ops[i].Key, benchValue)
		case OpUpdate:
			idx.Update(ops[i].Key, benchValue)
		case OpUpsert:
			idx.Upsert(ops[i].Key, benchValue)
		case OpRemove:
			idx.Remove(ops[i].Key)
		}
	}
	return finds
}

// benchValue is the single value stored by generated streams. The structures
// never read it, so sharing one slice keeps the workload allocation-free.
var benchValue = []byte("v")
