package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/btree-query-bench/treeidx/index/bptree"
)

func runRepl(c *cli.Context) error {
	tree := bptree.NewTree(c.Int("order"))

	fmt.Println(`B+ tree REPL

Available commands:
  SET <key> <val>     Insert (fails if the key exists)
  PUT <key> <val>     Upsert
  UPDATE <key> <val>  Update (fails if the key is missing)
  GET <key>           Look up a key
  DEL <key>           Remove a key
  KEYS [desc]         Enumerate all keys
  SIZE                Entry count
  PRINT               Dump the tree structure
  CHECK               Run the integrity checker
  EXIT                Leave`)

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		replDispatch(tree, scanner.Text())
		fmt.Print("> ")
	}
	return scanner.Err()
}

func replDispatch(tree *bptree.Tree, line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	parseKey := func(s string) (int64, bool) {
		k, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			color.Red("bad key %q", s)
			return 0, false
		}
		return k, true
	}

	switch cmd {
	case "set", "put", "update":
		if len(args) != 2 {
			fmt.Printf("Usage: %s <key> <value>\n", strings.ToUpper(cmd))
			return
		}
		key, ok := parseKey(args[0])
		if !ok {
			return
		}
		value := []byte(args[1])
		switch cmd {
		case "set":
			if tree.Insert(key, value).AtEnd() {
				color.Red("key %d already exists", key)
				return
			}
		case "put":
			tree.Upsert(key, value)
		case "update":
			if !tree.Update(key, value) {
				color.Red("key %d not found", key)
				return
			}
		}
		color.Green("OK")

	case "get":
		if len(args) != 1 {
			fmt.Println("Usage: GET <key>")
			return
		}
		key, ok := parseKey(args[0])
		if !ok {
			return
		}
		it := tree.Find(key)
		if it.AtEnd() {
			color.Red("key %d not found", key)
			return
		}
		fmt.Println(string(it.Value()))

	case "del":
		if len(args) != 1 {
			fmt.Println("Usage: DEL <key>")
			return
		}
		key, ok := parseKey(args[0])
		if !ok {
			return
		}
		if !tree.Remove(key) {
			color.Red("key %d not found", key)
			return
		}
		color.Green("OK")

	case "keys":
		desc := len(args) == 1 && strings.EqualFold(args[0], "desc")
		fmt.Println(tree.CollectKeys(nil, desc))

	case "size":
		fmt.Println(tree.Size())

	case "print":
		fmt.Print(tree.DebugString())

	case "check":
		if err := tree.Verify(); err != nil {
			color.Red("%v", err)
			return
		}
		color.Green("tree verified")

	case "exit":
		os.Exit(0)

	default:
		fmt.Printf("Unknown command %q\n", cmd)
	}
}
