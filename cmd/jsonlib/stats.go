// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/creachadair/jsonlib"
	"github.com/creachadair/jsonlib/alloc"
	"github.com/dustin/go-humanize"
)

// statsCommand reports the shape of a document and the memory used to parse
// and serialize it.
type statsCommand struct {
	cfg  *settings
	file string
}

func addStatsCommand(app *kingpin.Application, cfg *settings) {
	c := &statsCommand{cfg: cfg}
	cmd := app.Command("stats", "Print the shape of a document and the memory reserved to process it.")
	cmd.Arg("file", "Input file (default stdin).").StringVar(&c.file)
	cmd.Action(c.run)
}

func (c *statsCommand) run(_ *kingpin.ParseContext) error {
	data, err := readInput(c.file)
	if err != nil {
		return err
	}
	counter := alloc.NewCounter()
	st := c.cfg.store(counter)
	root, err := st.Parse(data)
	if err != nil {
		return errors.New(describe(c.file, err))
	}
	shape := measure(root, 1)

	buf, err := st.Serialize(root, false)
	if err != nil {
		st.Free(root)
		return err
	}
	report := counter.Report()
	st.Release(buf)
	st.Free(root)

	printStats(os.Stdout, len(data), len(buf), shape, report)
	if n := counter.Outstanding(); n != 0 {
		errColor.Printf("%d reservations outstanding after free\n", n)
		return fmt.Errorf("leaked %d reservations", n)
	}
	okColor.Println("all reservations returned")
	return nil
}

// treeShape summarizes the structure of a tree.
type treeShape struct {
	Nodes  int
	Depth  int
	ByKind map[jsonlib.Kind]int
}

func measure(n *jsonlib.Node, depth int) treeShape {
	s := treeShape{Nodes: 1, Depth: depth, ByKind: map[jsonlib.Kind]int{n.Kind(): 1}}
	for _, kid := range n.Children() {
		ks := measure(kid, depth+1)
		s.Nodes += ks.Nodes
		s.Depth = max(s.Depth, ks.Depth)
		for k, v := range ks.ByKind {
			s.ByKind[k] += v
		}
	}
	return s
}

func printStats(w io.Writer, inBytes, outBytes int, shape treeShape, report map[alloc.Class]alloc.Usage) {
	nameColor.Fprintln(w, "Document:")
	fmt.Fprintf(w, "\tinput: %v, compact output: %v\n",
		humanize.Bytes(uint64(inBytes)), humanize.Bytes(uint64(outBytes)))
	fmt.Fprintf(w, "\tnodes: %d, depth: %d\n", shape.Nodes, shape.Depth)
	for k := jsonlib.KindString; k <= jsonlib.KindNull; k++ {
		if n := shape.ByKind[k]; n != 0 {
			fmt.Fprintf(w, "\t\t%s: %d\n", k, n)
		}
	}

	nameColor.Fprintln(w, "Reservations:")
	for _, cls := range alloc.Classes() {
		u := report[cls]
		if u.Allocs == 0 {
			continue
		}
		fmt.Fprintf(w, "\t%-8s allocs: %d, frees: %d, live: %v, peak: %v\n",
			cls, u.Allocs, u.Frees, humanize.Bytes(uint64(u.Bytes)), humanize.Bytes(uint64(u.Peak)))
	}
}
