// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"github.com/creachadair/jsonlib"
	"github.com/creachadair/jsonlib/alloc"
	"github.com/creachadair/jsonlib/cursor"
	"github.com/creachadair/jsonlib/jpath"
)

// getCommand prints the parts of a document selected by a path.
type getCommand struct {
	cfg    *settings
	file   string
	path   string
	pretty bool
	yaml   bool
}

func addGetCommand(app *kingpin.Application, cfg *settings) {
	c := &getCommand{cfg: cfg}
	cmd := app.Command("get", "Print the values selected by a path.").Alias("query")
	cmd.Flag("pretty", "Write a newline after each element.").Short('p').BoolVar(&c.pretty)
	cmd.Flag("yaml", "Write the selected values as YAML.").BoolVar(&c.yaml)
	cmd.Arg("file", "Input file (- for stdin).").Required().StringVar(&c.file)
	cmd.Arg("path", "A dotted path (a.b[0]) or a JSONPath expression ($..b).").Required().StringVar(&c.path)
	cmd.Action(c.run)
}

func (c *getCommand) run(_ *kingpin.ParseContext) error {
	data, err := readInput(c.file)
	if err != nil {
		return err
	}
	st := c.cfg.store(alloc.Heap)
	root, err := st.Parse(data)
	if err != nil {
		return errors.New(describe(c.file, err))
	}
	defer st.Free(root)

	found, err := selectNodes(root, c.path)
	if err != nil {
		return err
	} else if len(found) == 0 {
		return fmt.Errorf("no values match %q", c.path)
	}
	for _, n := range found {
		if err := writeNode(os.Stdout, st, n, c.pretty, c.yaml); err != nil {
			return err
		}
	}
	return nil
}

// selectNodes evaluates path against root. A path beginning with "$" is a
// JSONPath expression; anything else is a dotted cursor path.
func selectNodes(root *jsonlib.Node, path string) ([]*jsonlib.Node, error) {
	if strings.HasPrefix(path, "$") {
		e, err := jpath.Parse(path)
		if err != nil {
			return nil, fmt.Errorf("invalid path %q: %w", path, err)
		}
		return e.Eval(root), nil
	}
	elts, err := cursor.ParsePath(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path %q: %w", path, err)
	}
	n, err := cursor.Find(root, elts...)
	if err != nil {
		return nil, err
	}
	return []*jsonlib.Node{n}, nil
}
