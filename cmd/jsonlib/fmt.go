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
	"github.com/go-kit/log/level"
	"github.com/goccy/go-yaml"
	"github.com/tailscale/hujson"
)

// fmtCommand parses a document and writes it back out.
type fmtCommand struct {
	cfg    *settings
	file   string
	pretty bool
	jwcc   bool
	yaml   bool
}

func addFmtCommand(app *kingpin.Application, cfg *settings) {
	c := &fmtCommand{cfg: cfg}
	cmd := app.Command("fmt", "Parse a document and write it in compact or human-readable form.")
	cmd.Flag("pretty", "Write a newline after each element.").Short('p').BoolVar(&c.pretty)
	cmd.Flag("jwcc", "Accept comments and trailing commas in the input.").BoolVar(&c.jwcc)
	cmd.Flag("yaml", "Write the document as YAML.").BoolVar(&c.yaml)
	cmd.Arg("file", "Input file (default stdin).").StringVar(&c.file)
	cmd.Action(c.run)
}

func (c *fmtCommand) run(_ *kingpin.ParseContext) error {
	data, err := readInput(c.file)
	if err != nil {
		return err
	}
	if c.jwcc {
		data, err = hujson.Standardize(data)
		if err != nil {
			return fmt.Errorf("standardize %s: %w", c.file, err)
		}
	}

	st := c.cfg.store(alloc.Heap)
	root, err := st.Parse(data)
	if err != nil {
		return errors.New(describe(c.file, err))
	}
	defer st.Free(root)
	level.Debug(c.cfg.logger).Log("msg", "parsed input", "file", c.file, "bytes", len(data), "root", root)

	return writeNode(os.Stdout, st, root, c.pretty, c.yaml)
}

// writeNode writes n to w as JSON or YAML, followed by a newline.
func writeNode(w io.Writer, st *jsonlib.Store, n *jsonlib.Node, pretty, asYAML bool) error {
	if asYAML {
		out, err := yaml.Marshal(toYAML(n))
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	}
	buf, err := st.Serialize(n, pretty)
	if err != nil {
		return err
	}
	defer st.Release(buf)
	if _, err := w.Write(buf); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}

// toYAML converts the tree rooted at n into values that YAML encodes in the
// same order and shape as n. A named node is wrapped in a single-entry map.
func toYAML(n *jsonlib.Node) any {
	v := yamlValue(n)
	if n.HasName() {
		return yaml.MapSlice{{Key: n.Name(), Value: v}}
	}
	return v
}

func yamlValue(n *jsonlib.Node) any {
	switch n.Kind() {
	case jsonlib.KindObject:
		out := yaml.MapSlice{}
		for _, kid := range n.Children() {
			out = append(out, yaml.MapItem{Key: kid.Name(), Value: yamlValue(kid)})
		}
		return out
	case jsonlib.KindArray:
		out := []any{}
		for _, kid := range n.Children() {
			out = append(out, yamlValue(kid))
		}
		return out
	case jsonlib.KindString:
		return n.Text()
	case jsonlib.KindInteger:
		return n.Int()
	case jsonlib.KindDecimal:
		return n.Decimal()
	case jsonlib.KindBoolean:
		return n.Bool()
	}
	return nil
}
