// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/creachadair/jsonlib"
	"github.com/creachadair/jsonlib/alloc"
	"github.com/go-kit/log/level"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// checkCommand verifies that documents parse and round-trip stably.
type checkCommand struct {
	cfg   *settings
	files []string
	diff  bool
}

func addCheckCommand(app *kingpin.Application, cfg *settings) {
	c := &checkCommand{cfg: cfg}
	cmd := app.Command("check", "Check that each document parses, round-trips stably, and leaks nothing.")
	cmd.Flag("diff", "Show how the input differs from its human-readable serialization.").BoolVar(&c.diff)
	cmd.Arg("files", "Input files (default stdin).").StringsVar(&c.files)
	cmd.Action(c.run)
}

func (c *checkCommand) run(_ *kingpin.ParseContext) error {
	files := c.files
	if len(files) == 0 {
		files = []string{"-"}
	}
	var failed int
	for _, name := range files {
		if err := c.checkFile(os.Stdout, name); err != nil {
			errColor.Fprintln(os.Stderr, describe(name, err))
			failed++
			continue
		}
		okColor.Fprintf(os.Stdout, "%s: ok\n", name)
	}
	if failed != 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(files))
	}
	return nil
}

func (c *checkCommand) checkFile(w io.Writer, name string) error {
	data, err := readInput(name)
	if err != nil {
		return err
	}
	counter := alloc.NewCounter()
	st := c.cfg.store(counter)
	if err := roundTrip(st, data); err != nil {
		return err
	}
	if n := counter.Outstanding(); n != 0 {
		return fmt.Errorf("%d reservations outstanding after free", n)
	}
	level.Debug(c.cfg.logger).Log("msg", "round trip ok", "file", name, "bytes", len(data))

	if c.diff {
		root, err := st.Parse(data)
		if err != nil {
			return err
		}
		defer st.Free(root)
		human, err := st.Serialize(root, true)
		if err != nil {
			return err
		}
		defer st.Release(human)
		if d := textDiff(string(bytes.TrimSpace(data)), string(human)); d != "" {
			nameColor.Fprintf(w, "--- %s\n", name)
			fmt.Fprintln(w, d)
		}
	}
	return nil
}

// roundTrip parses data, serializes it, and checks that parsing and
// serializing the result reproduces the same text.
func roundTrip(st *jsonlib.Store, data []byte) error {
	root, err := st.Parse(data)
	if err != nil {
		return err
	}
	defer st.Free(root)
	first, err := st.Serialize(root, false)
	if err != nil {
		return err
	}
	defer st.Release(first)

	again, err := st.Parse(first)
	if err != nil {
		return fmt.Errorf("reparse: %w", err)
	}
	defer st.Free(again)
	second, err := st.Serialize(again, false)
	if err != nil {
		return err
	}
	defer st.Release(second)

	if !bytes.Equal(first, second) {
		return fmt.Errorf("round trip is not stable:\n%s", textDiff(string(first), string(second)))
	}
	return nil
}

// textDiff renders the differences between a and b, or "" if they are equal.
func textDiff(a, b string) string {
	if a == b {
		return ""
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(a, b, false))
	return dmp.DiffPrettyText(diffs)
}
