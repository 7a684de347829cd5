// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Program jsonlib parses, checks, queries, and reformats JSON documents.
//
// Usage:
//
//	jsonlib [flags] fmt [--pretty] [--jwcc] [--yaml] [file]
//	jsonlib [flags] check [--diff] file...
//	jsonlib [flags] get [--pretty] file path
//	jsonlib [flags] stats [file]
//
// A file name of "-" or an omitted file reads standard input.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/creachadair/jsonlib"
	"github.com/creachadair/jsonlib/alloc"
	"github.com/fatih/color"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/mattn/go-isatty"
)

// settings holds the global flags shared by all commands.
type settings struct {
	logLevel string
	maxDepth int
	memLimit int64
	color    string

	logger log.Logger
}

func main() {
	app := kingpin.New("jsonlib", "Parse, check, query, and reformat JSON documents.")
	cfg := &settings{logger: log.NewNopLogger()}

	limit := app.Flag("mem-limit", "Maximum bytes reserved per document (0 means no limit).").
		Envar("JSONLIB_MEM_LIMIT").Default("0").Bytes()
	app.Flag("log.level", "Only log messages with the given severity or above.").
		Envar("JSONLIB_LOG_LEVEL").Default("warn").EnumVar(&cfg.logLevel, "debug", "info", "warn", "error")
	app.Flag("max-depth", "Maximum nesting depth of a document (negative means no limit).").
		Envar("JSONLIB_MAX_DEPTH").Default("1000").IntVar(&cfg.maxDepth)
	app.Flag("color", "Colorize output: auto, always, or never.").
		Default("auto").EnumVar(&cfg.color, "auto", "always", "never")

	app.PreAction(func(*kingpin.ParseContext) error {
		cfg.memLimit = int64(*limit)
		cfg.setup(os.Stdout)
		return nil
	})

	addFmtCommand(app, cfg)
	addCheckCommand(app, cfg)
	addGetCommand(app, cfg)
	addStatsCommand(app, cfg)

	kingpin.MustParse(app.Parse(os.Args[1:]))
}

// setup configures logging and color output from the flag values.
func (s *settings) setup(out *os.File) {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = level.NewFilter(logger, level.Allow(level.ParseDefault(s.logLevel, level.WarnValue())))
	s.logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	switch s.color {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	default:
		fd := out.Fd()
		color.NoColor = !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd)
	}
}

// store returns a Store configured from the flags, whose reservations are
// passed to base after applying the memory limit, if any.
func (s *settings) store(base alloc.Allocator) *jsonlib.Store {
	if s.memLimit > 0 {
		base = alloc.NewLimit(int(s.memLimit), base)
	}
	return &jsonlib.Store{Allocator: base, MaxDepth: s.maxDepth, Logger: s.logger}
}

// readInput reads the contents of the named file, or standard input if name
// is "" or "-".
func readInput(name string) ([]byte, error) {
	if name == "" || name == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(name)
}

// describe renders err for a diagnostic about the named input. Syntax errors
// are reported as name:line:col.
func describe(name string, err error) string {
	if name == "" {
		name = "-"
	}
	var serr *jsonlib.SyntaxError
	if errors.As(err, &serr) {
		return fmt.Sprintf("%s:%d:%d: %v: %s", name, serr.Location.First.Line, serr.Location.First.Column,
			serr.Kind, serr.Message)
	}
	return fmt.Sprintf("%s: %v", name, err)
}

var (
	errColor  = color.New(color.FgRed, color.Bold)
	okColor   = color.New(color.FgGreen)
	nameColor = color.New(color.Bold)
)
