package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/tdewolff/argp"
	"github.com/tdewolff/test"
)

func TestOptionsMerge(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "picosvg.toml")
	test.Error(t, os.WriteFile(filename, []byte("precision = 1\npretty = true\n"), 0644))

	cfg, err := loadConfig(filename)
	test.Error(t, err)

	opts := (&Normalize{Precision: -1}).options(cfg)
	test.T(t, opts.Precision, 1)
	test.T(t, opts.Pretty, true)
	test.T(t, opts.AllowText, false)

	opts = (&Normalize{Precision: 2, AllowText: true}).options(cfg)
	test.T(t, opts.Precision, 2)
	test.T(t, opts.AllowText, true)

	opts = (&Normalize{Precision: -1}).options(Config{})
	test.T(t, opts.Precision, 3)

	cfg, err = loadConfig(writeConfig(t, "stroke_to_fill = true\ndrop_unsupported = true\n"))
	test.Error(t, err)
	opts = (&Normalize{Precision: -1, ClipToViewBox: true}).options(cfg)
	test.T(t, opts.StrokeToFill, true)
	test.T(t, opts.DropUnsupported, true)
	test.T(t, opts.ClipToViewBox, true)
	test.T(t, opts.EvenOddToNonZero, false)
}

func writeConfig(t *testing.T, data string) string {
	filename := filepath.Join(t.TempDir(), "picosvg.toml")
	test.Error(t, os.WriteFile(filename, []byte(data), 0644))
	return filename
}

func TestLoadConfigError(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "bad.toml")
	test.Error(t, os.WriteFile(filename, []byte("precision = \n"), 0644))

	_, err := loadConfig(filename)
	test.That(t, err != nil)
}

func TestRun(t *testing.T) {
	logger := log.New(io.Discard)
	in := `<svg viewBox="0 0 10 10"><rect width="5" height="5"/></svg>`

	stdout := &bytes.Buffer{}
	cmd := &Normalize{Precision: -1, Input: "-"}
	test.Error(t, cmd.run(strings.NewReader(in), stdout, logger))
	test.String(t, stdout.String(), `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10"><path d="M0,0 L5,0 L5,5 L0,5 Z"/></svg>`)

	dir := t.TempDir()
	output := filepath.Join(dir, "out.svg")
	stdout.Reset()
	cmd = &Normalize{Precision: -1, Output: output, Input: "-"}
	test.Error(t, cmd.run(strings.NewReader(in), stdout, logger))
	test.T(t, stdout.Len(), 0)
	b, err := os.ReadFile(output)
	test.Error(t, err)
	test.T(t, len(b) != 0, true)

	stdout.Reset()
	cmd = &Normalize{Precision: -1, Input: "-"}
	err = cmd.run(strings.NewReader(`<svg viewBox="0 0 10 10"><text>x</text></svg>`), stdout, logger)
	test.That(t, err != nil)
	test.T(t, stdout.Len(), 0)

	input := filepath.Join(dir, "in.svg")
	test.Error(t, os.WriteFile(input, []byte(in), 0644))
	stdout.Reset()
	cmd = &Normalize{Precision: -1, Input: input}
	test.Error(t, cmd.run(strings.NewReader(""), stdout, logger))
	test.String(t, stdout.String(), `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10"><path d="M0,0 L5,0 L5,5 L0,5 Z"/></svg>`)
}

func TestRunUsage(t *testing.T) {
	test.That(t, (&Normalize{}).Run() == argp.ShowUsage)
	test.That(t, (&Check{}).Run() == argp.ShowUsage)
}

func TestCheck(t *testing.T) {
	logger := log.New(io.Discard)

	stdout := &bytes.Buffer{}
	cmd := &Check{Input: "-"}
	ok, err := cmd.run(strings.NewReader(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10"><path d="M0,0 L5,0 L5,5 Z"/></svg>`), stdout, logger)
	test.Error(t, err)
	test.T(t, ok, true)
	test.T(t, stdout.Len(), 0)

	ok, err = cmd.run(strings.NewReader(`<svg viewBox="0 0 10 10"><rect width="5" height="5"/><path id="a" d="M0,0 L1,0 L1,1 Z"/><path id="a" d="M0,0 L1,0 L1,1 Z"/></svg>`), stdout, logger)
	test.Error(t, err)
	test.T(t, ok, false)
	test.String(t, stdout.String(), "BadElement: /svg[0]/rect[0]\nBadElement: /svg[0]/path[1] reuses id=\"a\", first seen at /svg[0]/path[0]\n")
}
