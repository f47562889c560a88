package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/tdewolff/argp"
	"github.com/tdewolff/picosvg"
)

type Normalize struct {
	AllowAllDefs     bool   `name:"allow-all-defs" desc:"Keep unsupported definitions such as filters, masks and patterns"`
	AllowText        bool   `name:"allow-text" desc:"Pass text through instead of failing"`
	DropUnsupported  bool   `name:"drop-unsupported" desc:"Drop unsupported elements instead of failing"`
	StrokeToFill     bool   `name:"stroke-to-fill" desc:"Convert strokes to filled outlines"`
	EvenOddToNonZero bool   `name:"evenodd-to-nonzero" desc:"Rewrite evenodd filled paths to fill under the nonzero rule"`
	ClipToViewBox    bool   `name:"clip-to-viewbox" desc:"Clip all geometry to the viewBox"`
	RemoveUnpainted  bool   `name:"remove-unpainted" desc:"Remove shapes without visible fill or stroke"`
	Precision        int    `short:"p" default:"-1" desc:"Number of decimals, 3 if negative"`
	PermissiveUnits  bool   `name:"permissive-units" desc:"Replace unresolvable lengths by zero"`
	Pretty           bool   `desc:"Indent output"`
	Verbose          bool   `short:"v" desc:"Verbose logging"`
	Config           string `short:"c" desc:"TOML configuration file"`
	Output           string `short:"o" desc:"Output file, stdout if empty"`
	Input            string `index:"0" desc:"Input file, stdin if -"`
}

type Check struct {
	AllowAllDefs bool   `name:"allow-all-defs" desc:"Allow preserved definitions such as filters, masks and patterns"`
	AllowText    bool   `name:"allow-text" desc:"Allow text"`
	Verbose      bool   `short:"v" desc:"Verbose logging"`
	Input        string `index:"0" desc:"Input file, stdin if -"`
}

func main() {
	root := argp.NewCmd(&Normalize{}, "SVG normalizer to a minimal subset of paths, groups, gradients and clip paths")
	root.AddCmd(&Check{}, "check", "Report elements that are not in normalized form")
	root.Parse()
	root.PrintHelp()
}

func newLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

func openInput(filename string, stdin io.Reader) (io.Reader, func() error, error) {
	if filename == "-" {
		return stdin, func() error { return nil }, nil
	}
	f, err := os.Open(filename)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func (cmd *Normalize) Run() error {
	if cmd.Input == "" {
		return argp.ShowUsage
	}

	logger := newLogger(os.Stderr, cmd.Verbose)
	if err := cmd.run(os.Stdin, os.Stdout, logger); err != nil {
		logger.Error("normalize", "err", err)
		os.Exit(1)
	}
	return nil
}

func (cmd *Normalize) run(stdin io.Reader, stdout io.Writer, logger *log.Logger) error {
	cfg, err := loadConfig(cmd.Config)
	if err != nil {
		return err
	}
	opts := cmd.options(cfg)
	opts.Logger = logger

	r, closeInput, err := openInput(cmd.Input, stdin)
	if err != nil {
		return err
	}
	defer closeInput()

	// nothing is written on failure
	buf := &bytes.Buffer{}
	if err := picosvg.Normalize(r, buf, opts); err != nil {
		return err
	}

	if cmd.Output == "" {
		_, err = stdout.Write(buf.Bytes())
		return err
	}
	return os.WriteFile(cmd.Output, buf.Bytes(), 0644)
}

func (cmd *Check) Run() error {
	if cmd.Input == "" {
		return argp.ShowUsage
	}

	logger := newLogger(os.Stderr, cmd.Verbose)
	ok, err := cmd.run(os.Stdin, os.Stdout, logger)
	if err != nil {
		logger.Error("check", "err", err)
		os.Exit(1)
	} else if !ok {
		os.Exit(1)
	}
	return nil
}

// run writes one line per violation and returns false if there are any.
func (cmd *Check) run(stdin io.Reader, stdout io.Writer, logger *log.Logger) (bool, error) {
	r, closeInput, err := openInput(cmd.Input, stdin)
	if err != nil {
		return false, err
	}
	defer closeInput()

	opts := &picosvg.Options{
		AllowAllDefs: cmd.AllowAllDefs,
		AllowText:    cmd.AllowText,
		Logger:       logger,
	}
	doc, err := picosvg.Parse(r)
	if err != nil {
		return false, err
	}
	vs := doc.Check(opts)
	for _, v := range vs {
		if _, err := fmt.Fprintln(stdout, v.String()); err != nil {
			return false, err
		}
	}
	return len(vs) == 0, nil
}
