package picosvg

import (
	"bytes"
	"io"

	"github.com/charmbracelet/log"
)

// DefaultPrecision is the number of decimals coordinates are rounded to.
const DefaultPrecision = 3

// Options control the normalization.
type Options struct {
	AllowAllDefs     bool        // keep unsupported definitions such as filters, masks and patterns verbatim
	AllowText        bool        // pass text through instead of failing
	DropUnsupported  bool        // drop unsupported rendered elements instead of failing
	StrokeToFill     bool        // replace strokes by filled outlines
	EvenOddToNonZero bool        // rewrite evenodd filled geometry to fill identically under the nonzero rule
	ClipToViewBox    bool        // intersect all geometry with the viewBox
	RemoveUnpainted  bool        // remove paths that paint nothing
	Precision        int         // number of decimals, negative for DefaultPrecision
	PermissiveUnits  bool        // replace unresolvable lengths by zero
	Pretty           bool        // indent the output
	Logger           *log.Logger // receives recovered errors and fixes, nil discards
}

// DefaultOptions are used when no options are given.
var DefaultOptions = Options{
	Precision: DefaultPrecision,
}

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}

func (opts *Options) logger() *log.Logger {
	if opts.Logger == nil {
		opts.Logger = discardLogger()
	}
	return opts.Logger
}

func (opts *Options) precision() int {
	if opts.Precision < 0 {
		return DefaultPrecision
	}
	return opts.Precision
}

type stage struct {
	name string
	run  func(*Document, *Options) error
}

var stages = []stage{
	{"attributes", normalizeAttributes},
	{"units", resolveUnits},
	{"shapes", shapesToPaths},
	{"transforms", flattenTransforms},
	{"defs", resolveDefs},
	{"fillrule", settleFillRules},
	{"unpainted", removeUnpainted},
	{"simplify", simplifyPaths},
	{"check", checkNormalized},
}

func withDefaults(opts *Options) *Options {
	if opts == nil {
		o := DefaultOptions
		return &o
	}
	o := *opts
	return &o
}

// Normalize runs the normalization passes on a parsed document. A terminal error leaves the document in an undefined state.
func (doc *Document) Normalize(opts *Options) error {
	opts = withDefaults(opts)
	for _, s := range stages {
		if err := s.run(doc, opts); err != nil {
			opts.logger().Debug("stop normalization", "stage", s.name, "err", err)
			return err
		}
	}
	return nil
}

// Normalize reads an SVG document from r and writes its normalized form to w. Nothing is written when a terminal error occurs.
func Normalize(r io.Reader, w io.Writer, opts *Options) error {
	opts = withDefaults(opts)
	doc, err := parseWithLogger(r, opts.logger())
	if err != nil {
		return err
	} else if err := doc.Normalize(opts); err != nil {
		return err
	}
	return doc.Write(w, opts)
}

// NormalizeBytes normalizes an SVG document in memory.
func NormalizeBytes(b []byte, opts *Options) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := Normalize(bytes.NewReader(b), buf, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
