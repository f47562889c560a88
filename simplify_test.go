package picosvg

import (
	"testing"

	"github.com/tdewolff/test"
)

func TestRoundTo(t *testing.T) {
	test.Float(t, roundTo(1.2345, 2), 1.23)
	test.Float(t, roundTo(2.5, 0), 3.0)
	test.Float(t, roundTo(-2.5, 0), -3.0)
	test.Float(t, roundTo(1.23456, -1), 1.23456)
	test.String(t, formatNumber(roundTo(-0.0001, 3), -1), "0")
}

func TestSimplify(t *testing.T) {
	var tests = []struct {
		d        string
		expected string
	}{
		{"M0 0 L1 0 L2 0 L2 0 L2 2", "M0,0 L2,0 L2,2"},
		{"M0 0 L1 0 L0 0 L3 0", "M0,0 L1,0 L0,0 L3,0"},
		{"M0 0 L1 1 L1 1 Z", "M0,0 L1,1 Z"},
		{"M5 5 Z M0 0 L1 1", "M0,0 L1,1"},
		{"M0 0 M1 1 L2 2", "M1,1 L2,2"},
		{"M0.0004 0 L1.0006 0", "M0,0 L1.001,0"},
		{"M0 0 L0.0001 0 L1 1", "M0,0 L1,1"},
		{"M0 0 A0.0001 1 0 0 1 1 0", "M0,0 L1,0"},
		{"M0 0 Q1 1 2 0 Q2 0 2 0", "M0,0 Q1,1 2,0"},
		{"M0 0 L1 0 M3 3", "M0,0 L1,0"},
	}
	for _, tt := range tests {
		t.Run(tt.d, func(t *testing.T) {
			p, err := ParsePath(tt.d)
			test.Error(t, err)
			q := p.Simplify(3)
			test.String(t, q.ToSVG(3), tt.expected)
			test.String(t, q.Simplify(3).ToSVG(3), tt.expected, "idempotent")
		})
	}
}

func TestSimplifyPaths(t *testing.T) {
	out, err := normalizeString(`<svg viewBox="0 0 10 10"><g><g/></g><defs/><path d="M0 0 L1 1" stroke="red" stroke-width="0.33333"/><g id="x"/></svg>`, nil)
	test.Error(t, err)
	test.String(t, out, header+`<path d="M0,0 L1,1" stroke="red" stroke-width=".333"/></svg>`)
}
