// Package columns resolves column size tokens to widths and builds the grid
// template shared by the header and every row of a table.
package columns

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Token names a preset column width.
type Token string

const (
	Small  Token = "small"
	Medium Token = "medium"
	Large  Token = "large"
)

// Preset pixel widths.
const (
	SmallPx  = 60
	MediumPx = 120
	LargePx  = 220

	// SelectionTrackPx is the width of the checkbox column.
	SelectionTrackPx = 25
	// ReorderTrackPx is the width of the drag-handle column.
	ReorderTrackPx = 20

	// DefaultCellPx is how many pixels one terminal cell stands for.
	DefaultCellPx = 10
)

var tokenPx = map[Token]float64{
	Small:  SmallPx,
	Medium: MediumPx,
	Large:  LargePx,
}

// Size is a column width: a token, an explicit pixel number, or unset.
// The zero value is unset and resolves to the medium width.
type Size struct {
	token   Token
	pixels  float64
	numeric bool
}

// TokenSize returns a size for a preset token.
func TokenSize(t Token) Size { return Size{token: t} }

// PixelSize returns a size for an explicit pixel width.
func PixelSize(px float64) Size { return Size{pixels: px, numeric: true} }

// ParseSize parses a token or a number. Unknown words are kept as tokens and
// resolve to the medium width.
func ParseSize(s string) Size {
	s = strings.TrimSpace(s)
	if s == "" {
		return Size{}
	}
	if px, err := strconv.ParseFloat(strings.TrimSuffix(s, "px"), 64); err == nil && !math.IsNaN(px) && !math.IsInf(px, 0) {
		return PixelSize(px)
	}
	return TokenSize(Token(strings.ToLower(s)))
}

// IsSet reports whether a token or a number was given.
func (s Size) IsSet() bool { return s.numeric || s.token != "" }

// IsNumeric reports whether the size is an explicit pixel width.
func (s Size) IsNumeric() bool { return s.numeric }

// Token returns the token, or "" for numeric and unset sizes.
func (s Size) Token() Token { return s.token }

// Pixels resolves the size to a pixel width.
func (s Size) Pixels() float64 {
	if s.numeric {
		return s.pixels
	}
	if px, ok := tokenPx[s.token]; ok {
		return px
	}
	return MediumPx
}

// Unit formats the resolved width as a CSS pixel unit, e.g. "120px".
func (s Size) Unit() string {
	return pxUnit(s.Pixels())
}

// String returns the token, the number, or "" when unset.
func (s Size) String() string {
	if s.numeric {
		return strconv.FormatFloat(s.pixels, 'f', -1, 64)
	}
	return string(s.token)
}

// Cells converts a pixel width into a terminal cell count using cellPx pixels
// per cell. The result is at least one cell.
func Cells(px float64, cellPx int) int {
	if cellPx <= 0 {
		cellPx = DefaultCellPx
	}
	n := int(math.Ceil(px / float64(cellPx)))
	if n < 1 {
		return 1
	}
	return n
}

// UnmarshalYAML accepts either a token string or a number.
func (s *Size) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("column size must be a scalar, got %s", nodeKind(value.Kind))
	}
	*s = ParseSize(value.Value)
	return nil
}

// MarshalYAML writes numbers as numbers and tokens as strings.
func (s Size) MarshalYAML() (any, error) {
	if s.numeric {
		return s.pixels, nil
	}
	return string(s.token), nil
}

// UnmarshalText supports TOML and flag decoding.
func (s *Size) UnmarshalText(text []byte) error {
	*s = ParseSize(string(text))
	return nil
}

// MarshalText is the inverse of UnmarshalText.
func (s Size) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func pxUnit(px float64) string {
	return strconv.FormatFloat(px, 'f', -1, 64) + "px"
}

func nodeKind(k yaml.Kind) string {
	switch k {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.AliasNode:
		return "alias"
	case yaml.DocumentNode:
		return "document"
	default:
		return "scalar"
	}
}
