package splitter

import (
	"testing"

	"github.com/inipp/inipp/internal/markers"
)

func TestSplit_Basic(t *testing.T) {
	v, inline := Split("a,b,c", false)
	if v.String() != "a,b,c" {
		t.Fatalf("got %q", v.String())
	}
	if len(inline) != 0 {
		t.Fatalf("unexpected inline params: %+v", inline)
	}
}

func TestSplit_QuotedCommaPreserved(t *testing.T) {
	v, _ := Split(`"a,b",c`, false)
	if v.Len() != 2 || v.Piece(0) != "a,b" || v.Piece(1) != "c" {
		t.Fatalf("got pieces %#v", v.Pieces())
	}
}

func TestSplit_InlineParams(t *testing.T) {
	v, inline := Split("Name, k=v, x=1", true)
	if v.Len() != 1 || v.Piece(0) != "Name" {
		t.Fatalf("got pieces %#v", v.Pieces())
	}
	if len(inline) != 2 || inline[0].Key != "k" || inline[0].Value != "v" || inline[1].Key != "x" || inline[1].Value != "1" {
		t.Fatalf("got inline params %+v", inline)
	}
}

func TestSplit_ExpressionWrap(t *testing.T) {
	v, _ := Split(`$"1 + 2"`, false)
	if v.Len() != 1 {
		t.Fatalf("expected one piece, got %#v", v.Pieces())
	}
	body, ok := markers.UnwrapCalculate(v.Piece(0))
	if !ok || body != "1 + 2" {
		t.Fatalf("expected expression wrap, got %q", v.Piece(0))
	}
}

func TestSplit_BareDollarInSingleQuoteBecomesLiteralMarker(t *testing.T) {
	v, _ := Split(`'$'`, false)
	if v.Len() != 1 || v.Piece(0) != markers.DollarLiteral {
		t.Fatalf("got %#v, want literal-dollar marker", v.Pieces())
	}
}

func TestSplit_SolidDataURL(t *testing.T) {
	raw := "data:image/png;base64,AAAA,BBBB"
	v, _ := Split(raw, false)
	if v.Len() != 1 || v.Piece(0) != raw {
		t.Fatalf("expected data url to stay a single piece, got %#v", v.Pieces())
	}
}

func TestSplit_DoubleQuoteEscapes(t *testing.T) {
	v, _ := Split(`"line1\nline2"`, false)
	if v.Len() != 1 || v.Piece(0) != "line1\nline2" {
		t.Fatalf("got %q", v.Piece(0))
	}
}
