package engine

import (
	"strconv"

	"github.com/inipp/inipp/internal/expr"
	"github.com/inipp/inipp/internal/value"
)

// pieceVal converts a Value's raw pieces into the expr.Val they'd render
// as in expression mode: a lone numeric piece becomes a number, a 2-4 piece
// all-numeric run becomes a vector, anything else a table of scalars.
func pieceVal(pieces []string) expr.Val {
	if len(pieces) == 1 {
		if f, err := strconv.ParseFloat(pieces[0], 64); err == nil {
			return expr.Number(f)
		}
		return expr.String(pieces[0])
	}
	if len(pieces) >= 2 && len(pieces) <= 4 {
		nums := make([]float64, 0, len(pieces))
		allNum := true
		for _, p := range pieces {
			f, err := strconv.ParseFloat(p, 64)
			if err != nil {
				allNum = false
				break
			}
			nums = append(nums, f)
		}
		if allNum {
			return expr.VecOf(nums...)
		}
	}
	vals := make([]expr.Val, len(pieces))
	for i, p := range pieces {
		vals[i] = pieceVal([]string{p})
	}
	return expr.Table(vals...)
}

// valueOfPieces wraps scripting output pieces back into a Value.
func valueOfPieces(pieces []string) value.Value {
	return value.New(pieces...)
}
