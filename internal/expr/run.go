package expr

// Run evaluates an already-substituted expression body (the text that was
// wrapped by markers.WrapCalculate) and converts the result to output
// pieces: scalars become one piece, tables and vectors one per element,
// nil nothing. discard reports the
// silent-suppression case; err is any other reportable error, with the
// fallback piece left to the caller (the engine re-joins prefix/postfix
// itself, since expr has no notion of the enclosing key).
func (in *Interpreter) Run(body string) (pieces []string, discard bool, err error) {
	v, evalErr := in.Eval(body)
	if evalErr != nil {
		if Discard(evalErr) {
			return nil, true, nil
		}
		return nil, false, evalErr
	}
	if v.IsNil() {
		return nil, false, nil
	}
	return Pieces(v), false, nil
}
