package emit

import (
	"bytes"
	"encoding/json"
)

// JSON renders result as an object of object of array-of-string: section
// name to key to pieces. encoding/json always sorts map keys
// lexicographically on marshal, so the natural ordering used by the INI
// emitter doesn't carry over here; filtering still applies per-key.
// opts.Indent requests two-space indentation.
func JSON(result Result, opts Options) (string, error) {
	ordered := make(map[string]map[string][]string, len(result))
	for section, sec := range result {
		out := make(map[string][]string, len(sec))
		for key, v := range sec {
			if !opts.allowed(section, key) {
				continue
			}
			pieces := v.Pieces()
			if pieces == nil {
				pieces = []string{}
			}
			out[key] = pieces
		}
		ordered[section] = out
	}

	if !opts.Indent {
		b, err := json.Marshal(ordered)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(ordered); err != nil {
		return "", err
	}
	return buf.String(), nil
}
