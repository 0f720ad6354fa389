package emit

import "strings"

// INI renders result as INI text: the untitled section (empty name) first,
// then named sections in natural order, each with keys in natural order.
// Values are comma-joined with individual pieces quoted per opts.
func INI(result Result, opts Options) string {
	var b strings.Builder
	wroteAny := false

	if untitled, ok := result[""]; ok {
		writeKeys(&b, "", untitled, opts)
		wroteAny = true
	}

	names := sortedKeys(result, opts.less())
	for _, name := range names {
		if name == "" {
			continue
		}
		if wroteAny {
			b.WriteByte('\n')
		}
		b.WriteByte('[')
		b.WriteString(name)
		b.WriteString("]\n")
		writeKeys(&b, name, result[name], opts)
		wroteAny = true
	}

	return b.String()
}

func writeKeys(b *strings.Builder, section string, sec Section, opts Options) {
	for _, key := range sortedKeys(sec, opts.less()) {
		if !opts.allowed(section, key) {
			continue
		}
		v := sec[key]
		pieces := v.Pieces()
		rendered := make([]string, len(pieces))
		for i, p := range pieces {
			rendered[i] = renderPiece(p, opts.ExcessiveQuotes)
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(strings.Join(rendered, ","))
		b.WriteByte('\n')
	}
}
