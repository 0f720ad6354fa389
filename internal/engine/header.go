package engine

import "strings"

// headerKind discriminates the kinds of entry a section header can open.
type headerKind int

const (
	kindSection headerKind = iota
	kindTemplate
	kindMixin
	kindInclude
	kindFunction
	kindUse
)

// headerSpec is one parsed comma-separated entry of a section-head header.
type headerSpec struct {
	kind headerKind

	// Section form: name, plus optional template reference(s) for the
	// "[Actual: TemplateName]" / "[: TemplateName]" / "[TemplateName]"
	// shapes. templateRefs is empty for a plain "[NAME]".
	name         string
	templateRefs []string

	// TEMPLATE:/MIXIN: forms.
	defName  string
	extends  []string
	earlyRes bool

	// INCLUDE:/FUNCTION:/USE: forms.
	path string
}

// parseHeader splits a raw header (the text between '[' and ']') on
// top-level commas and parses each SECTIONSPEC. Definition/directive
// headers (TEMPLATE:/MIXIN:/INCLUDE:/FUNCTION:/USE:) are always a single
// spec: their own grammar uses commas (extends lists, paths), so they are
// never comma-split at this level.
func parseHeader(raw string) []headerSpec {
	trimmed := strings.TrimSpace(raw)
	for _, prefix := range []string{"TEMPLATE:", "MIXIN:", "INCLUDE:", "FUNCTION:", "USE:"} {
		if hasFold(trimmed, prefix) {
			return []headerSpec{parseSpec(trimmed)}
		}
	}
	parts := splitCommaTop(raw)
	specs := make([]headerSpec, 0, len(parts))
	for _, p := range parts {
		specs = append(specs, parseSpec(strings.TrimSpace(p)))
	}
	return specs
}

func splitCommaTop(s string) []string {
	var out []string
	var cur strings.Builder
	depth := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '(', '[':
			depth++
			cur.WriteByte(c)
		case ')', ']':
			depth--
			cur.WriteByte(c)
		case ',':
			if depth == 0 {
				out = append(out, cur.String())
				cur.Reset()
				continue
			}
			cur.WriteByte(c)
		default:
			cur.WriteByte(c)
		}
	}
	out = append(out, cur.String())
	return out
}

func parseSpec(s string) headerSpec {
	switch {
	case strings.EqualFold(s, "INCLUDE"):
		// "[INCLUDE]" — paths come from INCLUDE= keys in the section body.
		return headerSpec{kind: kindInclude}
	case hasFold(s, "INCLUDE:"):
		return headerSpec{kind: kindInclude, path: strings.TrimSpace(s[len("INCLUDE:"):])}
	case hasFold(s, "FUNCTION:"):
		return headerSpec{kind: kindFunction, defName: strings.TrimSpace(s[len("FUNCTION:"):])}
	case hasFold(s, "USE:"):
		return headerSpec{kind: kindUse, path: strings.TrimSpace(s[len("USE:"):])}
	case hasFold(s, "TEMPLATE:"):
		return parseDefSpec(kindTemplate, s[len("TEMPLATE:"):])
	case hasFold(s, "MIXIN:"):
		return parseDefSpec(kindMixin, s[len("MIXIN:"):])
	case strings.HasPrefix(s, ":"):
		// "[: TemplateName]" — section name supplied later via @OUTPUT.
		return headerSpec{kind: kindSection, templateRefs: []string{strings.TrimSpace(s[1:])}}
	}

	if idx := strings.Index(s, ":"); idx >= 0 {
		// "[Actual: TemplateName]" — Actual is the section's own name, the
		// ident after the colon names the template it inherits from.
		actual := strings.TrimSpace(s[:idx])
		tpl := strings.TrimSpace(s[idx+1:])
		return headerSpec{kind: kindSection, name: actual, templateRefs: []string{tpl}}
	}

	// "[NAME]" or "[TemplateName]" alone — ambiguous at parse time;
	// resolved by the caller checking whether a template of that name
	// exists.
	return headerSpec{kind: kindSection, name: s, templateRefs: []string{s}}
}

func parseDefSpec(kind headerKind, rest string) headerSpec {
	all := strings.Fields(rest)
	spec := headerSpec{kind: kind}

	// earlyresolve may trail the extends list, so strip it wherever it
	// appears before parsing the rest.
	fields := all[:0:0]
	for _, f := range all {
		if strings.EqualFold(strings.TrimSuffix(f, ","), "earlyresolve") {
			spec.earlyRes = true
			continue
		}
		fields = append(fields, f)
	}
	if len(fields) == 0 {
		return spec
	}
	spec.defName = strings.TrimSuffix(fields[0], ",")

	for i := 1; i < len(fields); i++ {
		if !strings.EqualFold(fields[i], "extends") {
			continue
		}
		joined := strings.Join(fields[i+1:], " ")
		for _, part := range strings.Split(joined, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			spec.extends = append(spec.extends, strings.Fields(part)[0])
		}
		break
	}
	return spec
}

func hasFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// sequentialSuffix is the literal marker that names a sequentially
// numbered section, resolved at Finalize.
const sequentialSuffix = "_..."

func isSequential(name string) (group string, ok bool) {
	if strings.HasSuffix(name, sequentialSuffix) {
		return name[:len(name)-len(sequentialSuffix)], true
	}
	return "", false
}
