package engine

import (
	"regexp"
	"sort"
	"strconv"

	"github.com/inipp/inipp/internal/markers"
	"github.com/inipp/inipp/internal/value"
)

var trailingIndexRE = regexp.MustCompile(`^(.*)_(\d+)$`)

// finalize runs the Finalizer's four steps: sequential
// naming, duplicate merging, auto-increment key substitution, and
// materializing the ordered build list into an unordered map.
func (p *parseState) finalize() map[string]map[string]value.Value {
	p.assignSequentialNames()
	merged := p.mergeDuplicates()
	for name, sec := range merged {
		merged[name] = resolveAutoIncrement(sec)
	}
	return merged
}

// assignSequentialNames renames every "<group>_..." entry to
// "<group>_<n>", where n is the smallest non-negative integer not already
// reserved by an explicitly numbered sibling and not
// already used by an earlier "_..." entry in the same group.
func (p *parseState) assignSequentialNames() {
	reserved := make(map[string]map[int]bool)
	for _, entry := range p.buildList {
		if _, ok := isSequential(entry.name); ok {
			continue
		}
		if m := trailingIndexRE.FindStringSubmatch(entry.name); m != nil {
			n, err := strconv.Atoi(m[2])
			if err != nil {
				continue
			}
			group := m[1]
			if reserved[group] == nil {
				reserved[group] = make(map[int]bool)
			}
			reserved[group][n] = true
		}
	}

	used := make(map[string]map[int]bool)
	for i, entry := range p.buildList {
		group, ok := isSequential(entry.name)
		if !ok {
			continue
		}
		if used[group] == nil {
			used[group] = make(map[int]bool)
		}
		n := 0
		for reserved[group][n] || used[group][n] {
			n++
		}
		used[group][n] = true
		p.buildList[i].name = group + "_" + strconv.Itoa(n)
	}
}

// mergeDuplicates collapses same-named build-list entries in insertion
// order; with AllowOverride the later occurrence's keys overlay the
// earlier one's (last wins), otherwise only genuinely new keys are added.
func (p *parseState) mergeDuplicates() map[string]map[string]value.Value {
	order := make([]string, 0, len(p.buildList))
	merged := make(map[string]map[string]value.Value, len(p.buildList))

	for _, entry := range p.buildList {
		existing, seen := merged[entry.name]
		if !seen {
			order = append(order, entry.name)
			merged[entry.name] = entry.section
			continue
		}
		for k, v := range entry.section {
			if _, has := existing[k]; has && !p.opts.AllowOverride {
				continue
			}
			existing[k] = v
		}
	}

	out := make(map[string]map[string]value.Value, len(merged))
	for _, name := range order {
		out[name] = merged[name]
	}
	return out
}

// resolveAutoIncrement rewrites every key bearing the auto-increment
// marker to "<base>_<n>", the smallest index not already colliding with a
// plain "<base>_<digits>" key in the same section. Iteration order over
// Go's map type isn't deterministic when more than one marker shares a
// base within a section; ties are broken by sorting the markers'
// resolved-so-far text, which is stable
// but not meaningful beyond "some fixed order" for that rare case.
func resolveAutoIncrement(sec map[string]value.Value) map[string]value.Value {
	type pending struct {
		full string
		base string
	}
	var markedKeys []pending
	taken := make(map[string]map[int]bool)

	for k := range sec {
		if base, ok := markers.UnwrapInc(k); ok {
			markedKeys = append(markedKeys, pending{full: k, base: base})
			continue
		}
		if m := trailingIndexRE.FindStringSubmatch(k); m != nil {
			if n, err := strconv.Atoi(m[2]); err == nil {
				if taken[m[1]] == nil {
					taken[m[1]] = make(map[int]bool)
				}
				taken[m[1]][n] = true
			}
		}
	}
	if len(markedKeys) == 0 {
		return sec
	}

	sort.Slice(markedKeys, func(i, j int) bool { return markedKeys[i].full < markedKeys[j].full })

	for _, pk := range markedKeys {
		if taken[pk.base] == nil {
			taken[pk.base] = make(map[int]bool)
		}
		n := 0
		for taken[pk.base][n] {
			n++
		}
		taken[pk.base][n] = true
		v := sec[pk.full]
		delete(sec, pk.full)
		sec[pk.base+"_"+strconv.Itoa(n)] = v
	}
	return sec
}
