// Package section implements the ordered, disjoint address-range model
// of a module: a Section is a contiguous [start, end) range of one kind
// (code/data/bss) with a power-of-two alignment, and
// Sections is the per-module collection enforcing name-uniqueness and
// non-overlap.
package section

import (
	"strconv"
	"strings"

	"github.com/dsdecomp/nitrolink/pkg/nitroerr"
)

// Kind is the closed sum type of section kinds.
type Kind int

const (
	Code Kind = iota
	Data
	Bss
)

func (k Kind) String() string {
	switch k {
	case Code:
		return "code"
	case Data:
		return "data"
	case Bss:
		return "bss"
	default:
		return "unknown"
	}
}

// Initialized reports whether sections of this kind carry bytes in the
// object file (code and data do, bss does not).
func (k Kind) Initialized() bool {
	return k == Code || k == Data
}

// ParseKind parses the "kind" attribute value of a fresh section line.
func ParseKind(value string, ctx nitroerr.Context) (Kind, error) {
	switch value {
	case "code":
		return Code, nil
	case "data":
		return Data, nil
	case "bss":
		return Bss, nil
	default:
		return 0, nitroerr.Atf(nitroerr.ConfigParse, ctx, "unknown section kind %q, must be one of: code, data, bss", value)
	}
}

// Section is a contiguous, immutable address range within a module.
type Section struct {
	Name      string
	Kind      Kind
	Start     uint32
	End       uint32
	Alignment uint32
}

// New constructs a fresh Section, validating its invariants: end >=
// start, alignment is a power of two, and start is aligned to it.
func New(name string, kind Kind, start, end, alignment uint32) (Section, error) {
	if end < start {
		return Section{}, nitroerr.Newf(nitroerr.SectionInvariant,
			"section %s must not end (%#010x) before it starts (%#010x)", name, end, start)
	}
	if alignment == 0 || alignment&(alignment-1) != 0 {
		return Section{}, nitroerr.Newf(nitroerr.SectionInvariant,
			"section %s alignment (%d) must be a power of two", name, alignment)
	}
	if start&(alignment-1) != 0 {
		return Section{}, nitroerr.Newf(nitroerr.SectionInvariant,
			"section %s starts at a misaligned address %#010x; the provided alignment was %d", name, start, alignment)
	}
	return Section{Name: name, Kind: kind, Start: start, End: end, Alignment: alignment}, nil
}

// Inherit clones name/kind/alignment from template, overriding only the
// address range.
func Inherit(template Section, start, end uint32) (Section, error) {
	return New(template.Name, template.Kind, start, end, template.Alignment)
}

// Size returns end - start.
func (s Section) Size() uint32 {
	return s.End - s.Start
}

// Contains reports whether addr falls within [s.Start, s.End).
func (s Section) Contains(addr uint32) bool {
	return addr >= s.Start && addr < s.End
}

// OverlapsWith reports whether s and other share any address.
func (s Section) OverlapsWith(other Section) bool {
	return s.Start < other.End && other.Start < s.End
}

// BoundaryName is the LCF boundary-symbol fragment for this section, e.g.
// ".text" -> "text".
func (s Section) BoundaryName() string {
	return strings.TrimPrefix(s.Name, ".")
}

// parseU32 accepts both "0x..." and decimal forms.
func parseU32(value string) (uint32, error) {
	v, err := strconv.ParseUint(value, 0, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

// iterAttributes splits "key:value" tokens, in order.
func iterAttributes(tokens []string) [][2]string {
	attrs := make([][2]string, 0, len(tokens))
	for _, tok := range tokens {
		key, value, _ := strings.Cut(tok, ":")
		attrs = append(attrs, [2]string{key, value})
	}
	return attrs
}

// ParseFresh parses a fresh section-header line: "name
// kind:VAL start:VAL end:VAL align:VAL". A line with no leading token
// (blank/comment) yields (nil, nil).
func ParseFresh(line string, ctx nitroerr.Context) (*Section, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, nil
	}
	name := fields[0]

	var kind *Kind
	var start, end, align *uint32

	for _, attr := range iterAttributes(fields[1:]) {
		key, value := attr[0], attr[1]
		switch key {
		case "kind":
			k, err := ParseKind(value, ctx)
			if err != nil {
				return nil, err
			}
			kind = &k
		case "start":
			v, err := parseU32(value)
			if err != nil {
				return nil, nitroerr.Atf(nitroerr.ConfigParse, ctx, "failed to parse start address %q: %v", value, err)
			}
			start = &v
		case "end":
			v, err := parseU32(value)
			if err != nil {
				return nil, nitroerr.Atf(nitroerr.ConfigParse, ctx, "failed to parse end address %q: %v", value, err)
			}
			end = &v
		case "align":
			v, err := parseU32(value)
			if err != nil {
				return nil, nitroerr.Atf(nitroerr.ConfigParse, ctx, "failed to parse alignment %q: %v", value, err)
			}
			align = &v
		default:
			return nil, nitroerr.Atf(nitroerr.ConfigParse, ctx,
				"expected section attribute 'kind', 'start', 'end' or 'align' but got %q", key)
		}
	}

	if kind == nil {
		return nil, nitroerr.Atf(nitroerr.ConfigParse, ctx, "missing 'kind' attribute")
	}
	if start == nil {
		return nil, nitroerr.Atf(nitroerr.ConfigParse, ctx, "missing 'start' attribute")
	}
	if end == nil {
		return nil, nitroerr.Atf(nitroerr.ConfigParse, ctx, "missing 'end' attribute")
	}
	if align == nil {
		return nil, nitroerr.Atf(nitroerr.ConfigParse, ctx, "missing 'align' attribute")
	}

	sec, err := New(name, *kind, *start, *end, *align)
	if err != nil {
		return nil, err
	}
	return &sec, nil
}

// ParseInherit parses an inherited section line in a per-file delink
// block: "name start:VAL end:VAL", with name resolved against the
// enclosing module's header sections.
func ParseInherit(line string, ctx nitroerr.Context, header *Sections) (*Section, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, nil
	}
	name := fields[0]

	template, ok := header.ByName(name)
	if !ok {
		return nil, nitroerr.Atf(nitroerr.ConfigParse, ctx, "section %s does not exist in this file's header", name)
	}

	var start, end *uint32
	for _, attr := range iterAttributes(fields[1:]) {
		key, value := attr[0], attr[1]
		switch key {
		case "kind":
			return nil, nitroerr.Atf(nitroerr.ConfigParse, ctx, "attribute 'kind' should be omitted as it is inherited from this file's header")
		case "align":
			return nil, nitroerr.Atf(nitroerr.ConfigParse, ctx, "attribute 'align' should be omitted as it is inherited from this file's header")
		case "start":
			v, err := parseU32(value)
			if err != nil {
				return nil, nitroerr.Atf(nitroerr.ConfigParse, ctx, "failed to parse start address %q: %v", value, err)
			}
			start = &v
		case "end":
			v, err := parseU32(value)
			if err != nil {
				return nil, nitroerr.Atf(nitroerr.ConfigParse, ctx, "failed to parse end address %q: %v", value, err)
			}
			end = &v
		default:
			return nil, nitroerr.Atf(nitroerr.ConfigParse, ctx,
				"expected section attribute 'start' or 'end' but got %q", key)
		}
	}
	if start == nil {
		return nil, nitroerr.Atf(nitroerr.ConfigParse, ctx, "missing 'start' attribute")
	}
	if end == nil {
		return nil, nitroerr.Atf(nitroerr.ConfigParse, ctx, "missing 'end' attribute")
	}

	sec, err := Inherit(template, *start, *end)
	if err != nil {
		return nil, err
	}
	return &sec, nil
}
