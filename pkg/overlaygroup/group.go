// Package overlaygroup implements the overlay grouping analysis:
// partitioning a ROM's overlays into load-slot groups for the LCF writer,
// so that the generated linker script expresses each overlay's origin as
// "AFTER" the group(s) that must finish loading before it can begin.
//
// Overlays sharing an identical base address occupy the same load slot
// and are therefore mutually exclusive residents of it; each such group
// chains to its nearest lower-address predecessor, with the first group
// in address order chained to the ARM9 binary itself.
package overlaygroup

import (
	"sort"

	"github.com/dsdecomp/nitrolink/pkg/utils"
)

// Overlay is the minimal shape this analysis needs from a ROM's overlay
// table: its numeric id, its load-slot base address, and its code size.
type Overlay struct {
	ID   uint32
	Base uint32
	Size uint32
}

// Group is a set of overlays sharing one load slot, plus the
// representative ids of the group(s) that must finish before this one
// begins.
type Group struct {
	Overlays []uint32
	Base     uint32
	After    []uint32
}

// Analyze partitions overlays into load-slot groups, given the end address
// of the ARM9 binary (the address the first overlay slot begins after).
func Analyze(arm9EndAddress uint32, overlays []Overlay) []Group {
	byBase := make(map[uint32][]Overlay)
	for _, ov := range overlays {
		byBase[ov.Base] = append(byBase[ov.Base], ov)
	}

	bases := make([]uint32, 0, len(byBase))
	for base := range byBase {
		bases = append(bases, base)
	}
	sort.Slice(bases, func(i, j int) bool { return bases[i] < bases[j] })

	groups := make([]Group, 0, len(bases))
	for i, base := range bases {
		members := byBase[base]
		sort.Slice(members, func(a, b int) bool { return members[a].ID < members[b].ID })

		ids := make([]uint32, len(members))
		for j, m := range members {
			ids[j] = m.ID
		}

		var after []uint32
		if i > 0 {
			after = []uint32{representative(byBase[bases[i-1]])}
		}
		// A group whose base is exactly the ARM9 end address has no
		// predecessor overlay group; its AFTER list stays empty, which the
		// LCF writer renders as "AFTER(ARM9)".
		if base == arm9EndAddress {
			after = nil
		}

		groups = append(groups, Group{Overlays: ids, Base: base, After: after})
	}
	return groups
}

// representative picks the lowest-id overlay in a group as the name used
// to reference that group's shared load-slot origin in an AFTER(...) list
// — every overlay in the group resolves to the same address, so any one
// of them names the group unambiguously.
func representative(members []Overlay) uint32 {
	return utils.Min(utils.Map(members, func(m Overlay) uint32 { return m.ID }))
}
