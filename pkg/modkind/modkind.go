// Package modkind identifies which of a ROM's modules (the main ARM9 binary,
// one of its two autoloads, or one of its overlays) a piece of code or data
// belongs to. Overlays share address space with each other, so a bare
// address is never enough to say which module owns it — Kind is the other
// half of that disambiguation.
package modkind

import "fmt"

// Category is the coarse module family.
type Category int

const (
	ARM9Category Category = iota
	AutoloadCategory
	OverlayCategory
)

// AutoloadKind distinguishes the two autoload regions copied into fast RAM
// at boot.
type AutoloadKind int

const (
	ITCM AutoloadKind = iota
	DTCM
)

func (k AutoloadKind) String() string {
	switch k {
	case ITCM:
		return "ITCM"
	case DTCM:
		return "DTCM"
	default:
		return "unknown autoload"
	}
}

// ParseAutoloadKind parses the "kind" attribute of an autoload config entry.
func ParseAutoloadKind(s string) (AutoloadKind, bool) {
	switch s {
	case "ITCM":
		return ITCM, true
	case "DTCM":
		return DTCM, true
	default:
		return 0, false
	}
}

// Kind identifies exactly one module. The zero value is ARM9.
type Kind struct {
	Category  Category
	Autoload  AutoloadKind
	OverlayID uint32
}

// ARM9 returns the Kind for the main ARM9 module.
func ARM9() Kind { return Kind{Category: ARM9Category} }

// Autoload returns the Kind for one of the two autoload regions.
func Autoload(k AutoloadKind) Kind { return Kind{Category: AutoloadCategory, Autoload: k} }

// Overlay returns the Kind for the overlay with the given numeric id.
func Overlay(id uint32) Kind { return Kind{Category: OverlayCategory, OverlayID: id} }

func (k Kind) String() string {
	switch k.Category {
	case ARM9Category:
		return "arm9"
	case AutoloadCategory:
		return k.Autoload.String()
	case OverlayCategory:
		return fmt.Sprintf("overlay%d", k.OverlayID)
	default:
		return "unknown module"
	}
}

// MemoryName is the name this module's memory region carries in the LCF
// MEMORY block.
func (k Kind) MemoryName() string {
	switch k.Category {
	case ARM9Category:
		return "ARM9"
	case AutoloadCategory:
		return k.Autoload.String()
	case OverlayCategory:
		return fmt.Sprintf("OV%03d", k.OverlayID)
	default:
		return "UNKNOWN"
	}
}

// SectionName is the name of this module's top-level block in the LCF
// SECTIONS section, e.g. ".arm9", ".itcm", ".ov005".
func (k Kind) SectionName() string {
	switch k.Category {
	case ARM9Category:
		return ".arm9"
	case AutoloadCategory:
		if k.Autoload == ITCM {
			return ".itcm"
		}
		return ".dtcm"
	case OverlayCategory:
		return fmt.Sprintf(".ov%03d", k.OverlayID)
	default:
		return ".unknown"
	}
}
