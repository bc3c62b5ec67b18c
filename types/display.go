package types

import "fmt"

// GenericAggregateDisplay renders any Struct-category aggregate (Tuple,
// Record, Entity, Ephemeral) by recursing field-by-field through its own
// shape, the read-side counterpart of genericVisit/genericDec (types/walk.go).
// It only ever needs inline bytes — no heap dereference — since a
// Struct-category value is fully inline by spec §3's invariants, so it
// lives safely in types without depending on the gc/values packages.
func GenericAggregateDisplay(t *Type, reg *Registry, slot []byte, mode DisplayMode) string {
	offs, ftypes := fieldTypesAndOffsets(t)
	if offs == nil {
		return fmt.Sprintf("%s{}", t.Name)
	}
	parts := make([]string, len(offs))
	for i, off := range offs {
		ft := reg.MustLookup(ftypes[i])
		width := fieldSlotWidth(ft)
		field := slot[off : off+width]
		if ft.Display != nil {
			parts[i] = ft.Display(ft, reg, field, mode)
		} else {
			parts[i] = fmt.Sprintf("<%s>", ft.Name)
		}
	}
	return fmt.Sprintf("%s%v", t.Name, parts)
}
