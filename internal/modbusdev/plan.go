// internal/modbusdev/plan.go
package modbusdev

import "sort"

// maxReadQuantity is the protocol limit for FC 3.
const maxReadQuantity = 125

// planBlocks coalesces the mapped registers into contiguous reads.
func planBlocks(mappings []Mapping) []ReadBlock {
	if len(mappings) == 0 {
		return nil
	}

	regs := make([]int, 0, len(mappings))
	seen := make(map[uint16]struct{}, len(mappings))
	for _, m := range mappings {
		if _, ok := seen[m.Register]; ok {
			continue
		}
		seen[m.Register] = struct{}{}
		regs = append(regs, int(m.Register))
	}
	sort.Ints(regs)

	var blocks []ReadBlock
	cur := ReadBlock{Address: uint16(regs[0]), Quantity: 1}

	for _, r := range regs[1:] {
		next := int(cur.Address) + int(cur.Quantity)
		if r == next && cur.Quantity < maxReadQuantity {
			cur.Quantity++
			continue
		}
		blocks = append(blocks, cur)
		cur = ReadBlock{Address: uint16(r), Quantity: 1}
	}
	return append(blocks, cur)
}
