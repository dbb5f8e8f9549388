package device

// Group is one synchronization group of WarpSize lockstep lanes.
//
// The ballot collective is realized as a sequential bit-packing loop over the
// lanes, which produces the exact word layout of a hardware vote and keeps
// single-group execution deterministic.
type Group struct {
	index int
}

// Index returns the group's position in the launch.
func (g *Group) Index() int {
	return g.index
}

// Ballot evaluates pred for every lane and packs the results into one word,
// bit position = lane position.
func (g *Group) Ballot(pred func(lane int) bool) uint32 {
	var word uint32
	for lane := 0; lane < WarpSize; lane++ {
		if pred(lane) {
			word |= 1 << uint(lane)
		}
	}
	return word
}
