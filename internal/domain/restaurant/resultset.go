package restaurant

// ResultSet accumulates snapshots, keeping the first occurrence of each restaurant ID.
type ResultSet struct {
	seen  map[string]struct{}
	items []Snapshot
}

// NewResultSet creates an empty result set.
func NewResultSet() *ResultSet {
	return &ResultSet{seen: make(map[string]struct{})}
}

// Add appends s unless its ID was already added. Reports whether s was added.
func (rs *ResultSet) Add(s Snapshot) bool {
	if _, ok := rs.seen[s.id]; ok {
		return false
	}
	rs.seen[s.id] = struct{}{}
	rs.items = append(rs.items, s)
	return true
}

// AddAll adds every snapshot in order.
func (rs *ResultSet) AddAll(list []Snapshot) {
	for _, s := range list {
		rs.Add(s)
	}
}

// Items returns the snapshots in insertion order.
func (rs *ResultSet) Items() []Snapshot {
	out := make([]Snapshot, len(rs.items))
	copy(out, rs.items)
	return out
}

// Distinct removes value-equal duplicates, keeping the first occurrence.
func Distinct(in []Snapshot) []Snapshot {
	byID := make(map[string][]int, len(in))
	out := make([]Snapshot, 0, len(in))
	for i := range in {
		dup := false
		for _, j := range byID[in[i].id] {
			if out[j].Equal(&in[i]) {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		byID[in[i].id] = append(byID[in[i].id], len(out))
		out = append(out, in[i])
	}
	return out
}
