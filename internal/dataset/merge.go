package dataset

// Merge appends `fresh` after `historical`. No deduplication is performed,
// re-merging a season that is already in `historical` duplicates its rows.
func Merge(historical, fresh Table) Table {
	out := make(Table, 0, len(historical)+len(fresh))
	out = append(out, historical...)
	out = append(out, fresh...)
	return out
}

// Filter returns the records for which `keep` is true, in order.
func (t Table) Filter(keep func(r Record) bool) Table {
	var out Table
	for _, r := range t {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
