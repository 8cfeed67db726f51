package orders

// Filter returns the orders matching label. FilterAll returns list itself;
// otherwise the order-preserving subsequence whose status equals label.
// An absent status never matches a concrete label.
func Filter(list []Order, label string) []Order {
	if label == FilterAll {
		return list
	}
	out := make([]Order, 0, len(list))
	for _, o := range list {
		if o.Status != nil && string(*o.Status) == label {
			out = append(out, o)
		}
	}
	return out
}

// Toggle implements single-row expansion: clicking the expanded row collapses
// it, clicking any other row expands that one instead.
func Toggle(current, clicked string) string {
	if current == clicked {
		return ""
	}
	return clicked
}

// CountByStatus tallies orders per filter label, including FilterAll.
func CountByStatus(list []Order) map[string]int {
	counts := make(map[string]int, len(FilterLabels))
	counts[FilterAll] = len(list)
	for _, o := range list {
		if o.Status != nil {
			counts[string(*o.Status)]++
		}
	}
	return counts
}
