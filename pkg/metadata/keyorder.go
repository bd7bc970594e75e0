package metadata

// ResolveKeyOrder produces the column ordering used by the interchange
// sheets: keys from declared that exist in the template's key set, in the
// declared order, followed by the template's remaining keys in their native
// order. Declared keys unknown to the template are dropped. The result is
// always a permutation of keys — callers can pin the columns they care
// about without ever inventing or losing one.
func ResolveKeyOrder(declared, keys []string) []string {
	known := make(map[string]bool, len(keys))
	for _, k := range keys {
		known[k] = true
	}

	ordered := make([]string, 0, len(keys))
	taken := make(map[string]bool, len(keys))
	for _, k := range declared {
		if known[k] && !taken[k] {
			ordered = append(ordered, k)
			taken[k] = true
		}
	}
	for _, k := range keys {
		if !taken[k] {
			ordered = append(ordered, k)
			taken[k] = true
		}
	}
	return ordered
}

// KeyOrder resolves the template's column ordering for a caller-declared
// key list. See ResolveKeyOrder.
func (t *Template) KeyOrder(declared []string) []string {
	return ResolveKeyOrder(declared, t.Keys)
}
