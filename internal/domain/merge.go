package domain

// Merge folds src into dst. Both must share a signature, so their option
// multisets already match; option quantities are per unit and stay as they
// are, only the line quantity grows.
func Merge(dst *LineItem, src LineItem) {
	dst.Quantity += src.Quantity
}

// Normalize drops lines with a non-positive quantity and merges lines that
// share a signature, keeping the position of the first occurrence.
func Normalize(items []LineItem) []LineItem {
	out := make([]LineItem, 0, len(items))
	index := make(map[string]int, len(items))
	for _, item := range items {
		if item.Quantity < 1 || item.ProductID == "" {
			continue
		}
		sig := Signature(item)
		if i, ok := index[sig]; ok {
			Merge(&out[i], item)
			continue
		}
		index[sig] = len(out)
		out = append(out, item.Clone())
	}
	return out
}
