package dedupe

// Merge concatenates exact and near groups, exact first, without deduplication
func Merge(exact, near []Group) []Group {
	out := make([]Group, 0, len(exact)+len(near))
	out = append(out, exact...)
	return append(out, near...)
}
