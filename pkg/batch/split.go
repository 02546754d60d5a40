// Package batch applies mirror mutations in bounded-size chunks, committing
// each chunk on its own.
package batch

// Split partitions items into consecutive chunks of at most size elements,
// preserving order. A size of zero or less yields a single chunk.
func Split[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if size <= 0 || size >= len(items) {
		return [][]T{items}
	}
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end:end])
	}
	return chunks
}
