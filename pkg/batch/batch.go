package batch

import "context"

// Chunk splits items into consecutive groups of at most size elements.
// The returned groups share the backing array of items.
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = len(items)
	}
	if len(items) == 0 {
		return nil
	}

	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end:end])
	}
	return chunks
}

// ForEachChunk calls fn once per chunk, sequentially. It stops at the first
// error returned by fn, or when ctx is done before the next chunk starts.
// A chunk that is already running is never interrupted by this function.
func ForEachChunk[T any](ctx context.Context, items []T, size int, fn func(ctx context.Context, chunk []T) error) error {
	for _, chunk := range Chunk(items, size) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(ctx, chunk); err != nil {
			return err
		}
	}
	return nil
}
