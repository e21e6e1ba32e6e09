package aggregate

import "tractorlog/internal/core"

// DefaultPageSize is the number of rows shown per admin table page.
const DefaultPageSize = 10

// TotalPages returns ceil(count/pageSize), never less than one.
func TotalPages(count, pageSize int) int {
	if pageSize < 1 || count <= 0 {
		return 1
	}
	return (count + pageSize - 1) / pageSize
}

// ClampPage keeps a 1-indexed page number inside [1, TotalPages].
func ClampPage(count, pageSize, page int) int {
	last := TotalPages(count, pageSize)
	if page < 1 {
		return 1
	}
	if page > last {
		return last
	}
	return page
}

// Paginate returns the 1-indexed page of entries after clamping pageNumber.
// The caller is expected to have sorted entries already. The result is a
// copy and never longer than pageSize.
func Paginate(entries []core.LogEntry, pageSize, pageNumber int) []core.LogEntry {
	if pageSize < 1 || len(entries) == 0 {
		return []core.LogEntry{}
	}
	page := ClampPage(len(entries), pageSize, pageNumber)
	start := (page - 1) * pageSize
	end := min(start+pageSize, len(entries))
	out := make([]core.LogEntry, end-start)
	copy(out, entries[start:end])
	return out
}
