package enrich

// WindowSize is the row cap of the condensed artifacts.
const WindowSize = 20

// Window is the tail of the enriched dataset plus the header labels.
type Window struct {
	Headers []string
	Rows    []Row
}

// TailWindow keeps the last min(k, len(rows)) rows in original order.
// An empty dataset still yields the header.
func TailWindow(rows []Row, k int) Window {
	start := len(rows) - k
	if start < 0 {
		start = 0
	}
	return Window{
		Headers: append([]string(nil), Headers...),
		Rows:    rows[start:],
	}
}
