// Package natsort orders directory entry names for display.
//
// The order is produced by a radix pass per character position, starting at
// the longest name and working towards the first character. Before each pass
// the names too short to have a character at that position are moved in
// front of the others; the remaining names are then stably ordered by that
// character with ASCII upper case folded to lower case.
//
// The result is a case-insensitive byte order in which a name sorts before
// every longer name it is a prefix of: "img10.png" precedes "img2.png".
package natsort

import (
	"slices"
)

func fold(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

// Sort orders names in place.
func Sort(names []string) {
	if len(names) < 2 {
		return
	}
	maxLen := 0
	for _, s := range names {
		if len(s) > maxLen {
			maxLen = len(s)
		}
	}
	for k := maxLen; k >= 1; k-- {
		// Short names first, both groups keep their relative order.
		slices.SortStableFunc(names, func(a, b string) int {
			return boolRank(len(a) >= k) - boolRank(len(b) >= k)
		})
		sep := 0
		for sep < len(names) && len(names[sep]) < k {
			sep++
		}
		tail := names[sep:]
		slices.SortStableFunc(tail, func(a, b string) int {
			return int(fold(a[k-1])) - int(fold(b[k-1]))
		})
	}
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Sorted returns a sorted copy of names.
func Sorted(names []string) []string {
	out := slices.Clone(names)
	Sort(out)
	return out
}

// Insert returns a sorted copy of names with name added, and the index name
// landed at.
func Insert(names []string, name string) ([]string, int) {
	out := make([]string, 0, len(names)+1)
	out = append(out, names...)
	out = append(out, name)
	Sort(out)
	return out, slices.Index(out, name)
}

// Less reports whether a sorts before b.
func Less(a, b string) bool {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if ca, cb := fold(a[i]), fold(b[i]); ca != cb {
			return ca < cb
		}
	}
	return len(a) < len(b)
}
