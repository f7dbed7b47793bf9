package ethrpc

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// FormatIndexRanges renders a sorted set of indices as a comma
// separated list of ranges: consecutive runs of 3+ become "a..b", a
// run of exactly 2 becomes "a,b", and an isolated index is a plain
// singleton.
func FormatIndexRanges(indices []uint64) string {
	if len(indices) == 0 {
		return ""
	}
	sorted := append([]uint64{}, indices...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var parts []string
	i := 0
	for i < len(sorted) {
		start := i
		for i+1 < len(sorted) && sorted[i+1] == sorted[i]+1 {
			i++
		}
		runLen := i - start + 1
		switch {
		case runLen >= 3:
			parts = append(parts, fmt.Sprintf("%d..%d", sorted[start], sorted[i]))
		case runLen == 2:
			parts = append(parts, fmt.Sprintf("%d,%d", sorted[start], sorted[i]))
		default:
			parts = append(parts, strconv.FormatUint(sorted[start], 10))
		}
		i++
	}
	return strings.Join(parts, ",")
}

// ParseIndexRanges is the inverse of FormatIndexRanges, recovering the
// original index set from a rendered header.
func ParseIndexRanges(s string) ([]uint64, error) {
	if s == "" {
		return nil, nil
	}
	var out []uint64
	for _, part := range strings.Split(s, ",") {
		if strings.Contains(part, "..") {
			bounds := strings.SplitN(part, "..", 2)
			if len(bounds) != 2 {
				return nil, fmt.Errorf("ethrpc: malformed range %q", part)
			}
			start, err := strconv.ParseUint(bounds[0], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("ethrpc: malformed range %q: %w", part, err)
			}
			end, err := strconv.ParseUint(bounds[1], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("ethrpc: malformed range %q: %w", part, err)
			}
			for v := start; v <= end; v++ {
				out = append(out, v)
			}
			continue
		}
		v, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ethrpc: malformed index %q: %w", part, err)
		}
		out = append(out, v)
	}
	return out, nil
}
