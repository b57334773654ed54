package layout

import "sort"

// gridResolution is the number of buckets used to build the horizontal
// text-coverage profile when searching for a column gutter (§4.3).
const gridResolution = 200

// minGutterWidthN is the minimum width (in normalized page-width units) an
// empty vertical band must have before it is considered a column gutter.
const minGutterWidthN = 0.02

// detectColumns partitions a page's lines into at most two columns (§4.3).
// Layouts with more than two physical columns are collapsed into the
// best-fit two-column (or single-column) model; the pipeline does not
// attempt to recover three-or-more column newspaper layouts.
func detectColumns(lines []Line) []Column {
	if len(lines) == 0 {
		return nil
	}

	gutter, ok := findGutter(lines)
	if !ok {
		return []Column{singleColumn(lines)}
	}

	var left, right []Line
	for _, ln := range lines {
		if ln.Box.XMid() < gutter {
			left = append(left, ln)
		} else {
			right = append(right, ln)
		}
	}

	if len(left) == 0 || len(right) == 0 {
		return []Column{singleColumn(lines)}
	}

	cols := []Column{
		newColumn(0, left),
		newColumn(1, right),
	}
	return cols
}

func singleColumn(lines []Line) Column {
	return newColumn(0, lines)
}

func newColumn(idx int, lines []Line) Column {
	sorted := append([]Line(nil), lines...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].YMid < sorted[j].YMid })

	x0, x1 := 1.0, 0.0
	for _, ln := range sorted {
		if ln.Box.X0 < x0 {
			x0 = ln.Box.X0
		}
		if ln.Box.X1 > x1 {
			x1 = ln.Box.X1
		}
	}
	if x1 < x0 {
		x0, x1 = 0, 1
	}

	return Column{ColumnIndex: idx, X0: x0, X1: x1, Lines: sorted}
}

// findGutter looks for a vertical band, roughly centered on the page, that
// no line's bounding box crosses. It returns the midpoint of the widest
// such band found within the central portion of the page.
func findGutter(lines []Line) (float64, bool) {
	var covered [gridResolution]bool
	for _, ln := range lines {
		lo := int(ln.Box.X0 * gridResolution)
		hi := int(ln.Box.X1 * gridResolution)
		if lo < 0 {
			lo = 0
		}
		if hi >= gridResolution {
			hi = gridResolution - 1
		}
		for b := lo; b <= hi; b++ {
			covered[b] = true
		}
	}

	type band struct{ start, end int }
	var gaps []band
	inGap := false
	start := 0
	for b := 0; b < gridResolution; b++ {
		if !covered[b] {
			if !inGap {
				inGap = true
				start = b
			}
		} else if inGap {
			gaps = append(gaps, band{start, b})
			inGap = false
		}
	}
	if inGap {
		gaps = append(gaps, band{start, gridResolution})
	}

	bestWidth := 0
	bestMid := 0.0
	found := false
	for _, g := range gaps {
		width := g.end - g.start
		mid := (float64(g.start) + float64(g.end)) / 2 / gridResolution
		// restrict to the central 60% of the page: a gutter at the
		// extreme edges is just page margin, not a column break.
		if mid < 0.2 || mid > 0.8 {
			continue
		}
		if width > bestWidth {
			bestWidth = width
			bestMid = mid
			found = true
		}
	}

	if !found || float64(bestWidth)/gridResolution < minGutterWidthN {
		return 0, false
	}
	return bestMid, true
}
