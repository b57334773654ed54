package layout

import (
	"math"
	"sort"
	"strings"
)

// formLines groups a page's TextItems into Lines (§4.2): items are
// clustered by normalized y-midpoint using single-link clustering, with a
// cutoff derived from the items' own heights so that dense, small-font
// text and sparse, large-font text both cluster correctly. Within a
// cluster, items are ordered left to right by x0 and joined with a single
// space to form Line.Text.
func formLines(items []TextItem) []Line {
	if len(items) == 0 {
		return nil
	}

	heights := make([]float64, 0, len(items))
	for _, it := range items {
		if h := it.Box.Height(); h > 0 {
			heights = append(heights, h)
		}
	}
	medHeight := median(heights)
	if medHeight <= 0 {
		medHeight = 0.01
	}
	cutoff := medHeight * 0.6

	sorted := append([]TextItem(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Box.YMid() < sorted[j].Box.YMid()
	})

	var clusters [][]TextItem
	cur := []TextItem{sorted[0]}
	curY := sorted[0].Box.YMid()
	for i := 1; i < len(sorted); i++ {
		y := sorted[i].Box.YMid()
		if y-curY <= cutoff {
			cur = append(cur, sorted[i])
		} else {
			clusters = append(clusters, cur)
			cur = []TextItem{sorted[i]}
		}
		curY = y
	}
	clusters = append(clusters, cur)

	lines := make([]Line, 0, len(clusters))
	for _, c := range clusters {
		lines = append(lines, buildLine(c))
	}

	sort.SliceStable(lines, func(i, j int) bool { return lines[i].YMid < lines[j].YMid })
	return lines
}

func buildLine(items []TextItem) Line {
	sort.SliceStable(items, func(i, j int) bool { return items[i].Box.X0 < items[j].Box.X0 })

	box := items[0].Box
	var texts []string
	var fontSizes []float64
	var cellXs []float64
	maxAbsRot := 0.0
	rotatedCount := 0

	for _, it := range items {
		box = box.Union(it.Box)
		texts = append(texts, it.Text)
		fontSizes = append(fontSizes, it.FontSize)
		cellXs = append(cellXs, it.Box.X0)

		ar := math.Abs(it.RotationRad)
		if ar > maxAbsRot {
			maxAbsRot = ar
		}
		if ar > math.Pi/18 {
			rotatedCount++
		}
	}

	clusters := singleLinkClusters(cellXs, 0.02)

	return Line{
		Items:             items,
		Text:              collapseSpaces(strings.Join(texts, " ")),
		Box:               box,
		YMid:              box.YMid(),
		FontSize:          median(fontSizes),
		MaxAbsRotationRad: maxAbsRot,
		RotatedFraction:   float64(rotatedCount) / float64(len(items)),
		ApproxCellCount:   len(clusters),
		CellXs:            clusterCenters(clusters),
	}
}
