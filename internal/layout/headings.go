package layout

import "sort"

// maxHeadingLevel is the deepest heading level the pipeline assigns;
// anything clustering below level 6 collapses into level 6 (§4.8).
const maxHeadingLevel = 6

// headingClusterCutoff is the minimum relative font-size gap, as a
// fraction of body font size, that separates two heading levels. Heading
// font sizes within this tolerance of one another are treated as the same
// level.
const headingClusterCutoff = 0.08

// assignHeadingLevels clusters every heading block's font size by single-
// link clustering and assigns levels 1..maxHeadingLevel from largest to
// smallest cluster, deterministically and independent of any document's
// particular point sizes (§4.8).
func assignHeadingLevels(pages []Page, bodyFontSize float64) {
	cutoff := bodyFontSize * headingClusterCutoff
	if cutoff <= 0 {
		cutoff = 0.5
	}

	var sizes []float64
	for _, p := range pages {
		for _, b := range p.Blocks {
			if b.Type == BlockHeading {
				sizes = append(sizes, b.FontSize())
			}
		}
	}
	if len(sizes) == 0 {
		return
	}

	clusters := singleLinkClusters(sizes, cutoff)
	centers := clusterCenters(clusters)

	// Descending: largest font size is level 1.
	sort.Sort(sort.Reverse(sort.Float64Slice(centers)))

	levelFor := func(fs float64) int {
		best := 0
		bestDist := -1.0
		for i, c := range centers {
			d := fs - c
			if d < 0 {
				d = -d
			}
			if bestDist < 0 || d < bestDist {
				bestDist = d
				best = i
			}
		}
		level := best + 1
		if level > maxHeadingLevel {
			level = maxHeadingLevel
		}
		return level
	}

	for pi := range pages {
		for bi := range pages[pi].Blocks {
			b := &pages[pi].Blocks[bi]
			if b.Type == BlockHeading {
				b.HeadingLevel = levelFor(b.FontSize())
			}
		}
	}
}
