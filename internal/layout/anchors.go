package layout

import "fmt"

// anchorContextWidth is how many neighboring token keys on each side are
// captured in an Anchor's ContextKeys, used to disambiguate a TokenKey
// that recurs many times within the same block (§4.10).
const anchorContextWidth = 2

// BuildAnchor produces a persistence-stable locator for the token at
// tokenIndex (§4.10). Anchors survive re-analysis of the same document as
// long as the surrounding text and layout are unchanged: they carry no
// absolute token index as ground truth, only a block signature, the
// token's normalized key, and a few neighboring keys for disambiguation.
func BuildAnchor(idx *NarrativeIndex, tokenIndex int) (Anchor, error) {
	if tokenIndex < 0 || tokenIndex >= len(idx.Tokens) {
		return Anchor{}, fmt.Errorf("token index %d out of range [0,%d)", tokenIndex, len(idx.Tokens))
	}
	meta := idx.TokenMeta[tokenIndex]
	blk := findBlock(idx, meta)
	if blk == nil {
		return Anchor{}, fmt.Errorf("no block for token %d", tokenIndex)
	}

	ti := tokenIndex
	return Anchor{
		PageIndex:      meta.PageIndex,
		ColumnIndex:    meta.ColumnIndex,
		BlockSignature: blockSignature(*blk),
		TokenKey:       normalizeTokenKey(idx.Tokens[tokenIndex]),
		ContextKeys:    contextKeys(idx.Tokens, tokenIndex),
		TokenIndex:     &ti,
	}, nil
}

// ResolveAnchor locates the current token index for a previously built
// Anchor. It first tries the carried TokenIndex hint (cheap path, valid
// when the document has not changed); if that token no longer matches the
// anchor's TokenKey, it falls back to searching the anchor's
// (page,column) for a block with a matching signature and, within that
// block, the token occurrence whose neighboring keys best match
// ContextKeys (§4.10).
func ResolveAnchor(idx *NarrativeIndex, a Anchor) (int, bool) {
	if a.TokenIndex != nil {
		ti := *a.TokenIndex
		if ti >= 0 && ti < len(idx.Tokens) && normalizeTokenKey(idx.Tokens[ti]) == a.TokenKey {
			return ti, true
		}
	}

	for pi := range idx.Pages {
		if pi != a.PageIndex {
			continue
		}
		for _, blk := range idx.Pages[pi].Blocks {
			if blk.ColumnIndex != a.ColumnIndex || !blk.Included {
				continue
			}
			if blockSignature(blk) != a.BlockSignature {
				continue
			}
			if ti, ok := bestMatchInBlock(idx.Tokens, blk, a); ok {
				return ti, true
			}
		}
	}
	return 0, false
}

func bestMatchInBlock(tokens []string, blk Block, a Anchor) (int, bool) {
	bestIdx := -1
	bestScore := -1
	for ti := blk.TokenRange.Start; ti < blk.TokenRange.End; ti++ {
		if normalizeTokenKey(tokens[ti]) != a.TokenKey {
			continue
		}
		score := contextScore(tokens, ti, a.ContextKeys)
		if score > bestScore {
			bestScore = score
			bestIdx = ti
		}
	}
	if bestIdx < 0 {
		return 0, false
	}
	return bestIdx, true
}

func contextScore(tokens []string, ti int, contextKeys []string) int {
	want := contextKeys
	got := contextKeys2(tokens, ti)
	score := 0
	for i := 0; i < len(want) && i < len(got); i++ {
		if want[i] == got[i] {
			score++
		}
	}
	return score
}

func contextKeys(tokens []string, ti int) []string {
	return contextKeys2(tokens, ti)
}

// contextKeys2 returns up to anchorContextWidth keys before and after ti,
// in order: [before...,after...].
func contextKeys2(tokens []string, ti int) []string {
	var keys []string
	for d := anchorContextWidth; d >= 1; d-- {
		if ti-d >= 0 {
			keys = append(keys, normalizeTokenKey(tokens[ti-d]))
		}
	}
	for d := 1; d <= anchorContextWidth; d++ {
		if ti+d < len(tokens) {
			keys = append(keys, normalizeTokenKey(tokens[ti+d]))
		}
	}
	return keys
}

func blockSignature(blk Block) string {
	return normalizedRepetitionSignature(truncate60(blk.Text))
}

func findBlock(idx *NarrativeIndex, meta TokenMeta) *Block {
	if meta.PageIndex < 0 || meta.PageIndex >= len(idx.Pages) {
		return nil
	}
	p := &idx.Pages[meta.PageIndex]
	for i := range p.Blocks {
		b := &p.Blocks[i]
		if b.ColumnIndex == meta.ColumnIndex && b.BlockIndex == meta.BlockIndex {
			return b
		}
	}
	return nil
}

// ResolveSelection hit-tests a point or rectangle against the document's
// blocks and returns the TokenRange it covers (§4.10). A point selection
// resolves to the single block containing it. A rectangle selection that
// crosses block or column boundaries unions every intersecting included
// block's TokenRange, in reading order, and reports SpanColumns/SpanBlocks
// on the caller-provided SelectionContext.
func ResolveSelection(idx *NarrativeIndex, sc *SelectionContext) (TokenRange, bool) {
	if sc.PageIndex < 0 || sc.PageIndex >= len(idx.Pages) {
		return TokenRange{}, false
	}
	page := idx.Pages[sc.PageIndex]

	if !sc.HasRect {
		for _, blk := range page.Blocks {
			if !blk.Included {
				continue
			}
			if blk.Box.Contains(sc.XMidN, sc.YMidN) {
				sc.ColumnIndex = blk.ColumnIndex
				sc.BlockIndex = blk.BlockIndex
				return blk.TokenRange, true
			}
		}
		return TokenRange{}, false
	}

	var start, end int
	found := false
	firstCol := -1
	for _, blk := range page.Blocks {
		if !blk.Included || !rectsIntersect(blk.Box, sc.Rect) {
			continue
		}
		if !found {
			start, end = blk.TokenRange.Start, blk.TokenRange.End
			firstCol = blk.ColumnIndex
			found = true
			continue
		}
		if blk.TokenRange.Start < start {
			start = blk.TokenRange.Start
		}
		if blk.TokenRange.End > end {
			end = blk.TokenRange.End
		}
		if blk.ColumnIndex != firstCol {
			sc.SpanColumns = true
		}
		sc.SpanBlocks = true
	}
	if !found {
		return TokenRange{}, false
	}
	return TokenRange{Start: start, End: end}, true
}

func rectsIntersect(a, b Rect) bool {
	return a.X0 < b.X1 && b.X0 < a.X1 && a.Y0 < b.Y1 && b.Y0 < a.Y1
}
