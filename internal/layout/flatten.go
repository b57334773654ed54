package layout

import "strings"

// Tokenizer is the contract the core consumes for flattening narrative
// text into a token stream (§4.9, §6). Implementations must be
// deterministic and language-agnostic: word-boundary segmentation, not
// vocabulary matching.
type Tokenizer interface {
	Tokenize(text string) []string
}

// flattenResult carries the outputs of the Flatten stage (§4.9) that the
// pipeline threads into the final NarrativeIndex.
type flattenResult struct {
	fullText          string
	tokens            []string
	tokenMeta         []TokenMeta
	columnTokenRanges []ColumnTokenRange
}

// flatten walks pages in reading order (page, then column, then block) and
// tokenizes every Included block's text, assigning each block a TokenRange
// into the resulting global token stream. Excluded blocks contribute
// nothing: no tokens, no FullText, no TokenMeta entries (§4.9).
func flatten(pages []Page, order []blockRef, tok Tokenizer) flattenResult {
	var fullTextParts []string
	var tokens []string
	var meta []TokenMeta
	var colRanges []ColumnTokenRange

	colStart := make(map[[2]int]int)

	for _, ref := range order {
		blk := pageBlockMutable(pages, ref)
		if blk == nil || !blk.Included {
			continue
		}

		key := [2]int{ref.pageIndex, ref.columnIndex}
		if _, ok := colStart[key]; !ok {
			colStart[key] = len(tokens)
		}

		blkTokens := tok.Tokenize(blk.Text)
		start := len(tokens)
		for _, t := range blkTokens {
			tokens = append(tokens, t)
			meta = append(meta, TokenMeta{PageIndex: ref.pageIndex, ColumnIndex: ref.columnIndex, BlockIndex: ref.blockIndex})
		}
		blk.TokenRange = TokenRange{Start: start, End: len(tokens)}
		blk.Tokens = blkTokens
		blk.TokenKeys = make([]string, len(blkTokens))
		for i, t := range blkTokens {
			blk.TokenKeys[i] = normalizeTokenKey(t)
		}

		if blk.Text != "" {
			fullTextParts = append(fullTextParts, blk.Text)
		}
	}

	// Close out per-(page,column) ranges in the order first seen.
	var seenKeys [][2]int
	seen := make(map[[2]int]bool)
	for _, ref := range order {
		key := [2]int{ref.pageIndex, ref.columnIndex}
		if !seen[key] {
			seen[key] = true
			seenKeys = append(seenKeys, key)
		}
	}
	for _, key := range seenKeys {
		end := len(tokens)
		// find the end: the last token belonging to this (page,column)
		last := colStart[key]
		for i, m := range meta {
			if m.PageIndex == key[0] && m.ColumnIndex == key[1] && i+1 > last {
				last = i + 1
			}
		}
		colRanges = append(colRanges, ColumnTokenRange{
			PageIndex:   key[0],
			ColumnIndex: key[1],
			Range:       TokenRange{Start: colStart[key], End: last},
		})
		_ = end
	}

	return flattenResult{
		fullText:          strings.Join(fullTextParts, "\n\n"),
		tokens:            tokens,
		tokenMeta:         meta,
		columnTokenRanges: colRanges,
	}
}
