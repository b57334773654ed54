package layout

import "testing"

func lineBox(text string, y0, y1, fontSize float64) Line {
	return Line{Text: text, Box: Rect{X0: 0.1, X1: 0.9, Y0: y0, Y1: y1}, FontSize: fontSize}
}

func TestLinesContinueSmallGapSameFont(t *testing.T) {
	a := lineBox("one", 0.10, 0.12, 10)
	b := lineBox("two", 0.123, 0.143, 10)
	if !linesContinue(a, b) {
		t.Error("expected lines with a small gap and matching font size to continue the same block")
	}
}

func TestLinesContinueLargeGapBreaks(t *testing.T) {
	a := lineBox("one", 0.10, 0.12, 10)
	b := lineBox("two", 0.30, 0.32, 10)
	if linesContinue(a, b) {
		t.Error("expected a large vertical gap to break the block")
	}
}

func TestLinesContinueFontJumpBreaks(t *testing.T) {
	a := lineBox("one", 0.10, 0.12, 10)
	b := lineBox("two", 0.123, 0.143, 20)
	if linesContinue(a, b) {
		t.Error("expected a large font-size jump to break the block")
	}
}

func TestSegmentColumnGroupsContinuousLines(t *testing.T) {
	lines := []Line{
		lineBox("Paragraph line one", 0.10, 0.12, 10),
		lineBox("Paragraph line two", 0.123, 0.143, 10),
		lineBox("New paragraph after a gap", 0.50, 0.52, 10),
	}
	reasons := []ExclusionReason{"", "", ""}
	blocks := segmentColumn(0, 0, lines, reasons)
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(blocks))
	}
	if len(blocks[0].Lines) != 2 {
		t.Errorf("first block has %d lines, want 2", len(blocks[0].Lines))
	}
	if len(blocks[1].Lines) != 1 {
		t.Errorf("second block has %d lines, want 1", len(blocks[1].Lines))
	}
}

func TestSegmentColumnBreaksOnReasonChange(t *testing.T) {
	lines := []Line{
		lineBox("Running Head", 0.10, 0.12, 10),
		lineBox("Body text starts here", 0.123, 0.143, 10),
	}
	reasons := []ExclusionReason{ReasonHeaderFooter, ""}
	blocks := segmentColumn(0, 0, lines, reasons)
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2 (reason change forces a boundary)", len(blocks))
	}
	if blocks[0].Included {
		t.Error("excluded block should not be marked Included")
	}
	if blocks[1].ExcludeReason != "" {
		t.Errorf("second block should carry no exclusion reason, got %v", blocks[1].ExcludeReason)
	}
}

func TestBuildBlockFontSizeIsMedianAndTextJoined(t *testing.T) {
	lines := []Line{
		lineBox("first", 0.1, 0.12, 10),
		lineBox("second", 0.13, 0.15, 14),
	}
	blk := buildBlock(0, 0, lines, "")
	if blk.FontSizeMed != 12 {
		t.Errorf("block font size = %v, want 12 (median)", blk.FontSizeMed)
	}
	if blk.Text != "first\nsecond" {
		t.Errorf("block text = %q, want %q", blk.Text, "first\nsecond")
	}
	if blk.BlockIndex != -1 {
		t.Errorf("block index = %d, want -1 before pipeline re-indexing", blk.BlockIndex)
	}
}

func TestBuildBlockWithReasonIsExcluded(t *testing.T) {
	lines := []Line{lineBox("page 7", 0.02, 0.04, 8)}
	blk := buildBlock(0, 0, lines, ReasonHeaderFooter)
	if blk.Included {
		t.Error("a block built with an exclusion reason must not be Included")
	}
	if blk.Type != BlockHeaderFooter {
		t.Errorf("block type = %v, want %v", blk.Type, BlockHeaderFooter)
	}
	if blk.Confidence != 1 {
		t.Errorf("confidence = %v, want 1 for a line-level exclusion", blk.Confidence)
	}
}
