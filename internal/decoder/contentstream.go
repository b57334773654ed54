package decoder

import (
	"strconv"
	"strings"
)

// parseContentStream walks a page's decoded content stream and emits one
// RawTextItem per text-showing operator (Tj, ', ", and each string operand
// of TJ), carrying the current text rendering matrix and font size at the
// point that string was shown. It implements enough of the PDF content
// stream grammar (BT/ET, Tf, Tm, Td, TD, T*, Tj, TJ, ', ") to recover
// layout; it does not resolve font encodings or CID fonts, so it assumes
// content streams using simple single-byte text strings.
func parseContentStream(raw []byte) ([]RawTextItem, error) {
	toks := tokenizeContentStream(string(raw))

	var items []RawTextItem
	var operands []string

	fontSize := 1.0
	leading := 0.0
	tm := [6]float64{1, 0, 0, 1, 0, 0} // current text matrix, set by BT/Tm
	tlm := tm                          // text line matrix

	for _, tok := range toks {
		if !isOperator(tok) {
			operands = append(operands, tok)
			continue
		}

		switch tok {
		case "BT":
			tm = [6]float64{1, 0, 0, 1, 0, 0}
			tlm = tm
		case "ET":
			// no-op: matrices reset on next BT
		case "Tf":
			if len(operands) >= 2 {
				fontSize = parseFloat(operands[len(operands)-1])
			}
		case "TL":
			if len(operands) >= 1 {
				leading = parseFloat(operands[0])
			}
		case "Tm":
			if len(operands) >= 6 {
				for i := 0; i < 6; i++ {
					tm[i] = parseFloat(operands[i])
				}
				tlm = tm
			}
		case "Td":
			if len(operands) >= 2 {
				tx, ty := parseFloat(operands[0]), parseFloat(operands[1])
				tlm = translate(tlm, tx, ty)
				tm = tlm
			}
		case "TD":
			if len(operands) >= 2 {
				tx, ty := parseFloat(operands[0]), parseFloat(operands[1])
				leading = -ty
				tlm = translate(tlm, tx, ty)
				tm = tlm
			}
		case "T*":
			tlm = translate(tlm, 0, -leading)
			tm = tlm
		case "Tj":
			if len(operands) >= 1 {
				items = append(items, textItemAt(unescapePDFString(operands[len(operands)-1]), tm, fontSize))
			}
		case "'":
			tlm = translate(tlm, 0, -leading)
			tm = tlm
			if len(operands) >= 1 {
				items = append(items, textItemAt(unescapePDFString(operands[len(operands)-1]), tm, fontSize))
			}
		case "\"":
			if len(operands) >= 3 {
				leading = -parseFloat(operands[len(operands)-3])
				tlm = translate(tlm, 0, -leading)
				tm = tlm
				items = append(items, textItemAt(unescapePDFString(operands[len(operands)-1]), tm, fontSize))
			}
		case "TJ":
			for _, piece := range operands {
				if strings.HasPrefix(piece, "(") {
					items = append(items, textItemAt(unescapePDFString(piece), tm, fontSize))
				} else if adj := parseFloat(piece); adj != 0 {
					tm = translate(tm, -adj/1000*fontSize, 0)
				}
			}
		}

		operands = operands[:0]
	}

	return items, nil
}

func textItemAt(s string, tm [6]float64, fontSize float64) RawTextItem {
	width := float64(len([]rune(s))) * fontSize * 0.5 // approximate advance width
	item := RawTextItem{
		Str:       s,
		Transform: tm,
		Width:     width,
		Height:    fontSize,
	}
	return item
}

func translate(m [6]float64, tx, ty float64) [6]float64 {
	// [1 0 0 1 tx ty] x m
	return [6]float64{
		m[0], m[1], m[2], m[3],
		tx*m[0] + ty*m[2] + m[4],
		tx*m[1] + ty*m[3] + m[5],
	}
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

// isOperator reports whether a content-stream token is an operator (as
// opposed to a numeric, name or string operand). Parenthesized strings and
// bracketed TJ arrays are flattened into individual tokens by
// tokenizeContentStream, so this only needs to reject those plus names
// (such as the /F1 font operand of Tf) and numbers.
func isOperator(tok string) bool {
	if tok == "" {
		return false
	}
	if strings.HasPrefix(tok, "(") || strings.HasPrefix(tok, "/") {
		return false
	}
	if _, err := strconv.ParseFloat(tok, 64); err == nil {
		return false
	}
	return true
}

// tokenizeContentStream splits a content stream into whitespace-delimited
// tokens, keeping parenthesized literal strings intact (including escaped
// parens) and unwrapping TJ's bracketed arrays into their component
// tokens.
func tokenizeContentStream(s string) []string {
	var toks []string
	i := 0
	n := len(s)
	for i < n {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			j := i + 1
			depth := 1
			for j < n && depth > 0 {
				switch s[j] {
				case '\\':
					j++ // skip escaped char
				case '(':
					depth++
				case ')':
					depth--
				}
				j++
			}
			toks = append(toks, s[i:j])
			i = j
		case c == '[' || c == ']':
			i++
		case c == '/':
			j := i + 1
			for j < n && !isDelim(s[j]) {
				j++
			}
			toks = append(toks, s[i:j])
			i = j
		default:
			j := i
			for j < n && !isDelim(s[j]) {
				j++
			}
			if j == i {
				i++
				continue
			}
			toks = append(toks, s[i:j])
			i = j
		}
	}
	return toks
}

func isDelim(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '(', ')', '[', ']', '/':
		return true
	}
	return false
}

// unescapePDFString strips the surrounding parens from a literal PDF
// string and resolves its backslash escapes.
func unescapePDFString(tok string) string {
	if len(tok) < 2 || tok[0] != '(' || tok[len(tok)-1] != ')' {
		return tok
	}
	body := tok[1 : len(tok)-1]
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		if body[i] != '\\' || i == len(body)-1 {
			b.WriteByte(body[i])
			continue
		}
		i++
		switch body[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case '(', ')', '\\':
			b.WriteByte(body[i])
		default:
			b.WriteByte(body[i])
		}
	}
	return b.String()
}
