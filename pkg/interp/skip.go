package interp

// SkipBlock returns how many lines to advance from open, the index of a
// block's opening line, so that execution resumes on the line after the
// matching closing brace. Only lines that are exactly "{" or "}" once
// trimmed change the depth; braces elsewhere in a line are ignored. An
// unclosed block skips to the end of lines.
func SkipBlock(lines Lines, open int) int {
	next, _ := skipBlock(lines, open, len(lines))
	return next - open
}

// skipBlock scans from the line after open up to limit and returns the
// index after the matching close. ok is false when limit is reached with
// the block still open, in which case next is limit.
func skipBlock(lines Lines, open, limit int) (next int, ok bool) {
	end, ok := matchClose(lines, open+1, limit)
	if !ok {
		return limit, false
	}
	return end + 1, true
}

// matchClose starts at depth 1 on line from and returns the index of the
// line that brings the depth back to zero.
func matchClose(lines Lines, from, limit int) (int, bool) {
	depth := 1
	for i := from; i < limit; i++ {
		switch {
		case isOpenBrace(lines[i]):
			depth++
		case isCloseBrace(lines[i]):
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return limit, false
}
