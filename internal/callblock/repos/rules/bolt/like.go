package bolt

// likeMatch reports whether s matches the SQL LIKE pattern: '%' matches any
// run of characters (including none), '_' matches exactly one. There is no
// escape character; canonical numbers never contain literal wildcards.
func likeMatch(pattern, s string) bool {
	p, i := 0, 0
	star, mark := -1, 0
	for i < len(s) {
		switch {
		case p < len(pattern) && pattern[p] == '%':
			star, mark = p, i
			p++
		case p < len(pattern) && (pattern[p] == '_' || pattern[p] == s[i]):
			p++
			i++
		case star >= 0:
			// backtrack: let the last '%' swallow one more character
			p = star + 1
			mark++
			i = mark
		default:
			return false
		}
	}
	for p < len(pattern) && pattern[p] == '%' {
		p++
	}
	return p == len(pattern)
}
