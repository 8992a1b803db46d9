package sites

// maxSuggestDistance bounds how far a mistyped site name may be from a served one.
const maxSuggestDistance = 2

// Closest returns the served site whose name is nearest to name by edit distance, counting
// an adjacent swap as one edit. Ties go to the alphabetically first name.
func (r *Registry) Closest(name string) (Site, bool) {
	var (
		best     Site
		bestDist = maxSuggestDistance + 1
	)
	for _, s := range r.List() {
		if d := editDistance(name, s.Name); d < bestDist {
			best, bestDist = s, d
		}
	}
	return best, bestDist <= maxSuggestDistance
}

// editDistance is the optimal string alignment distance over runes.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	d := make([][]int, len(ra)+1)
	for i := range d {
		d[i] = make([]int, len(rb)+1)
		d[i][0] = i
	}
	for j := range d[0] {
		d[0][j] = j
	}
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			d[i][j] = min(d[i-1][j]+1, d[i][j-1]+1, d[i-1][j-1]+cost)
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				d[i][j] = min(d[i][j], d[i-2][j-2]+1)
			}
		}
	}
	return d[len(ra)][len(rb)]
}
