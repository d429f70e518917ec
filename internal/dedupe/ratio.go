package dedupe

// sequenceRatio measures similarity of two strings as 2*M/T, where M is the
// total size of the longest matching blocks and T the combined length. This
// mirrors the ratio used by Python's difflib.SequenceMatcher, which the
// threshold below was tuned against.
func sequenceRatio(a, b string) float64 {
	ar := []rune(a)
	br := []rune(b)
	total := len(ar) + len(br)
	if total == 0 {
		return 1
	}

	matches := 0
	for _, m := range matchingBlocks(ar, br) {
		matches += m.size
	}
	return 2 * float64(matches) / float64(total)
}

type block struct {
	a, b, size int
}

// matchingBlocks finds non-overlapping matching blocks by recursively taking
// the longest match and splitting around it.
func matchingBlocks(a, b []rune) []block {
	b2j := make(map[rune][]int, len(b))
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}

	type span struct {
		alo, ahi, blo, bhi int
	}
	queue := []span{{0, len(a), 0, len(b)}}

	var blocks []block
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		m := longestMatch(a, s.alo, s.ahi, s.blo, s.bhi, b2j)
		if m.size == 0 {
			continue
		}
		blocks = append(blocks, m)
		if s.alo < m.a && s.blo < m.b {
			queue = append(queue, span{s.alo, m.a, s.blo, m.b})
		}
		if m.a+m.size < s.ahi && m.b+m.size < s.bhi {
			queue = append(queue, span{m.a + m.size, s.ahi, m.b + m.size, s.bhi})
		}
	}
	return blocks
}

// longestMatch finds the longest block where a[alo:ahi] and b[blo:bhi] agree,
// preferring the earliest in a, then the earliest in b.
func longestMatch(a []rune, alo, ahi, blo, bhi int, b2j map[rune][]int) block {
	besti, bestj, bestsize := alo, blo, 0
	j2len := map[int]int{}

	for i := alo; i < ahi; i++ {
		newj2len := map[int]int{}
		for _, j := range b2j[a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			newj2len[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = newj2len
	}
	return block{besti, bestj, bestsize}
}
