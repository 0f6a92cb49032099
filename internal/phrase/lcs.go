package phrase

// LongestCommonSubstring returns the longest contiguous run shared by a
// and b. Among equally long runs the one starting earliest in a wins, then
// earliest in b.
func LongestCommonSubstring(a, b string) string {
	if a == "" || b == "" {
		return ""
	}

	// prev[j] and cur[j] hold the length of the common run ending at a[i-1], b[j-1]
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	bestLen, bestEnd := 0, 0

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > bestLen {
					bestLen = cur[j]
					bestEnd = i
				}
			} else {
				cur[j] = 0
			}
		}
		prev, cur = cur, prev
	}

	return a[bestEnd-bestLen : bestEnd]
}
