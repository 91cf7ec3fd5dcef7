package counters

func assert(bool) {}

func Count(n int) int {
	i := 0
	for i < n {
		i++
	}
	assert(i >= 0)
	return i
}
