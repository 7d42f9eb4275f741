package cloth

// colorBatches partitions constraints into batches in which no two
// constraints share a particle. Greedy first-fit in list order, so the batch
// sequence stays close to the sequential pass order.
func colorBatches(list []Constraint, numParticles int) [][]int {
	var batches [][]int
	var used [][]bool
	for idx, s := range list {
		placed := false
		for b := range batches {
			if used[b][s.A] || used[b][s.B] {
				continue
			}
			batches[b] = append(batches[b], idx)
			used[b][s.A], used[b][s.B] = true, true
			placed = true
			break
		}
		if placed {
			continue
		}
		mark := make([]bool, numParticles)
		mark[s.A], mark[s.B] = true, true
		used = append(used, mark)
		batches = append(batches, []int{idx})
	}
	return batches
}
