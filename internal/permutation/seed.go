package permutation

// streamSeed derives an independent generator seed for one null cell.
// Every (seed, permutation index, set index) triple maps to the same seed
// regardless of which worker computes it, which is what makes results
// bit-identical across thread counts.
func streamSeed(seed uint64, perm, set int) int64 {
	x := seed ^ (uint64(perm)+1)*0x9E3779B97F4A7C15 ^ (uint64(set)+1)*0xBF58476D1CE4E5B9
	return int64(splitmix64(x))
}

// splitmix64 is the finalizer of the SplitMix64 generator, used here as a
// seed mixer so nearby inputs land on uncorrelated streams
func splitmix64(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	return x ^ (x >> 31)
}
