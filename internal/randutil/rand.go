package randutil

import rand "math/rand/v2"

const goldenRatio64 = 0x9e3779b97f4a7c15

// New returns a *rand.Rand seeded deterministically from the provided
// int64. It centralises how the two 64-bit PCG seeds are derived so
// that every call site gets reproducible sequences from one seed.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(splitmix64(u), splitmix64(u+goldenRatio64)))
}

// Child derives an independent generator from a parent, advancing the
// parent by one draw. Callers serialise access to the parent. Handing
// each hand its own child keeps shuffles reproducible without sharing
// one generator across rooms.
func Child(parent *rand.Rand) *rand.Rand {
	return New(parent.Int64())
}

// splitmix64 finalizer, used to spread low-entropy seeds across the
// full 64-bit space.
func splitmix64(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
