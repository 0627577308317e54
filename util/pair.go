package util

// Pair of two comparable values, usable as a map key
type Pair[A, B comparable] struct {
	Fst A
	Snd B
}

func NewPair[A, B comparable](fst A, snd B) Pair[A, B] {
	return Pair[A, B]{Fst: fst, Snd: snd}
}
