package crypto

// Zero overwrites a byte slice in memory with zeros. Callers zero shared
// secrets, derived keys and reconstructed seeds as soon as they are done
// with them.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
