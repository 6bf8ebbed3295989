package entropy

// VonNeumannDebias removes generator bias from a raw bit stream. Bits are
// consumed in pairs: a 01 pair emits 0, a 10 pair emits 1, and matching
// pairs are discarded. The output is therefore unbiased whenever the input
// bits are independent, at the cost of discarding roughly three quarters of
// the input for a fair source (more for a biased one).
func VonNeumannDebias(raw []byte) []byte {
	out := make([]byte, 0, len(raw)/4)

	var acc byte
	var bits int

	for _, b := range raw {
		for shift := 6; shift >= 0; shift -= 2 {
			pair := (b >> uint(shift)) & 0b11
			switch pair {
			case 0b01:
				acc = acc << 1 // emit 0
			case 0b10:
				acc = acc<<1 | 1 // emit 1
			default:
				continue // 00 and 11 pairs are discarded
			}

			bits++
			if bits == 8 {
				out = append(out, acc)
				acc, bits = 0, 0
			}
		}
	}

	// Trailing bits that never filled a byte are dropped rather than
	// zero-padded, which would reintroduce bias.
	return out
}
