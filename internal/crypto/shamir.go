package crypto

import (
	"fmt"
	"io"
)

// Shamir secret sharing over GF(256) with the AES field polynomial
// (x^8 + x^4 + x^3 + x + 1). A secret of L bytes is split byte-wise: for
// each byte a random polynomial of degree threshold-1 is drawn with the
// secret byte as constant term, and share i receives the evaluation at
// x = i. Any threshold shares reconstruct the secret via Lagrange
// interpolation at x = 0; fewer reveal nothing.

// SplitSecret splits secret into parts shares with the given reconstruction
// threshold. Polynomial coefficients are drawn from random, which callers
// should back with aggregator-sourced entropy. The returned map is keyed by
// the share's x-coordinate (1..parts).
func SplitSecret(random io.Reader, secret []byte, parts, threshold int) (map[byte][]byte, error) {
	if threshold < 2 || parts < threshold || parts > 255 {
		return nil, fmt.Errorf("%w: parts=%d threshold=%d", ErrShamirParams, parts, threshold)
	}
	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: empty secret", ErrShamirParams)
	}

	// One degree-(threshold-1) polynomial per secret byte; coefficient
	// [0] is the secret byte, the rest are random.
	coeffs := make([]byte, len(secret)*(threshold-1))
	if _, err := io.ReadFull(random, coeffs); err != nil {
		return nil, fmt.Errorf("drawing polynomial coefficients: %w", err)
	}

	shares := make(map[byte][]byte, parts)
	for i := 1; i <= parts; i++ {
		x := byte(i)
		y := make([]byte, len(secret))

		for j, b := range secret {
			poly := coeffs[j*(threshold-1) : (j+1)*(threshold-1)]
			y[j] = evalPoly(b, poly, x)
		}

		shares[x] = y
	}

	Zero(coeffs)
	return shares, nil
}

// CombineShares reconstructs the secret from shares keyed by x-coordinate.
// The caller is responsible for providing at least the original threshold;
// this function interpolates whatever it is given and cannot detect an
// insufficient subset by itself (the seed commitment check above it can).
func CombineShares(shares map[byte][]byte) ([]byte, error) {
	if len(shares) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 shares, got %d", ErrShamirShares, len(shares))
	}

	length := -1
	for x, y := range shares {
		if x == 0 {
			return nil, fmt.Errorf("%w: x-coordinate 0 is reserved for the secret", ErrShamirShares)
		}
		if length == -1 {
			length = len(y)
		}
		if len(y) == 0 || len(y) != length {
			return nil, fmt.Errorf("%w: mismatched share lengths", ErrShamirShares)
		}
	}

	xs := make([]byte, 0, len(shares))
	for x := range shares {
		xs = append(xs, x)
	}

	secret := make([]byte, length)
	for j := 0; j < length; j++ {
		var acc byte
		for _, xi := range xs {
			// Lagrange basis polynomial for xi evaluated at x = 0.
			basis := byte(1)
			for _, xk := range xs {
				if xk == xi {
					continue
				}
				basis = gfMul(basis, gfDiv(xk, xi^xk))
			}
			acc ^= gfMul(basis, shares[xi][j])
		}
		secret[j] = acc
	}

	return secret, nil
}

// evalPoly evaluates the polynomial with constant term c0 and higher
// coefficients coeffs at point x using Horner's method.
func evalPoly(c0 byte, coeffs []byte, x byte) byte {
	var out byte
	for i := len(coeffs) - 1; i >= 0; i-- {
		out = gfMul(out, x) ^ coeffs[i]
	}
	return gfMul(out, x) ^ c0
}

// gfMul multiplies two elements of GF(2^8) modulo x^8 + x^4 + x^3 + x + 1.
func gfMul(a, b byte) byte {
	var p byte
	for b > 0 {
		if b&1 == 1 {
			p ^= a
		}
		carry := a & 0x80
		a <<= 1
		if carry != 0 {
			a ^= 0x1b
		}
		b >>= 1
	}
	return p
}

// gfDiv divides a by b in GF(2^8). Division by zero panics; the combine
// loop guarantees distinct x-coordinates so xi^xk is never zero there.
func gfDiv(a, b byte) byte {
	if b == 0 {
		panic("crypto: division by zero in GF(256)")
	}
	return gfMul(a, gfInv(b))
}

// gfInv computes the multiplicative inverse b^254 by square-and-multiply.
func gfInv(b byte) byte {
	// b^254 = b^2 * b^4 * b^8 * b^16 * b^32 * b^64 * b^128.
	var inv byte = 1
	sq := b
	for i := 1; i < 8; i++ {
		sq = gfMul(sq, sq) // b^(2^i)
		inv = gfMul(inv, sq)
	}
	return inv
}
