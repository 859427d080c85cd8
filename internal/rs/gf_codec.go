package rs

import (
	nebulaerrors "github.com/nebula-labs/nebula-reconstruct/internal/errors"
	"github.com/nebula-labs/nebula-reconstruct/internal/gf"
)

// This file implements systematic Reed-Solomon coding (generator roots
// alpha^0..alpha^(nsym-1)) over a single codeword (one byte position's
// worth of symbols): generator
// polynomial construction, LFSR-style systematic encoding, and
// known-position errata correction via syndromes and the Forney algorithm.
//
// It mirrors the classic generator-polynomial ("BCH view") RS construction
// used by the reedsolo library that original_source/.../erasure.py drives
// (see DESIGN.md), ported to Go, rather than a Vandermonde-matrix-inversion
// scheme.
//
// Errata correction here always receives explicit symbol positions to fix
// (missing shards, plus any shard the integrity layer in internal/shard has
// flagged via a SHA-256 mismatch). Because SHA-256 already tells the caller
// exactly which shard is untrustworthy, this codec never needs to *locate*
// an error at an unknown position algebraically (the classical
// Berlekamp-Massey/Chien-search half of Reed-Solomon decoding) — it only
// ever needs to *correct* at positions it is told about, which is a
// considerably simpler and more robust piece of linear algebra.

func errDecodeFailure(format string, args ...any) error {
	return nebulaerrors.New(nebulaerrors.DecodeFailure, format, args...)
}

// generatorPoly builds g(x) = product_{i=0}^{nsym-1} (x - alpha^i).
func generatorPoly(nsym int) []byte {
	g := []byte{1}
	for i := 0; i < nsym; i++ {
		g = polyMul(g, []byte{1, gf.Pow(gf.Generator, i)})
	}
	return g
}

// encodeSymbol appends nsym parity symbols to msgIn, returning a codeword of
// length len(msgIn)+nsym whose first len(msgIn) bytes equal msgIn.
func encodeSymbol(msgIn []byte, gen []byte) []byte {
	nsym := len(gen) - 1
	out := make([]byte, len(msgIn)+nsym)
	copy(out, msgIn)

	for i := 0; i < len(msgIn); i++ {
		coef := out[i]
		if coef == 0 {
			continue
		}
		for j := 1; j < len(gen); j++ {
			out[i+j] ^= gf.Mul(gen[j], coef)
		}
	}
	copy(out, msgIn)
	return out
}

// calcSyndromes returns a length nsym+1 slice: element 0 is an unused
// leading zero (kept so the array lines up with the generator's degree
// bookkeeping in errorEvaluator), elements 1..nsym are S_i = msg(alpha^i)
// for i = 0..nsym-1.
func calcSyndromes(msg []byte, nsym int) []byte {
	synd := make([]byte, nsym+1)
	for i := 0; i < nsym; i++ {
		synd[i+1] = polyEval(msg, gf.Pow(gf.Generator, i))
	}
	return synd
}

func syndromesAllZero(synd []byte) bool {
	for _, s := range synd {
		if s != 0 {
			return false
		}
	}
	return true
}

// errataLocator builds the errata locator polynomial for the given symbol
// positions (array index into a length-msgLen codeword, 0 = first symbol).
func errataLocator(positions []int, msgLen int) []byte {
	loc := []byte{1}
	for _, p := range positions {
		coefPos := msgLen - 1 - p
		root := gf.Pow(gf.Generator, coefPos)
		// factor (root*x + 1), equal to (1 - root*x) in char-2 arithmetic.
		loc = polyMul(loc, []byte{root, 1})
	}
	return loc
}

// errorEvaluator computes Omega(x) from the padded syndromes and the errata
// locator polynomial (both in the conventions calcSyndromes/errataLocator
// produce).
func errorEvaluator(syndPadded []byte, errLoc []byte) []byte {
	numErrata := len(errLoc) - 1
	product := polyMul(reverseBytes(syndPadded), errLoc)
	modulus := make([]byte, numErrata+2)
	modulus[0] = 1
	_, remainder := polyDivMod(product, modulus)
	return reverseBytes(remainder)
}

func reverseBytes(p []byte) []byte {
	out := make([]byte, len(p))
	for i, c := range p {
		out[len(p)-1-i] = c
	}
	return out
}

// correctErrata fixes msg at the given positions using the Forney algorithm,
// given the syndromes of the uncorrected (erasure-zeroed) message. len(msg)
// is the full codeword length n.
func correctErrata(msg []byte, syndPadded []byte, positions []int) ([]byte, error) {
	if len(positions) == 0 {
		return msg, nil
	}

	errLoc := errataLocator(positions, len(msg))
	errEval := errorEvaluator(syndPadded, errLoc)

	coefPos := make([]int, len(positions))
	xs := make([]byte, len(positions))
	for i, p := range positions {
		coefPos[i] = len(msg) - 1 - p
		xs[i] = gf.Pow(gf.Generator, coefPos[i])
	}

	corrected := make([]byte, len(msg))
	copy(corrected, msg)

	for i, xi := range xs {
		xiInv := gf.Inverse(xi)

		denom := byte(1)
		for j, xj := range xs {
			if j == i {
				continue
			}
			denom = gf.Mul(denom, 1^gf.Mul(xiInv, xj))
		}
		if denom == 0 {
			return nil, errDecodeFailure("degenerate error locator (repeated root)")
		}

		numer := gf.Mul(xi, polyEval(reverseBytes(errEval), xiInv))
		magnitude := gf.Div(numer, denom)
		corrected[positions[i]] ^= magnitude
	}

	return corrected, nil
}

// decodeKnownPositions corrects a length-n codeword at the given symbol
// positions (erasures, plus any shard the integrity layer flagged as
// corrupt), returning the corrected codeword. Fails with a decode error if
// the redundancy budget (nsym = parity-symbol count) is exceeded or the
// syndrome cannot be satisfied afterward.
func decodeKnownPositions(codeword []byte, nsym int, positions []int) ([]byte, error) {
	if len(positions) > nsym {
		return nil, errDecodeFailure("too many erasures/errors: %d exceeds redundancy budget %d", len(positions), nsym)
	}

	work := make([]byte, len(codeword))
	copy(work, codeword)
	for _, p := range positions {
		work[p] = 0
	}

	synd := calcSyndromes(work, nsym)
	if syndromesAllZero(synd) {
		return work, nil
	}

	corrected, err := correctErrata(work, synd, positions)
	if err != nil {
		return nil, err
	}

	verify := calcSyndromes(corrected, nsym)
	if !syndromesAllZero(verify) {
		return nil, errDecodeFailure("syndrome not satisfied after correction")
	}

	return corrected, nil
}
