/*
This file contains common utility functions for fixed-precision token amounts.
All ledger arithmetic runs on sdkmath.Int with truncating division.
*/

package utils

import (
	"math/big"

	sdkmath "cosmossdk.io/math"
)

// MaxUint256 is the infinite-allowance sentinel: 2^256 - 1.
var MaxUint256 = sdkmath.NewIntFromBigInt(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1)))

// ExpandTo18Decimals returns n * 10^18.
func ExpandTo18Decimals(n int64) sdkmath.Int {
	return ExpandToDecimals(n, 18)
}

// ExpandTo6Decimals returns n * 10^6.
func ExpandTo6Decimals(n int64) sdkmath.Int {
	return ExpandToDecimals(n, 6)
}

// ExpandToDecimals returns n * 10^decimals.
func ExpandToDecimals(n int64, decimals uint8) sdkmath.Int {
	return sdkmath.NewInt(n).Mul(PowTen(decimals))
}

// PowTen returns 10^decimals.
func PowTen(decimals uint8) sdkmath.Int {
	return sdkmath.NewIntFromBigInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
}

// MinInt returns the smaller of a and b.
func MinInt(a, b sdkmath.Int) sdkmath.Int {
	if a.LT(b) {
		return a
	}
	return b
}

// Sqrt returns the integer square root of n (floor).
func Sqrt(n sdkmath.Int) sdkmath.Int {
	return sdkmath.NewIntFromBigInt(new(big.Int).Sqrt(n.BigInt()))
}
