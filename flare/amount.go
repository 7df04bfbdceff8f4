package flare

import (
	"math/big"
)

// XRP carries 6 decimal places (drops), the FAsset token 18, so one drop is
// 10^12 token base units.
var weiPerDrop = big.NewInt(1_000_000_000_000)

func TokenUnitsFromDrops(drops int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(drops), weiPerDrop)
}
