package flare

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenUnitsFromDrops(t *testing.T) {
	// 1 drop = 10^12 wei-scale token units
	assert.Equal(t, big.NewInt(1_000_000_000_000), TokenUnitsFromDrops(1))
}

func TestTokenUnitsFromDropsOneXRP(t *testing.T) {
	expected, _ := new(big.Int).SetString("1000000000000000000", 10)
	assert.Equal(t, expected, TokenUnitsFromDrops(1_000_000))
}

func TestTokenUnitsFromDropsZero(t *testing.T) {
	assert.Equal(t, big.NewInt(0), TokenUnitsFromDrops(0))
}

func TestTokenUnitsFromDropsLargeAmount(t *testing.T) {
	// 100 billion XRP, the total supply, must not overflow
	expected, _ := new(big.Int).SetString("100000000000000000000000000000", 10)
	assert.Equal(t, expected, TokenUnitsFromDrops(100_000_000_000*1_000_000))
}
