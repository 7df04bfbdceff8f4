package flare

import (
	"context"
	"math/big"
)

// MintClientWrapper submits a mint on the FAsset contract and waits for the
// transaction to be mined. Implementations must only return a nil error once
// the mint is confirmed on chain.
type MintClientWrapper interface {
	Mint(ctx context.Context, to string, amount *big.Int) (txHash string, err error)
}
