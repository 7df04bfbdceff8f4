package flare

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

const fassetABI = `[{"type":"function","name":"mint","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]}]`

type Client struct {
	config   *Config
	client   *ethclient.Client
	key      *ecdsa.PrivateKey
	from     common.Address
	contract common.Address
	chainID  *big.Int
	abi      abi.ABI

	// serializes nonce allocation between concurrent mints
	mu sync.Mutex
}

func Dial(ctx context.Context, config *Config) (*Client, error) {
	client, err := ethclient.DialContext(ctx, config.FlareRPCAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", config.FlareRPCAddress, err)
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(config.FlarePrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid FLARE_PRIVATE_KEY: %w", err)
	}
	if !common.IsHexAddress(config.FAssetContractAddress) {
		return nil, fmt.Errorf("invalid FASSET_CONTRACT_ADDRESS: %s", config.FAssetContractAddress)
	}
	parsedABI, err := abi.JSON(strings.NewReader(fassetABI))
	if err != nil {
		return nil, err
	}
	return &Client{
		config:   config,
		client:   client,
		key:      key,
		from:     crypto.PubkeyToAddress(key.PublicKey),
		contract: common.HexToAddress(config.FAssetContractAddress),
		chainID:  big.NewInt(config.FlareChainID),
		abi:      parsedABI,
	}, nil
}

// Mint calls mint(to, amount) on the FAsset contract and waits for the
// receipt. A reverted transaction is returned as an error together with its
// hash so the caller can log it.
func (c *Client) Mint(ctx context.Context, to string, amount *big.Int) (string, error) {
	if !common.IsHexAddress(to) {
		return "", fmt.Errorf("invalid mint destination: %s", to)
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.config.MintTimeout)*time.Second)
	defer cancel()

	data, err := c.abi.Pack("mint", common.HexToAddress(to), amount)
	if err != nil {
		return "", err
	}

	signedTx, err := c.submit(ctx, data)
	if err != nil {
		return "", err
	}

	receipt, err := bind.WaitMined(ctx, c.client, signedTx)
	if err != nil {
		return "", fmt.Errorf("waiting for mint confirmation: %w", err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return "", fmt.Errorf("mint reverted, tx %s", signedTx.Hash().Hex())
	}
	return signedTx.Hash().Hex(), nil
}

func (c *Client) submit(ctx context.Context, data []byte) (*types.Transaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	nonce, err := c.client.PendingNonceAt(ctx, c.from)
	if err != nil {
		return nil, err
	}
	gasPrice, err := c.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, err
	}

	tx := types.NewTransaction(nonce, c.contract, big.NewInt(0), c.config.MintGasLimit, gasPrice, data)
	signedTx, err := types.SignTx(tx, types.LatestSignerForChainID(c.chainID), c.key)
	if err != nil {
		return nil, err
	}
	if err := c.client.SendTransaction(ctx, signedTx); err != nil {
		return nil, err
	}
	return signedTx, nil
}

func (c *Client) Close() {
	c.client.Close()
}
