package flare

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	FlareRPCAddress       string `envconfig:"FLARE_RPC_ADDRESS" required:"true"` //e.g. https://coston2-api.flare.network/ext/C/rpc
	FlareChainID          int64  `envconfig:"FLARE_CHAIN_ID" default:"114"`      // coston2 testnet
	FlarePrivateKey       string `envconfig:"FLARE_PRIVATE_KEY" required:"true"`
	FAssetContractAddress string `envconfig:"FASSET_CONTRACT_ADDRESS" required:"true"`
	MintGasLimit          uint64 `envconfig:"MINT_GAS_LIMIT" default:"200000"`
	MintTimeout           int    `envconfig:"MINT_TIMEOUT" default:"120"` // in seconds, submit + confirmation wait
}

func LoadConfig() (c *Config, err error) {
	c = &Config{}
	err = envconfig.Process("", c)
	if err != nil {
		return nil, err
	}
	return c, nil
}
