package main

import (
	"os"

	"github.com/MixinNetwork/registry/mtg"
	"github.com/MixinNetwork/registry/nft"
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

const (
	StoreEngineBadger = "badger"
	StoreEnginePebble = "pebble"
)

type Configuration struct {
	Store    StoreConfig       `toml:"store"`
	Contract ContractConfig    `toml:"contract"`
	Group    mtg.Configuration `toml:"group"`
	HTTP     HTTPConfig        `toml:"http"`
	Logger   LoggerConfig      `toml:"logger"`
}

type StoreConfig struct {
	Engine string `toml:"engine"`
	Path   string `toml:"path"`
}

type ContractConfig struct {
	Name      string      `toml:"name"`
	Symbol    string      `toml:"symbol"`
	Minter    string      `toml:"minter"`
	MaxMints  uint64      `toml:"max-mints"`
	TokenURI  string      `toml:"token-uri"`
	MintPrice PriceConfig `toml:"mint-price"`
}

type PriceConfig struct {
	Denom  string `toml:"denom"`
	Amount string `toml:"amount"`
}

type HTTPConfig struct {
	Listen string `toml:"listen"`
}

type LoggerConfig struct {
	Level int `toml:"level"`
}

func Setup(path string) (*Configuration, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	var conf Configuration
	err = toml.Unmarshal(f, &conf)
	if err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	if conf.Store.Engine == "" {
		conf.Store.Engine = StoreEngineBadger
	}
	switch conf.Store.Engine {
	case StoreEngineBadger, StoreEnginePebble:
	default:
		return nil, errors.Errorf("unsupported store engine %s", conf.Store.Engine)
	}
	return &conf, nil
}

func (cc *ContractConfig) InstantiateMsg() (*nft.InstantiateMsg, error) {
	price, err := nft.NewCoin(cc.MintPrice.Denom, cc.MintPrice.Amount)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid mint price %s", cc.MintPrice.Amount)
	}
	msg := &nft.InstantiateMsg{
		Name:      cc.Name,
		Symbol:    cc.Symbol,
		Minter:    cc.Minter,
		MaxMints:  cc.MaxMints,
		MintPrice: price,
	}
	if cc.TokenURI != "" {
		uri := cc.TokenURI
		msg.TokenURI = &uri
	}
	return msg, nil
}
