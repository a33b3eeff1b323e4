package nft

import (
	"github.com/MixinNetwork/mixin/logger"
	"github.com/MixinNetwork/registry/storage"
	"github.com/gofrs/uuid"
)

type InstantiateMsg struct {
	Name      string  `json:"name"`
	Symbol    string  `json:"symbol"`
	Minter    string  `json:"minter"`
	MaxMints  uint64  `json:"max_mints"`
	MintPrice Coin    `json:"mint_price"`
	TokenURI  *string `json:"token_uri"`
}

func (c *Contract) Instantiate(txn storage.Txn, env Env, msg *InstantiateMsg) (*Response, error) {
	_, found, err := c.contractInfo.MayLoad(txn)
	if err != nil {
		return nil, err
	} else if found {
		return nil, ErrAlreadyInstantiated
	}

	minter, err := CanonicalAddress(msg.Minter)
	if err != nil {
		return nil, err
	}
	if msg.MintPrice.Denom == "" || msg.MintPrice.Amount.IsNegative() {
		return nil, contractError(ErrInvalidPrice, "%s", msg.MintPrice)
	}

	err = c.version.Save(txn, VersionInfo{Contract: ContractName, Version: ContractVersion})
	if err != nil {
		return nil, err
	}
	info := ContractInfo{
		Name:       msg.Name,
		Symbol:     msg.Symbol,
		Minter:     minter,
		MaxMints:   msg.MaxMints,
		MintPrice:  msg.MintPrice,
		TokenURI:   msg.TokenURI,
		TokenCount: 0,
	}
	err = c.contractInfo.Save(txn, info)
	if err != nil {
		return nil, err
	}
	err = c.minter.Save(txn, minter)
	if err != nil {
		return nil, err
	}
	err = c.maxMints.Save(txn, msg.MaxMints)
	if err != nil {
		return nil, err
	}
	err = c.mintPrice.Save(txn, msg.MintPrice)
	if err != nil {
		return nil, err
	}
	err = c.tokenURI.Save(txn, msg.TokenURI)
	if err != nil {
		return nil, err
	}
	err = c.tokenCount.Save(txn, 0)
	if err != nil {
		return nil, err
	}

	logger.Printf("Contract.Instantiate(%s, %s, %d, %s)\n", msg.Name, minter, msg.MaxMints, msg.MintPrice)
	resp := &Response{}
	return resp.AddAttribute("action", "instantiate").
		AddAttribute("minter", minter), nil
}

// CanonicalAddress validates a Mixin user id and returns its canonical form.
func CanonicalAddress(addr string) (string, error) {
	id, err := uuid.FromString(addr)
	if err != nil || id == uuid.Nil {
		return "", contractError(ErrInvalidAddress, "%s", addr)
	}
	return id.String(), nil
}
