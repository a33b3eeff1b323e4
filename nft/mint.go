package nft

import (
	"strconv"

	"github.com/MixinNetwork/mixin/logger"
	"github.com/MixinNetwork/registry/storage"
)

// Mint admits a mint only when the supply cap leaves room and the sender
// attached exactly one coin equal to the mint price. The new token is owned
// by the sender and its id is the decimal token count after the mint.
func (c *Contract) Mint(txn storage.Txn, env Env, info MessageInfo) (*Response, error) {
	contract, err := c.contractInfo.Load(txn)
	if err != nil {
		return nil, err
	}
	count, err := c.TokenCount(txn)
	if err != nil {
		return nil, err
	}

	if count >= contract.MaxMints {
		return nil, ErrMaxMintsReached
	}
	if len(info.Funds) != 1 || !info.Funds[0].Equal(contract.MintPrice) {
		return nil, ErrIncorrectPayment
	}

	count, err = c.incrementTokenCount(txn)
	if err != nil {
		return nil, err
	}
	contract.TokenCount = count
	err = c.contractInfo.Save(txn, contract)
	if err != nil {
		return nil, err
	}

	tokenId := strconv.FormatUint(count, 10)
	err = c.tokens.Insert(txn, tokenId, TokenInfo{
		Owner:    info.Sender,
		TokenURI: contract.TokenURI,
	})
	if err != nil {
		return nil, err
	}

	logger.Verbosef("Contract.Mint(%s) => %s\n", info.Sender, tokenId)
	resp := &Response{}
	return resp.AddAttribute("action", "mint").
		AddAttribute("minter", info.Sender).
		AddAttribute("token_id", tokenId), nil
}
