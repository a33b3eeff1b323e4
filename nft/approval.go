package nft

import (
	"github.com/MixinNetwork/mixin/logger"
	"github.com/MixinNetwork/registry/storage"
)

// Approve lets spender act on the token until expires. An earlier approval
// for the same spender is replaced.
func (c *Contract) Approve(txn storage.Txn, env Env, info MessageInfo, tokenId, spender string, expires Expiration) (*Response, error) {
	spender, err := CanonicalAddress(spender)
	if err != nil {
		return nil, err
	}
	if expires.IsExpired(env.Block) {
		return nil, ErrExpired
	}
	err = c.updateApprovals(txn, info.Sender, tokenId, spender, &Approval{Spender: spender, Expires: expires})
	if err != nil {
		return nil, err
	}

	logger.Verbosef("Contract.Approve(%s, %s, %s, %s)\n", info.Sender, tokenId, spender, expires)
	resp := &Response{}
	return resp.AddAttribute("action", "approve").
		AddAttribute("sender", info.Sender).
		AddAttribute("spender", spender).
		AddAttribute("token_id", tokenId), nil
}

func (c *Contract) Revoke(txn storage.Txn, env Env, info MessageInfo, tokenId, spender string) (*Response, error) {
	spender, err := CanonicalAddress(spender)
	if err != nil {
		return nil, err
	}
	err = c.updateApprovals(txn, info.Sender, tokenId, spender, nil)
	if err != nil {
		return nil, err
	}

	logger.Verbosef("Contract.Revoke(%s, %s, %s)\n", info.Sender, tokenId, spender)
	resp := &Response{}
	return resp.AddAttribute("action", "revoke").
		AddAttribute("sender", info.Sender).
		AddAttribute("spender", spender).
		AddAttribute("token_id", tokenId), nil
}

// updateApprovals drops any approval of spender before appending add, so a
// token never holds two approvals for one spender.
func (c *Contract) updateApprovals(txn storage.Txn, sender, tokenId, spender string, add *Approval) error {
	_, err := c.tokens.Update(txn, tokenId, func(token TokenInfo) (TokenInfo, error) {
		if token.Owner != sender {
			return token, ErrUnauthorized
		}
		approvals := make([]Approval, 0, len(token.Approvals)+1)
		for _, a := range token.Approvals {
			if a.Spender != spender {
				approvals = append(approvals, a)
			}
		}
		if add != nil {
			approvals = append(approvals, *add)
		}
		token.Approvals = approvals
		return token, nil
	})
	return err
}

func humanApprovals(approvals []Approval, block BlockInfo, includeExpired bool) []Approval {
	filtered := make([]Approval, 0, len(approvals))
	for _, a := range approvals {
		if includeExpired || !a.IsExpired(block) {
			filtered = append(filtered, a)
		}
	}
	return filtered
}
