package nft

import (
	"github.com/MixinNetwork/registry/storage"
)

type NumTokensResponse struct {
	Count uint64 `json:"count"`
}

type MinterResponse struct {
	Minter string `json:"minter"`
}

type OwnerOfResponse struct {
	Owner     string     `json:"owner"`
	Approvals []Approval `json:"approvals"`
}

type ApprovalResponse struct {
	Approval Approval `json:"approval"`
}

type ApprovalsResponse struct {
	Approvals []Approval `json:"approvals"`
}

type NftInfoResponse struct {
	TokenURI  *string `json:"token_uri"`
	Extension []byte  `json:"extension,omitempty"`
}

type AllNftInfoResponse struct {
	Access OwnerOfResponse `json:"access"`
	Info   NftInfoResponse `json:"info"`
}

type TokensResponse struct {
	Tokens []string `json:"tokens"`
}

// ContractDetails returns the metadata with the current token count.
func (c *Contract) ContractDetails(txn storage.Txn) (*ContractInfo, error) {
	info, err := c.contractInfo.Load(txn)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Contract) Version(txn storage.Txn) (*VersionInfo, error) {
	v, err := c.version.Load(txn)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Contract) NumTokens(txn storage.Txn) (*NumTokensResponse, error) {
	count, err := c.TokenCount(txn)
	if err != nil {
		return nil, err
	}
	return &NumTokensResponse{Count: count}, nil
}

func (c *Contract) Minter(txn storage.Txn) (*MinterResponse, error) {
	minter, err := c.minter.Load(txn)
	if err != nil {
		return nil, err
	}
	return &MinterResponse{Minter: minter}, nil
}

func (c *Contract) OwnerOf(txn storage.Txn, env Env, tokenId string, includeExpired bool) (*OwnerOfResponse, error) {
	token, err := c.tokens.Load(txn, tokenId)
	if err != nil {
		return nil, err
	}
	return &OwnerOfResponse{
		Owner:     token.Owner,
		Approvals: humanApprovals(token.Approvals, env.Block, includeExpired),
	}, nil
}

func (c *Contract) Approval(txn storage.Txn, env Env, tokenId, spender string, includeExpired bool) (*ApprovalResponse, error) {
	token, err := c.tokens.Load(txn, tokenId)
	if err != nil {
		return nil, err
	}
	for _, a := range humanApprovals(token.Approvals, env.Block, includeExpired) {
		if a.Spender == spender {
			return &ApprovalResponse{Approval: a}, nil
		}
	}
	return nil, contractError(ErrApprovalNotFound, "%s", spender)
}

func (c *Contract) Approvals(txn storage.Txn, env Env, tokenId string, includeExpired bool) (*ApprovalsResponse, error) {
	token, err := c.tokens.Load(txn, tokenId)
	if err != nil {
		return nil, err
	}
	return &ApprovalsResponse{
		Approvals: humanApprovals(token.Approvals, env.Block, includeExpired),
	}, nil
}

func (c *Contract) NftInfo(txn storage.Txn, tokenId string) (*NftInfoResponse, error) {
	token, err := c.tokens.Load(txn, tokenId)
	if err != nil {
		return nil, err
	}
	return &NftInfoResponse{TokenURI: token.TokenURI, Extension: token.Extension}, nil
}

func (c *Contract) AllNftInfo(txn storage.Txn, env Env, tokenId string, includeExpired bool) (*AllNftInfoResponse, error) {
	token, err := c.tokens.Load(txn, tokenId)
	if err != nil {
		return nil, err
	}
	return &AllNftInfoResponse{
		Access: OwnerOfResponse{
			Owner:     token.Owner,
			Approvals: humanApprovals(token.Approvals, env.Block, includeExpired),
		},
		Info: NftInfoResponse{TokenURI: token.TokenURI, Extension: token.Extension},
	}, nil
}

// Tokens lists the ids owned by owner in ascending order, one page at a time.
func (c *Contract) Tokens(txn storage.Txn, owner, startAfter string, limit int) (*TokensResponse, error) {
	tokens := make([]string, 0)
	for r, err := range c.owners.Range(txn, owner, startAfter, pageLimit(limit)) {
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, r.ID)
	}
	return &TokensResponse{Tokens: tokens}, nil
}

func (c *Contract) AllTokens(txn storage.Txn, startAfter string, limit int) (*TokensResponse, error) {
	tokens := make([]string, 0)
	for r, err := range c.tokens.Range(txn, startAfter, pageLimit(limit)) {
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, r.ID)
	}
	return &TokensResponse{Tokens: tokens}, nil
}
