package nft

import (
	"fmt"
	"strings"

	"github.com/MixinNetwork/registry/storage"
)

const (
	ContractName    = "mixin:nft-registry"
	ContractVersion = "0.1.0"

	DefaultLimit = 30
	MaxLimit     = 100
)

// Keys names the store namespace of every slot and collection of a contract.
// Contracts sharing one store must use disjoint keys.
type Keys struct {
	ContractInfo    string
	ContractVersion string
	Minter          string
	TokenCount      string
	MaxMints        string
	MintPrice       string
	TokenURI        string
	Tokens          string
	TokensOwner     string
}

func DefaultKeys() Keys {
	return Keys{
		ContractInfo:    "contract_info",
		ContractVersion: "contract_version",
		Minter:          "minter",
		TokenCount:      "num_tokens",
		MaxMints:        "max_mints",
		MintPrice:       "mint_price",
		TokenURI:        "token_uri",
		Tokens:          "tokens",
		TokensOwner:     "tokens__owner",
	}
}

// Contract holds the storage definitions of one registry. It carries no
// state of its own; every operation reads and writes through the Txn of the
// transition it is called in.
type Contract struct {
	contractInfo *storage.Item[ContractInfo]
	version      *storage.Item[VersionInfo]
	minter       *storage.Item[string]
	tokenCount   *storage.Item[uint64]
	maxMints     *storage.Item[uint64]
	mintPrice    *storage.Item[Coin]
	tokenURI     *storage.Item[*string]

	tokens *storage.IndexedMap[TokenInfo]
	owners *storage.MultiIndex[TokenInfo]
}

func NewContract(keys Keys) (*Contract, error) {
	seen := make(map[string]bool)
	for _, ns := range []string{keys.ContractInfo, keys.ContractVersion, keys.Minter,
		keys.TokenCount, keys.MaxMints, keys.MintPrice, keys.TokenURI, keys.Tokens, keys.TokensOwner} {
		if ns == "" || strings.Contains(ns, ":") || seen[ns] {
			return nil, fmt.Errorf("invalid or duplicated namespace %q", ns)
		}
		seen[ns] = true
	}

	owners := storage.NewMultiIndex(keys.TokensOwner, tokenOwnerIndex)
	return &Contract{
		contractInfo: storage.NewItem[ContractInfo](keys.ContractInfo),
		version:      storage.NewItem[VersionInfo](keys.ContractVersion),
		minter:       storage.NewItem[string](keys.Minter),
		tokenCount:   storage.NewItem[uint64](keys.TokenCount),
		maxMints:     storage.NewItem[uint64](keys.MaxMints),
		mintPrice:    storage.NewItem[Coin](keys.MintPrice),
		tokenURI:     storage.NewItem[*string](keys.TokenURI),
		tokens:       storage.NewIndexedMap[TokenInfo](keys.Tokens, owners),
		owners:       owners,
	}, nil
}

func DefaultContract() *Contract {
	c, err := NewContract(DefaultKeys())
	if err != nil {
		panic(err)
	}
	return c
}

func tokenOwnerIndex(t TokenInfo) string {
	return t.Owner
}

// TokenCount returns the number of minted tokens, zero before instantiation.
func (c *Contract) TokenCount(txn storage.Txn) (uint64, error) {
	count, _, err := c.tokenCount.MayLoad(txn)
	return count, err
}

func (c *Contract) incrementTokenCount(txn storage.Txn) (uint64, error) {
	count, err := c.TokenCount(txn)
	if err != nil {
		return 0, err
	}
	count += 1
	return count, c.tokenCount.Save(txn, count)
}

func pageLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
