package nft

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

type Coin struct {
	Denom  string          `json:"denom"`
	Amount decimal.Decimal `json:"amount"`
}

func NewCoin(denom, amount string) (Coin, error) {
	amt, err := decimal.NewFromString(amount)
	if err != nil {
		return Coin{}, err
	}
	return Coin{Denom: denom, Amount: amt}, nil
}

func (c Coin) Equal(o Coin) bool {
	return c.Denom == o.Denom && c.Amount.Equal(o.Amount)
}

func (c Coin) String() string {
	return c.Amount.String() + c.Denom
}

type ContractInfo struct {
	Name       string  `json:"name"`
	Symbol     string  `json:"symbol"`
	Minter     string  `json:"minter"`
	MaxMints   uint64  `json:"max_mints"`
	MintPrice  Coin    `json:"mint_price"`
	TokenURI   *string `json:"token_uri"`
	TokenCount uint64  `json:"token_count"`
}

type VersionInfo struct {
	Contract string `json:"contract"`
	Version  string `json:"version"`
}

type TokenInfo struct {
	Owner string `json:"owner"`
	// at most one approval per spender
	Approvals []Approval `json:"approvals"`
	TokenURI  *string    `json:"token_uri"`
	Extension []byte     `json:"extension,omitempty"`
}

type Approval struct {
	Spender string     `json:"spender"`
	Expires Expiration `json:"expires"`
}

func (a Approval) IsExpired(block BlockInfo) bool {
	return a.Expires.IsExpired(block)
}

type BlockInfo struct {
	Height uint64    `json:"height"`
	Time   time.Time `json:"time"`
}

type Env struct {
	Block BlockInfo
}

type MessageInfo struct {
	Sender string
	Funds  []Coin
}

type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type Response struct {
	Attributes []Attribute `json:"attributes"`
}

func (r *Response) AddAttribute(key, value string) *Response {
	r.Attributes = append(r.Attributes, Attribute{Key: key, Value: value})
	return r
}

func (r *Response) Attribute(key string) string {
	for _, a := range r.Attributes {
		if a.Key == key {
			return a.Value
		}
	}
	return ""
}

const (
	ExpirationNever    = 0
	ExpirationAtHeight = 1
	ExpirationAtTime   = 2
)

// Expiration is a block height or time bound, or never.
type Expiration struct {
	Kind   int
	Height uint64
	Time   int64
}

func Never() Expiration {
	return Expiration{Kind: ExpirationNever}
}

func AtHeight(h uint64) Expiration {
	return Expiration{Kind: ExpirationAtHeight, Height: h}
}

func AtTime(t time.Time) Expiration {
	return Expiration{Kind: ExpirationAtTime, Time: t.UnixNano()}
}

func (e Expiration) IsExpired(block BlockInfo) bool {
	switch e.Kind {
	case ExpirationAtHeight:
		return block.Height >= e.Height
	case ExpirationAtTime:
		return block.Time.UnixNano() >= e.Time
	case ExpirationNever:
		return false
	}
	panic(e.Kind)
}

func (e Expiration) String() string {
	switch e.Kind {
	case ExpirationAtHeight:
		return fmt.Sprintf("expiration height: %d", e.Height)
	case ExpirationAtTime:
		return fmt.Sprintf("expiration time: %s", time.Unix(0, e.Time).UTC().Format(time.RFC3339Nano))
	}
	return "expiration: never"
}

type expirationJSON struct {
	AtHeight *uint64   `json:"at_height,omitempty"`
	AtTime   *string   `json:"at_time,omitempty"`
	Never    *struct{} `json:"never,omitempty"`
}

func (e Expiration) MarshalJSON() ([]byte, error) {
	var ej expirationJSON
	switch e.Kind {
	case ExpirationAtHeight:
		ej.AtHeight = &e.Height
	case ExpirationAtTime:
		ts := strconv.FormatInt(e.Time, 10)
		ej.AtTime = &ts
	default:
		ej.Never = &struct{}{}
	}
	return json.Marshal(ej)
}

func (e *Expiration) UnmarshalJSON(b []byte) error {
	var ej expirationJSON
	err := json.Unmarshal(b, &ej)
	if err != nil {
		return err
	}
	switch {
	case ej.AtHeight != nil && ej.AtTime == nil && ej.Never == nil:
		*e = AtHeight(*ej.AtHeight)
	case ej.AtTime != nil && ej.AtHeight == nil && ej.Never == nil:
		ts, err := strconv.ParseInt(*ej.AtTime, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid at_time %s", *ej.AtTime)
		}
		*e = Expiration{Kind: ExpirationAtTime, Time: ts}
	case ej.Never != nil && ej.AtHeight == nil && ej.AtTime == nil:
		*e = Never()
	default:
		return fmt.Errorf("invalid expiration %s", string(b))
	}
	return nil
}
