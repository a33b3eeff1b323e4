package nft

import (
	"encoding/json"

	"github.com/MixinNetwork/registry/storage"
)

type ExecuteMsg struct {
	Mint    *MintMsg    `json:"mint,omitempty"`
	Approve *ApproveMsg `json:"approve,omitempty"`
	Revoke  *RevokeMsg  `json:"revoke,omitempty"`
}

type MintMsg struct{}

type ApproveMsg struct {
	Spender string      `json:"spender"`
	TokenId string      `json:"token_id"`
	Expires *Expiration `json:"expires,omitempty"`
}

type RevokeMsg struct {
	Spender string `json:"spender"`
	TokenId string `json:"token_id"`
}

// ParseExecuteMsg decodes a JSON message. An empty message is a mint.
func ParseExecuteMsg(b []byte) (*ExecuteMsg, error) {
	if len(b) == 0 {
		return &ExecuteMsg{Mint: &MintMsg{}}, nil
	}
	var msg ExecuteMsg
	err := json.Unmarshal(b, &msg)
	if err != nil {
		return nil, contractError(ErrInvalidMessage, "%v", err)
	}
	n := 0
	for _, set := range []bool{msg.Mint != nil, msg.Approve != nil, msg.Revoke != nil} {
		if set {
			n++
		}
	}
	if n != 1 {
		return nil, contractError(ErrInvalidMessage, "%s", string(b))
	}
	return &msg, nil
}

func (msg *ExecuteMsg) Action() string {
	switch {
	case msg.Mint != nil:
		return "mint"
	case msg.Approve != nil:
		return "approve"
	case msg.Revoke != nil:
		return "revoke"
	}
	return ""
}

func (c *Contract) Execute(txn storage.Txn, env Env, info MessageInfo, msg *ExecuteMsg) (*Response, error) {
	switch {
	case msg.Mint != nil:
		return c.Mint(txn, env, info)
	case msg.Approve != nil:
		expires := Never()
		if msg.Approve.Expires != nil {
			expires = *msg.Approve.Expires
		}
		return c.Approve(txn, env, info, msg.Approve.TokenId, msg.Approve.Spender, expires)
	case msg.Revoke != nil:
		return c.Revoke(txn, env, info, msg.Revoke.TokenId, msg.Revoke.Spender)
	}
	return nil, ErrInvalidMessage
}
