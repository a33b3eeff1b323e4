package main

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"github.com/MixinNetwork/mixin/logger"
	"github.com/MixinNetwork/registry/mtg"
	"github.com/MixinNetwork/registry/nft"
	"github.com/MixinNetwork/registry/storage"
)

// ContractWorker executes the message in an output memo against the
// registry, with the output sender as the caller and the output as funds.
type ContractWorker struct {
	grp      *mtg.Group
	contract *nft.Contract
}

func NewContractWorker(grp *mtg.Group, contract *nft.Contract) *ContractWorker {
	return &ContractWorker{
		grp:      grp,
		contract: contract,
	}
}

func (cw *ContractWorker) ProcessOutput(ctx context.Context, txn storage.Txn, tick mtg.Tick, out *mtg.Output) error {
	msg, err := nft.ParseExecuteMsg(decodeMemo(out.Memo))
	if err != nil {
		return mtg.Reject(err)
	}

	env := nft.Env{Block: nft.BlockInfo{Height: tick.Height, Time: tick.Time}}
	info := nft.MessageInfo{
		Sender: out.Sender,
		Funds:  []nft.Coin{{Denom: out.AssetID, Amount: out.Amount}},
	}
	resp, err := cw.contract.Execute(txn, env, info, msg)
	if nft.IsRejection(err) {
		return mtg.Reject(err)
	} else if err != nil {
		return err
	}

	if msg.Mint == nil {
		_, err = cw.grp.Refund(txn, out, "REFUND:"+msg.Action())
		if err != nil {
			return err
		}
	}
	logger.Verbosef("ContractWorker.ProcessOutput(%s) => %v\n", out.UTXOID, resp.Attributes)
	return nil
}

// decodeMemo accepts a base64 encoded or a plain JSON memo.
func decodeMemo(memo string) []byte {
	if memo == "" {
		return nil
	}
	b, err := base64.RawURLEncoding.DecodeString(memo)
	if err == nil && json.Valid(b) {
		return b
	}
	return []byte(memo)
}
