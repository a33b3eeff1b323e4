package mtg

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/MixinNetwork/mixin/common"
	"github.com/MixinNetwork/registry/storage"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

const (
	TransactionStateInitial = 10

	prefixTransactions      = "transactions"
	prefixTransactionsState = "transactions__state"
)

var minTransactionAmount = decimal.New(1, -8)

// Transaction is a payment the group owes, recorded for the signer to pick
// up. Signing and publishing happen outside this process.
type Transaction struct {
	TraceId   string    `json:"trace_id"`
	State     int       `json:"state"`
	AssetId   string    `json:"asset_id"`
	Receivers []string  `json:"receivers"`
	Threshold int       `json:"threshold"`
	Amount    string    `json:"amount"`
	Memo      string    `json:"memo"`
	Extra     string    `json:"extra"`
	UpdatedAt time.Time `json:"updated_at"`
}

func transactionStatePrefix(state int) string {
	switch state {
	case TransactionStateInitial:
		return "initial"
	}
	panic(state)
}

func newTransactionStore() (*storage.IndexedMap[Transaction], *storage.MultiIndex[Transaction]) {
	states := storage.NewSortedMultiIndex(prefixTransactionsState, func(tx Transaction) string {
		return transactionStatePrefix(tx.State)
	}, func(tx Transaction) []byte {
		return tsToBytes(tx.UpdatedAt)
	})
	return storage.NewIndexedMap[Transaction](prefixTransactions, states), states
}

// the app should decide a unique trace id so that the group will not double spend
func (grp *Group) BuildTransaction(txn storage.Txn, assetId string, receivers []string, threshold int, amount, memo string, traceId string) error {
	if threshold <= 0 || threshold > len(receivers) {
		return fmt.Errorf("invalid receivers threshold %d/%d", threshold, len(receivers))
	}
	amt, err := decimal.NewFromString(amount)
	if err != nil || amt.LessThan(minTransactionAmount) {
		return fmt.Errorf("invalid amount %s", amount)
	}
	for _, r := range receivers {
		id, _ := uuid.FromString(r)
		if id.String() == uuid.Nil.String() {
			return fmt.Errorf("invalid receiver %s", r)
		}
	}
	extra, err := encodeMixinExtra(traceId, memo)
	if err != nil {
		return err
	}
	traceId = uuid.FromStringOrNil(traceId).String()

	found, err := grp.transactions.Has(txn, traceId)
	if err != nil || found {
		return err
	}
	tx := Transaction{
		TraceId:   traceId,
		State:     TransactionStateInitial,
		AssetId:   assetId,
		Receivers: receivers,
		Threshold: threshold,
		Amount:    amt.String(),
		Memo:      memo,
		Extra:     extra,
		UpdatedAt: time.Now().UTC(),
	}
	return grp.transactions.Insert(txn, traceId, tx)
}

func (grp *Group) ReadTransaction(traceId string) (*Transaction, error) {
	id, err := uuid.FromString(traceId)
	if err != nil {
		return nil, nil
	}
	var tx *Transaction
	err = grp.store.View(func(txn storage.Txn) error {
		t, found, err := grp.transactions.MayLoad(txn, id.String())
		if found {
			tx = &t
		}
		return err
	})
	return tx, err
}

func (grp *Group) ListTransactions(state int, limit int) ([]*Transaction, error) {
	var txs []*Transaction
	err := grp.store.View(func(txn storage.Txn) error {
		for r, err := range grp.transactionStates.Range(txn, transactionStatePrefix(state), "", limit) {
			if err != nil {
				return err
			}
			tx := r.Value
			txs = append(txs, &tx)
		}
		return nil
	})
	return txs, err
}

// all the transactions sent by the group is encoded by base64(msgpack(mep))
type mixinExtraPack struct {
	T uuid.UUID
	M string `msgpack:",omitempty"`
}

func encodeMixinExtra(traceId, memo string) (string, error) {
	id, err := uuid.FromString(traceId)
	if err != nil {
		return "", fmt.Errorf("invalid trace id %s", traceId)
	}
	p := &mixinExtraPack{T: id, M: memo}
	b := common.MsgpackMarshalPanic(p)
	s := base64.RawURLEncoding.EncodeToString(b)
	if len(s) >= common.ExtraSizeLimit {
		return "", fmt.Errorf("memo too long %d", len(s))
	}
	return s, nil
}

func DecodeMixinExtra(s string) (string, string, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return "", "", err
	}
	var p mixinExtraPack
	err = common.MsgpackUnmarshal(b, &p)
	if err != nil {
		return "", "", err
	}
	if p.T == uuid.Nil {
		return "", "", fmt.Errorf("invalid extra %s", s)
	}
	return p.T.String(), p.M, nil
}
