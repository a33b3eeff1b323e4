package mtg

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/MixinNetwork/mixin/logger"
	"github.com/MixinNetwork/registry/storage"
	"github.com/fox-one/mixin-sdk-go"
)

type Group struct {
	store   storage.Store
	workers []Worker
	clock   *Clock

	outputs           *storage.IndexedMap[Output]
	outputStates      *storage.MultiIndex[Output]
	transactions      *storage.IndexedMap[Transaction]
	transactionStates *storage.MultiIndex[Transaction]

	batch    int
	interval time.Duration
}

func BuildGroup(ctx context.Context, store storage.Store, conf *Configuration) (*Group, error) {
	grp := &Group{
		store:    store,
		clock:    NewClock(),
		batch:    conf.Batch,
		interval: time.Duration(conf.Interval) * time.Millisecond,
	}
	if grp.batch <= 0 {
		grp.batch = 16
	}
	if grp.interval <= 0 {
		grp.interval = time.Second
	}
	grp.outputs, grp.outputStates = newOutputStore()
	grp.transactions, grp.transactionStates = newTransactionStore()
	return grp, nil
}

func (grp *Group) AddWorker(wkr Worker) {
	grp.workers = append(grp.workers, wkr)
}

func (grp *Group) Run(ctx context.Context) {
	for ctx.Err() == nil {
		n, err := grp.handleUnspentOutputs(ctx)
		if err != nil {
			logger.Printf("Group.handleUnspentOutputs() => %v\n", err)
		}
		if n > 0 && err == nil {
			continue
		}
		select {
		case <-ctx.Done():
		case <-time.After(grp.interval):
		}
	}
}

func (grp *Group) handleUnspentOutputs(ctx context.Context) (int, error) {
	outputs, err := grp.ListOutputs(OutputStateUnspent, grp.batch)
	if err != nil {
		return 0, err
	}
	for i, out := range outputs {
		err = grp.processOutput(ctx, out)
		if err != nil {
			return i, err
		}
	}
	return len(outputs), nil
}

// processOutput runs all workers and spends out in a single transition. When
// a worker rejects out, that transition is discarded and a second one
// records the refund and spends out.
func (grp *Group) processOutput(ctx context.Context, out *Output) error {
	err := grp.store.Transition(func(txn storage.Txn) error {
		tick, err := grp.clock.Next(txn)
		if err != nil {
			return err
		}
		for _, wkr := range grp.workers {
			err = wkr.ProcessOutput(ctx, txn, tick, out)
			if err != nil {
				return err
			}
		}
		return grp.spendOutput(txn, out, "")
	})
	rej, ok := isRejection(err)
	if !ok {
		return err
	}

	logger.Verbosef("Group.processOutput(%s) => %v\n", out.UTXOID, rej.Reason)
	return grp.store.Transition(func(txn storage.Txn) error {
		_, err := grp.clock.Next(txn)
		if err != nil {
			return err
		}
		traceId, err := grp.Refund(txn, out, refundMemo(rej.Reason))
		if err != nil {
			return err
		}
		return grp.spendOutput(txn, out, traceId)
	})
}

// Refund records a transaction returning the whole output to its sender.
// Workers call it for payments attached to requests that accept no funds.
// Amounts below the transaction minimum are kept without a refund.
func (grp *Group) Refund(txn storage.Txn, out *Output, memo string) (string, error) {
	traceId := mixin.UniqueConversationID(out.UTXOID, "refund")
	if out.Amount.LessThan(minTransactionAmount) {
		return "", nil
	}
	return traceId, grp.BuildTransaction(txn, out.AssetID, []string{out.Sender}, 1, out.Amount.String(), memo, traceId)
}

// refundMemo cuts the reason to 64 bytes on a rune boundary.
func refundMemo(reason error) string {
	memo := "REFUND:" + reason.Error()
	if len(memo) <= 64 {
		return memo
	}
	n := 64
	for n > 0 && !utf8.RuneStart(memo[n]) {
		n--
	}
	return memo[:n]
}

// LastTick returns the reference point of the latest processed output.
func (grp *Group) LastTick() (Tick, error) {
	var tick Tick
	err := grp.store.View(func(txn storage.Txn) error {
		t, err := grp.clock.Last(txn)
		tick = t
		return err
	})
	return tick, err
}
