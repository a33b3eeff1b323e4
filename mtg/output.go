package mtg

import (
	"fmt"
	"time"

	"github.com/MixinNetwork/registry/storage"
	"github.com/fox-one/mixin-sdk-go"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

const (
	OutputStateUnspent = 10
	OutputStateSpent   = 12

	prefixOutputs      = "outputs"
	prefixOutputsState = "outputs__state"
)

// Output is a payment received by the group. The sender is the identity of
// the request and the memo carries the message.
type Output struct {
	UTXOID    string
	AssetID   string
	Sender    string
	Amount    decimal.Decimal
	Memo      string
	State     int
	TraceId   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (out *Output) StateName() string {
	switch out.State {
	case OutputStateUnspent:
		return mixin.UTXOStateUnspent
	case OutputStateSpent:
		return mixin.UTXOStateSpent
	}
	panic(out.State)
}

func outputStateName(state int) string {
	return (&Output{State: state}).StateName()
}

func newOutputStore() (*storage.IndexedMap[Output], *storage.MultiIndex[Output]) {
	states := storage.NewSortedMultiIndex(prefixOutputsState, func(out Output) string {
		return out.StateName()
	}, func(out Output) []byte {
		return tsToBytes(out.CreatedAt)
	})
	return storage.NewIndexedMap[Output](prefixOutputs, states), states
}

// WriteOutput queues a received payment. Writing an id already known is a
// no-op so deliveries can be replayed.
func (grp *Group) WriteOutput(out *Output) error {
	id, err := uuid.FromString(out.UTXOID)
	if err != nil || id == uuid.Nil {
		return fmt.Errorf("invalid output id %s", out.UTXOID)
	}
	sender, err := uuid.FromString(out.Sender)
	if err != nil || sender == uuid.Nil {
		return fmt.Errorf("invalid output sender %s", out.Sender)
	}
	if out.AssetID == "" || out.Amount.IsNegative() {
		return fmt.Errorf("invalid output amount %s %s", out.Amount, out.AssetID)
	}

	return grp.store.Transition(func(txn storage.Txn) error {
		found, err := grp.outputs.Has(txn, id.String())
		if err != nil || found {
			return err
		}
		now := time.Now().UTC()
		o := *out
		o.UTXOID = id.String()
		o.Sender = sender.String()
		o.State = OutputStateUnspent
		o.TraceId = ""
		if o.CreatedAt.IsZero() {
			o.CreatedAt = now
		}
		o.UpdatedAt = now
		return grp.outputs.Insert(txn, o.UTXOID, o)
	})
}

// ReadOutput accepts the id in any UUID form and returns nil when unknown.
func (grp *Group) ReadOutput(id string) (*Output, error) {
	uid, err := uuid.FromString(id)
	if err != nil {
		return nil, nil
	}
	var out *Output
	err = grp.store.View(func(txn storage.Txn) error {
		o, found, err := grp.outputs.MayLoad(txn, uid.String())
		if found {
			out = &o
		}
		return err
	})
	return out, err
}

// ListOutputs returns the outputs in state, oldest first.
func (grp *Group) ListOutputs(state int, limit int) ([]*Output, error) {
	var outputs []*Output
	err := grp.store.View(func(txn storage.Txn) error {
		for r, err := range grp.outputStates.Range(txn, outputStateName(state), "", limit) {
			if err != nil {
				return err
			}
			out := r.Value
			outputs = append(outputs, &out)
		}
		return nil
	})
	return outputs, err
}

func (grp *Group) spendOutput(txn storage.Txn, out *Output, traceId string) error {
	_, err := grp.outputs.Update(txn, out.UTXOID, func(o Output) (Output, error) {
		if o.State != OutputStateUnspent {
			return o, fmt.Errorf("output %s already spent", o.UTXOID)
		}
		o.State = OutputStateSpent
		o.TraceId = traceId
		o.UpdatedAt = time.Now().UTC()
		return o, nil
	})
	return err
}
