package mtg

import (
	"context"
	"errors"

	"github.com/MixinNetwork/registry/storage"
)

type Worker interface {
	// ProcessOutput runs inside the transition that marks out spent. Returning
	// a Rejection aborts that transition and refunds out instead, any other
	// error leaves out unspent for the next round.
	ProcessOutput(ctx context.Context, txn storage.Txn, tick Tick, out *Output) error
}

type Rejection struct {
	Reason error
}

func (r *Rejection) Error() string {
	return "rejected: " + r.Reason.Error()
}

func (r *Rejection) Unwrap() error {
	return r.Reason
}

func Reject(reason error) error {
	return &Rejection{Reason: reason}
}

func isRejection(err error) (*Rejection, bool) {
	var r *Rejection
	ok := errors.As(err, &r)
	return r, ok
}
