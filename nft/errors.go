package nft

import (
	"errors"
	"fmt"

	"github.com/MixinNetwork/registry/storage"
)

// ContractError rejects a transition. It is matched by tag, so wrapped or
// reworded instances still satisfy errors.Is against the sentinels below.
type ContractError struct {
	Tag string
	Msg string
}

func (e *ContractError) Error() string {
	return e.Msg
}

func (e *ContractError) Is(target error) bool {
	t, ok := target.(*ContractError)
	return ok && t.Tag == e.Tag
}

var (
	ErrMaxMintsReached     = &ContractError{Tag: "MaxMintsReached", Msg: "Max mints reached"}
	ErrIncorrectPayment    = &ContractError{Tag: "IncorrectPayment", Msg: "Incorrect payment amount"}
	ErrUnauthorized        = &ContractError{Tag: "Unauthorized", Msg: "Unauthorized"}
	ErrExpired             = &ContractError{Tag: "Expired", Msg: "Cannot set approval that is already expired"}
	ErrApprovalNotFound    = &ContractError{Tag: "ApprovalNotFound", Msg: "Approval not found"}
	ErrInvalidAddress      = &ContractError{Tag: "InvalidAddress", Msg: "Invalid address"}
	ErrInvalidPrice        = &ContractError{Tag: "InvalidPrice", Msg: "Invalid mint price"}
	ErrInvalidMessage      = &ContractError{Tag: "InvalidMessage", Msg: "Invalid message"}
	ErrAlreadyInstantiated = &ContractError{Tag: "AlreadyInstantiated", Msg: "Contract already instantiated"}
)

func contractError(base *ContractError, format string, args ...interface{}) error {
	return &ContractError{Tag: base.Tag, Msg: base.Msg + ": " + fmt.Sprintf(format, args...)}
}

// IsRejection reports whether err rejects the request itself, as opposed to a
// store failure that may succeed on a later attempt.
func IsRejection(err error) bool {
	var ce *ContractError
	var se *storage.Error
	return errors.As(err, &ce) || errors.As(err, &se)
}

// ErrorTag returns the tag of a rejection, or "Store" for anything else.
func ErrorTag(err error) string {
	var ce *ContractError
	if errors.As(err, &ce) {
		return ce.Tag
	}
	var se *storage.Error
	if errors.As(err, &se) {
		return se.Tag
	}
	return "Store"
}
