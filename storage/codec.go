package storage

import (
	"github.com/MixinNetwork/mixin/common"
)

func encode(v interface{}) []byte {
	return common.MsgpackMarshalPanic(v)
}

func decode[T any](b []byte) (T, error) {
	var v T
	err := common.MsgpackUnmarshal(b, &v)
	return v, err
}
