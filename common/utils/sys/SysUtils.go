package sys

import (
	"runtime/debug"

	"fisnar/common/logger"

	"github.com/petermattis/goid"
)

func GetGID() uint64 {
	id := goid.Get()
	return uint64(id)
}

func CatchPanic() {
	if err := recover(); err != nil {
		logger.Error("panic:", GetGID(), err, string(debug.Stack()))
	}
}
