package logger

import (
	"go.uber.org/zap"
)

var Log *zap.SugaredLogger

// The default is a nop logger so library code and tests can log without
// initialization; main swaps in the production logger.
func init() {
	Log = zap.NewNop().Sugar()
}

func Init() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize zap logger: " + err.Error())
	}
	Log = logger.Sugar()
}
