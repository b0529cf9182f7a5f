package logger

import (
	"go.uber.org/zap"
)

var Log *zap.Logger = zap.NewNop()

// Init builds the global logger. APP_ENV=production switches to the JSON
// production config; anything else gets the human-readable development one.
func Init(env string) error {
	var (
		l   *zap.Logger
		err error
	)
	if env == "production" {
		l, err = zap.NewProduction()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		return err
	}
	Log = l
	return nil
}

func Sync() {
	_ = Log.Sync()
}
