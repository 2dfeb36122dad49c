package logger

import (
	"go.uber.org/zap"
)

// NewNamed builds a named zap logger for the given environment. Development
// gets a human-readable console encoder; everything else logs JSON.
func NewNamed(env, name string) (*zap.Logger, error) {
	var (
		log *zap.Logger
		err error
	)
	if env == "development" {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return log.Named(name), nil
}
