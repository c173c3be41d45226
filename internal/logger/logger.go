package logger

import "go.uber.org/zap"

// Init installs the global zap logger: JSON in production, console
// everywhere else.
func Init(environment string) error {
	var (
		logger *zap.Logger
		err    error
	)

	if environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return err
	}

	zap.ReplaceGlobals(logger)

	return nil
}
