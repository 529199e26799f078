package errprocess

import (
	"errors"
	"fmt"

	"jobboard_chat_service/pkg/logger"
)

// Set set err info
func Set(errMsg string) error {
	logger.Log.Error(errMsg)
	return errors.New(errMsg)
}

// Wrap log msg with cause and return the wrapped error
func Wrap(msg string, err error) error {
	logger.Log.Errorf(msg, err)
	return fmt.Errorf("%s: %w", msg, err)
}
