package service

import (
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/messmonitor/internal/storage"
)

// invalidArgument builds an InvalidArgument error.
func invalidArgument(format string, args ...any) error {
	return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf(format, args...))
}

// storeError maps a store failure to a Connect error and logs it.
// ErrNotFound becomes NotFound; anything else is Internal.
func storeError(logger *slog.Logger, msg string, err error, args ...any) error {
	if errors.Is(err, storage.ErrNotFound) {
		logger.Warn(msg, append(args, "error", err)...)
		return connect.NewError(connect.CodeNotFound, err)
	}
	logger.Error(msg, append(args, "error", err)...)
	return connect.NewError(connect.CodeInternal, err)
}
