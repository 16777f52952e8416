package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	pkgerrors "github.com/angelmondragon/greencart/pkg/errors"
)

// ErrOffline is the cause of errors returned while the connectivity signal
// reports offline.
var ErrOffline = errors.New("you are currently offline")

// StatusNetworkError is what LastStatus reports after a transport failure.
const StatusNetworkError = "network-error"

// IsConnectivity reports whether err means the service could not be reached.
// Only these errors should mark the service unavailable.
func IsConnectivity(err error) bool {
	return pkgerrors.HasCode(err, pkgerrors.CodeConnectivity)
}

// IsCanceled reports whether err stems from the caller abandoning the call.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

func codeForStatus(status int) pkgerrors.Code {
	switch {
	case status == http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case status == http.StatusConflict:
		return pkgerrors.CodeConflict
	case status >= 400 && status < 500:
		return pkgerrors.CodeValidation
	default:
		return pkgerrors.CodeDependency
	}
}

func statusError(op string, status int, message string) error {
	if message == "" {
		message = fmt.Sprintf("%s failed", op)
	}
	return pkgerrors.Wrap(codeForStatus(status), fmt.Errorf("%s: status %d", op, status), message).
		WithDetails(map[string]any{"status": status, "operation": op})
}

func transportError(op string, err error) error {
	return pkgerrors.Wrap(pkgerrors.CodeConnectivity, err, fmt.Sprintf("%s: cart service unreachable", op))
}
