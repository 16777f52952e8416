package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/angelmondragon/greencart/internal/cart"
	"github.com/angelmondragon/greencart/internal/remote"
	pkgerrors "github.com/angelmondragon/greencart/pkg/errors"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // command succeeded
	ExitFailure      = 1 // the cart operation failed (service refused, offline checkout)
	ExitCommandError = 2 // bad arguments or configuration
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error. Errors that are not an
// ExitError map to ExitFailure.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

type response struct {
	Status string    `json:"status"`
	Data   any       `json:"data,omitempty"`
	Error  *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// printer renders command results as JSON envelopes or plain text.
type printer struct {
	format string
	out    io.Writer
}

type stateView struct {
	cart.State
	GreenMetrics cart.GreenMetrics `json:"greenMetrics"`
}

func (p printer) state(s cart.State) error {
	if p.format == formatJSON {
		return p.json(response{Status: "ok", Data: stateView{State: s, GreenMetrics: s.GreenMetrics()}})
	}

	tw := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
	if len(s.Items) == 0 {
		fmt.Fprintln(tw, "cart is empty")
	} else {
		fmt.Fprintln(tw, "PRODUCT\tQTY\tPRICE\tFOOTPRINT")
		for _, line := range s.Items {
			name := line.Product.Name
			if name == "" {
				name = line.ProductID
			}
			fmt.Fprintf(tw, "%s\t%d\t%.2f\t%.2f\n", name, line.Quantity, line.Product.Price, line.Product.CarbonFootprint)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(p.out, "items: %d  total: $%.2f  footprint: %.2f kg CO2\n", s.TotalItems, s.TotalPrice, s.CarbonFootprint)
	fmt.Fprintf(p.out, "green delivery: %s  carbon offset: %s\n", onOff(s.GreenDelivery), onOff(s.CarbonOffset))
	if s.LastError != "" {
		fmt.Fprintf(p.out, "last error: %s\n", s.LastError)
	}
	return nil
}

func (p printer) order(o *remote.OrderConfirmation) error {
	if p.format == formatJSON {
		return p.json(response{Status: "ok", Data: o})
	}
	fmt.Fprintf(p.out, "order %s placed: $%.2f for %d line(s)\n", o.OrderID, o.TotalPrice, len(o.Items))
	fmt.Fprintf(p.out, "carbon saved: %.2f kg CO2\n", o.GreenMetrics.CarbonSaved)
	return nil
}

// failure reports err in the JSON envelope. Text output leaves it to main.
func (p printer) failure(err error) error {
	if p.format != formatJSON {
		return nil
	}
	code := string(pkgerrors.CodeInternal)
	message := err.Error()
	if te := pkgerrors.As(err); te != nil {
		code = string(te.Code())
		message = te.Message()
	}
	return p.json(response{Status: "error", Error: &apiError{Code: code, Message: message}})
}

func (p printer) json(v any) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
