package enums

import "fmt"

// Operation names a cart operation that may be propagated to the remote cart service.
type Operation string

const (
	OperationFetch        Operation = "fetch"
	OperationAddItem      Operation = "add_item"
	OperationRemoveItem   Operation = "remove_item"
	OperationSetQuantity  Operation = "set_quantity"
	OperationGreenOptions Operation = "green_options"
	OperationCheckout     Operation = "checkout"
)

var validOperations = []Operation{
	OperationFetch,
	OperationAddItem,
	OperationRemoveItem,
	OperationSetQuantity,
	OperationGreenOptions,
	OperationCheckout,
}

// String implements fmt.Stringer.
func (o Operation) String() string {
	return string(o)
}

// IsValid reports whether the value is a known Operation.
func (o Operation) IsValid() bool {
	for _, candidate := range validOperations {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOperation converts raw input into an Operation.
func ParseOperation(value string) (Operation, error) {
	for _, candidate := range validOperations {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid operation %q", value)
}
