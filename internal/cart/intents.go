package cart

// Intent is a requested mutation. Only the types in this file implement it.
type Intent interface {
	intent()
	Name() string
}

// AddItem adds Quantity units of a product, merging into an existing line.
// A quantity below 1 is treated as 1.
type AddItem struct {
	ProductID string
	Quantity  int
	Product   ProductSnapshot
}

type RemoveItem struct {
	ProductID string
}

// SetQuantity replaces a line's quantity. Non-positive quantities are ignored.
type SetQuantity struct {
	ProductID string
	Quantity  int
}

type ToggleGreenDelivery struct{}

type ToggleCarbonOffset struct{}

type ClearCart struct{}

// ReplaceFromRemote overwrites the cart with the remote service's snapshot.
type ReplaceFromRemote struct {
	Items         []Line
	GreenDelivery bool
	CarbonOffset  bool
}

// Hydrate restores a locally persisted snapshot.
type Hydrate struct {
	Items         []Line
	GreenDelivery bool
	CarbonOffset  bool
}

// BeginRequest marks a user-visible request in flight.
type BeginRequest struct{}

// EndRequest clears the loading flag without recording an error. Used when
// a request is abandoned.
type EndRequest struct{}

// RequestFailed records a user-visible failure.
type RequestFailed struct {
	Message string
}

func (AddItem) intent()             {}
func (RemoveItem) intent()          {}
func (SetQuantity) intent()         {}
func (ToggleGreenDelivery) intent() {}
func (ToggleCarbonOffset) intent()  {}
func (ClearCart) intent()           {}
func (ReplaceFromRemote) intent()   {}
func (Hydrate) intent()             {}
func (BeginRequest) intent()        {}
func (EndRequest) intent()          {}
func (RequestFailed) intent()       {}

func (AddItem) Name() string             { return "add_item" }
func (RemoveItem) Name() string          { return "remove_item" }
func (SetQuantity) Name() string         { return "set_quantity" }
func (ToggleGreenDelivery) Name() string { return "toggle_green_delivery" }
func (ToggleCarbonOffset) Name() string  { return "toggle_carbon_offset" }
func (ClearCart) Name() string           { return "clear_cart" }
func (ReplaceFromRemote) Name() string   { return "replace_from_remote" }
func (Hydrate) Name() string             { return "hydrate" }
func (BeginRequest) Name() string        { return "begin_request" }
func (EndRequest) Name() string          { return "end_request" }
func (RequestFailed) Name() string       { return "request_failed" }
