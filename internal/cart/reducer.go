package cart

// Reduce applies intent to state and returns the next state. It never fails:
// intents that would break an invariant leave the cart unchanged. The input
// state is not modified.
func Reduce(state State, intent Intent) State {
	switch in := intent.(type) {
	case AddItem:
		return addItem(state, in)
	case RemoveItem:
		return removeItem(state, in.ProductID)
	case SetQuantity:
		return setQuantity(state, in)
	case ToggleGreenDelivery:
		next := state.Clone()
		next.GreenDelivery = !next.GreenDelivery
		return withTotals(next)
	case ToggleCarbonOffset:
		next := state.Clone()
		next.CarbonOffset = !next.CarbonOffset
		return withTotals(next)
	case ClearCart:
		return NewState()
	case ReplaceFromRemote:
		next := replace(state, in.Items, in.GreenDelivery, in.CarbonOffset)
		next.LastError = ""
		return next
	case Hydrate:
		return replace(state, in.Items, in.GreenDelivery, in.CarbonOffset)
	case BeginRequest:
		next := state.Clone()
		next.Loading = true
		next.LastError = ""
		return next
	case EndRequest:
		next := state.Clone()
		next.Loading = false
		return next
	case RequestFailed:
		next := state.Clone()
		next.Loading = false
		next.LastError = in.Message
		return next
	default:
		return state
	}
}

func addItem(state State, in AddItem) State {
	if in.ProductID == "" || !in.Product.Valid() {
		return state
	}
	qty := in.Quantity
	if qty < 1 {
		qty = 1
	}
	next := state.Clone()
	for i := range next.Items {
		if next.Items[i].ProductID == in.ProductID {
			next.Items[i].Quantity = addQuantity(next.Items[i].Quantity, qty)
			return withTotals(next)
		}
	}
	next.Items = append(next.Items, Line{ProductID: in.ProductID, Quantity: addQuantity(0, qty), Product: in.Product})
	return withTotals(next)
}

func removeItem(state State, productID string) State {
	idx := indexOf(state.Items, productID)
	if idx < 0 {
		return state
	}
	next := state.Clone()
	next.Items = append(next.Items[:idx], next.Items[idx+1:]...)
	return withTotals(next)
}

func setQuantity(state State, in SetQuantity) State {
	if in.Quantity <= 0 {
		return state
	}
	idx := indexOf(state.Items, in.ProductID)
	if idx < 0 {
		return state
	}
	next := state.Clone()
	next.Items[idx].Quantity = addQuantity(0, in.Quantity)
	return withTotals(next)
}

// addQuantity saturates at MaxQuantity. Both arguments are non-negative.
func addQuantity(current, delta int) int {
	if delta > MaxQuantity-current {
		return MaxQuantity
	}
	return current + delta
}

// replace installs an authoritative item list. Duplicate product ids are
// merged in first-seen order, quantities saturate at MaxQuantity, and lines
// below quantity 1 or with an unusable product snapshot are dropped.
func replace(state State, items []Line, green, offset bool) State {
	merged := make([]Line, 0, len(items))
	for _, line := range items {
		if line.ProductID == "" || line.Quantity < 1 || !line.Product.Valid() {
			continue
		}
		if idx := indexOf(merged, line.ProductID); idx >= 0 {
			merged[idx].Quantity = addQuantity(merged[idx].Quantity, line.Quantity)
			continue
		}
		line.Quantity = addQuantity(0, line.Quantity)
		merged = append(merged, line)
	}
	return withTotals(State{
		Items:         merged,
		GreenDelivery: green,
		CarbonOffset:  offset,
		Loading:       false,
		LastError:     state.LastError,
	})
}

func indexOf(items []Line, productID string) int {
	for i := range items {
		if items[i].ProductID == productID {
			return i
		}
	}
	return -1
}
