package remotetest

import (
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/angelmondragon/greencart/internal/cart"
	"github.com/angelmondragon/greencart/pkg/enums"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const defaultUserID = "guest-user"

type line struct {
	productID string
	quantity  int
}

type userCart struct {
	items         []line
	greenDelivery bool
	carbonOffset  bool
}

func newUserCart() *userCart {
	return &userCart{greenDelivery: true}
}

// Server is an in-memory cart service speaking the storefront's REST
// contract, with switches for simulating outages.
type Server struct {
	mu          sync.Mutex
	products    map[string]Product
	carts       map[string]*userCart
	purchases   map[string]int
	checkouts   map[string]checkoutResponse
	calls       map[enums.Operation]int
	down        bool
	delay       time.Duration
	forceStatus int

	router chi.Router
}

// New builds a server with the given catalog, or DefaultCatalog when empty.
func New(catalog ...Product) *Server {
	if len(catalog) == 0 {
		catalog = DefaultCatalog()
	}
	s := &Server{
		products:  make(map[string]Product, len(catalog)),
		carts:     make(map[string]*userCart),
		purchases: make(map[string]int),
		checkouts: make(map[string]checkoutResponse),
		calls:     make(map[enums.Operation]int),
	}
	for _, p := range catalog {
		s.products[p.ID] = p
	}

	r := chi.NewRouter()
	r.Use(s.faults)
	r.Route("/api/cart", func(r chi.Router) {
		r.Get("/", s.track(enums.OperationFetch, s.getCart))
		r.Post("/add", s.track(enums.OperationAddItem, s.addToCart))
		r.Delete("/remove/{id}", s.track(enums.OperationRemoveItem, s.removeFromCart))
		r.Patch("/green-options", s.track(enums.OperationGreenOptions, s.updateGreenOptions))
		r.Post("/checkout", s.track(enums.OperationCheckout, s.checkout))
	})
	r.Get("/api/products", s.listProducts)
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetDown makes every request fail at the transport level.
func (s *Server) SetDown(down bool) {
	s.mu.Lock()
	s.down = down
	s.mu.Unlock()
}

// SetDelay holds every request for d before handling it.
func (s *Server) SetDelay(d time.Duration) {
	s.mu.Lock()
	s.delay = d
	s.mu.Unlock()
}

// SetStatus answers every cart request with status until reset with 0.
func (s *Server) SetStatus(status int) {
	s.mu.Lock()
	s.forceStatus = status
	s.mu.Unlock()
}

// Calls returns how many requests for op reached a handler.
func (s *Server) Calls(op enums.Operation) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// TotalCalls sums Calls over every operation.
func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.calls {
		total += n
	}
	return total
}

// Quantity reports the remote quantity of productID in userID's cart.
func (s *Server) Quantity(userID, productID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[userID]
	if !ok {
		return 0
	}
	for _, l := range c.items {
		if l.productID == productID {
			return l.quantity
		}
	}
	return 0
}

// Purchases reports how many units of productID were checked out.
func (s *Server) Purchases(productID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.purchases[productID]
}

func (s *Server) faults(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		down, delay, status := s.down, s.delay, s.forceStatus
		s.mu.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		if down {
			panic(http.ErrAbortHandler)
		}
		if status != 0 {
			writeFailure(w, status, http.StatusText(status))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) track(op enums.Operation, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[op]++
		s.mu.Unlock()
		h(w, r)
	}
}

func (s *Server) listProducts(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeSuccess(w, "", out)
}

func (s *Server) getCart(w http.ResponseWriter, r *http.Request) {
	userID := userFrom(r, "")
	s.mu.Lock()
	resp := s.cartResponse(s.cartFor(userID), true)
	s.mu.Unlock()
	writeSuccess(w, "", resp)
}

func (s *Server) addToCart(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProductID string `json:"productId"`
		Quantity  *int   `json:"quantity"`
		UserID    string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	qty := 1
	if body.Quantity != nil {
		qty = *body.Quantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[body.ProductID]; !ok {
		writeFailure(w, http.StatusNotFound, "Product not found")
		return
	}
	if qty <= 0 {
		writeFailure(w, http.StatusBadRequest, "Quantity must be greater than 0")
		return
	}
	c := s.cartFor(userFrom(r, body.UserID))
	merged := false
	for i := range c.items {
		if c.items[i].productID == body.ProductID {
			c.items[i].quantity += qty
			merged = true
			break
		}
	}
	if !merged {
		c.items = append(c.items, line{productID: body.ProductID, quantity: qty})
	}
	writeSuccess(w, "Product added to cart", s.cartResponse(c, false))
}

func (s *Server) removeFromCart(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")
	userID := userFrom(r, "")

	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[userID]
	if !ok {
		writeFailure(w, http.StatusNotFound, "Cart not found")
		return
	}
	for i := range c.items {
		if c.items[i].productID == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			writeSuccess(w, "Product removed from cart", s.cartResponse(c, false))
			return
		}
	}
	writeFailure(w, http.StatusNotFound, "Product not found in cart")
}

func (s *Server) updateGreenOptions(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID        string `json:"userId"`
		GreenDelivery *bool  `json:"greenDelivery"`
		CarbonOffset  *bool  `json:"carbonOffset"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if body.GreenDelivery == nil && body.CarbonOffset == nil {
		writeFailure(w, http.StatusBadRequest, "At least one green option must be provided")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.cartFor(userFrom(r, body.UserID))
	if body.GreenDelivery != nil {
		c.greenDelivery = *body.GreenDelivery
	}
	if body.CarbonOffset != nil {
		c.carbonOffset = *body.CarbonOffset
	}
	totals := cart.ComputeTotals(s.lines(c), c.greenDelivery, c.carbonOffset)
	writeSuccess(w, "Green options updated", map[string]any{
		"greenDelivery":   c.greenDelivery,
		"carbonOffset":    c.carbonOffset,
		"carbonFootprint": totals.CarbonFootprint,
	})
}

func (s *Server) checkout(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID        string `json:"userId"`
		GreenDelivery *bool  `json:"greenDelivery"`
		CarbonOffset  *bool  `json:"carbonOffset"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	key := r.Header.Get("Idempotency-Key")

	s.mu.Lock()
	defer s.mu.Unlock()
	if prior, ok := s.checkouts[key]; ok && key != "" {
		writeSuccess(w, "Checkout completed successfully", prior)
		return
	}

	userID := userFrom(r, body.UserID)
	c, ok := s.carts[userID]
	if !ok || len(c.items) == 0 {
		writeFailure(w, http.StatusBadRequest, "Cart is empty or not found")
		return
	}
	c.greenDelivery = body.GreenDelivery == nil || *body.GreenDelivery
	c.carbonOffset = body.CarbonOffset != nil && *body.CarbonOffset

	lines := s.lines(c)
	state := cart.Reduce(cart.NewState(), cart.ReplaceFromRemote{Items: lines, GreenDelivery: c.greenDelivery, CarbonOffset: c.carbonOffset})
	metrics := state.GreenMetrics()

	for _, l := range c.items {
		s.purchases[l.productID] += l.quantity
	}
	resp := checkoutResponse{
		OrderID:    uuid.NewString(),
		TotalPrice: state.TotalPrice,
		Items:      s.itemsResponse(c),
		GreenMetrics: greenMetricsResponse{
			CarbonFootprint:       metrics.CarbonFootprint,
			CarbonSaved:           metrics.CarbonSaved,
			SustainableItemsCount: metrics.SustainableItemsCount,
			GreenDelivery:         c.greenDelivery,
			CarbonOffset:          c.carbonOffset,
		},
	}
	s.carts[userID] = newUserCart()
	if key != "" {
		s.checkouts[key] = resp
	}
	writeSuccess(w, "Checkout completed successfully", resp)
}

// cartFor returns the user's cart, creating it on first use. Caller holds s.mu.
func (s *Server) cartFor(userID string) *userCart {
	c, ok := s.carts[userID]
	if !ok {
		c = newUserCart()
		s.carts[userID] = c
	}
	return c
}

func (s *Server) lines(c *userCart) []cart.Line {
	out := make([]cart.Line, 0, len(c.items))
	for _, l := range c.items {
		p := s.products[l.productID]
		out = append(out, cart.Line{
			ProductID: l.productID,
			Quantity:  l.quantity,
			Product: cart.ProductSnapshot{
				Name:                p.Name,
				Price:               p.Price,
				CarbonFootprint:     p.CarbonFootprint,
				SustainabilityScore: p.SustainabilityScore,
				Image:               p.Image,
			},
		})
	}
	return out
}

func (s *Server) itemsResponse(c *userCart) []itemResponse {
	items := make([]itemResponse, 0, len(c.items))
	for _, l := range c.items {
		items = append(items, itemResponse{Product: s.products[l.productID], Quantity: l.quantity})
	}
	return items
}

func (s *Server) cartResponse(c *userCart, withSustainable bool) cartResponse {
	totals := cart.ComputeTotals(s.lines(c), c.greenDelivery, c.carbonOffset)
	green, offset := c.greenDelivery, c.carbonOffset
	resp := cartResponse{
		Cart: cartDocument{
			Items:         s.itemsResponse(c),
			GreenDelivery: green,
			CarbonOffset:  offset,
		},
		TotalPrice: totals.Price,
		TotalItems: totals.Items,
		GreenMetrics: greenMetricsResponse{
			CarbonFootprint: totals.CarbonFootprint,
			GreenDelivery:   green,
			CarbonOffset:    offset,
		},
	}
	if withSustainable {
		for _, l := range c.items {
			if s.products[l.productID].SustainabilityScore > 70 {
				resp.GreenMetrics.SustainableItemsCount++
			}
		}
	}
	return resp
}

func userFrom(r *http.Request, bodyUser string) string {
	if bodyUser != "" {
		return bodyUser
	}
	if q := r.URL.Query().Get("userId"); q != "" {
		return q
	}
	if h := r.Header.Get("User-Id"); h != "" {
		return h
	}
	return defaultUserID
}
