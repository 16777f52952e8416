package remotetest

// Product is a catalog entry served by the fake service.
type Product struct {
	ID                  string  `json:"_id"`
	Name                string  `json:"name"`
	Price               float64 `json:"price"`
	Image               string  `json:"image,omitempty"`
	CarbonFootprint     float64 `json:"carbonFootprint"`
	SustainabilityScore int     `json:"sustainabilityScore"`
}

// DefaultCatalog is the offline demo catalog.
func DefaultCatalog() []Product {
	return []Product{
		{ID: "mock-1", Name: "Eco-Friendly Laptop", Price: 899.99, CarbonFootprint: 85, SustainabilityScore: 92},
		{ID: "mock-2", Name: "Organic Cotton T-Shirt", Price: 29.99, CarbonFootprint: 5, SustainabilityScore: 95},
		{ID: "mock-3", Name: "Bamboo Desk Organizer", Price: 24.99, CarbonFootprint: 8, SustainabilityScore: 88},
		{ID: "mock-4", Name: "Recycled Paper Notebook", Price: 12.99, CarbonFootprint: 3, SustainabilityScore: 84},
	}
}
