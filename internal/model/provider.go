package model

// Provider represents one residential care facility from the registry.
//
// Optional fields are pointers: a nil pointer means the registry simply
// does not carry the value, which is a valid state, never an error.
type Provider struct {
	ProviderID string   `json:"provider_id"`
	Name       string   `json:"name,omitempty"`
	Address    string   `json:"address,omitempty"`
	Suburb     string   `json:"suburb,omitempty"`
	Postcode   string   `json:"postcode,omitempty"`
	Lat        *float64 `json:"lat,omitempty"`
	Lng        *float64 `json:"lng,omitempty"`

	// Star ratings on a 0-5 scale.
	StarOverall    *float64 `json:"star_overall,omitempty"`
	StarClinical   *float64 `json:"star_clinical,omitempty"`
	StarCompliance *float64 `json:"star_compliance,omitempty"`

	// Capability tags, e.g. "memory_support", "palliative".
	Tags []string `json:"tags,omitempty"`

	// Pricing: either a direct daily price, or the RAD/MPIR pair the
	// daily accommodation payment is derived from.
	PricePerDay *float64 `json:"price_per_day,omitempty"`
	RAD         *float64 `json:"rad,omitempty"`
	MPIR        *float64 `json:"mpir,omitempty"`
}

// HasCoordinates reports whether both latitude and longitude are present.
func (p Provider) HasCoordinates() bool {
	return p.Lat != nil && p.Lng != nil
}

// HasTag reports whether the provider carries the given capability tag.
func (p Provider) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Coordinate is a WGS84 latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"lat" mapstructure:"lat"`
	Lng float64 `json:"lng" mapstructure:"lng"`
}

// Query is a user request for a ranking.
type Query struct {
	Postcode     string   `json:"postcode,omitempty"`
	Lat          *float64 `json:"lat,omitempty"`
	Lng          *float64 `json:"lng,omitempty"`
	RadiusKM     float64  `json:"radius_km"`
	BudgetPerDay float64  `json:"budget_per_day"`
	Needs        []string `json:"needs,omitempty"`
}

// Origin returns the query coordinate, or fallback when the query does
// not carry one.
func (q Query) Origin(fallback Coordinate) Coordinate {
	if q.Lat != nil && q.Lng != nil {
		return Coordinate{Lat: *q.Lat, Lng: *q.Lng}
	}
	return fallback
}

// WeightProfile is a named set of non-negative component weights.
// The weights need not sum to 1, but doing so keeps fit scores in [0,1].
type WeightProfile struct {
	Name     string  `json:"name,omitempty" yaml:"name"`
	Location float64 `json:"w_location" yaml:"w_location"`
	Price    float64 `json:"w_price" yaml:"w_price"`
	Quality  float64 `json:"w_quality" yaml:"w_quality"`
	Needs    float64 `json:"w_needs" yaml:"w_needs"`
}

// Sum returns the total of the four component weights.
func (w WeightProfile) Sum() float64 {
	return w.Location + w.Price + w.Quality + w.Needs
}
