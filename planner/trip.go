// Package planner plans trips with a crew of four travel agents.
package planner

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// TravelStyle is the comfort level of the trip
type TravelStyle string

const (
	BudgetStyle   TravelStyle = "budget"
	MidRangeStyle TravelStyle = "mid-range"
	LuxuryStyle   TravelStyle = "luxury"
)

// TravelStyles lists the styles in menu order
var TravelStyles = []TravelStyle{BudgetStyle, MidRangeStyle, LuxuryStyle}

// Describe returns the menu label of the style
func (s TravelStyle) Describe() string {
	switch s {
	case BudgetStyle:
		return "Budget (hostels, street food, free activities)"
	case MidRangeStyle:
		return "Mid-range (3-star hotels, mix of experiences)"
	case LuxuryStyle:
		return "Luxury (high-end accommodations, premium experiences)"
	}
	return string(s)
}

// ParseTravelStyle accepts a style name or its menu number 1-3
func ParseTravelStyle(v string) (TravelStyle, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	if n, err := strconv.Atoi(v); err == nil {
		if n >= 1 && n <= len(TravelStyles) {
			return TravelStyles[n-1], nil
		}
		return "", fmt.Errorf("travel style choice %d out of range 1-%d", n, len(TravelStyles))
	}
	switch v {
	case "midrange", "mid range":
		return MidRangeStyle, nil
	}
	for _, s := range TravelStyles {
		if string(s) == v {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown travel style %q", v)
}

// TripDetails is what the traveler wants
type TripDetails struct {
	Destination string      `yaml:"destination" json:"destination" validate:"required"`
	Duration    int         `yaml:"duration" json:"duration" validate:"min=1,max=365"`
	Travelers   int         `yaml:"travelers" json:"travelers" validate:"min=1,max=100"`
	Budget      string      `yaml:"budget" json:"budget" validate:"required"`
	Dates       string      `yaml:"dates" json:"dates,omitempty"`
	Interests   []string    `yaml:"interests" json:"interests,omitempty"`
	TravelStyle TravelStyle `yaml:"travel_style" json:"travel_style" validate:"required,oneof=budget mid-range luxury"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Normalize trims text fields and drops empty interests
func (t *TripDetails) Normalize() {
	t.Destination = strings.TrimSpace(t.Destination)
	t.Budget = strings.TrimSpace(t.Budget)
	t.Dates = strings.TrimSpace(t.Dates)
	interests := make([]string, 0, len(t.Interests))
	for _, v := range t.Interests {
		if v = strings.TrimSpace(v); v != "" {
			interests = append(interests, v)
		}
	}
	t.Interests = interests
	if style, err := ParseTravelStyle(string(t.TravelStyle)); err == nil {
		t.TravelStyle = style
	}
}

// Validate checks the trip details
func (t TripDetails) Validate() error {
	if err := validate.Struct(t); err != nil {
		return fmt.Errorf("invalid trip details: %w", err)
	}
	return nil
}

// InterestList joins the interests for prompts
func (t TripDetails) InterestList() string {
	if len(t.Interests) == 0 {
		return "general sightseeing"
	}
	return strings.Join(t.Interests, ", ")
}

// TravelDates returns the dates or a placeholder when unknown
func (t TripDetails) TravelDates() string {
	if t.Dates == "" {
		return "flexible"
	}
	return t.Dates
}

// ParseInterests splits a comma separated list
func ParseInterests(v string) []string {
	var ret []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			ret = append(ret, s)
		}
	}
	return ret
}

// DecodeTripDetails reads normalized and validated trip details from YAML
func DecodeTripDetails(r io.Reader) (*TripDetails, error) {
	t := new(TripDetails)
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(t); err != nil {
		return nil, fmt.Errorf("decode trip details: %w", err)
	}
	t.Normalize()
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// LoadTripDetails reads trip details from a YAML file
func LoadTripDetails(path string) (*TripDetails, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeTripDetails(f)
}
