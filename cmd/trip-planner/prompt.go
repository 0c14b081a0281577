package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"

	"github.com/bububa/trip-planner/planner"
)

func required(field string) promptui.ValidateFunc {
	return func(v string) error {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func intRange(field string, lo, hi int) promptui.ValidateFunc {
	return func(v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("please enter a valid number of %s", field)
		}
		if n < lo || n > hi {
			return fmt.Errorf("%s must be between %d and %d", field, lo, hi)
		}
		return nil
	}
}

func ask(label string, validate promptui.ValidateFunc) (string, error) {
	p := promptui.Prompt{
		Label:    label,
		Validate: validate,
	}
	v, err := p.Run()
	return strings.TrimSpace(v), err
}

// promptTripDetails collects the trip interactively
func promptTripDetails() (*planner.TripDetails, error) {
	trip := new(planner.TripDetails)
	var err error
	if trip.Destination, err = ask("Where would you like to go? (e.g., Paris, France)", required("destination")); err != nil {
		return nil, err
	}
	duration, err := ask("How many days is your trip? (e.g., 7)", intRange("days", 1, 365))
	if err != nil {
		return nil, err
	}
	trip.Duration, _ = strconv.Atoi(duration)
	travelers, err := ask("How many people are traveling? (e.g., 2)", intRange("travelers", 1, 100))
	if err != nil {
		return nil, err
	}
	trip.Travelers, _ = strconv.Atoi(travelers)
	if trip.Budget, err = ask("What's your total budget? (e.g., $3000, €2500)", required("budget")); err != nil {
		return nil, err
	}
	if trip.Dates, err = ask("When are you traveling? (e.g., March 15-22, 2026)", nil); err != nil {
		return nil, err
	}
	interests, err := ask("Interests, comma separated (history, food, nightlife, nature, museums, adventure, shopping, culture)", nil)
	if err != nil {
		return nil, err
	}
	trip.Interests = planner.ParseInterests(interests)

	items := make([]string, 0, len(planner.TravelStyles))
	for _, s := range planner.TravelStyles {
		items = append(items, s.Describe())
	}
	sel := promptui.Select{
		Label: "What's your travel style?",
		Items: items,
	}
	idx, _, err := sel.Run()
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(planner.TravelStyles) {
		return nil, errors.New("invalid travel style")
	}
	trip.TravelStyle = planner.TravelStyles[idx]
	trip.Normalize()
	if err := trip.Validate(); err != nil {
		return nil, err
	}
	return trip, nil
}
