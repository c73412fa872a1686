package events

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// FilterError marks a malformed search parameter.
type FilterError struct {
	Field   string
	Message string
}

func (e FilterError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ParseSearchFilters builds a SearchQuery from request query parameters.
// lat, lng, and radius form the proximity filter and must be given together.
func ParseSearchFilters(values url.Values) (SearchQuery, error) {
	query := SearchQuery{
		Title: strings.TrimSpace(values.Get("title")),
		Venue: strings.TrimSpace(values.Get("venue")),
	}

	rawLat := strings.TrimSpace(values.Get("lat"))
	rawLng := strings.TrimSpace(values.Get("lng"))
	rawRadius := strings.TrimSpace(values.Get("radius"))
	if rawLat == "" && rawLng == "" && rawRadius == "" {
		return query, nil
	}
	if rawLat == "" || rawLng == "" || rawRadius == "" {
		return SearchQuery{}, FilterError{Field: "location", Message: "lat, lng and radius must be given together"}
	}

	lat, err := parseFloat("lat", rawLat)
	if err != nil {
		return SearchQuery{}, err
	}
	lng, err := parseFloat("lng", rawLng)
	if err != nil {
		return SearchQuery{}, err
	}
	radius, err := parseFloat("radius", rawRadius)
	if err != nil {
		return SearchQuery{}, err
	}
	if err := validateCoordinates(lat, lng); err != nil {
		return SearchQuery{}, FilterError{Field: "location", Message: err.Error()}
	}
	if radius <= 0 {
		return SearchQuery{}, FilterError{Field: "radius", Message: "must be a positive number of kilometers"}
	}

	query.Near = &Proximity{Lat: lat, Lng: lng, RadiusKm: radius}
	return query, nil
}

func parseFloat(field, value string) (float64, error) {
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, FilterError{Field: field, Message: "must be a number"}
	}
	return parsed, nil
}

var errBadDate = errors.New("must be an RFC3339 timestamp or YYYY-MM-DD date")

func parseEventDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("is required")
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	if parsed, err := time.Parse("2006-01-02", value); err == nil {
		return parsed, nil
	}
	return time.Time{}, errBadDate
}
