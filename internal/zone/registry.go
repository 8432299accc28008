// Package zone maps coordinates to the nearest city known to the store and
// packages its risk profile into a zone alert.
package zone

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/couchcryptid/crime-zone-api/internal/domain"
)

// DefaultRegistry returns the built-in city-coordinate table covering the
// district headquarters the records bureau reports on. An operator can
// replace it with a JSON file via REGISTRY_PATH.
func DefaultRegistry() []domain.CityCoordinate {
	return []domain.CityCoordinate{
		{City: "Thiruvananthapuram", Latitude: 8.5241, Longitude: 76.9366},
		{City: "Kollam", Latitude: 8.8932, Longitude: 76.6141},
		{City: "Pathanamthitta", Latitude: 9.2648, Longitude: 76.7870},
		{City: "Alappuzha", Latitude: 9.4981, Longitude: 76.3388},
		{City: "Kottayam", Latitude: 9.5916, Longitude: 76.5222},
		{City: "Idukki", Latitude: 9.8494, Longitude: 76.9681},
		{City: "Ernakulam", Latitude: 9.9816, Longitude: 76.2999},
		{City: "Thrissur", Latitude: 10.5276, Longitude: 76.2144},
		{City: "Palakkad", Latitude: 10.7867, Longitude: 76.6548},
		{City: "Malappuram", Latitude: 11.0510, Longitude: 76.0711},
		{City: "Kozhikode", Latitude: 11.2588, Longitude: 75.7804},
		{City: "Wayanad", Latitude: 11.6854, Longitude: 76.1320},
		{City: "Kannur", Latitude: 11.8745, Longitude: 75.3704},
		{City: "Kasaragod", Latitude: 12.4996, Longitude: 74.9869},
	}
}

// LoadRegistry reads a city-coordinate table from a JSON file. City names
// are normalized on load so registry casing never has to match source
// casing.
func LoadRegistry(path string) ([]domain.CityCoordinate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}

	var entries []domain.CityCoordinate
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}
	for i := range entries {
		entries[i].City = domain.NormalizeCityName(entries[i].City)
	}
	return entries, nil
}
