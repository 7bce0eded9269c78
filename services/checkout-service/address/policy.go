// Package address holds the default-selection policy and validation rules
// for shipping addresses.
package address

import "github.com/rayhanbeg/Sajbela-sub000/services/checkout-service/models"

// DefaultCountry is filled in when an address omits its country.
const DefaultCountry = "Bangladesh"

// Effective picks the address checkout starts from: the one flagged default,
// else the first, else nil. The returned pointer aliases list.
func Effective(list []models.Address) *models.Address {
	if len(list) == 0 {
		return nil
	}
	for i := range list {
		if list[i].IsDefault {
			return &list[i]
		}
	}
	return &list[0]
}

// Find returns the address with id, or nil.
func Find(list []models.Address, id string) *models.Address {
	for i := range list {
		if list[i].ID == id {
			return &list[i]
		}
	}
	return nil
}
