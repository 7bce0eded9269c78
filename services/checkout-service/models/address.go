package models

// Address is a saved shipping address.
type Address struct {
	ID        string `json:"_id,omitempty"`
	FullName  string `json:"fullName" validate:"required"`
	Phone     string `json:"phone" validate:"required,bdphone"`
	Address   string `json:"address" validate:"required"`
	District  string `json:"district" validate:"required"`
	Thana     string `json:"thana" validate:"required"`
	Country   string `json:"country"`
	IsDefault bool   `json:"isDefault"`
}
