package dto

// CreateCustomerRequest body para POST /api/customers.
type CreateCustomerRequest struct {
	Name               string `json:"name" validate:"required"`
	PAN                string `json:"pan,omitempty"`
	PANVerified        bool   `json:"pan_verified"`
	GSTIN              string `json:"gstin,omitempty" validate:"omitempty,len=15"`
	IsRegisteredDealer bool   `json:"is_registered_dealer"`
	Phone              string `json:"phone,omitempty"`
}

// CustomerResponse cliente en respuestas.
type CustomerResponse struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	PAN                string `json:"pan,omitempty"`
	PANVerified        bool   `json:"pan_verified"`
	GSTIN              string `json:"gstin,omitempty"`
	IsRegisteredDealer bool   `json:"is_registered_dealer"`
	Phone              string `json:"phone,omitempty"`
}
