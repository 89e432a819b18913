package entity

import "time"

// Customer representa un cliente de la joyería.
// PAN y GSTIN alimentan el registro PAN y la política de exención TCS.
type Customer struct {
	ID                 string
	Name               string
	PAN                string // Permanent Account Number (India)
	PANVerified        bool   // verificado contra el registro del Income Tax Department
	GSTIN              string // número GST; obligatorio para comerciantes registrados
	IsRegisteredDealer bool   // comerciante registrado: ventas exentas de TCS
	Phone              string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
