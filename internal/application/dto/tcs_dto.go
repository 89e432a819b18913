package dto

import "github.com/shopspring/decimal"

// TcsTransactionResponse clasificación TCS registrada para una venta.
type TcsTransactionResponse struct {
	ID                         string          `json:"id"`
	SaleID                     string          `json:"sale_id"`
	CustomerID                 string          `json:"customer_id"`
	FinancialYear              string          `json:"financial_year"`
	Quarter                    int             `json:"quarter"`
	TransactionDate            string          `json:"transaction_date"`
	SaleAmount                 decimal.Decimal `json:"sale_amount"`
	CumulativeSaleAmountBefore decimal.Decimal `json:"cumulative_sale_amount_before"`
	TcsRate                    decimal.Decimal `json:"tcs_rate"`
	TcsAmount                  decimal.Decimal `json:"tcs_amount"`
	TcsType                    string          `json:"tcs_type"`
	IsExempted                 bool            `json:"is_exempted"`
	ExemptionReason            string          `json:"exemption_reason,omitempty"`
	PANNumber                  string          `json:"pan_number,omitempty"`
}

// TcsStateResponse acumulado de un cliente en el año fiscal.
type TcsStateResponse struct {
	CustomerID           string          `json:"customer_id"`
	FinancialYear        string          `json:"financial_year"`
	CumulativeSaleAmount decimal.Decimal `json:"cumulative_sale_amount"`
	HasValidPAN          bool            `json:"has_valid_pan"`
	PANNumber            string          `json:"pan_number,omitempty"`
	Version              int64           `json:"version"`
}

// TcsPreviewRequest body para POST /api/tcs/preview.
type TcsPreviewRequest struct {
	CustomerID string          `json:"customer_id" validate:"required"`
	SaleAmount decimal.Decimal `json:"sale_amount"`
	Date       string          `json:"date,omitempty"`
}

// TcsPreviewResponse clasificación hipotética; no modifica el acumulado.
type TcsPreviewResponse struct {
	CustomerID                 string          `json:"customer_id"`
	FinancialYear              string          `json:"financial_year"`
	Quarter                    int             `json:"quarter"`
	HasValidPAN                bool            `json:"has_valid_pan"`
	PANNumber                  string          `json:"pan_number,omitempty"`
	CumulativeSaleAmountBefore decimal.Decimal `json:"cumulative_sale_amount_before"`
	TcsRate                    decimal.Decimal `json:"tcs_rate"`
	TcsAmount                  decimal.Decimal `json:"tcs_amount"`
	TcsType                    string          `json:"tcs_type"`
	IsExempted                 bool            `json:"is_exempted"`
	ExemptionReason            string          `json:"exemption_reason,omitempty"`
}

// Form26QLineResponse fila del reporte.
type Form26QLineResponse struct {
	Serial          int             `json:"serial"`
	TransactionID   string          `json:"transaction_id"`
	SaleID          string          `json:"sale_id"`
	CustomerID      string          `json:"customer_id"`
	PANNumber       string          `json:"pan_number,omitempty"`
	TransactionDate string          `json:"transaction_date"`
	SaleAmount      decimal.Decimal `json:"sale_amount"`
	TcsRate         decimal.Decimal `json:"tcs_rate"`
	TcsAmount       decimal.Decimal `json:"tcs_amount"`
	TcsType         string          `json:"tcs_type"`
	ExemptionReason string          `json:"exemption_reason,omitempty"`
}

// Form26QSubtotalResponse subtotal por tipo TCS.
type Form26QSubtotalResponse struct {
	TcsType    string          `json:"tcs_type"`
	Count      int             `json:"count"`
	SaleAmount decimal.Decimal `json:"sale_amount"`
	TcsAmount  decimal.Decimal `json:"tcs_amount"`
}

// Form26QResponse reporte trimestral en JSON.
type Form26QResponse struct {
	FinancialYear   string                    `json:"financial_year"`
	Quarter         string                    `json:"quarter"`
	PeriodFrom      string                    `json:"period_from"`
	PeriodTo        string                    `json:"period_to"`
	Count           int                       `json:"count"`
	TotalSaleAmount decimal.Decimal           `json:"total_sale_amount"`
	TotalTcsAmount  decimal.Decimal           `json:"total_tcs_amount"`
	ByType          []Form26QSubtotalResponse `json:"by_type"`
	DistinctPANs    []string                  `json:"distinct_pans"`
	Lines           []Form26QLineResponse     `json:"lines"`
}

// Form26QJobRequest body para POST /api/tcs/form26q/jobs.
type Form26QJobRequest struct {
	FinancialYear string `json:"financial_year" validate:"required"`
	Quarter       string `json:"quarter" validate:"required"`
}

// Form26QJobResponse tarea encolada.
type Form26QJobResponse struct {
	TaskID string `json:"task_id"`
	Queue  string `json:"queue"`
}
