package inventory

import "github.com/shopspring/decimal"

// CostCalculator implementa la lógica de costo promedio ponderado (servicio de dominio).
// NuevoCosto = ((PesoActual * CostoActual) + (PesoEntrada * CostoEntrada)) / (PesoActual + PesoEntrada)
// Se usa con peso puro en gramos y costo por gramo puro del metal recibido en canje.
func CostCalculator(pesoActual, costoActual, pesoEntrada, costoEntrada decimal.Decimal) decimal.Decimal {
	sum := pesoActual.Add(pesoEntrada)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	num := pesoActual.Mul(costoActual).Add(pesoEntrada.Mul(costoEntrada))
	return num.Div(sum).Round(4)
}

// UnitCost costo por gramo puro de una pieza: crédito otorgado / peso puro.
func UnitCost(credit, pureWeight decimal.Decimal) decimal.Decimal {
	if !pureWeight.GreaterThan(decimal.Zero) {
		return decimal.Zero
	}
	return credit.Div(pureWeight).Round(4)
}
