package entity

// AlertState estado único de alerta de un ítem.
type AlertState string

const (
	AlertNormal     AlertState = "normal"
	AlertLowStock   AlertState = "low_stock"
	AlertOverstock  AlertState = "overstock"
	AlertOutOfStock AlertState = "out_of_stock"
)

// IsValid indica si el estado es uno de los soportados.
func (s AlertState) IsValid() bool {
	switch s {
	case AlertNormal, AlertLowStock, AlertOverstock, AlertOutOfStock:
		return true
	}
	return false
}

// Alerts banderas derivadas de cantidad y umbrales. Es una proyección: se recalcula,
// nunca se asigna a mano.
type Alerts struct {
	LowStock   bool `json:"low_stock"`
	Overstock  bool `json:"overstock"`
	OutOfStock bool `json:"out_of_stock"`
}

// State devuelve el estado único que representan las banderas.
func (a Alerts) State() AlertState {
	switch {
	case a.OutOfStock:
		return AlertOutOfStock
	case a.LowStock:
		return AlertLowStock
	case a.Overstock:
		return AlertOverstock
	}
	return AlertNormal
}
