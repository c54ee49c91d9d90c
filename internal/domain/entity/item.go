package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CostingMethod método de costeo del inventario. Se fija al crear el ítem y no cambia.
type CostingMethod string

const (
	CostingFIFO            CostingMethod = "fifo"
	CostingLIFO            CostingMethod = "lifo"
	CostingWeightedAverage CostingMethod = "weighted_average"
	CostingSpecificID      CostingMethod = "specific_identification"
)

// CostingMethods lista los métodos en orden estable (útil para comparaciones).
var CostingMethods = []CostingMethod{CostingFIFO, CostingLIFO, CostingWeightedAverage, CostingSpecificID}

// IsValid indica si el método es uno de los soportados.
func (m CostingMethod) IsValid() bool {
	switch m {
	case CostingFIFO, CostingLIFO, CostingWeightedAverage, CostingSpecificID:
		return true
	}
	return false
}

// UsesLayers true si el método conserva capas de costo discretas.
func (m CostingMethod) UsesLayers() bool {
	return m != CostingWeightedAverage
}

func (m CostingMethod) String() string { return string(m) }

// ParseCostingMethod convierte un string en CostingMethod.
func ParseCostingMethod(s string) (CostingMethod, error) {
	m := CostingMethod(s)
	if !m.IsValid() {
		return "", fmt.Errorf("método de costeo desconocido: %q", s)
	}
	return m, nil
}

// ItemStatus ciclo de vida del ítem: active → discontinued → archived (solo hacia adelante).
type ItemStatus string

const (
	StatusActive       ItemStatus = "active"
	StatusDiscontinued ItemStatus = "discontinued"
	StatusArchived     ItemStatus = "archived"
)

// CanTransitionTo valida la transición de estado.
func (s ItemStatus) CanTransitionTo(next ItemStatus) bool {
	switch s {
	case StatusActive:
		return next == StatusDiscontinued || next == StatusArchived
	case StatusDiscontinued:
		return next == StatusArchived
	}
	return false
}

// Thresholds umbrales de stock del ítem.
type Thresholds struct {
	MinStockLevel   decimal.Decimal
	MaxStockLevel   decimal.Decimal
	ReorderPoint    decimal.Decimal
	ReorderQuantity decimal.Decimal
}

// Validate exige umbrales no negativos y MinStockLevel <= ReorderPoint <= MaxStockLevel.
func (t Thresholds) Validate() error {
	fields := []struct {
		name string
		v    decimal.Decimal
	}{
		{"min_stock_level", t.MinStockLevel},
		{"max_stock_level", t.MaxStockLevel},
		{"reorder_point", t.ReorderPoint},
		{"reorder_quantity", t.ReorderQuantity},
	}
	for _, f := range fields {
		if f.v.IsNegative() {
			return fmt.Errorf("%s no puede ser negativo (%s)", f.name, f.v)
		}
	}
	if t.MinStockLevel.GreaterThan(t.MaxStockLevel) {
		return fmt.Errorf("min_stock_level (%s) mayor que max_stock_level (%s)", t.MinStockLevel, t.MaxStockLevel)
	}
	if t.ReorderPoint.LessThan(t.MinStockLevel) || t.ReorderPoint.GreaterThan(t.MaxStockLevel) {
		return fmt.Errorf("reorder_point (%s) fuera de [%s, %s]", t.ReorderPoint, t.MinStockLevel, t.MaxStockLevel)
	}
	return nil
}

// MaxQuantityScale máximo de decimales permitidos para cantidades.
const MaxQuantityScale = 6

// InventoryItem registro maestro de un ítem con su estado derivado cacheado.
// Quantity, Valuation, Alerts y Cost solo cambian juntos (por movimiento o cambio de umbrales).
type InventoryItem struct {
	ID            string
	SKU           string // inmutable; único sin distinguir mayúsculas
	Name          string
	Category      string
	Subcategory   string
	UnitOfMeasure string
	QuantityScale int32 // decimales permitidos en cantidades para esta unidad
	CostingMethod CostingMethod
	Thresholds    Thresholds
	Status        ItemStatus

	Quantity     decimal.Decimal
	Valuation    decimal.Decimal
	Alerts       Alerts
	Cost         CostState
	LastSequence int64

	CreatedAt  time.Time
	UpdatedAt  time.Time
	ArchivedAt *time.Time
}

// Clone copia profunda; los repositorios entregan copias para que nadie mute el estado interno.
func (i *InventoryItem) Clone() *InventoryItem {
	if i == nil {
		return nil
	}
	c := *i
	c.Cost = i.Cost.Clone()
	if i.ArchivedAt != nil {
		t := *i.ArchivedAt
		c.ArchivedAt = &t
	}
	return &c
}

// AverageUnitCost Valuation/Quantity; nil si la cantidad es cero.
func (i *InventoryItem) AverageUnitCost() *decimal.Decimal {
	if i.Quantity.IsZero() {
		return nil
	}
	avg := i.Valuation.Div(i.Quantity)
	return &avg
}
