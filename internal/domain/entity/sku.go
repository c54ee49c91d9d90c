package entity

import (
	"strings"

	"golang.org/x/text/cases"
)

// FoldSKU clave de unicidad del SKU: sin espacios extremos y con plegado de mayúsculas Unicode.
// cases.Caser no es seguro entre goroutines, por eso se crea uno por llamada.
func FoldSKU(sku string) string {
	return cases.Fold().String(strings.TrimSpace(sku))
}
