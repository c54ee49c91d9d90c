// Package memory implementa los puertos de persistencia y bloqueo en memoria del proceso.
// Se usa con STORAGE_DRIVER=memory y en pruebas.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jhoicas/stockledger-api/internal/application/inventory"
	"github.com/jhoicas/stockledger-api/internal/domain"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/internal/domain/repository"
)

var (
	_ repository.ItemRepository          = (*ItemRepository)(nil)
	_ repository.StockMovementRepository = (*StockMovementRepository)(nil)
	_ inventory.TxRunner                 = (*TxRunner)(nil)
)

// Store arena de ítems indexada por id. Los llamadores solo reciben copias; las escrituras de una
// transacción se aplican juntas bajo el candado de escritura, así un lector nunca ve una cantidad
// nueva con una valoración vieja.
type Store struct {
	mu        sync.RWMutex
	items     map[string]*entity.InventoryItem
	skus      map[string]string // sku normalizado → id
	movements map[string][]*entity.StockMovement
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		items:     make(map[string]*entity.InventoryItem),
		skus:      make(map[string]string),
		movements: make(map[string][]*entity.StockMovement),
	}
}

func (s *Store) getItem(id string) *entity.InventoryItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items[id].Clone()
}

func (s *Store) getItemBySKU(sku string) *entity.InventoryItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.skus[entity.FoldSKU(sku)]
	if !ok {
		return nil
	}
	return s.items[id].Clone()
}

func (s *Store) listItems(filter repository.ItemFilter) []*entity.InventoryItem {
	s.mu.RLock()
	out := make([]*entity.InventoryItem, 0, len(s.items))
	for _, it := range s.items {
		if matches(it, filter) {
			out = append(out, it.Clone())
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return entity.FoldSKU(out[i].SKU) < entity.FoldSKU(out[j].SKU) })
	return paginate(out, filter.Limit, filter.Offset)
}

func (s *Store) countItems(filter repository.ItemFilter) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, it := range s.items {
		if matches(it, filter) {
			n++
		}
	}
	return n
}

func matches(it *entity.InventoryItem, filter repository.ItemFilter) bool {
	if filter.Status != "" && it.Status != filter.Status {
		return false
	}
	return filter.Category == "" || it.Category == filter.Category
}

func (s *Store) countMovements(itemID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.movements[itemID])
}

func (s *Store) listMovements(itemID string, limit, offset int) []*entity.StockMovement {
	s.mu.RLock()
	src := s.movements[itemID]
	out := make([]*entity.StockMovement, len(src))
	for i, m := range src {
		c := *m
		out[i] = &c
	}
	s.mu.RUnlock()
	return paginate(out, limit, offset)
}

// commit aplica de una vez las escrituras acumuladas por una transacción.
func (s *Store) commit(w *writes) error {
	if w.empty() {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, it := range w.created {
		key := entity.FoldSKU(it.SKU)
		if _, dup := s.skus[key]; dup {
			return domain.NewError(domain.ErrDuplicateSKU, "memory.Create", it.ID, "sku %q", it.SKU)
		}
		if _, dup := s.items[it.ID]; dup {
			return fmt.Errorf("memory: item %s ya existe", it.ID)
		}
	}
	for _, id := range w.updateOrder {
		if _, ok := s.items[id]; !ok && w.createdByID(id) == nil {
			return domain.NewError(domain.ErrItemNotFound, "memory.Update", id, "")
		}
	}
	last := make(map[string]int64)
	for _, m := range w.appended {
		prev, ok := last[m.ItemID]
		if !ok {
			if l := s.movements[m.ItemID]; len(l) > 0 {
				prev = l[len(l)-1].Sequence
			}
		}
		if m.Sequence <= prev {
			return domain.NewError(domain.ErrLedgerInconsistency, "memory.Append", m.ItemID,
				"secuencia %d no es mayor que %d", m.Sequence, prev)
		}
		last[m.ItemID] = m.Sequence
	}

	for _, it := range w.created {
		s.items[it.ID] = it
		s.skus[entity.FoldSKU(it.SKU)] = it.ID
	}
	for _, id := range w.updateOrder {
		s.items[id] = w.updated[id]
	}
	for _, m := range w.appended {
		s.movements[m.ItemID] = append(s.movements[m.ItemID], m)
	}
	return nil
}

func paginate[T any](in []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(in) {
			return []T{}
		}
		in = in[offset:]
	}
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}

// writes escrituras pendientes de una transacción.
type writes struct {
	created     []*entity.InventoryItem
	updated     map[string]*entity.InventoryItem
	updateOrder []string
	appended    []*entity.StockMovement
}

func (w *writes) empty() bool {
	return w == nil || (len(w.created) == 0 && len(w.updateOrder) == 0 && len(w.appended) == 0)
}

func (w *writes) createdByID(id string) *entity.InventoryItem {
	for _, it := range w.created {
		if it.ID == id {
			return it
		}
	}
	return nil
}

// TxRunner ejecuta fn con repositorios que acumulan las escrituras y las aplican al final.
// Si fn falla, nada de lo escrito llega al Store.
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner sobre el Store.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// Run implementa inventory.TxRunner.
func (r *TxRunner) Run(ctx context.Context, fn func(
	items repository.ItemRepository,
	movements repository.StockMovementRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w := &writes{updated: make(map[string]*entity.InventoryItem)}
	items := &ItemRepository{store: r.store, tx: w}
	movements := &StockMovementRepository{store: r.store, tx: w}
	if err := fn(items, movements); err != nil {
		return err
	}
	return r.store.commit(w)
}
