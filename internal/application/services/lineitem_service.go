package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/omniboard/backend/internal/domain/ports"
	"github.com/omniboard/backend/pkg/errors"
	"github.com/omniboard/backend/pkg/models"
	"github.com/omniboard/backend/pkg/utils"
)

// lineItemList is the locally-owned product list of one opportunity detail
// view. Edits stay local until an explicit save; on save the entire list
// replaces the backend's stored list.
type lineItemList struct {
	opportunityID string

	mu          sync.Mutex
	items       []models.LineItem
	busy        bool
	saveError   string
	lastTouched time.Time
}

// LineItemListSnapshot is the read view of an editor instance
type LineItemListSnapshot struct {
	Items     []models.LineItem `json:"items"`
	Busy      bool              `json:"busy"`
	SaveError string            `json:"save_error,omitempty"`
}

// LineItemService owns the line-item editors of open opportunity detail
// views. It shares the view id with the enrichment orchestrator but has
// fully disjoint state and failure behavior.
type LineItemService struct {
	saver ports.LineItemSaver

	mu    sync.RWMutex
	lists map[string]*lineItemList
}

// NewLineItemService creates a new LineItemService
func NewLineItemService(saver ports.LineItemSaver) *LineItemService {
	return &LineItemService{
		saver: saver,
		lists: make(map[string]*lineItemList),
	}
}

// Open seeds an editor from the record's stored product list, or starts
// empty when the record has none.
func (svc *LineItemService) Open(viewID, opportunityID string, record models.Record) {
	list := &lineItemList{
		opportunityID: opportunityID,
		items:         decodeLineItems(record.Get("products")),
		lastTouched:   time.Now(),
	}

	svc.mu.Lock()
	svc.lists[viewID] = list
	svc.mu.Unlock()
}

// decodeLineItems converts a record's raw products attribute into line
// items. Anything unreadable yields an empty list.
func decodeLineItems(raw interface{}) []models.LineItem {
	if raw == nil {
		return []models.LineItem{}
	}
	if items, ok := raw.([]models.LineItem); ok {
		return append([]models.LineItem(nil), items...)
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return []models.LineItem{}
	}
	var items []models.LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return []models.LineItem{}
	}
	return items
}

// Add appends a blank line and returns the updated list
func (svc *LineItemService) Add(viewID string) ([]models.LineItem, error) {
	list, err := svc.get(viewID)
	if err != nil {
		return nil, err
	}

	list.mu.Lock()
	defer list.mu.Unlock()
	list.items = append(list.items, models.LineItem{Quantity: 1, UnitPrice: 0})
	list.lastTouched = time.Now()
	return copyLineItems(list.items), nil
}

// copyLineItems snapshots the list. The copy is never nil so an emptied
// list still serializes as [] and a save still sends an explicit empty
// replacement instead of null.
func copyLineItems(items []models.LineItem) []models.LineItem {
	out := make([]models.LineItem, len(items))
	copy(out, items)
	return out
}

// Update replaces one attribute at one index, leaving other entries
// untouched.
func (svc *LineItemService) Update(viewID string, index int, field string, value interface{}) error {
	list, err := svc.get(viewID)
	if err != nil {
		return err
	}

	list.mu.Lock()
	defer list.mu.Unlock()
	if index < 0 || index >= len(list.items) {
		return errors.NewValidationError("index", "line item index out of range")
	}

	item := &list.items[index]
	switch field {
	case "sku":
		item.SKU, _ = value.(string)
	case "name":
		item.Name, _ = value.(string)
	case "quantity":
		if num, ok := utils.ToFloat64(value); ok {
			item.Quantity = num
		}
	case "unit_price":
		if num, ok := utils.ToFloat64(value); ok {
			item.UnitPrice = num
		}
	default:
		return errors.NewValidationError("field", "unknown line item field '"+field+"'")
	}
	list.lastTouched = time.Now()
	return nil
}

// Remove deletes one entry, preserving the order of the remainder
func (svc *LineItemService) Remove(viewID string, index int) error {
	list, err := svc.get(viewID)
	if err != nil {
		return err
	}

	list.mu.Lock()
	defer list.mu.Unlock()
	if index < 0 || index >= len(list.items) {
		return errors.NewValidationError("index", "line item index out of range")
	}
	list.items = append(list.items[:index], list.items[index+1:]...)
	list.lastTouched = time.Now()
	return nil
}

// Save sends the full current list to the backend (last-writer-wins).
// On failure the local list is preserved so the user can retry.
func (svc *LineItemService) Save(ctx context.Context, viewID string) error {
	list, err := svc.get(viewID)
	if err != nil {
		return err
	}

	list.mu.Lock()
	if list.busy {
		list.mu.Unlock()
		return errors.NewValidationError("", "save already in flight")
	}
	list.busy = true
	list.saveError = ""
	items := copyLineItems(list.items)
	opportunityID := list.opportunityID
	list.mu.Unlock()

	saveErr := svc.saver.SaveLineItems(ctx, opportunityID, items)

	list.mu.Lock()
	list.busy = false
	if saveErr != nil {
		list.saveError = saveErr.Error()
	}
	list.lastTouched = time.Now()
	list.mu.Unlock()

	return saveErr
}

// Get returns the current snapshot of an editor
func (svc *LineItemService) Get(viewID string) (*LineItemListSnapshot, error) {
	list, err := svc.get(viewID)
	if err != nil {
		return nil, err
	}

	list.mu.Lock()
	defer list.mu.Unlock()
	return &LineItemListSnapshot{
		Items:     copyLineItems(list.items),
		Busy:      list.busy,
		SaveError: list.saveError,
	}, nil
}

// Close drops the editor and its unsaved edits
func (svc *LineItemService) Close(viewID string) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	delete(svc.lists, viewID)
}

// SweepExpired removes editors idle for longer than ttl
func (svc *LineItemService) SweepExpired(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)
	svc.mu.Lock()
	defer svc.mu.Unlock()

	removed := 0
	for id, list := range svc.lists {
		list.mu.Lock()
		stale := list.lastTouched.Before(cutoff) && !list.busy
		list.mu.Unlock()
		if stale {
			delete(svc.lists, id)
			removed++
		}
	}
	return removed
}

func (svc *LineItemService) get(viewID string) (*lineItemList, error) {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	list, ok := svc.lists[viewID]
	if !ok {
		return nil, errors.NewNotFoundError("line item editor", viewID)
	}
	return list, nil
}
