package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrNotFound is returned by catalog mutations that target a missing entity.
var ErrNotFound = errors.New("not found")

// CatalogStore provides concurrent access to the vendor and activity
// catalog plus per-vendor price history. The serving path only reads;
// writes come from the CRUD API and the periodic Postgres reload.
type CatalogStore interface {
	GetVendor(vendorID int) *Vendor
	GetAllVendors() []Vendor
	// GetVendorsByDestination returns active vendors for a destination,
	// matched case-insensitively.
	GetVendorsByDestination(destination string) []Vendor
	// CompetitorPrices returns the base prices of other active vendors in
	// the same destination and category as vendorID.
	CompetitorPrices(vendorID int) []float64

	GetActivity(activityID int) *StoredActivity
	GetAllActivities() []StoredActivity
	GetActivitiesByDestination(destination string) []StoredActivity

	// GetPriceHistory returns recorded price points for a vendor, oldest
	// first. The slice is a copy; callers may not mutate store state.
	GetPriceHistory(vendorID int) []PricePoint

	// ReloadAll atomically replaces the entire catalog.
	ReloadAll(vendors []Vendor, activities []StoredActivity, history map[int][]PricePoint) error

	InsertVendor(v *Vendor) error
	UpdateVendor(v Vendor) error
	DeleteVendor(vendorID int) error

	InsertActivity(a *StoredActivity) error
	UpdateActivity(a StoredActivity) error
	DeleteActivity(activityID int) error
}

// InMemoryCatalogStore is the default CatalogStore backed by maps behind a
// RWMutex. All returned entities are copies so callers can never corrupt
// shared state.
type InMemoryCatalogStore struct {
	mu         sync.RWMutex
	vendors    map[int]Vendor
	activities map[int]StoredActivity
	history    map[int][]PricePoint
	nextVendor int
	nextAct    int
}

// NewInMemoryCatalogStore creates an empty catalog store.
func NewInMemoryCatalogStore() *InMemoryCatalogStore {
	return &InMemoryCatalogStore{
		vendors:    make(map[int]Vendor),
		activities: make(map[int]StoredActivity),
		history:    make(map[int][]PricePoint),
		nextVendor: 1,
		nextAct:    1,
	}
}

// NewTestCatalogStore returns an empty store for use in tests.
func NewTestCatalogStore() *InMemoryCatalogStore {
	return NewInMemoryCatalogStore()
}

func (s *InMemoryCatalogStore) GetVendor(vendorID int) *Vendor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.vendors[vendorID]; ok {
		return &v
	}
	return nil
}

func (s *InMemoryCatalogStore) GetAllVendors() []Vendor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Vendor, 0, len(s.vendors))
	for _, v := range s.vendors {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *InMemoryCatalogStore) GetVendorsByDestination(destination string) []Vendor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Vendor
	for _, v := range s.vendors {
		if v.Active && strings.EqualFold(v.Destination, destination) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *InMemoryCatalogStore) CompetitorPrices(vendorID int) []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vendors[vendorID]
	if !ok {
		return nil
	}
	var prices []float64
	for id, other := range s.vendors {
		if id == vendorID || !other.Active {
			continue
		}
		if strings.EqualFold(other.Destination, v.Destination) && strings.EqualFold(other.Category, v.Category) {
			prices = append(prices, other.BasePrice)
		}
	}
	sort.Float64s(prices)
	return prices
}

func (s *InMemoryCatalogStore) GetActivity(activityID int) *StoredActivity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.activities[activityID]; ok {
		return &a
	}
	return nil
}

func (s *InMemoryCatalogStore) GetAllActivities() []StoredActivity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]StoredActivity, 0, len(s.activities))
	for _, a := range s.activities {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *InMemoryCatalogStore) GetActivitiesByDestination(destination string) []StoredActivity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []StoredActivity
	for _, a := range s.activities {
		if strings.EqualFold(a.Destination, destination) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *InMemoryCatalogStore) GetPriceHistory(vendorID int) []PricePoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	points := s.history[vendorID]
	out := make([]PricePoint, len(points))
	copy(out, points)
	return out
}

func (s *InMemoryCatalogStore) ReloadAll(vendors []Vendor, activities []StoredActivity, history map[int][]PricePoint) error {
	vm := make(map[int]Vendor, len(vendors))
	nextVendor := 1
	for _, v := range vendors {
		if v.ID <= 0 {
			return fmt.Errorf("vendor %q has invalid id %d", v.Name, v.ID)
		}
		vm[v.ID] = v
		if v.ID >= nextVendor {
			nextVendor = v.ID + 1
		}
	}

	am := make(map[int]StoredActivity, len(activities))
	nextAct := 1
	for _, a := range activities {
		if a.ID <= 0 {
			return fmt.Errorf("activity %q has invalid id %d", a.Name, a.ID)
		}
		am[a.ID] = a
		if a.ID >= nextAct {
			nextAct = a.ID + 1
		}
	}

	hm := make(map[int][]PricePoint, len(history))
	for id, points := range history {
		cp := make([]PricePoint, len(points))
		copy(cp, points)
		hm[id] = cp
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.vendors = vm
	s.activities = am
	s.history = hm
	s.nextVendor = nextVendor
	s.nextAct = nextAct
	return nil
}

// InsertVendor assigns an ID when the vendor does not carry one.
func (s *InMemoryCatalogStore) InsertVendor(v *Vendor) error {
	if v == nil {
		return fmt.Errorf("nil vendor")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if v.ID == 0 {
		v.ID = s.nextVendor
	}
	if _, exists := s.vendors[v.ID]; exists {
		return fmt.Errorf("vendor %d already exists", v.ID)
	}
	if v.ID >= s.nextVendor {
		s.nextVendor = v.ID + 1
	}
	s.vendors[v.ID] = *v
	return nil
}

func (s *InMemoryCatalogStore) UpdateVendor(v Vendor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.vendors[v.ID]; !exists {
		return fmt.Errorf("vendor %d: %w", v.ID, ErrNotFound)
	}
	s.vendors[v.ID] = v
	return nil
}

func (s *InMemoryCatalogStore) DeleteVendor(vendorID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.vendors[vendorID]; !exists {
		return fmt.Errorf("vendor %d: %w", vendorID, ErrNotFound)
	}
	delete(s.vendors, vendorID)
	delete(s.history, vendorID)
	return nil
}

// InsertActivity assigns an ID when the activity does not carry one.
func (s *InMemoryCatalogStore) InsertActivity(a *StoredActivity) error {
	if a == nil {
		return fmt.Errorf("nil activity")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == 0 {
		a.ID = s.nextAct
	}
	if _, exists := s.activities[a.ID]; exists {
		return fmt.Errorf("activity %d already exists", a.ID)
	}
	if a.ID >= s.nextAct {
		s.nextAct = a.ID + 1
	}
	s.activities[a.ID] = *a
	return nil
}

func (s *InMemoryCatalogStore) UpdateActivity(a StoredActivity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.activities[a.ID]; !exists {
		return fmt.Errorf("activity %d: %w", a.ID, ErrNotFound)
	}
	s.activities[a.ID] = a
	return nil
}

func (s *InMemoryCatalogStore) DeleteActivity(activityID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.activities[activityID]; !exists {
		return fmt.Errorf("activity %d: %w", activityID, ErrNotFound)
	}
	delete(s.activities, activityID)
	return nil
}
