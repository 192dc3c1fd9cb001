package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"sop-platform/tenant-svc/internal/domain"
)

// Document is the persisted shape of the memory store. Field names match the
// seed fixtures of the dashboard so existing data loads unchanged.
type Document struct {
	Restaurants      []domain.Restaurant      `json:"restaurants"`
	Categories       []domain.Category        `json:"categories"`
	Dishes           []domain.Dish            `json:"dishes"`
	Orders           []domain.Order           `json:"orders"`
	Reservations     []domain.Reservation     `json:"reservations"`
	Ratings          []domain.Rating          `json:"ratings"`
	PlatformSettings *domain.PlatformSettings `json:"platformSettings,omitempty"`
}

// LoadFile builds a memory store from a JSON document on disk.
func LoadFile(path string) (*MemoryStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

func Load(r io.Reader) (*MemoryStore, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	s := NewMemoryStore()
	if err := s.Import(doc); err != nil {
		return nil, err
	}
	return s, nil
}

// Import adds every record of doc, keeping its ids. Children must reference a
// restaurant of the document.
func (s *MemoryStore) Import(doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rest := range doc.Restaurants {
		if _, dup := s.partitions[rest.ID]; dup {
			return fmt.Errorf("%w: duplicate restaurant %d", domain.ErrConflict, rest.ID)
		}
		if _, dup := s.slugs[rest.Slug]; dup {
			return fmt.Errorf("%w: duplicate slug %q", domain.ErrConflict, rest.Slug)
		}
		if rest.Status == "" {
			rest.Status = domain.RestaurantActive
		}
		s.partitions[rest.ID] = newPartition(cloneRestaurant(rest))
		s.slugs[rest.Slug] = rest.ID
		s.observeID(rest.ID)
	}

	owner := func(kind string, id, restaurantID int) (*partition, error) {
		p, ok := s.partitions[restaurantID]
		if !ok {
			return nil, fmt.Errorf("%w: %s %d references restaurant %d", domain.ErrInvalidReference, kind, id, restaurantID)
		}
		s.observeID(id)
		return p, nil
	}

	for _, c := range doc.Categories {
		p, err := owner("category", c.ID, c.RestaurantID)
		if err != nil {
			return err
		}
		p.categories[c.ID] = c
	}
	for _, d := range doc.Dishes {
		p, err := owner("dish", d.ID, d.RestaurantID)
		if err != nil {
			return err
		}
		if _, ok := p.categories[d.CategoryID]; !ok {
			return fmt.Errorf("%w: dish %d references category %d", domain.ErrInvalidReference, d.ID, d.CategoryID)
		}
		p.dishes[d.ID] = cloneDish(d)
	}
	for _, o := range doc.Orders {
		p, err := owner("order", o.ID, o.RestaurantID)
		if err != nil {
			return err
		}
		if n, ok := orderSequence(o.OrderNumber); ok && n > p.orderSeq {
			p.orderSeq = n
		}
		p.orders[o.ID] = cloneOrder(o)
	}
	for _, r := range doc.Reservations {
		p, err := owner("reservation", r.ID, r.RestaurantID)
		if err != nil {
			return err
		}
		p.reservations[r.ID] = r
	}
	for _, r := range doc.Ratings {
		p, err := owner("rating", r.ID, r.RestaurantID)
		if err != nil {
			return err
		}
		p.ratings[r.ID] = cloneRating(r)
	}

	if doc.PlatformSettings != nil {
		s.settingsMu.Lock()
		s.settings = *doc.PlatformSettings
		s.settingsMu.Unlock()
	}
	return nil
}

// Snapshot copies the whole store. Each tenant is read under its own lock.
func (s *MemoryStore) Snapshot() Document {
	s.mu.RLock()
	ids := make([]int, 0, len(s.partitions))
	for id := range s.partitions {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	parts := make([]*partition, len(ids))
	for i, id := range ids {
		parts[i] = s.partitions[id]
	}
	s.mu.RUnlock()

	doc := Document{
		Restaurants:  []domain.Restaurant{},
		Categories:   []domain.Category{},
		Dishes:       []domain.Dish{},
		Orders:       []domain.Order{},
		Reservations: []domain.Reservation{},
		Ratings:      []domain.Rating{},
	}
	for _, p := range parts {
		p.mu.RLock()
		if p.deleted {
			p.mu.RUnlock()
			continue
		}
		doc.Restaurants = append(doc.Restaurants, cloneRestaurant(p.restaurant))
		for _, c := range p.categories {
			doc.Categories = append(doc.Categories, c)
		}
		for _, d := range p.dishes {
			doc.Dishes = append(doc.Dishes, cloneDish(d))
		}
		for _, o := range p.orders {
			doc.Orders = append(doc.Orders, cloneOrder(o))
		}
		for _, r := range p.reservations {
			doc.Reservations = append(doc.Reservations, r)
		}
		for _, r := range p.ratings {
			doc.Ratings = append(doc.Ratings, cloneRating(r))
		}
		p.mu.RUnlock()
	}
	sort.Slice(doc.Categories, func(i, j int) bool { return doc.Categories[i].ID < doc.Categories[j].ID })
	sort.Slice(doc.Dishes, func(i, j int) bool { return doc.Dishes[i].ID < doc.Dishes[j].ID })
	sort.Slice(doc.Orders, func(i, j int) bool { return doc.Orders[i].ID < doc.Orders[j].ID })
	sort.Slice(doc.Reservations, func(i, j int) bool { return doc.Reservations[i].ID < doc.Reservations[j].ID })
	sort.Slice(doc.Ratings, func(i, j int) bool { return doc.Ratings[i].ID < doc.Ratings[j].ID })

	s.settingsMu.RLock()
	settings := s.settings
	s.settingsMu.RUnlock()
	doc.PlatformSettings = &settings
	return doc
}

// Save writes the snapshot as indented JSON.
func (s *MemoryStore) Save(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s.Snapshot())
}

// SaveFile writes the snapshot to path through a temporary file.
func (s *MemoryStore) SaveFile(path string) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := s.Save(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
