package identity

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/healthcare-bi/backend/internal/models"
)

// Cache mirrors the active companies of the store in two case-insensitive
// lookup tables, one by acronym and one by name. It is filled by Refresh and
// written through by the resolver whenever it creates or discovers a company.
type Cache struct {
	mu        sync.RWMutex
	companies map[string]models.Company
	byAcronym map[string]string
	byName    map[string]string
	loadedAt  time.Time
}

func NewCache() *Cache {
	c := &Cache{}
	c.reset()
	return c
}

func (c *Cache) reset() {
	c.companies = map[string]models.Company{}
	c.byAcronym = map[string]string{}
	c.byName = map[string]string{}
	c.loadedAt = time.Time{}
}

// Refresh replaces the cache content with a snapshot of the active companies.
// On error the previous content is kept.
func (c *Cache) Refresh(ctx context.Context, store Store) error {
	companies, err := store.ListActiveCompanies(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
	for _, company := range companies {
		c.put(company)
	}
	c.loadedAt = time.Now().UTC()
	return nil
}

// Invalidate drops every entry; the next Refresh reloads from the store.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}

func (c *Cache) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt
}

// Lookup checks the acronym table first, then the name table.
func (c *Cache) Lookup(label string) (string, bool) {
	key := normalizeKey(label)
	if key == "" {
		return "", false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if id, ok := c.byAcronym[key]; ok {
		return id, true
	}
	id, ok := c.byName[key]
	return id, ok
}

func (c *Cache) LookupName(name string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.byName[normalizeKey(name)]
	return id, ok
}

// ByAcronym returns the cached company registered under acronym.
func (c *Cache) ByAcronym(acronym string) (models.Company, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.byAcronym[normalizeKey(acronym)]
	if !ok {
		return models.Company{}, false
	}
	company, ok := c.companies[id]
	return company, ok
}

func (c *Cache) Put(company models.Company) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.put(company)
}

// Alias maps an extra name to an existing company id.
func (c *Cache) Alias(name, id string) {
	key := normalizeKey(name)
	if key == "" || id == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.byName[key]; !exists {
		c.byName[key] = id
	}
}

// Rename records a canonical name change made in the store.
func (c *Cache) Rename(id, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	company, ok := c.companies[id]
	if !ok {
		return
	}
	if old := normalizeKey(company.Name); c.byName[old] == id {
		delete(c.byName, old)
	}
	company.Name = name
	c.put(company)
}

func (c *Cache) Len() (names int, acronyms int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byName), len(c.byAcronym)
}

func (c *Cache) put(company models.Company) {
	c.companies[company.ID] = company
	if key := normalizeKey(company.Name); key != "" {
		c.byName[key] = company.ID
	}
	if key := normalizeKey(company.Acronym); key != "" {
		c.byAcronym[key] = company.ID
	}
}

func normalizeKey(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
