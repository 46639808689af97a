package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/healthcare-bi/backend/internal/models"
)

type finishedRun struct {
	kind    string
	status  string
	summary []byte
}

type fakeStore struct {
	mu       sync.Mutex
	runs     map[string]*finishedRun
	upserts  [][]models.MaintenanceOrder
	saved    map[string]models.MaintenanceOrder
	pairs    []models.CompanyPair
	failWhen func(batch []models.MaintenanceOrder) bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{runs: map[string]*finishedRun{}, saved: map[string]models.MaintenanceOrder{}}
}

func (f *fakeStore) CreateRun(ctx context.Context, kind string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := fmt.Sprintf("run-%d", len(f.runs)+1)
	f.runs[id] = &finishedRun{kind: kind}
	return id, nil
}

func (f *fakeStore) FinishRun(ctx context.Context, runID string, status string, summary []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.runs[runID]
	if !ok {
		return errors.New("unknown run")
	}
	r.status = status
	r.summary = summary
	return nil
}

func (f *fakeStore) UpsertOrders(ctx context.Context, dataset models.Dataset, orders []models.MaintenanceOrder) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	batch := append([]models.MaintenanceOrder(nil), orders...)
	f.upserts = append(f.upserts, batch)
	if f.failWhen != nil && f.failWhen(batch) {
		return 0, errors.New("constraint violation")
	}
	for _, o := range batch {
		f.saved[o.OS] = o
	}
	return int64(len(batch)), nil
}

func (f *fakeStore) DistinctCompanyPairs(ctx context.Context, dataset models.Dataset) ([]models.CompanyPair, error) {
	return f.pairs, nil
}

func (f *fakeStore) onlyRun() *finishedRun {
	for _, r := range f.runs {
		return r
	}
	return nil
}

type fakeCompanies struct {
	mu        sync.Mutex
	companies []models.Company
}

func (f *fakeCompanies) ListActiveCompanies(ctx context.Context) ([]models.Company, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Company(nil), f.companies...), nil
}

func (f *fakeCompanies) FindCompanyByAcronym(ctx context.Context, acronym string) (*models.Company, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.companies {
		if strings.EqualFold(c.Acronym, acronym) {
			c := c
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeCompanies) InsertCompany(ctx context.Context, name, acronym string) (models.Company, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := models.Company{ID: fmt.Sprintf("co-%d", len(f.companies)+1), Name: name, Acronym: acronym, IsActive: true}
	f.companies = append(f.companies, c)
	return c, nil
}

func (f *fakeCompanies) UpdateCompanyName(ctx context.Context, id, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.companies {
		if f.companies[i].ID == id {
			f.companies[i].Name = name
			return nil
		}
	}
	return errors.New("not found")
}

type fakeSource struct {
	orders       []models.MaintenanceOrder
	equipment    []models.Equipment
	ordersErr    error
	equipmentErr error
	from, to     time.Time
}

func (f *fakeSource) FetchOrders(ctx context.Context, from, to time.Time) ([]models.MaintenanceOrder, error) {
	f.from, f.to = from, to
	return f.orders, f.ordersErr
}

func (f *fakeSource) FetchEquipment(ctx context.Context) ([]models.Equipment, error) {
	return f.equipment, f.equipmentErr
}
