package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mamadbah2/harvestguard/internal/domain/models"
	"github.com/mamadbah2/harvestguard/internal/service/advisory"
	"github.com/mamadbah2/harvestguard/pkg/clients/weather"
)

type memoryStore struct {
	mu           sync.Mutex
	farmers      map[string]models.Farmer
	transactions []models.Transaction
	batches      []models.CropBatch
	snapshots    []models.FarmSnapshot
	listTxErr    error
}

func newMemoryStore(farmers ...models.Farmer) *memoryStore {
	s := &memoryStore{farmers: make(map[string]models.Farmer)}
	for _, f := range farmers {
		s.farmers[f.ID] = f
	}
	return s
}

func (s *memoryStore) UpsertFarmer(_ context.Context, farmer models.Farmer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.farmers[farmer.ID] = farmer
	return nil
}

func (s *memoryStore) GetFarmer(_ context.Context, farmerID string) (models.Farmer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.farmers[farmerID]
	if !ok {
		return models.Farmer{}, fmt.Errorf("farmer: %w", models.ErrNotFound)
	}
	return f, nil
}

func (s *memoryStore) FindFarmerByPhone(_ context.Context, phone string) (models.Farmer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.farmers {
		if f.Phone == phone {
			return f, nil
		}
	}
	return models.Farmer{}, fmt.Errorf("farmer: %w", models.ErrNotFound)
}

func (s *memoryStore) ListFarmers(context.Context) ([]models.Farmer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Farmer, 0, len(s.farmers))
	for _, f := range s.farmers {
		out = append(out, f)
	}
	return out, nil
}

func (s *memoryStore) AppendTransaction(_ context.Context, tx models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = append(s.transactions, tx)
	return nil
}

func (s *memoryStore) RemoveTransaction(_ context.Context, farmerID string, txID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, tx := range s.transactions {
		if tx.ID == txID && tx.FarmerID == farmerID {
			s.transactions = append(s.transactions[:i], s.transactions[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("transaction %s: %w", txID, models.ErrNotFound)
}

func (s *memoryStore) ListTransactions(_ context.Context, farmerID string) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listTxErr != nil {
		return nil, s.listTxErr
	}
	var out []models.Transaction
	for _, tx := range s.transactions {
		if tx.FarmerID == farmerID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (s *memoryStore) RegisterBatch(_ context.Context, batch models.CropBatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, batch)
	return nil
}

func (s *memoryStore) ListBatches(_ context.Context, farmerID string) ([]models.CropBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.CropBatch
	for _, b := range s.batches {
		if b.FarmerID == farmerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *memoryStore) ListBatchesByLocation(_ context.Context, locationID string) ([]models.CropBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.CropBatch
	for _, b := range s.batches {
		if b.LocationID == locationID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *memoryStore) SaveFarmSnapshot(_ context.Context, snapshot models.FarmSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = append(s.snapshots, snapshot)
	return nil
}

type stubWeather struct {
	mu        sync.Mutex
	snapshots map[string]models.WeatherSnapshot
	err       error
	calls     int
}

func (w *stubWeather) Current(_ context.Context, locationID string) (models.WeatherSnapshot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls++
	if w.err != nil {
		return models.WeatherSnapshot{}, w.err
	}
	snap, ok := w.snapshots[locationID]
	if !ok {
		return models.WeatherSnapshot{}, fmt.Errorf("%q: %w", locationID, weather.ErrUnknownLocation)
	}
	return snap, nil
}

type recordingAlerter struct {
	mu        sync.Mutex
	last      map[string]models.AdvisoryLevel
	delivered []models.AlertEvent
	deliverTo []string
	failWith  error
}

func newRecordingAlerter() *recordingAlerter {
	return &recordingAlerter{last: make(map[string]models.AdvisoryLevel)}
}

func (a *recordingAlerter) StartSession(farmerID string) advisory.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.last, farmerID)
	return advisory.NewSession(farmerID, time.Time{})
}

func (a *recordingAlerter) Observe(farmerID string, adv models.Advisory) *models.AlertEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	sess := advisory.Session{FarmerID: farmerID, LastLevel: a.last[farmerID]}
	next, ev := advisory.Decide(sess, adv, time.Time{})
	a.last[farmerID] = next.LastLevel
	return ev
}

func (a *recordingAlerter) Deliver(_ context.Context, ev models.AlertEvent, farmer models.Farmer) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.failWith != nil {
		return a.failWith
	}
	a.delivered = append(a.delivered, ev)
	a.deliverTo = append(a.deliverTo, farmer.Phone)
	return nil
}

type recordingMirror struct {
	rows []models.Transaction
	err  error
}

func (m *recordingMirror) AppendTransaction(_ context.Context, tx models.Transaction) error {
	if m.err != nil {
		return m.err
	}
	m.rows = append(m.rows, tx)
	return nil
}

var errStoreDown = errors.New("store down")
