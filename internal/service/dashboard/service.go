package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mamadbah2/harvestguard/internal/domain/models"
	"github.com/mamadbah2/harvestguard/internal/metrics"
	"github.com/mamadbah2/harvestguard/internal/repository/mongodb"
	"github.com/mamadbah2/harvestguard/internal/service/advisory"
	"github.com/mamadbah2/harvestguard/internal/service/presenter"
	"github.com/mamadbah2/harvestguard/internal/service/progression"
	"github.com/mamadbah2/harvestguard/internal/service/spoilage"
	"github.com/mamadbah2/harvestguard/pkg/clients/weather"
)

// LedgerMirror receives a copy of every recorded transaction.
type LedgerMirror interface {
	AppendTransaction(ctx context.Context, tx models.Transaction) error
}

// Alerter suppresses and delivers critical alerts.
type Alerter interface {
	StartSession(farmerID string) advisory.Session
	Observe(farmerID string, adv models.Advisory) *models.AlertEvent
	Deliver(ctx context.Context, event models.AlertEvent, farmer models.Farmer) error
}

// Service composes the farm store, the weather collaborator and the three
// evaluators into farmer-facing operations.
type Service struct {
	store     mongodb.Repository
	weather   weather.Client
	estimator *spoilage.Estimator
	alerts    Alerter
	mirror    LedgerMirror
	logger    *zap.Logger
	now       func() time.Time
}

// NewService wires the dashboard service. mirror may be nil.
func NewService(
	store mongodb.Repository,
	weatherClient weather.Client,
	estimator *spoilage.Estimator,
	alerts Alerter,
	mirror LedgerMirror,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:     store,
		weather:   weatherClient,
		estimator: estimator,
		alerts:    alerts,
		mirror:    mirror,
		logger:    logger.Named("svc.dashboard"),
		now:       time.Now,
	}
}

// Build assembles the farmer dashboard. Only a missing farmer fails the
// call; every other failure marks its widget unavailable.
func (s *Service) Build(ctx context.Context, farmerID, lang string) (Dashboard, error) {
	farmer, err := s.store.GetFarmer(ctx, farmerID)
	if err != nil {
		return Dashboard{}, err
	}
	if lang == "" {
		lang = farmer.Language
	}
	lang = presenter.Normalize(lang)

	var (
		snapshot     models.WeatherSnapshot
		transactions []models.Transaction
		batches      []models.CropBatch
		weatherErr   error
		ledgerErr    error
		batchesErr   error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		snapshot, weatherErr = s.weather.Current(gctx, farmer.LocationID)
		return nil
	})
	g.Go(func() error {
		transactions, ledgerErr = s.store.ListTransactions(gctx, farmerID)
		return nil
	})
	g.Go(func() error {
		batches, batchesErr = s.store.ListBatches(gctx, farmerID)
		return nil
	})
	_ = g.Wait()

	d := Dashboard{
		FarmerID:    farmerID,
		LocationID:  farmer.LocationID,
		Language:    lang,
		GeneratedAt: s.now().UTC(),
		Badges:      []BadgeView{},
	}

	if weatherErr != nil {
		s.logger.Warn("weather unavailable", zap.String("farmer_id", farmerID), zap.Error(weatherErr))
		d.Weather = failedWidget[models.WeatherSnapshot](weatherErr)
		d.Advisory = failedWidget[AdvisoryView](weatherErr)
	} else {
		d.Weather = okWidget(snapshot)
		d.Advisory, d.Alert = s.advise(ctx, farmer, snapshot, lang)
	}

	if ledgerErr != nil {
		s.logger.Warn("ledger unavailable", zap.String("farmer_id", farmerID), zap.Error(ledgerErr))
		d.Ledger = failedWidget[LedgerView](ledgerErr)
	} else {
		d.Ledger = okWidget(ledgerView(transactions, lang))
	}

	if batchesErr != nil {
		s.logger.Warn("batches unavailable", zap.String("farmer_id", farmerID), zap.Error(batchesErr))
		d.Batches = failedWidget[[]BatchView](batchesErr)
		return d, nil
	}

	conditions := s.batchWeather(ctx, batches, farmer.LocationID, weatherResult{snapshot: snapshot, err: weatherErr})
	views, estimates := s.estimateAll(batches, conditions)
	d.Batches = okWidget(views)
	for _, b := range progression.Badges(batches, estimates) {
		d.Badges = append(d.Badges, BadgeView{Badge: b, Label: presenter.Text(lang, string(b))})
	}

	return d, nil
}

type weatherResult struct {
	snapshot models.WeatherSnapshot
	err      error
}

// batchWeather resolves current weather for every district holding one of
// the batches. The home district reuses the snapshot already fetched and
// each other district is fetched once.
func (s *Service) batchWeather(ctx context.Context, batches []models.CropBatch, home string, homeResult weatherResult) map[string]weatherResult {
	byLocation := map[string]weatherResult{weather.NormalizeLocation(home): homeResult}

	var pending []string
	for _, b := range batches {
		loc := weather.NormalizeLocation(b.LocationID)
		if _, ok := byLocation[loc]; ok {
			continue
		}
		byLocation[loc] = weatherResult{}
		pending = append(pending, loc)
	}
	if len(pending) == 0 {
		return byLocation
	}

	results := make([]weatherResult, len(pending))
	g, gctx := errgroup.WithContext(ctx)
	for i, loc := range pending {
		i, loc := i, loc
		g.Go(func() error {
			snap, err := s.weather.Current(gctx, loc)
			results[i] = weatherResult{snapshot: snap, err: err}
			return nil
		})
	}
	_ = g.Wait()

	for i, loc := range pending {
		if results[i].err != nil {
			s.logger.Warn("batch district weather unavailable", zap.String("location_id", loc), zap.Error(results[i].err))
		}
		byLocation[loc] = results[i]
	}
	return byLocation
}

func (s *Service) advise(ctx context.Context, farmer models.Farmer, snapshot models.WeatherSnapshot, lang string) (Widget[AdvisoryView], *models.AlertEvent) {
	adv, err := advisory.Classify(snapshot)
	if err != nil {
		metrics.IncEvaluatorError("advisory", ErrorCode(err))
		return failedWidget[AdvisoryView](err), nil
	}
	metrics.IncAdvisory(string(adv.Level))

	event := s.observe(ctx, farmer, adv)
	return okWidget(AdvisoryView{Advisory: adv, Text: presenter.Advisory(lang, adv)}), event
}

func (s *Service) observe(ctx context.Context, farmer models.Farmer, adv models.Advisory) *models.AlertEvent {
	if s.alerts == nil {
		return nil
	}
	event := s.alerts.Observe(farmer.ID, adv)
	if event == nil {
		return nil
	}
	if err := s.alerts.Deliver(ctx, *event, farmer); err != nil {
		s.logger.Error("failed to deliver critical alert", zap.String("farmer_id", farmer.ID), zap.Error(err))
	}
	return event
}

func (s *Service) estimateAll(batches []models.CropBatch, conditions map[string]weatherResult) ([]BatchView, []models.LossEstimate) {
	views := make([]BatchView, 0, len(batches))
	var estimates []models.LossEstimate

	for _, b := range batches {
		view := BatchView{Batch: b}
		current := conditions[weather.NormalizeLocation(b.LocationID)]
		if current.err != nil {
			view.Estimate = failedWidget[models.LossEstimate](current.err)
			views = append(views, view)
			continue
		}

		est, err := s.estimator.Estimate(b, current.snapshot)
		if err != nil {
			metrics.IncEvaluatorError("spoilage", ErrorCode(err))
			s.logger.Warn("loss estimate failed", zap.String("batch_id", b.ID.String()), zap.Error(err))
			view.Estimate = failedWidget[models.LossEstimate](err)
		} else {
			metrics.IncLossEstimate(string(est.RiskLevel))
			view.Estimate = okWidget(est)
			estimates = append(estimates, est)
		}
		views = append(views, view)
	}
	return views, estimates
}

func ledgerView(transactions []models.Transaction, lang string) LedgerView {
	summary := progression.Summarize(transactions)
	tier := progression.TierOf(summary.NetProfit)
	return LedgerView{
		Summary:   summary,
		Tier:      tier,
		TierLabel: presenter.Text(lang, string(tier.Tier)),
	}
}

// UpsertFarmer registers or updates a farmer, keeping the original
// registration time.
func (s *Service) UpsertFarmer(ctx context.Context, farmer models.Farmer) (models.Farmer, error) {
	if farmer.ID == "" {
		return models.Farmer{}, fmt.Errorf("%w: farmer id is required", models.ErrInvalidInput)
	}
	farmer.LocationID = weather.NormalizeLocation(farmer.LocationID)
	if _, ok := weather.Districts[farmer.LocationID]; !ok && farmer.LocationID != "" {
		return models.Farmer{}, fmt.Errorf("%w: unsupported location %q", models.ErrInvalidInput, farmer.LocationID)
	}
	if err := farmer.Validate(); err != nil {
		return models.Farmer{}, err
	}

	farmer.CreatedAt = s.now().UTC()
	existing, err := s.store.GetFarmer(ctx, farmer.ID)
	switch {
	case err == nil:
		farmer.CreatedAt = existing.CreatedAt
	case !errors.Is(err, models.ErrNotFound):
		return models.Farmer{}, err
	}

	if err := s.store.UpsertFarmer(ctx, farmer); err != nil {
		return models.Farmer{}, err
	}
	return farmer, nil
}

// StartSession resets alert suppression for a known farmer.
func (s *Service) StartSession(ctx context.Context, farmerID string) (advisory.Session, error) {
	if _, err := s.store.GetFarmer(ctx, farmerID); err != nil {
		return advisory.Session{}, err
	}
	if s.alerts == nil {
		return advisory.NewSession(farmerID, s.now().UTC()), nil
	}
	return s.alerts.StartSession(farmerID), nil
}

// RecordTransaction validates and appends a ledger entry, then mirrors it.
func (s *Service) RecordTransaction(ctx context.Context, farmerID string, in TransactionInput) (models.Transaction, error) {
	if _, err := s.store.GetFarmer(ctx, farmerID); err != nil {
		return models.Transaction{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return models.Transaction{}, fmt.Errorf("generate transaction id: %w", err)
	}

	now := s.now().UTC()
	tx := models.Transaction{
		ID:        id,
		FarmerID:  farmerID,
		Date:      in.Date,
		Kind:      in.Kind,
		Category:  in.Category,
		Amount:    in.Amount,
		Label:     in.Label,
		CreatedAt: now,
	}
	if tx.Date.IsZero() {
		tx.Date = now
	}
	if err := tx.Validate(); err != nil {
		return models.Transaction{}, err
	}

	if err := s.store.AppendTransaction(ctx, tx); err != nil {
		return models.Transaction{}, err
	}

	if s.mirror != nil {
		if err := s.mirror.AppendTransaction(ctx, tx); err != nil {
			s.logger.Warn("ledger mirror failed", zap.String("transaction_id", tx.ID.String()), zap.Error(err))
		}
	}

	s.logger.Info("transaction recorded",
		zap.String("farmer_id", farmerID),
		zap.String("kind", string(tx.Kind)),
		zap.String("amount", tx.Amount.String()))
	return tx, nil
}

// RemoveTransaction deletes a ledger entry; totals are recomputed on read.
func (s *Service) RemoveTransaction(ctx context.Context, farmerID string, txID uuid.UUID) error {
	return s.store.RemoveTransaction(ctx, farmerID, txID)
}

// Summary recomputes a farmer's ledger summary and tier.
func (s *Service) Summary(ctx context.Context, farmerID, lang string) (LedgerView, error) {
	transactions, err := s.store.ListTransactions(ctx, farmerID)
	if err != nil {
		return LedgerView{}, err
	}
	return ledgerView(transactions, presenter.Normalize(lang)), nil
}

// RegisterBatch stores a crop batch after checking a shelf-life profile
// exists for it.
func (s *Service) RegisterBatch(ctx context.Context, farmerID string, in BatchInput) (models.CropBatch, error) {
	farmer, err := s.store.GetFarmer(ctx, farmerID)
	if err != nil {
		return models.CropBatch{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return models.CropBatch{}, fmt.Errorf("generate batch id: %w", err)
	}

	batch := models.CropBatch{
		ID:           id,
		FarmerID:     farmerID,
		CropType:     in.CropType,
		WeightKg:     in.WeightKg,
		StorageType:  in.StorageType,
		RegisteredAt: s.now().UTC(),
		LocationID:   weather.NormalizeLocation(in.LocationID),
	}
	if batch.LocationID == "" {
		batch.LocationID = farmer.LocationID
	}
	if _, ok := weather.Districts[batch.LocationID]; !ok {
		return models.CropBatch{}, fmt.Errorf("%w: unsupported location %q", models.ErrInvalidInput, batch.LocationID)
	}
	if err := batch.Validate(); err != nil {
		return models.CropBatch{}, err
	}
	if !s.estimator.HasProfile(batch.CropType, batch.StorageType) {
		return models.CropBatch{}, fmt.Errorf("register %s in %s: %w", batch.CropType, batch.StorageType, models.ErrUnknownProfile)
	}

	if err := s.store.RegisterBatch(ctx, batch); err != nil {
		return models.CropBatch{}, err
	}
	return batch, nil
}

// RegionalRisk estimates every batch stored in a district without exposing
// which farmer owns it.
func (s *Service) RegionalRisk(ctx context.Context, locationID string) (RegionalRisk, error) {
	locationID = weather.NormalizeLocation(locationID)
	if _, ok := weather.Districts[locationID]; !ok {
		return RegionalRisk{}, fmt.Errorf("%q: %w", locationID, weather.ErrUnknownLocation)
	}

	snapshot, err := s.weather.Current(ctx, locationID)
	if err != nil {
		return RegionalRisk{}, err
	}
	adv, err := advisory.Classify(snapshot)
	if err != nil {
		return RegionalRisk{}, err
	}

	batches, err := s.store.ListBatchesByLocation(ctx, locationID)
	if err != nil {
		return RegionalRisk{}, err
	}

	out := RegionalRisk{LocationID: locationID, AdvisoryLevel: adv.Level, Pins: []RiskPin{}}
	for _, b := range batches {
		est, err := s.estimator.Estimate(b, snapshot)
		if err != nil {
			out.Skipped++
			continue
		}
		out.Pins = append(out.Pins, RiskPin{
			CropType:            b.CropType,
			StorageType:         b.StorageType,
			RiskLevel:           est.RiskLevel,
			HoursToCriticalLoss: est.HoursToCriticalLoss,
		})
	}
	return out, nil
}

// PollAlerts classifies current weather for every farmer and delivers
// critical alerts. Weather is fetched once per district.
func (s *Service) PollAlerts(ctx context.Context) (int, error) {
	farmers, err := s.store.ListFarmers(ctx)
	if err != nil {
		return 0, err
	}

	type outcome struct {
		adv models.Advisory
		err error
	}
	byLocation := make(map[string]outcome)
	alerted := 0

	for _, farmer := range farmers {
		if ctx.Err() != nil {
			return alerted, ctx.Err()
		}

		res, ok := byLocation[farmer.LocationID]
		if !ok {
			snapshot, err := s.weather.Current(ctx, farmer.LocationID)
			if err == nil {
				res.adv, res.err = advisory.Classify(snapshot)
			} else {
				res.err = err
			}
			if res.err == nil {
				metrics.IncAdvisory(string(res.adv.Level))
			} else {
				metrics.IncEvaluatorError("advisory", ErrorCode(res.err))
			}
			byLocation[farmer.LocationID] = res
		}
		if res.err != nil {
			s.logger.Warn("skipping farmer without advisory",
				zap.String("farmer_id", farmer.ID),
				zap.String("location_id", farmer.LocationID),
				zap.Error(res.err))
			continue
		}

		if s.observe(ctx, farmer, res.adv) != nil {
			alerted++
		}
	}
	return alerted, nil
}

// CurrentAdvisory classifies the latest weather for the farmer's district.
func (s *Service) CurrentAdvisory(ctx context.Context, farmer models.Farmer) (models.Advisory, error) {
	snapshot, err := s.weather.Current(ctx, farmer.LocationID)
	if err != nil {
		return models.Advisory{}, err
	}
	adv, err := advisory.Classify(snapshot)
	if err != nil {
		metrics.IncEvaluatorError("advisory", ErrorCode(err))
		return models.Advisory{}, err
	}
	metrics.IncAdvisory(string(adv.Level))
	s.observe(ctx, farmer, adv)
	return adv, nil
}
