package reporting

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/harvestguard/internal/domain/models"
	"github.com/mamadbah2/harvestguard/internal/repository/mongodb"
	"github.com/mamadbah2/harvestguard/internal/service/advisory"
	"github.com/mamadbah2/harvestguard/internal/service/presenter"
	"github.com/mamadbah2/harvestguard/internal/service/progression"
	"github.com/mamadbah2/harvestguard/pkg/clients/weather"
	client "github.com/mamadbah2/harvestguard/pkg/clients/whatsapp"
)

const (
	dateLayout  = "2006-01-02"
	sendTimeout = 10 * time.Second
)

// SummaryMirror receives one row per weekly report.
type SummaryMirror interface {
	AppendSummary(ctx context.Context, farmerID string, at time.Time, summary models.LedgerSummary, tier models.Tier) error
}

// Service produces the weekly WhatsApp ledger report and the daily farm
// snapshot.
type Service struct {
	store   mongodb.Repository
	weather weather.Client
	sender  client.Client
	mirror  SummaryMirror
	loc     *time.Location
	logger  *zap.Logger
	now     func() time.Time
}

// NewService wires a new reporting service instance. mirror may be nil.
func NewService(
	store mongodb.Repository,
	weatherClient weather.Client,
	sender client.Client,
	mirror SummaryMirror,
	loc *time.Location,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		store:   store,
		weather: weatherClient,
		sender:  sender,
		mirror:  mirror,
		loc:     loc,
		logger:  logger.Named("svc.reporting"),
		now:     time.Now,
	}
}

// WeeklyReport renders one farmer's report: the balance since registration
// and the net result of the current week.
func (s *Service) WeeklyReport(ctx context.Context, farmer models.Farmer) (string, models.LedgerSummary, models.TierStatus, error) {
	transactions, err := s.store.ListTransactions(ctx, farmer.ID)
	if err != nil {
		return "", models.LedgerSummary{}, models.TierStatus{}, fmt.Errorf("load ledger for %s: %w", farmer.ID, err)
	}

	now := s.now().In(s.loc)
	start := mondayStart(now)

	summary := progression.Summarize(transactions)
	tier := progression.TierOf(summary.NetProfit)
	week := progression.Summarize(between(transactions, start, now))

	lang := presenter.Normalize(farmer.Language)
	title := fmt.Sprintf("%s %s / %s", presenter.Text(lang, "weekly_report"), start.Format(dateLayout), now.Format(dateLayout))
	body := presenter.Ledger(lang, title, summary, tier)
	body += fmt.Sprintf("\n%s (%d): %s", presenter.Text(lang, "net_profit"), week.Entries, week.NetProfit.StringFixed(2))

	return body, summary, tier, nil
}

// SendWeeklyReports messages every farmer and mirrors the summaries.
// Failures are logged per farmer; the count of delivered reports is returned.
func (s *Service) SendWeeklyReports(ctx context.Context) (int, error) {
	farmers, err := s.store.ListFarmers(ctx)
	if err != nil {
		return 0, fmt.Errorf("list farmers: %w", err)
	}

	sent := 0
	for _, farmer := range farmers {
		body, summary, tier, err := s.WeeklyReport(ctx, farmer)
		if err != nil {
			s.logger.Error("weekly report failed", zap.String("farmer_id", farmer.ID), zap.Error(err))
			continue
		}

		if s.mirror != nil {
			if err := s.mirror.AppendSummary(ctx, farmer.ID, s.now().In(s.loc), summary, tier.Tier); err != nil {
				s.logger.Warn("summary mirror failed", zap.String("farmer_id", farmer.ID), zap.Error(err))
			}
		}

		if err := s.send(ctx, farmer, body); err != nil {
			s.logger.Error("weekly report delivery failed", zap.String("farmer_id", farmer.ID), zap.Error(err))
			continue
		}
		sent++
	}

	s.logger.Info("weekly reports sent", zap.Int("sent", sent), zap.Int("farmers", len(farmers)))
	return sent, nil
}

func (s *Service) send(ctx context.Context, farmer models.Farmer, body string) error {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	_, err := s.sender.SendTextMessage(ctx, client.SendTextMessageRequest{
		To:   client.NormalizePhone(farmer.Phone),
		Body: body,
	})
	return err
}

// SaveDailySnapshots persists one FarmSnapshot per farmer. The advisory
// level is omitted when weather is unavailable.
func (s *Service) SaveDailySnapshots(ctx context.Context) (int, error) {
	farmers, err := s.store.ListFarmers(ctx)
	if err != nil {
		return 0, fmt.Errorf("list farmers: %w", err)
	}

	now := s.now().In(s.loc)
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	levels := make(map[string]models.AdvisoryLevel)

	saved := 0
	for _, farmer := range farmers {
		snapshot, err := s.snapshot(ctx, farmer, day, levels)
		if err != nil {
			s.logger.Error("snapshot failed", zap.String("farmer_id", farmer.ID), zap.Error(err))
			continue
		}
		if err := s.store.SaveFarmSnapshot(ctx, snapshot); err != nil {
			s.logger.Error("snapshot save failed", zap.String("farmer_id", farmer.ID), zap.Error(err))
			continue
		}
		saved++
	}
	return saved, nil
}

func (s *Service) snapshot(ctx context.Context, farmer models.Farmer, day time.Time, levels map[string]models.AdvisoryLevel) (models.FarmSnapshot, error) {
	transactions, err := s.store.ListTransactions(ctx, farmer.ID)
	if err != nil {
		return models.FarmSnapshot{}, err
	}
	batches, err := s.store.ListBatches(ctx, farmer.ID)
	if err != nil {
		return models.FarmSnapshot{}, err
	}

	summary := progression.Summarize(transactions)
	return models.FarmSnapshot{
		FarmerID:      farmer.ID,
		Date:          day,
		TotalIncome:   summary.TotalIncome.StringFixed(2),
		TotalExpense:  summary.TotalExpense.StringFixed(2),
		NetProfit:     summary.NetProfit.StringFixed(2),
		Tier:          progression.TierOf(summary.NetProfit).Tier,
		AdvisoryLevel: s.levelFor(ctx, farmer.LocationID, levels),
		ActiveBatches: len(batches),
		CreatedAt:     s.now().UTC(),
	}, nil
}

func (s *Service) levelFor(ctx context.Context, locationID string, cache map[string]models.AdvisoryLevel) models.AdvisoryLevel {
	if level, ok := cache[locationID]; ok {
		return level
	}

	var level models.AdvisoryLevel
	snapshot, err := s.weather.Current(ctx, locationID)
	if err == nil {
		if adv, err := advisory.Classify(snapshot); err == nil {
			level = adv.Level
		}
	}
	if err != nil {
		s.logger.Debug("snapshot without advisory", zap.String("location_id", locationID), zap.Error(err))
	}
	cache[locationID] = level
	return level
}

func between(transactions []models.Transaction, start, end time.Time) []models.Transaction {
	var out []models.Transaction
	for _, tx := range transactions {
		if tx.Date.Before(start) || tx.Date.After(end) {
			continue
		}
		out = append(out, tx)
	}
	return out
}

func mondayStart(t time.Time) time.Time {
	daysSinceMonday := (int(t.Weekday()) + 6) % 7
	start := t.AddDate(0, 0, -daysSinceMonday)
	return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, t.Location())
}
