package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/harvestguard/internal/domain/models"
	"github.com/mamadbah2/harvestguard/internal/service/dashboard"
	"github.com/mamadbah2/harvestguard/internal/service/progression"
)

type stubFarms struct {
	recorded []dashboard.TransactionInput
	net      decimal.Decimal
	adv      models.Advisory
	err      error
}

func (s *stubFarms) RecordTransaction(_ context.Context, farmerID string, in dashboard.TransactionInput) (models.Transaction, error) {
	if s.err != nil {
		return models.Transaction{}, s.err
	}
	s.recorded = append(s.recorded, in)
	if in.Kind == models.KindIncome {
		s.net = s.net.Add(in.Amount)
	} else {
		s.net = s.net.Sub(in.Amount)
	}
	return models.Transaction{ID: uuid.New(), FarmerID: farmerID, Kind: in.Kind, Category: in.Category, Amount: in.Amount}, nil
}

func (s *stubFarms) Summary(context.Context, string, string) (dashboard.LedgerView, error) {
	return dashboard.LedgerView{
		Summary: models.LedgerSummary{NetProfit: s.net, TotalIncome: s.net},
		Tier:    progression.TierOf(s.net),
	}, nil
}

func (s *stubFarms) CurrentAdvisory(context.Context, models.Farmer) (models.Advisory, error) {
	return s.adv, s.err
}

var rahim = models.Farmer{ID: "f-1", Phone: "8801712345678", LocationID: "dhaka", Language: "en"}

func TestHandleCommand_Income(t *testing.T) {
	farms := &stubFarms{}
	svc := NewService(farms, nil)

	reply, err := svc.HandleCommand(context.Background(), models.ParseCommand("/income 12,500 harvest paddy sale"), rahim)
	require.NoError(t, err)

	require.Len(t, farms.recorded, 1)
	in := farms.recorded[0]
	assert.Equal(t, models.KindIncome, in.Kind)
	assert.Equal(t, models.CategoryHarvest, in.Category)
	assert.True(t, in.Amount.Equal(decimal.NewFromInt(12500)))
	assert.Equal(t, "paddy sale", in.Label)
	assert.Equal(t, "Income saved: 12500.00 (harvest)\nNet profit: 12500.00", reply)
}

func TestHandleCommand_CategoryIsCaseInsensitive(t *testing.T) {
	farms := &stubFarms{}
	svc := NewService(farms, nil)

	reply, err := svc.HandleCommand(context.Background(), models.ParseCommand("INCOME 500 Harvest Boro Paddy"), rahim)
	require.NoError(t, err)

	require.Len(t, farms.recorded, 1)
	assert.Equal(t, models.CategoryHarvest, farms.recorded[0].Category)
	assert.Equal(t, "Boro Paddy", farms.recorded[0].Label)
	assert.Equal(t, "Income saved: 500.00 (harvest)\nNet profit: 500.00", reply)
}

func TestHandleCommand_Expense(t *testing.T) {
	farms := &stubFarms{net: decimal.NewFromInt(1000)}
	svc := NewService(farms, nil)

	reply, err := svc.HandleCommand(context.Background(), models.ParseCommand("expense 250.5 seeds"), rahim)
	require.NoError(t, err)
	assert.Equal(t, "Expense saved: 250.50 (seeds)\nNet profit: 749.50", reply)
}

func TestHandleCommand_InvalidArguments(t *testing.T) {
	svc := NewService(&stubFarms{}, nil)

	for _, text := range []string{"income", "income 100", "expense lots seeds"} {
		_, err := svc.HandleCommand(context.Background(), models.ParseCommand(text), rahim)
		assert.ErrorIs(t, err, ErrInvalidArguments, text)
	}
}

func TestHandleCommand_Balance(t *testing.T) {
	svc := NewService(&stubFarms{net: decimal.NewFromInt(100000)}, nil)

	reply, err := svc.HandleCommand(context.Background(), models.ParseCommand("balance"), rahim)
	require.NoError(t, err)
	assert.Contains(t, reply, "Ledger balance")
	assert.Contains(t, reply, "Platinum (top tier reached)")
}

func TestHandleCommand_Advisory(t *testing.T) {
	farms := &stubFarms{adv: models.Advisory{
		Level:          models.LevelWarning,
		MessageKey:     models.MessageHeatIrrigate,
		NumericContext: models.NumericContext{Metric: "temperature_c", Value: 37},
	}}
	svc := NewService(farms, nil)

	reply, err := svc.HandleCommand(context.Background(), models.ParseCommand("advisory"), rahim)
	require.NoError(t, err)
	assert.Equal(t, "Advisory: Temp rising to 37°C. Irrigate in the afternoon.", reply)

	farms.err = errors.New("weather down")
	_, err = svc.HandleCommand(context.Background(), models.ParseCommand("advisory"), rahim)
	assert.Error(t, err)
}

func TestHandleCommand_UnknownGetsHelp(t *testing.T) {
	svc := NewService(&stubFarms{}, nil)

	reply, err := svc.HandleCommand(context.Background(), models.ParseCommand("hello"), rahim)
	require.NoError(t, err)
	assert.Equal(t, HelpText("en"), reply)

	bn := rahim
	bn.Language = "bn"
	reply, err = svc.HandleCommand(context.Background(), models.ParseCommand("hello"), bn)
	require.NoError(t, err)
	assert.Equal(t, HelpText("bn"), reply)
	assert.NotEqual(t, HelpText("en"), reply)
}
