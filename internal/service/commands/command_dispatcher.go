package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/harvestguard/internal/domain/models"
	"github.com/mamadbah2/harvestguard/internal/service/dashboard"
	"github.com/mamadbah2/harvestguard/internal/service/presenter"
)

// ErrInvalidArguments indicates the command payload could not be parsed.
var ErrInvalidArguments = errors.New("invalid command arguments")

// FarmService is the subset of the dashboard service commands rely on.
type FarmService interface {
	RecordTransaction(ctx context.Context, farmerID string, in dashboard.TransactionInput) (models.Transaction, error)
	Summary(ctx context.Context, farmerID, lang string) (dashboard.LedgerView, error)
	CurrentAdvisory(ctx context.Context, farmer models.Farmer) (models.Advisory, error)
}

// Dispatcher executes a parsed command for a registered farmer and returns
// the reply text.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command, farmer models.Farmer) (string, error)
}

// Service implements Dispatcher.
type Service struct {
	farms  FarmService
	logger *zap.Logger
}

// NewService constructs a command dispatcher.
func NewService(farms FarmService, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{farms: farms, logger: logger.Named("svc.commands")}
}

// HandleCommand runs the command. Unknown commands get the help text.
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command, farmer models.Farmer) (string, error) {
	lang := presenter.Normalize(farmer.Language)

	s.logger.Debug("dispatching command",
		zap.String("command", string(cmd.Type)),
		zap.String("farmer_id", farmer.ID),
		zap.Strings("args", cmd.Args))

	switch cmd.Type {
	case models.CommandIncome:
		return s.record(ctx, farmer, lang, models.KindIncome, cmd.Args)
	case models.CommandExpense:
		return s.record(ctx, farmer, lang, models.KindExpense, cmd.Args)
	case models.CommandBalance:
		view, err := s.farms.Summary(ctx, farmer.ID, lang)
		if err != nil {
			return "", err
		}
		return presenter.Ledger(lang, presenter.Text(lang, "balance_title"), view.Summary, view.Tier), nil
	case models.CommandAdvisory:
		adv, err := s.farms.CurrentAdvisory(ctx, farmer)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s: %s", presenter.Text(lang, "advisory_title"), presenter.Advisory(lang, adv)), nil
	default:
		return HelpText(lang), nil
	}
}

// HelpText lists the supported commands.
func HelpText(lang string) string {
	return presenter.Text(lang, "command_help")
}

func (s *Service) record(ctx context.Context, farmer models.Farmer, lang string, kind models.TransactionKind, args []string) (string, error) {
	in, err := buildTransaction(kind, args)
	if err != nil {
		return "", err
	}

	tx, err := s.farms.RecordTransaction(ctx, farmer.ID, in)
	if err != nil {
		return "", err
	}

	key := "income_saved"
	if kind == models.KindExpense {
		key = "expense_saved"
	}
	reply := fmt.Sprintf("%s: %s (%s)", presenter.Text(lang, key), tx.Amount.StringFixed(2), tx.Category)

	view, err := s.farms.Summary(ctx, farmer.ID, lang)
	if err != nil {
		s.logger.Debug("summary after record failed", zap.Error(err))
		return reply, nil
	}
	return reply + "\n" + fmt.Sprintf("%s: %s", presenter.Text(lang, "net_profit"), view.Summary.NetProfit.StringFixed(2)), nil
}

// buildTransaction parses "<amount> <category> [label...]".
func buildTransaction(kind models.TransactionKind, args []string) (dashboard.TransactionInput, error) {
	if len(args) < 2 {
		return dashboard.TransactionInput{}, ErrInvalidArguments
	}

	amount, err := decimal.NewFromString(strings.ReplaceAll(args[0], ",", ""))
	if err != nil {
		return dashboard.TransactionInput{}, fmt.Errorf("%w: amount %q", ErrInvalidArguments, args[0])
	}

	return dashboard.TransactionInput{
		Kind:     kind,
		Category: models.Category(strings.ToLower(args[1])),
		Amount:   amount,
		Label:    strings.Join(args[2:], " "),
	}, nil
}
