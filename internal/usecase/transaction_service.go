package usecase

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	natsadapter "github.com/example/profile-service/internal/adapters/nats"
	repo "github.com/example/profile-service/internal/adapters/postgres"
	"github.com/example/profile-service/internal/apperr"
	"github.com/example/profile-service/internal/domain"
	pkglog "github.com/example/profile-service/pkg/log"
)

type TransactionInput struct {
	From            string  `json:"from"`
	To              string  `json:"to"`
	TransactionHash string  `json:"transaction_hash"`
	Amount          float64 `json:"amount"`
	Network         string  `json:"network"`
}

type TransactionService interface {
	Record(ctx context.Context, traceID string, input TransactionInput) (*domain.Transaction, error)
}

type transactionService struct {
	logger       pkglog.Logger
	users        repo.UserRepository
	transactions repo.TransactionRepository
	events       natsadapter.EventClient
}

func NewTransactionService(logger pkglog.Logger, users repo.UserRepository, transactions repo.TransactionRepository, events natsadapter.EventClient) TransactionService {
	return &transactionService{logger: logger, users: users, transactions: transactions, events: events}
}

// Record appends a transfer record. Records are immutable once written.
func (s *transactionService) Record(ctx context.Context, traceID string, input TransactionInput) (*domain.Transaction, error) {
	if input.To == "" || strings.TrimSpace(input.TransactionHash) == "" {
		return nil, apperr.New(apperr.BadRequest, "to and transaction_hash are required")
	}
	if input.Amount <= 0 {
		return nil, apperr.New(apperr.BadRequest, "amount must be positive")
	}
	network := domain.Network(input.Network)
	if input.Network == "" {
		network = domain.NetworkEthereum
	} else if !network.Valid() {
		return nil, apperr.New(apperr.BadRequest, "unknown network")
	}
	if _, err := s.users.FindByID(ctx, input.To); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "receiving user not found")
		}
		return nil, err
	}

	tx := &domain.Transaction{
		From:            input.From,
		To:              input.To,
		TransactionHash: input.TransactionHash,
		Amount:          input.Amount,
		Network:         network,
	}
	if err := s.transactions.Create(ctx, tx); err != nil {
		return nil, err
	}
	if s.events != nil {
		if err := s.events.TransactionRecorded(ctx, tx.ID, string(tx.Network), tx.Amount); err != nil {
			s.logger.Warn().Str("trace_id", traceID).Str("tx_id", tx.ID).Err(err).Msg("transaction.recorded notify failed")
		}
	}
	s.logger.Info().Str("trace_id", traceID).Str("tx_id", tx.ID).Str("network", string(tx.Network)).Msg("transaction recorded")
	return tx, nil
}
