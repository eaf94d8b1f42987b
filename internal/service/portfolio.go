package service

import (
	"context"
	"io"

	"github.com/guttosm/carteirapulse/internal/aggregate"
	"github.com/guttosm/carteirapulse/internal/domain/models"
	"github.com/guttosm/carteirapulse/internal/importer"
	"github.com/guttosm/carteirapulse/internal/storage"
)

// PortfolioService defines the business operations exposed over HTTP:
// importing a statement and projecting the persisted operation set into
// positions and annual/overall summaries.
type PortfolioService interface {
	ImportStatement(ctx context.Context, userID string, src io.Reader) (models.ImportSummary, error)
	Positions(ctx context.Context, userID string) ([]models.Position, error)
	TradesByYear(ctx context.Context, userID string) ([]models.TradeYearHeader, error)
	TradeYearDetails(ctx context.Context, userID string, year int) ([]models.TradeTickerSummary, error)
	ProventosByYear(ctx context.Context, userID string) ([]models.ProventoYearHeader, error)
	ProventosYearDetails(ctx context.Context, userID string, year int) ([]models.ProventoTickerSummary, error)
	ProventosOverall(ctx context.Context, userID string, topN int) (models.ProventoOverallSummary, error)
	DeleteOperations(ctx context.Context, userID string) (int64, error)
}

type portfolioService struct {
	repo storage.OperationsRepository
}

func NewPortfolioService(repo storage.OperationsRepository) PortfolioService {
	return &portfolioService{repo: repo}
}

func (s *portfolioService) ImportStatement(ctx context.Context, userID string, src io.Reader) (models.ImportSummary, error) {
	return importer.ImportStatement(ctx, s.repo, userID, src)
}

// Positions and the summaries below are recomputed from the full operation
// set on every request; nothing derived is ever persisted.
func (s *portfolioService) Positions(_ context.Context, userID string) ([]models.Position, error) {
	ops, err := s.repo.ListOperations(userID)
	if err != nil {
		return nil, err
	}
	return aggregate.CalculatePositions(ops), nil
}

func (s *portfolioService) TradesByYear(_ context.Context, userID string) ([]models.TradeYearHeader, error) {
	ops, err := s.repo.ListOperations(userID)
	if err != nil {
		return nil, err
	}
	return aggregate.SummarizeTradesByYear(ops), nil
}

func (s *portfolioService) TradeYearDetails(_ context.Context, userID string, year int) ([]models.TradeTickerSummary, error) {
	ops, err := s.repo.ListOperations(userID)
	if err != nil {
		return nil, err
	}
	return aggregate.TradeYearDetails(ops, year), nil
}

func (s *portfolioService) ProventosByYear(_ context.Context, userID string) ([]models.ProventoYearHeader, error) {
	ops, err := s.repo.ListOperations(userID)
	if err != nil {
		return nil, err
	}
	return aggregate.SummarizeProventosByYear(ops), nil
}

func (s *portfolioService) ProventosYearDetails(_ context.Context, userID string, year int) ([]models.ProventoTickerSummary, error) {
	ops, err := s.repo.ListOperations(userID)
	if err != nil {
		return nil, err
	}
	return aggregate.ProventosYearDetails(ops, year), nil
}

func (s *portfolioService) ProventosOverall(_ context.Context, userID string, topN int) (models.ProventoOverallSummary, error) {
	ops, err := s.repo.ListOperations(userID)
	if err != nil {
		return models.ProventoOverallSummary{}, err
	}
	return aggregate.SummarizeProventosOverall(ops, topN), nil
}

func (s *portfolioService) DeleteOperations(_ context.Context, userID string) (int64, error) {
	return s.repo.DeleteAllOperations(userID)
}
