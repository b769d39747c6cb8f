package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/coachware/commission/internal/commission/domain"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type stubRepo struct {
	domain.Repository
	unprocessed []snowflake.ID
}

func (r *stubRepo) ListUnprocessedPaymentIDs(ctx context.Context, db *gorm.DB, limit int) ([]snowflake.ID, error) {
	if limit < len(r.unprocessed) {
		return r.unprocessed[:limit], nil
	}
	return r.unprocessed, nil
}

type stubService struct {
	failing   map[snowflake.ID]bool
	processed []snowflake.ID
}

func (s *stubService) ProcessPayment(ctx context.Context, id snowflake.ID) (domain.Result, error) {
	if s.failing[id] {
		return domain.Result{}, errors.New("boom")
	}
	s.processed = append(s.processed, id)
	return domain.Result{Outcome: domain.OutcomeCalculated, EntriesWritten: 1}, nil
}

func (s *stubService) EntriesForPayment(ctx context.Context, id snowflake.ID) ([]domain.CommissionLedgerEntry, error) {
	return nil, nil
}

func newSweeperForTest(t *testing.T, repo domain.Repository, svc domain.Service, cfg Config) *Sweeper {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return NewSweeper(Params{DB: db, Log: zap.NewNop(), Repo: repo, Svc: svc, Config: cfg})
}

func TestRunOnceProcessesBatch(t *testing.T) {
	repo := &stubRepo{unprocessed: []snowflake.ID{1, 2, 3}}
	svc := &stubService{}
	s := newSweeperForTest(t, repo, svc, Config{})

	processed, err := s.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("run once: %v", err)
	}
	if processed != 3 {
		t.Fatalf("expected 3 processed, got %d", processed)
	}
	if len(svc.processed) != 3 {
		t.Fatalf("expected service called per payment, got %v", svc.processed)
	}
}

func TestRunOnceContinuesPastFailures(t *testing.T) {
	repo := &stubRepo{unprocessed: []snowflake.ID{1, 2, 3}}
	svc := &stubService{failing: map[snowflake.ID]bool{2: true}}
	s := newSweeperForTest(t, repo, svc, Config{})

	processed, err := s.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("one bad payment must not fail the batch: %v", err)
	}
	if processed != 2 {
		t.Fatalf("expected 2 processed, got %d", processed)
	}
}

func TestRunOnceRespectsBatchSize(t *testing.T) {
	repo := &stubRepo{unprocessed: []snowflake.ID{1, 2, 3, 4, 5}}
	svc := &stubService{}
	s := newSweeperForTest(t, repo, svc, Config{BatchSize: 2})

	processed, err := s.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("run once: %v", err)
	}
	if processed != 2 {
		t.Fatalf("expected batch limited to 2, got %d", processed)
	}
}

func TestConfigWithDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	if cfg.BatchSize != 50 {
		t.Fatalf("expected default batch size 50, got %d", cfg.BatchSize)
	}
	if cfg.PollInterval <= 0 || cfg.PaymentTimeout <= 0 {
		t.Fatalf("expected positive defaults, got %+v", cfg)
	}

	custom := Config{BatchSize: 5}.withDefaults()
	if custom.BatchSize != 5 {
		t.Fatalf("explicit batch size must be kept, got %d", custom.BatchSize)
	}
}
