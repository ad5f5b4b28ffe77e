package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"payment-reconciler/internal/models"
	"payment-reconciler/internal/repository"
	"payment-reconciler/internal/services/matching"
)

// ErrRunInProgress is returned when Reconcile is invoked while another run is
// still executing. Runs never interleave.
var ErrRunInProgress = errors.New("reconciliation run already in progress")

// ErrMatchNotFound is returned by the review workflow for an unknown match id.
var ErrMatchNotFound = errors.New("match not found")

// ErrInvalidAction is returned for review actions other than confirm/unmatch.
var ErrInvalidAction = errors.New(`action must be "confirm" or "unmatch"`)

// Summary reports the outcome of one reconciliation run.
type Summary struct {
	Matched   int `json:"matched"`
	Unmatched int `json:"unmatched"`
}

// Service owns the reconciliation driver and the match review workflow.
type Service struct {
	db       *gorm.DB
	payments *repository.PaymentRepository
	bankTxns *repository.BankTransactionRepository
	matches  *repository.MatchRepository
	cfg      *matching.Config
	log      *logrus.Logger
	runMu    sync.Mutex
}

func NewService(
	db *gorm.DB,
	payments *repository.PaymentRepository,
	bankTxns *repository.BankTransactionRepository,
	matches *repository.MatchRepository,
	cfg *matching.Config,
	log *logrus.Logger,
) *Service {
	if cfg == nil {
		cfg = matching.DefaultConfig()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		db:       db,
		payments: payments,
		bankTxns: bankTxns,
		matches:  matches,
		cfg:      cfg,
		log:      log,
	}
}

// Reconcile pairs pending payments with pending bank transactions.
//
// The whole run executes inside one transaction: any storage error aborts and
// rolls back every status and match change of the run, so a failed run can be
// re-run from scratch. Payments are processed in ascending id order and each
// payment's candidates are streamed through an independent amount-windowed
// query, so memory use stays bounded by the fetch size.
func (s *Service) Reconcile(ctx context.Context) (*Summary, error) {
	if !s.runMu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer s.runMu.Unlock()

	startedAt := time.Now()
	summary := &Summary{}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		run := &runState{
			payments: s.payments.WithTx(tx),
			bankTxns: s.bankTxns.WithTx(tx),
			matches:  s.matches.WithTx(tx),
			cfg:      s.cfg,
			log:      s.log,
			summary:  summary,
		}

		stream := run.payments.StreamPending(s.cfg.FetchSize)
		defer stream.Close()

		for stream.Next() {
			if err := run.reconcilePayment(stream.Payment()); err != nil {
				return err
			}
		}
		if err := stream.Err(); err != nil {
			return fmt.Errorf("stream pending payments: %w", err)
		}

		completedAt := time.Now()
		record := &models.ReconciliationRun{
			ID:             uuid.New(),
			MatchedCount:   summary.Matched,
			UnmatchedCount: summary.Unmatched,
			Status:         "completed",
			StartedAt:      startedAt,
			CompletedAt:    &completedAt,
			CreatedAt:      completedAt,
		}
		if err := tx.Create(record).Error; err != nil {
			return fmt.Errorf("record reconciliation run: %w", err)
		}
		return nil
	})
	if err != nil {
		s.log.WithError(err).Error("reconciliation run aborted, all changes rolled back")
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"matched":   summary.Matched,
		"unmatched": summary.Unmatched,
		"duration":  time.Since(startedAt).String(),
	}).Info("reconciliation complete")

	return summary, nil
}

// runState bundles the transaction-scoped repositories of one run.
type runState struct {
	payments *repository.PaymentRepository
	bankTxns *repository.BankTransactionRepository
	matches  *repository.MatchRepository
	cfg      *matching.Config
	log      *logrus.Logger
	summary  *Summary
}

func (r *runState) reconcilePayment(payment *models.Payment) error {
	best, err := r.findBestCandidate(payment)
	if err != nil {
		return err
	}

	if best == nil {
		r.summary.Unmatched++
		return markUnmatched(r.payments, payment)
	}

	// A bank transaction already tied to a confirmed match cannot be claimed;
	// the payment is terminally unmatched for this run.
	taken, err := r.matches.HasConfirmedForBank(best.bank.ID)
	if err != nil {
		return fmt.Errorf("check confirmed match for bank txn %s: %w", best.bank.ID, err)
	}
	if taken {
		r.log.WithFields(logrus.Fields{
			"payment_id":  payment.ID,
			"bank_txn_id": best.bank.ID,
		}).Debug("best candidate already confirmed elsewhere, payment unmatched")
		r.summary.Unmatched++
		return markUnmatched(r.payments, payment)
	}

	if err := markMatched(r.payments, r.bankTxns, r.matches, payment, best.bank, best.score, best.matchType); err != nil {
		return err
	}
	r.summary.Matched++

	r.log.WithFields(logrus.Fields{
		"payment_id":  payment.ID,
		"bank_txn_id": best.bank.ID,
		"score":       best.score,
		"match_type":  best.matchType,
	}).Debug("matched payment")
	return nil
}

type candidate struct {
	bank      *models.BankTransaction
	score     int
	matchType models.MatchType
}

// findBestCandidate streams the payment's amount window and keeps the best
// qualifying candidate. Replacement is strict-greater: a later candidate with
// an equal score never displaces an earlier one, so combined with the
// closest-amount-then-earliest-date stream order, the first-seen candidate
// wins ties.
func (r *runState) findBestCandidate(payment *models.Payment) (*candidate, error) {
	low, high := matching.AmountWindow(payment.Amount, r.cfg.AmountTolerancePercent)

	stream := r.bankTxns.StreamCandidates(payment.Amount, low, high, r.cfg.FetchSize)
	defer stream.Close()

	var best *candidate
	for stream.Next() {
		bank := stream.BankTransaction()
		score, matchType := matching.ScorePair(payment, bank, r.cfg)
		if score < r.cfg.MinMatchScore {
			continue
		}
		if best == nil || score > best.score {
			kept := *bank
			best = &candidate{bank: &kept, score: score, matchType: matchType}
		}
	}
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("stream candidates for payment %s: %w", payment.ID, err)
	}
	return best, nil
}

// CreatePayment inserts a single pending payment record.
func (s *Service) CreatePayment(amount decimal.Decimal, date time.Time, reference, payee string) (*models.Payment, error) {
	p := &models.Payment{
		ID:        uuid.New(),
		Amount:    amount,
		Date:      date,
		Reference: reference,
		Payee:     payee,
		Status:    models.StatusPending,
		CreatedAt: time.Now(),
	}
	if err := s.payments.Create(p); err != nil {
		return nil, err
	}
	return p, nil
}

// CreateBankTransaction inserts a single pending bank transaction record.
func (s *Service) CreateBankTransaction(amount decimal.Decimal, date time.Time, reference, payee string) (*models.BankTransaction, error) {
	b := &models.BankTransaction{
		ID:        uuid.New(),
		Amount:    amount,
		Date:      date,
		Reference: reference,
		Payee:     payee,
		Status:    models.StatusPending,
		CreatedAt: time.Now(),
	}
	if err := s.bankTxns.Create(b); err != nil {
		return nil, err
	}
	return b, nil
}

// Review applies a reviewer decision to a match: "confirm" locks it in,
// "unmatch" deletes it and returns both records to the pending pool.
func (s *Service) Review(ctx context.Context, matchID uuid.UUID, reviewer, action string) error {
	switch action {
	case "confirm":
		return s.Confirm(ctx, matchID, reviewer)
	case "unmatch":
		return s.Unmatch(ctx, matchID, reviewer)
	default:
		return ErrInvalidAction
	}
}

// Confirm marks a match as reviewed and moves both linked records to the
// confirmed status, in one short transaction.
func (s *Service) Confirm(ctx context.Context, matchID uuid.UUID, reviewer string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		matches := s.matches.WithTx(tx)

		m, err := matches.GetByID(matchID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMatchNotFound
			}
			return err
		}

		return markConfirmed(s.payments.WithTx(tx), s.bankTxns.WithTx(tx), matches, m, reviewer)
	})
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"match_id": matchID, "reviewer": reviewer}).Info("match confirmed")
	return nil
}

// Unmatch deletes a match and resets both linked records to pending, in one
// short transaction.
func (s *Service) Unmatch(ctx context.Context, matchID uuid.UUID, reviewer string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		matches := s.matches.WithTx(tx)

		m, err := matches.GetByID(matchID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMatchNotFound
			}
			return err
		}

		return markUnmatchedPair(s.payments.WithTx(tx), s.bankTxns.WithTx(tx), matches, m, reviewer)
	})
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"match_id": matchID, "reviewer": reviewer}).Info("match removed")
	return nil
}
