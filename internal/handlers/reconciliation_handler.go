package handler

import (
	"encoding/csv"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"payment-reconciler/internal/repository"
	service "payment-reconciler/internal/services/reconciliation"
)

type ReconciliationHandler struct {
	service  *service.Service
	payments *repository.PaymentRepository
	bankTxns *repository.BankTransactionRepository
	matches  *repository.MatchRepository
	log      *logrus.Logger
}

func NewReconciliationHandler(
	s *service.Service,
	payments *repository.PaymentRepository,
	bankTxns *repository.BankTransactionRepository,
	matches *repository.MatchRepository,
	log *logrus.Logger,
) *ReconciliationHandler {
	return &ReconciliationHandler{
		service:  s,
		payments: payments,
		bankTxns: bankTxns,
		matches:  matches,
		log:      log,
	}
}

// UploadPayments ingests a payments CSV (amount, date, reference, payee).
func (h *ReconciliationHandler) UploadPayments(c *gin.Context) {
	h.uploadCSV(c, func(amount decimal.Decimal, date time.Time, reference, payee string) error {
		_, err := h.service.CreatePayment(amount, date, reference, payee)
		return err
	})
}

// UploadBank ingests a bank transactions CSV (amount, date, reference, payee).
func (h *ReconciliationHandler) UploadBank(c *gin.Context) {
	h.uploadCSV(c, func(amount decimal.Decimal, date time.Time, reference, payee string) error {
		_, err := h.service.CreateBankTransaction(amount, date, reference, payee)
		return err
	})
}

func (h *ReconciliationHandler) uploadCSV(c *gin.Context, insert func(decimal.Decimal, time.Time, string, string) error) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	headerRow, err := reader.Read()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read CSV header"})
		return
	}

	columns := make(map[string]int, len(headerRow))
	for i, name := range headerRow {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	amountIdx, okAmount := columns["amount"]
	dateIdx, okDate := columns["date"]
	if !okAmount || !okDate {
		c.JSON(http.StatusBadRequest, gin.H{"error": "CSV must have amount and date columns"})
		return
	}
	refIdx, hasRef := columns["reference"]
	payeeIdx, hasPayee := columns["payee"]

	inserted := 0
	rowNum := 1
	for {
		record, err := reader.Read()
		rowNum++
		if err == io.EOF {
			break
		}
		if err != nil {
			h.log.WithField("row", rowNum).WithError(err).Warn("skipping malformed CSV row")
			continue
		}
		if len(record) <= amountIdx || len(record) <= dateIdx {
			continue
		}

		amount, err := decimal.NewFromString(strings.TrimSpace(record[amountIdx]))
		if err != nil {
			h.log.WithField("row", rowNum).Warn("skipping row with invalid amount")
			continue
		}
		date, err := time.Parse("2006-01-02", strings.TrimSpace(record[dateIdx]))
		if err != nil {
			h.log.WithField("row", rowNum).Warn("skipping row with invalid date")
			continue
		}

		reference := ""
		if hasRef && len(record) > refIdx {
			reference = strings.TrimSpace(record[refIdx])
		}
		payee := ""
		if hasPayee && len(record) > payeeIdx {
			payee = strings.TrimSpace(record[payeeIdx])
		}

		if err := insert(amount, date, reference, payee); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		inserted++
	}

	c.JSON(http.StatusOK, gin.H{
		"file":          header.Filename,
		"rows_inserted": inserted,
	})
}

// RunReconciliation triggers a reconciliation run.
func (h *ReconciliationHandler) RunReconciliation(c *gin.Context) {
	summary, err := h.service.Reconcile(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrRunInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"result": summary,
	})
}

// ListMatches returns recent matches joined with both records. Optional query
// params: status=confirmed|pending, limit (default 100).
func (h *ReconciliationHandler) ListMatches(c *gin.Context) {
	status := c.Query("status")
	limit := 100
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	rows, err := h.matches.List(status, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":   len(rows),
		"matches": rows,
	})
}

// MatchSummary returns record counts by status plus match totals.
func (h *ReconciliationHandler) MatchSummary(c *gin.Context) {
	paymentCounts, err := h.payments.CountByStatus()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	bankCounts, err := h.bankTxns.CountByStatus()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	total, confirmed, err := h.matches.CountMatches()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"payments":          paymentCounts,
		"bank_transactions": bankCounts,
		"matches": gin.H{
			"total":     total,
			"confirmed": confirmed,
		},
	})
}

// ReviewMatch confirms or unmatches a reconciliation result.
func (h *ReconciliationHandler) ReviewMatch(c *gin.Context) {
	matchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid match ID"})
		return
	}

	var payload struct {
		Reviewer string `json:"reviewer"`
		Action   string `json:"action"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	err = h.service.Review(c.Request.Context(), matchID, payload.Reviewer, payload.Action)
	switch {
	case errors.Is(err, service.ErrInvalidAction):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrMatchNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, gin.H{
			"status":  "success",
			"message": "match " + payload.Action + "ed",
		})
	}
}
