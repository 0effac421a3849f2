package http

import (
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xeipuuv/gojsonschema"

	"finance-tracker-go/internal/credit"
	"finance-tracker-go/internal/models"
	"finance-tracker-go/internal/split"
	"finance-tracker-go/internal/store"
)

// splitInput mirrors the splits array the client sends: the creator's row
// uses the literal "CREATOR", the other row carries the counterpart's
// public ID or an informal name.
type splitInput struct {
	UserID string `json:"user_id"`
	Amount int64  `json:"amount"`
}

type transactionInput struct {
	Description   string       `json:"description"`
	Amount        int64        `json:"amount"`
	Type          string       `json:"type"`
	Category      string       `json:"category"`
	Date          string       `json:"date"`
	Status        string       `json:"status"`
	PaymentMethod string       `json:"payment_method"`
	Installments  int          `json:"installments"`
	Splits        []splitInput `json:"splits"`
}

// POST /v1/transactions
func (s *Server) createTransaction(c *gin.Context) {
	userID := c.MustGet("userID").(uint)
	userUUID := c.MustGet("userUUID").(string)

	body, err := c.GetRawData()
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid_request"})
		return
	}

	res, err := s.validator.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		c.JSON(400, gin.H{"error": "validation_failed"})
		return
	}
	if !res.Valid() {
		d := []string{}
		for _, e := range res.Errors() {
			d = append(d, e.String())
		}
		c.JSON(422, gin.H{"error": "schema_invalid", "details": d})
		return
	}

	var input transactionInput
	if err := json.Unmarshal(body, &input); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	date, err := time.Parse("2006-01-02", input.Date)
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid_date"})
		return
	}

	status := strings.ToLower(input.Status)
	if status == "" {
		status = models.StatusCompleted
	}
	if status != models.StatusPending && status != models.StatusCompleted {
		c.JSON(400, gin.H{"error": "invalid_status"})
		return
	}

	if len(input.Splits) > 0 {
		s.createSharedTransaction(c, userID, userUUID, input, date, status)
		return
	}

	installments := input.Installments
	if installments < 1 {
		installments = 1
	}

	tx := models.Transaction{
		UserID:        userID,
		Description:   input.Description,
		Amount:        input.Amount,
		Type:          strings.ToLower(input.Type),
		Category:      input.Category,
		Date:          date,
		Status:        status,
		PaymentMethod: strings.ToLower(input.PaymentMethod),
		Installments:  installments,
	}
	if err := tx.Validate(); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	if err := s.transactions.Create(c.Request.Context(), &tx); err != nil {
		c.JSON(500, gin.H{"error": "db_error"})
		return
	}

	c.JSON(201, tx)
}

// createSharedTransaction routes a splits payload through the resolver.
// Amount is the full bill; the creator's split row fixes their share and
// the remainder belongs to the other party.
func (s *Server) createSharedTransaction(c *gin.Context, userID uint, userUUID string, input transactionInput, date time.Time, status string) {
	var myShare int64
	var otherParty string
	for _, sp := range input.Splits {
		if sp.UserID == "CREATOR" {
			myShare = sp.Amount
		} else {
			otherParty = sp.UserID
		}
	}
	if myShare <= 0 {
		c.JSON(400, gin.H{"error": "missing_creator_split"})
		return
	}

	entries, err := s.resolver.Resolve(c.Request.Context(), split.Input{
		Description: input.Description,
		Category:    input.Category,
		Date:        date,
		Total:       input.Amount,
		MyShare:     myShare,
		OwnerID:     userID,
		OwnerUUID:   userUUID,
		OtherParty:  otherParty,
		Status:      status,
	})
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	if _, err := s.transactions.CreateBatch(c.Request.Context(), entries); err != nil {
		c.JSON(500, gin.H{"error": "db_error"})
		return
	}

	c.JSON(201, gin.H{"success": true, "data": entries})
}

// GET /v1/transactions
func (s *Server) listTransactions(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	var f store.ListFilter
	f.Type = c.Query("type")
	f.Category = c.Query("category")
	f.Status = c.Query("status")
	if v, err := strconv.ParseInt(c.Query("min_amount"), 10, 64); err == nil {
		f.MinAmount = v
	}
	if v, err := strconv.ParseInt(c.Query("max_amount"), 10, 64); err == nil {
		f.MaxAmount = v
	}
	if v, err := time.Parse("2006-01-02", c.Query("start_date")); err == nil {
		f.StartDate = v
	}
	if v, err := time.Parse("2006-01-02", c.Query("end_date")); err == nil {
		f.EndDate = v
	}

	txs, err := s.transactions.List(c.Request.Context(), userID, f)
	if err != nil {
		c.JSON(500, gin.H{"error": "db_error"})
		return
	}

	c.JSON(200, txs)
}

// GET /v1/transactions/projection
// Storage failure degrades to zeroed totals; the dashboard always renders.
func (s *Server) creditProjection(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	entries, err := s.transactions.Credit(c.Request.Context(), userID)
	if err != nil {
		log.Printf("[WARN] credit projection failed for user=%d: %v", userID, err)
		c.JSON(200, gin.H{"success": true, "data": credit.Projection{}})
		return
	}

	c.JSON(200, gin.H{"success": true, "data": credit.Project(entries, time.Now())})
}

// GET /v1/transactions/:id
func (s *Server) getTransaction(c *gin.Context) {
	userID := c.MustGet("userID").(uint)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid_id"})
		return
	}

	tx, err := s.transactions.ByID(c.Request.Context(), userID, uint(id))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(404, gin.H{"error": "transaction_not_found"})
			return
		}
		c.JSON(500, gin.H{"error": "db_error"})
		return
	}

	c.JSON(200, tx)
}

// PUT /v1/transactions/:id
func (s *Server) updateTransaction(c *gin.Context) {
	userID := c.MustGet("userID").(uint)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid_id"})
		return
	}

	tx, err := s.transactions.ByID(c.Request.Context(), userID, uint(id))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(404, gin.H{"error": "transaction_not_found"})
			return
		}
		c.JSON(500, gin.H{"error": "db_error"})
		return
	}

	var input map[string]interface{}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	if v, ok := input["description"].(string); ok {
		tx.Description = v
	}
	if v, ok := input["amount"].(float64); ok {
		tx.Amount = int64(v)
	}
	if v, ok := input["type"].(string); ok {
		tx.Type = strings.ToLower(v)
	}
	if v, ok := input["category"].(string); ok {
		tx.Category = v
	}
	if v, ok := input["payment_method"].(string); ok {
		tx.PaymentMethod = strings.ToLower(v)
	}
	if v, ok := input["installments"].(float64); ok && int(v) >= 1 {
		tx.Installments = int(v)
	}
	if v, ok := input["date"].(string); ok {
		if d, err := time.Parse("2006-01-02", v); err == nil {
			tx.Date = d
		}
	}

	if err := tx.Validate(); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	if err := s.transactions.Save(c.Request.Context(), tx); err != nil {
		c.JSON(500, gin.H{"error": "db_error"})
		return
	}

	c.JSON(200, tx)
}

// POST /v1/transactions/:id/pay
// Marks a pending entry completed, optionally correcting the amount to
// what was really paid. Completed entries never go back to pending.
func (s *Server) payTransaction(c *gin.Context) {
	userID := c.MustGet("userID").(uint)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid_id"})
		return
	}

	var input struct {
		Amount int64 `json:"amount"`
	}
	_ = c.ShouldBindJSON(&input)

	tx, err := s.transactions.ByID(c.Request.Context(), userID, uint(id))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(404, gin.H{"error": "transaction_not_found"})
			return
		}
		c.JSON(500, gin.H{"error": "db_error"})
		return
	}

	if err := tx.MarkPaid(input.Amount); err != nil {
		c.JSON(409, gin.H{"error": "already_completed"})
		return
	}

	if err := s.transactions.Save(c.Request.Context(), tx); err != nil {
		c.JSON(500, gin.H{"error": "db_error"})
		return
	}

	c.JSON(200, tx)
}

// DELETE /v1/transactions/:id
func (s *Server) deleteTransaction(c *gin.Context) {
	userID := c.MustGet("userID").(uint)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid_id"})
		return
	}

	if err := s.transactions.Delete(c.Request.Context(), userID, uint(id)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(404, gin.H{"error": "transaction_not_found"})
			return
		}
		c.JSON(500, gin.H{"error": "db_error"})
		return
	}

	c.JSON(200, gin.H{"message": "transaction_deleted"})
}
