package http

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"finance-tracker-go/internal/models"
	"finance-tracker-go/internal/recurring"
	"finance-tracker-go/internal/store"
)

// POST /v1/fixed-expenses
func (s *Server) createFixedExpense(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	var rule models.FixedExpense
	if err := c.BindJSON(&rule); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	rule.ID = 0
	rule.UserID = userID

	if err := rule.Validate(); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	if err := s.rules.Create(c.Request.Context(), &rule); err != nil {
		c.JSON(500, gin.H{"error": "db_error"})
		return
	}

	c.JSON(201, rule)
}

// GET /v1/fixed-expenses
func (s *Server) listFixedExpenses(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	rules, err := s.rules.ByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(500, gin.H{"error": "db_error"})
		return
	}

	c.JSON(200, rules)
}

// PUT /v1/fixed-expenses/:id
func (s *Server) updateFixedExpense(c *gin.Context) {
	userID := c.MustGet("userID").(uint)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid_id"})
		return
	}

	rule, err := s.rules.ByID(c.Request.Context(), userID, uint(id))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(404, gin.H{"error": "fixed_expense_not_found"})
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

	if v, ok := input["title"].(string); ok {
		rule.Title = v
	}
	if v, ok := input["amount"].(float64); ok {
		// Remember the previous price so subscriptions can flag a hike.
		if rule.IsSubscription && int64(v) != rule.Amount {
			rule.LastAmount = rule.Amount
		}
		rule.Amount = int64(v)
	}
	if v, ok := input["day_of_month"].(float64); ok {
		rule.DayOfMonth = int(v)
	}
	if v, ok := input["category"].(string); ok {
		rule.Category = v
	}
	if v, ok := input["payment_method"].(string); ok {
		rule.PaymentMethod = v
	}
	if v, ok := input["payment_link"].(string); ok {
		rule.PaymentLink = v
	}
	if v, ok := input["transfer_alias"].(string); ok {
		rule.TransferAlias = v
	}
	if v, ok := input["transfer_cbu"].(string); ok {
		rule.TransferCBU = v
	}
	if v, ok := input["currency"].(string); ok {
		rule.Currency = v
	}
	if v, ok := input["card_name"].(string); ok {
		rule.CardName = v
	}
	if v, ok := input["is_subscription"].(bool); ok {
		rule.IsSubscription = v
	}

	if err := rule.Validate(); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	if err := s.rules.Save(c.Request.Context(), rule); err != nil {
		c.JSON(500, gin.H{"error": "db_error"})
		return
	}

	c.JSON(200, rule)
}

// DELETE /v1/fixed-expenses/:id
func (s *Server) deleteFixedExpense(c *gin.Context) {
	userID := c.MustGet("userID").(uint)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid_id"})
		return
	}

	if err := s.rules.Delete(c.Request.Context(), userID, uint(id)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(404, gin.H{"error": "fixed_expense_not_found"})
			return
		}
		c.JSON(500, gin.H{"error": "db_error"})
		return
	}

	c.JSON(200, gin.H{"message": "fixed_expense_deleted"})
}

// targetMonth resolves the requested month/year, defaulting to the current
// month in the configured timezone.
func (s *Server) targetMonth(month, year int) (time.Month, int) {
	if month >= 1 && month <= 12 && year > 0 {
		return time.Month(month), year
	}
	loc, err := time.LoadLocation(s.cfg.TZDefault)
	if err != nil {
		loc = time.UTC
	}
	now := time.Now().In(loc)
	return now.Month(), now.Year()
}

// POST /v1/fixed-expenses/generate
func (s *Server) generateFixedExpenses(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	var input struct {
		Month int `json:"month"`
		Year  int `json:"year"`
	}
	// Empty body means "current month".
	_ = c.ShouldBindJSON(&input)

	if input.Month != 0 && (input.Month < 1 || input.Month > 12) {
		c.JSON(400, gin.H{"success": false, "error": "invalid_month"})
		return
	}

	month, year := s.targetMonth(input.Month, input.Year)

	created, err := s.materializer.Materialize(c.Request.Context(), userID, month, year)
	if err != nil {
		if errors.Is(err, recurring.ErrInvalidMonth) {
			c.JSON(400, gin.H{"success": false, "error": "invalid_month"})
			return
		}
		c.JSON(500, gin.H{"success": false, "error": "generation_failed"})
		return
	}

	c.JSON(200, gin.H{
		"success":       true,
		"message":       fmt.Sprintf("generated %d fixed expenses for %s", created, recurring.Period(year, month)),
		"created_count": created,
	})
}

// GET /v1/fixed-expenses/monthly-view?month=&year=
// Materializes first, then returns everything the month holds, so the
// client always sees a complete picture even right after month rollover.
// A generation failure must not hide entries that already exist.
func (s *Server) monthlyView(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	monthQ, _ := strconv.Atoi(c.Query("month"))
	yearQ, _ := strconv.Atoi(c.Query("year"))
	month, year := s.targetMonth(monthQ, yearQ)

	if _, err := s.materializer.Materialize(c.Request.Context(), userID, month, year); err != nil {
		log.Printf("[WARN] monthly-view generation failed for user=%d %s: %v", userID, recurring.Period(year, month), err)
	}

	start, end := recurring.MonthWindow(year, month)
	txs, err := s.transactions.InRange(c.Request.Context(), userID, start, end)
	if err != nil {
		c.JSON(500, gin.H{"success": false, "error": "db_error"})
		return
	}

	c.JSON(200, gin.H{"success": true, "data": txs})
}
