package http

import (
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"finance-tracker-go/internal/credit"
	"finance-tracker-go/internal/models"
	"finance-tracker-go/internal/recurring"
	"finance-tracker-go/internal/store"
)

// All insight amounts are minor currency units.

type MonthlyHealth struct {
	Income      int64   `json:"income"`
	Spent       int64   `json:"spent"`
	Savings     int64   `json:"savings"`
	SavingsRate float64 `json:"savings_rate"` // Percentage
}

type CategoryBreakdown struct {
	Category   string  `json:"category"`
	Amount     int64   `json:"amount"`
	Percentage float64 `json:"percentage"`
	Change     float64 `json:"change"` // vs last month
}

type UpcomingFixed struct {
	ID          uint   `json:"id"`
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
	Date        string `json:"date"`
	PriceHike   bool   `json:"price_hike"`
}

type InsightsResponse struct {
	MonthlyHealth     MonthlyHealth       `json:"monthly_health"`
	CategoryBreakdown []CategoryBreakdown `json:"category_breakdown"`
	UpcomingFixed     []UpcomingFixed     `json:"upcoming_fixed"`
	CreditProjection  credit.Projection   `json:"credit_projection"`
	PendingCount      int                 `json:"pending_count"`
}

// GET /v1/insights
func (s *Server) getInsights(c *gin.Context) {
	userID := c.MustGet("userID").(uint)
	now := time.Now()

	thisStart, thisEnd := recurring.MonthWindow(now.Year(), now.Month())
	lastStart, _ := recurring.MonthWindow(now.Year(), now.Month()-1)

	entries, err := s.transactions.List(c.Request.Context(), userID, store.ListFilter{
		StartDate: lastStart,
		EndDate:   thisEnd,
	})
	if err != nil {
		c.JSON(500, gin.H{"error": "db_error"})
		return
	}

	res := InsightsResponse{
		CategoryBreakdown: []CategoryBreakdown{},
		UpcomingFixed:     []UpcomingFixed{},
	}

	var thisIncome, thisSpent int64
	categoryThis := make(map[string]int64)
	categoryLast := make(map[string]int64)

	for _, e := range entries {
		thisMonth := !e.Date.Before(thisStart)
		switch {
		case thisMonth && strings.EqualFold(e.Type, models.TypeIncome):
			thisIncome += e.Amount
		case thisMonth && strings.EqualFold(e.Type, models.TypeExpense):
			thisSpent += e.Amount
			categoryThis[e.Category] += e.Amount
			if e.Status == models.StatusPending {
				res.PendingCount++
			}
			if e.IsFixed && e.Status == models.StatusPending {
				res.UpcomingFixed = append(res.UpcomingFixed, UpcomingFixed{
					ID:          e.ID,
					Description: e.Description,
					Amount:      e.Amount,
					Date:        e.Date.Format("2006-01-02"),
				})
			}
		case strings.EqualFold(e.Type, models.TypeExpense):
			categoryLast[e.Category] += e.Amount
		}
	}

	res.MonthlyHealth.Income = thisIncome
	res.MonthlyHealth.Spent = thisSpent
	res.MonthlyHealth.Savings = thisIncome - thisSpent
	if thisIncome > 0 && res.MonthlyHealth.Savings > 0 {
		res.MonthlyHealth.SavingsRate = float64(res.MonthlyHealth.Savings) / float64(thisIncome) * 100
	}

	for cat, amt := range categoryThis {
		percentage := 0.0
		if thisSpent > 0 {
			percentage = float64(amt) / float64(thisSpent) * 100
		}
		change := 0.0
		if last := categoryLast[cat]; last > 0 {
			change = float64(amt-last) / float64(last) * 100
		}
		res.CategoryBreakdown = append(res.CategoryBreakdown, CategoryBreakdown{
			Category:   cat,
			Amount:     amt,
			Percentage: percentage,
			Change:     change,
		})
	}
	sort.Slice(res.CategoryBreakdown, func(i, j int) bool {
		return res.CategoryBreakdown[i].Amount > res.CategoryBreakdown[j].Amount
	})
	sort.Slice(res.UpcomingFixed, func(i, j int) bool {
		return res.UpcomingFixed[i].Date < res.UpcomingFixed[j].Date
	})

	// Flag subscription price hikes on the upcoming list.
	if rules, err := s.rules.ByUser(c.Request.Context(), userID); err == nil {
		hikes := make(map[string]bool)
		for _, r := range rules {
			if r.IsSubscription && r.LastAmount > 0 && r.LastAmount != r.Amount {
				hikes[r.Title] = true
			}
		}
		for i := range res.UpcomingFixed {
			res.UpcomingFixed[i].PriceHike = hikes[res.UpcomingFixed[i].Description]
		}
	}

	if creditEntries, err := s.transactions.Credit(c.Request.Context(), userID); err == nil {
		res.CreditProjection = credit.Project(creditEntries, now)
	}

	c.JSON(200, res)
}
