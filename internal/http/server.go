package http

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xeipuuv/gojsonschema"
	"gorm.io/gorm"

	"finance-tracker-go/internal/config"
	"finance-tracker-go/internal/recurring"
	"finance-tracker-go/internal/split"
	"finance-tracker-go/internal/store"
)

type Server struct {
	cfg          *config.Config
	validator    *gojsonschema.Schema
	users        *store.Users
	rules        *store.Rules
	transactions *store.Transactions
	materializer *recurring.Materializer
	resolver     *split.Resolver
}

func NewServer(cfg *config.Config, db *gorm.DB) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors(cfg))
	r.Use(logging())

	loader := gojsonschema.NewReferenceLoader("file://./schemas/transaction.schema.json")
	schema, err := gojsonschema.NewSchema(loader)
	if err != nil {
		panic(err)
	}

	users := store.NewUsers(db)
	rules := store.NewRules(db)
	transactions := store.NewTransactions(db)

	s := &Server{
		cfg:          cfg,
		validator:    schema,
		users:        users,
		rules:        rules,
		transactions: transactions,
		materializer: recurring.NewMaterializer(rules, transactions),
		resolver:     split.NewResolver(users),
	}

	// Auth
	r.POST("/v1/auth/guest", s.authGuest)
	r.POST("/v1/auth/register", s.authRegister)
	r.POST("/v1/auth/login", s.authLogin)

	// Protected Routes (User Token)
	authorized := r.Group("/v1")
	authorized.Use(AuthMiddleware(cfg, users))
	{
		authorized.POST("/fixed-expenses", s.createFixedExpense)
		authorized.GET("/fixed-expenses", s.listFixedExpenses)
		authorized.PUT("/fixed-expenses/:id", s.updateFixedExpense)
		authorized.DELETE("/fixed-expenses/:id", s.deleteFixedExpense)
		authorized.POST("/fixed-expenses/generate", s.generateFixedExpenses)
		authorized.GET("/fixed-expenses/monthly-view", s.monthlyView)

		authorized.POST("/transactions", s.createTransaction)
		authorized.GET("/transactions", s.listTransactions)
		authorized.GET("/transactions/projection", s.creditProjection)
		authorized.GET("/transactions/:id", s.getTransaction)
		authorized.PUT("/transactions/:id", s.updateTransaction)
		authorized.DELETE("/transactions/:id", s.deleteTransaction)
		authorized.POST("/transactions/:id/pay", s.payTransaction)

		authorized.GET("/insights", s.getInsights)
	}

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })
	return r
}

func cors(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", cfg.AllowOrigins)
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, PUT, DELETE, OPTIONS")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

func logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Printf("%s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
