package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"rupeeflow/internal/model"
)

type notificationRequest struct {
	Title string `json:"title"`
	Text  string `json:"text" binding:"required"`
}

type categoriseRequest struct {
	Receiver    string `json:"receiver"`
	Category    string `json:"category" binding:"required"`
	Description string `json:"description"`
	Type        string `json:"type"`
	AlwaysAsk   bool   `json:"alwaysAsk"`
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "rupeeflow"})
}

// ingestNotification feeds one captured system notification through the
// pipeline and reports what happened to it.
func (s *Server) ingestNotification(c *gin.Context) {
	var req notificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, err := s.pipe.HandleNotification(c.Request.Context(), req.Title, req.Text)
	if err != nil {
		s.logger.Error("failed to handle notification", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process notification"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"outcome": string(outcome)})
}

func (s *Server) listTransactions(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	txns, err := s.pipe.Store().GetRecentTransactions(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if txns == nil {
		txns = []model.Transaction{}
	}
	c.JSON(http.StatusOK, txns)
}

func (s *Server) listPendingTransactions(c *gin.Context) {
	txns, err := s.pipe.Store().GetPendingTransactions(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if txns == nil {
		txns = []model.Transaction{}
	}
	c.JSON(http.StatusOK, txns)
}

// categoriseTransaction completes a deferred transaction with the user's
// choice, arriving from the categorise deep link in the companion app.
func (s *Server) categoriseTransaction(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction id"})
		return
	}

	var req categoriseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	txnType := model.TransactionType(req.Type)
	if req.Type != "" && !txnType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be Expense or Income"})
		return
	}

	receiver := req.Receiver
	if receiver == "" {
		// Deferred rows store the receiver as the description.
		txn, err := s.pipe.Store().GetTransactionByID(c.Request.Context(), id)
		if err != nil {
			status := http.StatusInternalServerError
			if isNotFound(err) {
				status = http.StatusNotFound
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		receiver = txn.Description
	}

	err = s.pipe.FinalizePending(c.Request.Context(), id, receiver, req.Category, req.Description, txnType, req.AlwaysAsk)
	if err != nil {
		status := http.StatusInternalServerError
		if isNotFound(err) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "categorised"})
}

func (s *Server) listCategories(c *gin.Context) {
	cats, err := s.pipe.Store().GetCategories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if cats == nil {
		cats = []model.Category{}
	}
	c.JSON(http.StatusOK, cats)
}

func (s *Server) listMerchants(c *gin.Context) {
	merchants, err := s.pipe.Store().GetAllMerchants(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if merchants == nil {
		merchants = []model.Merchant{}
	}
	c.JSON(http.StatusOK, merchants)
}

// monthlySummary returns expense and income totals for the requested month,
// defaulting to the current one.
func (s *Server) monthlySummary(c *gin.Context) {
	now := time.Now()
	year, month := now.Year(), int(now.Month())

	if raw := c.Query("year"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1970 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
			return
		}
		year = n
	}
	if raw := c.Query("month"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 12 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month"})
			return
		}
		month = n
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 1, 0)

	summary, err := s.pipe.Store().GetMonthlySummary(c.Request.Context(), start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"year":           year,
		"month":          month,
		"total_expenses": summary.TotalExpenses,
		"total_income":   summary.TotalIncome,
	})
}
