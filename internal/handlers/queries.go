package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/zzzgjj49/xrp-hackathon-project/internal/models"
	"github.com/zzzgjj49/xrp-hackathon-project/internal/util"
)

func (h *Handler) getPoints(c *gin.Context) {
	walletAddress := c.Param("walletAddress")
	if walletAddress == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Wallet address is required"})
		return
	}

	var user models.User
	err := h.withDB(func(db *gorm.DB) error {
		return db.Where("wallet_address = ?", walletAddress).First(&user).Error
	})
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logrus.WithError(err).Warn("points lookup failed, returning mock balance")
		}
		c.JSON(http.StatusOK, gin.H{
			"success":         true,
			"walletAddress":   walletAddress,
			"totalPoints":     1250,
			"availablePoints": 800,
			"lockedPoints":    450,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"walletAddress":   walletAddress,
		"totalPoints":     user.TotalPoints,
		"availablePoints": user.TotalPoints,
		"lockedPoints":    0,
	})
}

type approvedRow struct {
	TaskID    string    `json:"taskId"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"createdAt"`
}

type slashRow struct {
	OrderID   uint      `json:"orderId"`
	Amount    float64   `json:"amount"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"createdAt"`
}

func (h *Handler) getHistory(c *gin.Context) {
	walletAddress := c.Param("walletAddress")
	if walletAddress == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Wallet address is required"})
		return
	}

	approved := []approvedRow{}
	slashes := []slashRow{}
	err := h.withDB(func(db *gorm.DB) error {
		if err := db.Model(&models.PointsHistory{}).
			Select("task_id, amount, created_at").
			Where("wallet_address = ? AND source = ?", walletAddress, models.PointsSourceTask).
			Order("created_at DESC").
			Scan(&approved).Error; err != nil {
			return err
		}
		q := `SELECT se.order_id, se.amount, se.reason, se.created_at
            FROM slash_events se
            JOIN stake_orders so ON so.id = se.order_id
            WHERE so.wallet_address = ?
            ORDER BY se.created_at DESC`
		return db.Raw(q, walletAddress).Scan(&slashes).Error
	})
	if err != nil {
		logrus.WithError(err).Warn("history lookup failed, returning mock history")
		now := util.Now()
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"approved": []gin.H{
				{"taskId": "1", "amount": 50, "createdAt": now},
				{"taskId": "2", "amount": 100, "createdAt": now.Add(-24 * time.Hour)},
			},
			"slashes": []gin.H{
				{"orderId": "mock-order", "amount": 25, "reason": "Task 3 reject", "createdAt": now.Add(-48 * time.Hour)},
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"approved": approved,
		"slashes":  slashes,
	})
}

func (h *Handler) getLedgerStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"connected": h.ledger.Connected(),
		"network":   h.ledger.Network(),
	})
}

func (h *Handler) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"timestamp": util.Now().Format(time.RFC3339),
	})
}
