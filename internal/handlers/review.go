package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/zzzgjj49/xrp-hackathon-project/internal/ledger"
	"github.com/zzzgjj49/xrp-hackathon-project/internal/metrics"
	"github.com/zzzgjj49/xrp-hackathon-project/internal/models"
)

type reviewReq struct {
	TaskID        string   `json:"taskId"`
	Verdict       string   `json:"verdict"`
	Points        float64  `json:"points"`
	Evidence      []string `json:"evidence"`
	WalletAddress string   `json:"walletAddress"`
}

// resolveWallet picks the acting wallet: the explicit body field wins,
// otherwise the first evidence entry of the form "wallet:<address>".
func (r reviewReq) resolveWallet() string {
	if r.WalletAddress != "" {
		return r.WalletAddress
	}
	for _, e := range r.Evidence {
		if strings.HasPrefix(e, "wallet:") {
			return strings.TrimSpace(strings.TrimPrefix(e, "wallet:"))
		}
	}
	return ""
}

func (h *Handler) postReview(c *gin.Context) {
	var req reviewReq
	if err := c.ShouldBindJSON(&req); err != nil {
		missingFields(c)
		return
	}
	if req.TaskID == "" || req.Verdict == "" || req.Evidence == nil {
		missingFields(c)
		return
	}

	walletAddress := req.resolveWallet()
	receipt, ok := h.submit(c, ledger.Intent{Kind: ledger.KindReview, Account: walletAddress, Memo: req.TaskID})
	if !ok {
		return
	}

	outcome := metrics.OutcomeNoop
	err := h.withDB(func(db *gorm.DB) error {
		if req.Verdict == "pass" && walletAddress != "" && req.Points > 0 {
			outcome = metrics.OutcomeRecorded
			return awardPoints(db, walletAddress, req.TaskID, req.Points)
		}
		if (req.Verdict == "reject" || req.Verdict == "slash") && walletAddress != "" {
			reason := fmt.Sprintf("Task %s %sed", req.TaskID, req.Verdict)
			applied, err := slashLatestActive(db, walletAddress, reason, func(order models.StakeOrder) float64 {
				return order.Amount * reviewPenaltyRate
			})
			if applied {
				outcome = metrics.OutcomeRecorded
			}
			return err
		}
		return nil
	})
	if err != nil {
		logrus.WithError(err).Warn("review txn failed, proceeding with mock response")
		outcome = metrics.OutcomeDegraded
	}
	metrics.OperationsTotal.WithLabelValues("review", outcome).Inc()

	awarded := 0.0
	if req.Verdict == "pass" {
		awarded = req.Points
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"taskId":  req.TaskID,
		"verdict": req.Verdict,
		"points":  awarded,
		"message": fmt.Sprintf("Task %s has been %sed", req.TaskID, req.Verdict),
		"txHash":  receipt.TxHash,
	})
}

func awardPoints(db *gorm.DB, walletAddress, taskID string, points float64) error {
	return db.Transaction(func(tx *gorm.DB) error {
		entry := models.PointsHistory{
			WalletAddress: walletAddress,
			TaskID:        taskID,
			Amount:        points,
			Source:        models.PointsSourceTask,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		user := models.User{
			WalletAddress: walletAddress,
			Nickname:      nickname(walletAddress),
			TotalPoints:   points,
		}
		return upsertUser(tx, user, "total_points", points)
	})
}
