package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zzzgjj49/xrp-hackathon-project/internal/ledger"
	"github.com/zzzgjj49/xrp-hackathon-project/internal/metrics"
	"github.com/zzzgjj49/xrp-hackathon-project/internal/models"
	"github.com/zzzgjj49/xrp-hackathon-project/internal/util"
)

// errPersistenceUnavailable marks the permanent degraded state entered
// when the database could not be opened at startup. It is deliberately
// distinct from gorm.ErrRecordNotFound so callers can tell "row absent"
// from "infrastructure down", even though the HTTP surface masks both.
var (
	errPersistenceUnavailable = errors.New("persistence unavailable")
	errNoActiveOrder          = errors.New("no active stake order")
)

const (
	fallbackUnstakeAmount = 1000.0
	reviewPenaltyRate     = 0.05
)

type Handler struct {
	db     *gorm.DB
	ledger ledger.Client
}

// New builds a Handler over an injected database handle and ledger
// client. A nil db puts every operation on its mock-fallback path for
// the lifetime of the process.
func New(db *gorm.DB, lc ledger.Client) *Handler {
	return &Handler{db: db, ledger: lc}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	api.POST("/stake", h.postStake)
	api.POST("/unstake", h.postUnstake)
	api.POST("/slash", h.postSlash)
	api.POST("/review", h.postReview)
	api.GET("/points/:walletAddress", h.getPoints)
	api.GET("/history/:walletAddress", h.getHistory)
	api.GET("/ledger/status", h.getLedgerStatus)
	r.GET("/health", h.getHealth)
}

func (h *Handler) withDB(fn func(db *gorm.DB) error) error {
	if h.db == nil {
		return errPersistenceUnavailable
	}
	return fn(h.db)
}

func (h *Handler) submit(c *gin.Context, intent ledger.Intent) (ledger.Receipt, bool) {
	receipt, err := h.ledger.Submit(c.Request.Context(), intent)
	if err != nil {
		logrus.WithError(err).Error("ledger submit failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error"})
		return ledger.Receipt{}, false
	}
	metrics.LedgerSubmits.WithLabelValues(string(intent.Kind)).Inc()
	return receipt, true
}

func missingFields(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Missing required fields"})
}

func nickname(walletAddress string) string {
	if len(walletAddress) > 6 {
		return walletAddress[:6]
	}
	return walletAddress
}

// upsertUser creates the wallet's User row or applies an increment to
// one of the denormalized totals in a single statement.
func upsertUser(tx *gorm.DB, user models.User, column string, delta float64) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "wallet_address"}},
		DoUpdates: clause.Assignments(map[string]interface{}{column: gorm.Expr("users."+column+" + ?", delta)}),
	}).Create(&user).Error
}

type stakeReq struct {
	Amount        float64 `json:"amount"`
	Duration      int     `json:"duration"`
	WalletAddress string  `json:"walletAddress"`
}

func (h *Handler) postStake(c *gin.Context) {
	var req stakeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		missingFields(c)
		return
	}
	if req.Amount == 0 || req.Duration == 0 || req.WalletAddress == "" {
		missingFields(c)
		return
	}

	receipt, ok := h.submit(c, ledger.Intent{Kind: ledger.KindStake, Account: req.WalletAddress, Amount: req.Amount})
	if !ok {
		return
	}

	outcome := metrics.OutcomeRecorded
	endTime := util.Now().Add(time.Duration(req.Duration) * 24 * time.Hour)
	err := h.withDB(func(db *gorm.DB) error {
		return db.Transaction(func(tx *gorm.DB) error {
			user := models.User{
				WalletAddress: req.WalletAddress,
				Nickname:      nickname(req.WalletAddress),
				TotalStaked:   req.Amount,
			}
			if err := upsertUser(tx, user, "total_staked", req.Amount); err != nil {
				return err
			}
			order := models.StakeOrder{
				WalletAddress: req.WalletAddress,
				Amount:        req.Amount,
				Duration:      req.Duration,
				StartTime:     util.Now(),
				EndTime:       endTime,
				Status:        models.OrderActive,
				NFTokenID:     receipt.NFTokenID,
			}
			return tx.Create(&order).Error
		})
	})
	if err != nil {
		logrus.WithError(err).Warn("stake txn failed, returning mock response")
		outcome = metrics.OutcomeDegraded
	}
	metrics.OperationsTotal.WithLabelValues("stake", outcome).Inc()

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"txHash":    receipt.TxHash,
		"nftokenID": receipt.NFTokenID,
		"message":   fmt.Sprintf("Successfully staked %v XRP for %v days", req.Amount, req.Duration),
	})
}

type unstakeReq struct {
	WalletAddress string `json:"walletAddress"`
	NFTokenID     string `json:"nftokenID"`
}

func (h *Handler) postUnstake(c *gin.Context) {
	var req unstakeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		missingFields(c)
		return
	}
	if req.WalletAddress == "" || req.NFTokenID == "" {
		missingFields(c)
		return
	}

	receipt, ok := h.submit(c, ledger.Intent{Kind: ledger.KindUnstake, Account: req.WalletAddress})
	if !ok {
		return
	}

	amount := 0.0
	outcome := metrics.OutcomeRecorded
	err := h.withDB(func(db *gorm.DB) error {
		return db.Transaction(func(tx *gorm.DB) error {
			var order models.StakeOrder
			err := tx.Where("wallet_address = ? AND nftoken_id = ? AND status = ?",
				req.WalletAddress, req.NFTokenID, models.OrderActive).First(&order).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errNoActiveOrder
			}
			if err != nil {
				return err
			}
			// Claim-and-transition: the conditional update loses to a
			// concurrent unstake/slash instead of completing twice.
			res := tx.Model(&models.StakeOrder{}).
				Where("id = ? AND status = ?", order.ID, models.OrderActive).
				Update("status", models.OrderCompleted)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errNoActiveOrder
			}
			if err := tx.Model(&models.User{}).
				Where("wallet_address = ?", req.WalletAddress).
				UpdateColumn("total_staked", gorm.Expr("total_staked - ?", order.Amount)).Error; err != nil {
				return err
			}
			amount = order.Amount
			return nil
		})
	})
	if err != nil {
		if !errors.Is(err, errNoActiveOrder) {
			logrus.WithError(err).Warn("unstake txn failed, using mock amount")
		}
		amount = fallbackUnstakeAmount
		outcome = metrics.OutcomeDegraded
	}
	metrics.OperationsTotal.WithLabelValues("unstake", outcome).Inc()

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Unstake request processed successfully",
		"amount":  amount,
		"txHash":  receipt.TxHash,
	})
}

type slashReq struct {
	WalletAddress string  `json:"walletAddress"`
	Amount        float64 `json:"amount"`
	Reason        string  `json:"reason"`
}

func (h *Handler) postSlash(c *gin.Context) {
	var req slashReq
	if err := c.ShouldBindJSON(&req); err != nil {
		missingFields(c)
		return
	}
	if req.WalletAddress == "" || req.Amount == 0 || req.Reason == "" {
		missingFields(c)
		return
	}

	receipt, ok := h.submit(c, ledger.Intent{Kind: ledger.KindSlash, Account: req.WalletAddress, Amount: req.Amount})
	if !ok {
		return
	}

	outcome := metrics.OutcomeRecorded
	err := h.withDB(func(db *gorm.DB) error {
		applied, err := slashLatestActive(db, req.WalletAddress, req.Reason, func(models.StakeOrder) float64 {
			return req.Amount
		})
		if err == nil && !applied {
			outcome = metrics.OutcomeNoop
		}
		return err
	})
	if err != nil {
		logrus.WithError(err).Warn("slash txn failed, returning mock response")
		outcome = metrics.OutcomeDegraded
	}
	metrics.OperationsTotal.WithLabelValues("slash", outcome).Inc()

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Successfully slashed %v XRP from %s", req.Amount, req.WalletAddress),
		"reason":  req.Reason,
		"txHash":  receipt.TxHash,
	})
}

// slashLatestActive penalizes the wallet's most recent active stake
// order: it appends a SlashEvent, transitions the order to slashed and
// decrements the owner's totalStaked. Returns false with a nil error
// when the wallet has no active order (a no-op slash).
func slashLatestActive(db *gorm.DB, walletAddress, reason string, penalty func(models.StakeOrder) float64) (bool, error) {
	applied := false
	err := db.Transaction(func(tx *gorm.DB) error {
		var order models.StakeOrder
		err := tx.Where("wallet_address = ? AND status = ?", walletAddress, models.OrderActive).
			Order("start_time DESC").First(&order).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		res := tx.Model(&models.StakeOrder{}).
			Where("id = ? AND status = ?", order.ID, models.OrderActive).
			Update("status", models.OrderSlashed)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		amount := penalty(order)
		event := models.SlashEvent{OrderID: order.ID, Amount: amount, Reason: reason}
		if err := tx.Create(&event).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).
			Where("wallet_address = ?", walletAddress).
			UpdateColumn("total_staked", gorm.Expr("total_staked - ?", amount)).Error; err != nil {
			return err
		}
		applied = true
		return nil
	})
	return applied, err
}
