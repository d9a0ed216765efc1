package expiry

import (
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/zzzgjj49/xrp-hackathon-project/internal/metrics"
	"github.com/zzzgjj49/xrp-hackathon-project/internal/models"
	"github.com/zzzgjj49/xrp-hackathon-project/internal/util"
)

// StartSweeper periodically completes active stake orders whose end
// time has passed, returning the stake to the owner's totalStaked.
func StartSweeper(db *gorm.DB, interval time.Duration) {
	go sweepOnce(db)
	ticker := time.NewTicker(interval)
	for {
		<-ticker.C
		if n, err := Sweep(db); err != nil {
			logrus.WithError(err).Warn("stake expiry sweep failed")
		} else if n > 0 {
			logrus.Infof("completed %d expired stake orders", n)
		}
	}
}

func sweepOnce(db *gorm.DB) {
	time.Sleep(2 * time.Second)
	_, _ = Sweep(db)
}

// Sweep completes every expired active order and reports how many were
// transitioned. Each order is handled in its own transaction so one
// failure does not hold back the rest of the batch.
func Sweep(db *gorm.DB) (int, error) {
	var orders []models.StakeOrder
	if err := db.Where("status = ? AND end_time <= ?", models.OrderActive, util.Now()).
		Find(&orders).Error; err != nil {
		return 0, err
	}

	expired := 0
	for _, order := range orders {
		claimed := false
		err := db.Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&models.StakeOrder{}).
				Where("id = ? AND status = ?", order.ID, models.OrderActive).
				Update("status", models.OrderCompleted)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				// Unstaked or slashed since the batch was read.
				return nil
			}
			claimed = true
			return tx.Model(&models.User{}).
				Where("wallet_address = ?", order.WalletAddress).
				UpdateColumn("total_staked", gorm.Expr("total_staked - ?", order.Amount)).Error
		})
		if err != nil {
			return expired, err
		}
		if claimed {
			expired++
			metrics.OrdersExpired.Inc()
		}
	}
	return expired, nil
}
