package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zzzgjj49/xrp-hackathon-project/internal/models"
)

func TestReviewPassAwardsPoints(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)

	rec, out := perform(t, r, http.MethodPost, "/api/review", map[string]interface{}{
		"taskId":        "7",
		"verdict":       "pass",
		"points":        50,
		"evidence":      []string{"screenshot.png"},
		"walletAddress": "rTest2",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, out["success"])
	require.Equal(t, 50.0, out["points"])
	require.Equal(t, "Task 7 has been passed", out["message"])

	var user models.User
	require.NoError(t, db.Where("wallet_address = ?", "rTest2").First(&user).Error)
	require.Equal(t, 50.0, user.TotalPoints)
	require.Equal(t, 0.0, user.TotalStaked)

	var entry models.PointsHistory
	require.NoError(t, db.Where("wallet_address = ?", "rTest2").First(&entry).Error)
	require.Equal(t, "7", entry.TaskID)
	require.Equal(t, 50.0, entry.Amount)
	require.Equal(t, models.PointsSourceTask, entry.Source)
}

func TestReviewPassIncrementsExistingUser(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)

	require.NoError(t, db.Create(&models.User{WalletAddress: "rTest2", TotalPoints: 30}).Error)

	perform(t, r, http.MethodPost, "/api/review", map[string]interface{}{
		"taskId":        "8",
		"verdict":       "pass",
		"points":        20,
		"evidence":      []string{},
		"walletAddress": "rTest2",
	})

	var user models.User
	require.NoError(t, db.Where("wallet_address = ?", "rTest2").First(&user).Error)
	require.Equal(t, 50.0, user.TotalPoints)
}

func TestReviewRejectAppliesPenalty(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)

	perform(t, r, http.MethodPost, "/api/stake", stakeBody(1000, 30, "rTest2"))

	rec, out := perform(t, r, http.MethodPost, "/api/review", map[string]interface{}{
		"taskId":        "42",
		"verdict":       "reject",
		"evidence":      []string{"log.txt"},
		"walletAddress": "rTest2",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 0.0, out["points"])
	require.Equal(t, "Task 42 has been rejected", out["message"])

	var order models.StakeOrder
	require.NoError(t, db.Where("wallet_address = ?", "rTest2").First(&order).Error)
	require.Equal(t, models.OrderSlashed, order.Status)

	var event models.SlashEvent
	require.NoError(t, db.Where("order_id = ?", order.ID).First(&event).Error)
	require.Equal(t, 50.0, event.Amount) // 5% of 1000
	require.Equal(t, "Task 42 rejected", event.Reason)

	var user models.User
	require.NoError(t, db.Where("wallet_address = ?", "rTest2").First(&user).Error)
	require.Equal(t, 950.0, user.TotalStaked)
}

func TestReviewSlashVerdictAppliesPenalty(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)

	perform(t, r, http.MethodPost, "/api/stake", stakeBody(400, 14, "rTest2"))

	_, out := perform(t, r, http.MethodPost, "/api/review", map[string]interface{}{
		"taskId":   "9",
		"verdict":  "slash",
		"evidence": []string{"wallet:rTest2"},
	})
	require.Equal(t, "Task 9 has been slashed", out["message"])

	var event models.SlashEvent
	require.NoError(t, db.First(&event).Error)
	require.Equal(t, 20.0, event.Amount) // 5% of 400
	require.Equal(t, "Task 9 slashed", event.Reason)
}

func TestReviewWalletResolvedFromEvidence(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)

	perform(t, r, http.MethodPost, "/api/review", map[string]interface{}{
		"taskId":   "11",
		"verdict":  "pass",
		"points":   25,
		"evidence": []string{"screenshot.png", "wallet: rEvidence1"},
	})

	var user models.User
	require.NoError(t, db.Where("wallet_address = ?", "rEvidence1").First(&user).Error)
	require.Equal(t, 25.0, user.TotalPoints)
}

// An unresolvable submitter means no persistence action, but the HTTP
// response still reports success.
func TestReviewUnresolvedWalletIsNoop(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)

	rec, out := perform(t, r, http.MethodPost, "/api/review", map[string]interface{}{
		"taskId":   "12",
		"verdict":  "pass",
		"points":   25,
		"evidence": []string{"screenshot.png"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, out["success"])

	var count int64
	require.NoError(t, db.Model(&models.PointsHistory{}).Count(&count).Error)
	require.Equal(t, int64(0), count)
}

func TestReviewMissingFields(t *testing.T) {
	r := newTestRouter(setupTestDB(t))

	bodies := []map[string]interface{}{
		{"verdict": "pass", "evidence": []string{}},
		{"taskId": "1", "evidence": []string{}},
		{"taskId": "1", "verdict": "pass"},
	}
	for _, body := range bodies {
		rec, out := perform(t, r, http.MethodPost, "/api/review", body)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "Missing required fields", out["error"])
	}
}

func TestReviewWithoutDatabaseStillSucceeds(t *testing.T) {
	r := newTestRouter(nil)

	rec, out := perform(t, r, http.MethodPost, "/api/review", map[string]interface{}{
		"taskId":   "13",
		"verdict":  "pass",
		"points":   10,
		"evidence": []string{"wallet:rTest2"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, out["success"])
	require.Equal(t, 10.0, out["points"])
}
