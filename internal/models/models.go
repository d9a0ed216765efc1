package models

import (
	"time"
)

const (
	OrderActive    = "active"
	OrderCompleted = "completed"
	OrderSlashed   = "slashed"
)

const PointsSourceTask = "task"

type User struct {
	ID            uint    `json:"id" gorm:"primaryKey"`
	WalletAddress string  `json:"walletAddress" gorm:"uniqueIndex"`
	Nickname      string  `json:"nickname"`
	TotalStaked   float64 `json:"totalStaked" gorm:"type:numeric(18,6)"`
	TotalPoints   float64 `json:"totalPoints" gorm:"type:numeric(18,6)"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type StakeOrder struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	WalletAddress string    `json:"walletAddress" gorm:"index"`
	Amount        float64   `json:"amount" gorm:"type:numeric(18,6)"`
	Duration      int       `json:"duration"`
	StartTime     time.Time `json:"startTime" gorm:"index"`
	EndTime       time.Time `json:"endTime" gorm:"index"`
	Status        string    `json:"status" gorm:"index"`
	NFTokenID     string    `json:"nftokenId" gorm:"column:nftoken_id;index"`
	CreatedAt     time.Time
}

type SlashEvent struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	OrderID   uint      `json:"orderId" gorm:"index"`
	Amount    float64   `json:"amount" gorm:"type:numeric(18,6)"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
}

type PointsHistory struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	WalletAddress string    `json:"walletAddress" gorm:"index"`
	TaskID        string    `json:"taskId" gorm:"index"`
	Amount        float64   `json:"amount" gorm:"type:numeric(18,6)"`
	Source        string    `json:"source" gorm:"index;default:task"`
	CreatedAt     time.Time `json:"createdAt" gorm:"index"`
}
