package history

import (
	"time"

	"estate_market_backend/internal/common"
)

// SearchHistory is one recorded search. Rows are append-only and pruned by age.
type SearchHistory struct {
	ID          uint           `gorm:"primaryKey;autoIncrement"`
	UserID      string         `gorm:"type:varchar(128);not null;index"`
	Query       string         `gorm:"type:varchar(500)"`
	Filters     common.JSONMap ``
	ResultCount int            `gorm:"not null"`
	CreatedAt   time.Time      `gorm:"not null;index"`
}

func (SearchHistory) TableName() string {
	return "search_history"
}

// ViewingHistory tracks the last time a user opened a property and how often.
type ViewingHistory struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"`
	UserID     string    `gorm:"type:varchar(128);not null;uniqueIndex:idx_viewing_user_property,priority:1"`
	PropertyID uint      `gorm:"not null;uniqueIndex:idx_viewing_user_property,priority:2;index"`
	ViewedAt   time.Time `gorm:"not null;index"`
	ViewCount  int       `gorm:"not null"`
}

func (ViewingHistory) TableName() string {
	return "viewing_history"
}

// ViewingEntry is a viewing history row with a summary of the property.
type ViewingEntry struct {
	ViewingHistory
	Title *string
	City  *string
	Price *float64
}

type SearchHistoryResponse struct {
	ID          uint                   `json:"id"`
	Query       string                 `json:"query"`
	Filters     map[string]interface{} `json:"filters,omitempty"`
	ResultCount int                    `json:"result_count"`
	CreatedAt   time.Time              `json:"created_at"`
}

type ViewingHistoryResponse struct {
	PropertyID uint      `json:"property_id"`
	Title      *string   `json:"title,omitempty"`
	City       *string   `json:"city,omitempty"`
	Price      *float64  `json:"price,omitempty"`
	ViewedAt   time.Time `json:"viewed_at"`
	ViewCount  int       `json:"view_count"`
}

func toSearchResponses(rows []SearchHistory) []SearchHistoryResponse {
	out := make([]SearchHistoryResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, SearchHistoryResponse{
			ID:          r.ID,
			Query:       r.Query,
			Filters:     r.Filters,
			ResultCount: r.ResultCount,
			CreatedAt:   r.CreatedAt,
		})
	}
	return out
}

func toViewingResponses(rows []ViewingEntry) []ViewingHistoryResponse {
	out := make([]ViewingHistoryResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, ViewingHistoryResponse{
			PropertyID: r.PropertyID,
			Title:      r.Title,
			City:       r.City,
			Price:      r.Price,
			ViewedAt:   r.ViewedAt,
			ViewCount:  r.ViewCount,
		})
	}
	return out
}
