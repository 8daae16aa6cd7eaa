package booking

import (
	"time"

	"estate_market_backend/internal/common"
)

// Status is the lifecycle state of a booking inquiry.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// Booking is a viewing request or inquiry about a property.
type Booking struct {
	common.BaseModel
	PropertyID    uint       `gorm:"not null;index"`
	UserID        string     `gorm:"type:varchar(128);not null;index"`
	Reference     string     `gorm:"type:varchar(32);not null;uniqueIndex"`
	ContactName   string     `gorm:"type:varchar(255);not null"`
	ContactEmail  string     `gorm:"type:varchar(255);not null"`
	ContactPhone  string     `gorm:"type:varchar(50)"`
	Message       string     `gorm:"type:text"`
	PreferredDate *time.Time `gorm:"type:date"`
	PreferredTime string     `gorm:"type:varchar(20)"`
	Status        Status     `gorm:"type:varchar(20);not null;index"`
}

func (Booking) TableName() string {
	return "bookings"
}

// CreateBookingRequest is the body of POST /api/properties/:id/bookings.
type CreateBookingRequest struct {
	ContactName   string `json:"contact_name" binding:"required,max=255"`
	ContactEmail  string `json:"contact_email" binding:"required,email"`
	ContactPhone  string `json:"contact_phone" binding:"max=50"`
	Message       string `json:"message" binding:"max=5000"`
	PreferredDate string `json:"preferred_date" binding:"omitempty,datetime=2006-01-02"`
	PreferredTime string `json:"preferred_time" binding:"omitempty,datetime=15:04"`
}

// UpdateStatusRequest moves a booking to a new status.
type UpdateStatusRequest struct {
	Status Status `json:"status" binding:"required,oneof=pending confirmed cancelled"`
}

type BookingResponse struct {
	ID            uint      `json:"id"`
	PropertyID    uint      `json:"property_id"`
	UserID        string    `json:"user_id"`
	Reference     string    `json:"reference"`
	ContactName   string    `json:"contact_name"`
	ContactEmail  string    `json:"contact_email"`
	ContactPhone  string    `json:"contact_phone,omitempty"`
	Message       string    `json:"message,omitempty"`
	PreferredDate *string   `json:"preferred_date,omitempty"`
	PreferredTime string    `json:"preferred_time,omitempty"`
	Status        Status    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func ToBookingResponse(b Booking) BookingResponse {
	resp := BookingResponse{
		ID:            b.ID,
		PropertyID:    b.PropertyID,
		UserID:        b.UserID,
		Reference:     b.Reference,
		ContactName:   b.ContactName,
		ContactEmail:  b.ContactEmail,
		ContactPhone:  b.ContactPhone,
		Message:       b.Message,
		PreferredTime: b.PreferredTime,
		Status:        b.Status,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
	if b.PreferredDate != nil {
		d := b.PreferredDate.Format("2006-01-02")
		resp.PreferredDate = &d
	}
	return resp
}

func ToBookingResponses(list []Booking) []BookingResponse {
	out := make([]BookingResponse, 0, len(list))
	for _, b := range list {
		out = append(out, ToBookingResponse(b))
	}
	return out
}
