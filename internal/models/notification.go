package models

import "time"

type NotificationType string

const NotificationLeadAssigned NotificationType = "lead_assigned"

type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	LeadID    *string          `json:"lead_id,omitempty"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
	ReadAt    *time.Time       `json:"read_at,omitempty"`
}
