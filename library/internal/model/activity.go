package model

import "time"

type UserActivity struct {
	ID          int64     `json:"activityId" db:"id"`
	UserID      int64     `json:"userId" db:"user_id"`
	Username    string    `json:"username" db:"username"`
	Action      string    `json:"action" db:"action"`
	EntityType  string    `json:"entityType,omitempty" db:"entity_type"`
	EntityID    *int64    `json:"entityId,omitempty" db:"entity_id"`
	Description string    `json:"description,omitempty" db:"description"`
	IPAddress   string    `json:"ipAddress,omitempty" db:"ip_address"`
	UserAgent   string    `json:"userAgent,omitempty" db:"user_agent"`
	Timestamp   time.Time `json:"timestamp" db:"timestamp"`
}

type ActivityFilter struct {
	UserID *int64
}
