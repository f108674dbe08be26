package model

import "time"

// Типы действий в журнале.
const (
	ActionAdd  = "add"
	ActionEdit = "edit"
)

// Action - неизменяемая запись журнала действий.
// Одна запись на каждое принятое изменение, после вставки не меняется.
type Action struct {
	ID        int64
	UserID    int64
	CitizenID int64
	Type      string
	CreatedAt time.Time
}
