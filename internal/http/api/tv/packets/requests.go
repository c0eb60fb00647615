package packets

import "time"

// REQUESTS FOR /api/tv/*

type RegisterPairingCodeRequest struct {
	PairingCode string `json:"code" binding:"required"`
	DeviceID    string `json:"device_id" binding:"required"`
}

// ConnectRequest announces a paired device on the realtime channel.
type ConnectRequest struct {
	DeviceID string `json:"device_id" binding:"required"`
}

type HeartbeatRequest struct {
	DeviceID  string    `json:"device_id" binding:"required"`
	Timestamp time.Time `json:"timestamp"`
}

type PositionReportRequest struct {
	DeviceID    string    `json:"device_id" binding:"required"`
	GroupID     int       `json:"group_id" binding:"required"`
	ContentID   *int      `json:"content_id"`
	CurrentTime float64   `json:"current_time"`
	Timestamp   time.Time `json:"timestamp"`
}

type RequestSyncRequest struct {
	DeviceID string `json:"device_id" binding:"required"`
	GroupID  int    `json:"group_id" binding:"required"`
}
