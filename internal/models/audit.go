package models

import (
	"time"

	"github.com/otcheredev/dicomweb-store/internal/dbtypes"
)

// AccessLogEvent is one immutable audit row, written per request and shipped
// to the webapi topic. The header bag never contains authorization or cookie
// material; redaction happens before the event is constructed.
type AccessLogEvent struct {
	ID        int64                                 `gorm:"primaryKey;autoIncrement" json:"-"`
	Timestamp time.Time                             `gorm:"index" json:"timestamp"`
	TenantID  dbtypes.BoundedString[dbtypes.Len64]  `gorm:"type:varchar(64);index" json:"tenant_id"`
	RequestID string                                `gorm:"type:varchar(32)" json:"request_id"`
	Method    dbtypes.BoundedString[dbtypes.Len10]  `gorm:"type:varchar(10)" json:"method"`
	Path      dbtypes.BoundedString[dbtypes.Len512] `gorm:"type:varchar(512)" json:"path"`
	Query     string                                `gorm:"type:text" json:"query_params"`
	PeerAddr  dbtypes.BoundedString[dbtypes.Len45]  `gorm:"type:varchar(45)" json:"peer_addr"`
	Headers   string                                `gorm:"type:text" json:"headers"`

	User   dbtypes.BoundedString[dbtypes.Len128] `gorm:"type:varchar(128)" json:"user"`
	UserID dbtypes.BoundedString[dbtypes.Len64]  `gorm:"type:varchar(64)" json:"user_id"`

	Status        int    `json:"status"`
	ContentLength string `gorm:"type:varchar(20)" json:"content_length"`
	DurationMs    int64  `json:"duration_ms"`
}

func (AccessLogEvent) TableName() string { return "access_log" }
