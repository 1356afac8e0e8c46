package ordermodel

import "time"

// CallbackJob is one queued outbound partner notification. The payload and
// signature are frozen at enqueue time; delivery must not re-serialize.
type CallbackJob struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	URL       string    `gorm:"column:url;type:varchar(255);not null" json:"url"`
	Payload   RawJSON   `gorm:"column:payload;type:json;not null" json:"payload"`
	Signature string    `gorm:"column:signature;type:varchar(64);not null" json:"signature"`
	Attempts  int       `gorm:"column:attempts;not null;default:0" json:"attempts"`
	Delivered bool      `gorm:"column:delivered;not null;default:false;index" json:"delivered"`
	LastError *string   `gorm:"column:last_error;type:text" json:"lastError"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (CallbackJob) TableName() string { return "callback_job" }

// CallbackJobDeadLetter holds jobs that exhausted retries or hit a 4xx.
// Rows keep the original payload verbatim so an operator can replay them.
type CallbackJobDeadLetter struct {
	ID         uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	JobID      uint64    `gorm:"column:job_id;not null" json:"jobId"`
	URL        string    `gorm:"column:url;type:varchar(255);not null" json:"url"`
	Payload    RawJSON   `gorm:"column:payload;type:json;not null" json:"payload"`
	Signature  string    `gorm:"column:signature;type:varchar(64);not null" json:"signature"`
	Attempts   int       `gorm:"column:attempts;not null" json:"attempts"`
	LastError  *string   `gorm:"column:last_error;type:text" json:"lastError"`
	StatusCode *int      `gorm:"column:status_code" json:"statusCode"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (CallbackJobDeadLetter) TableName() string { return "callback_job_dead_letter" }
