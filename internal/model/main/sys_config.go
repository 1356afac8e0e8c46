package mainmodel

import "time"

// SysConfig is the platform settings table (weekend override dates, forced
// provider, ops chat id). Cached in Redis by internal/system.
type SysConfig struct {
	ConfigID    uint64     `gorm:"column:config_id;primaryKey" json:"configId"`
	ConfigKey   string     `gorm:"column:config_key;type:varchar(100);uniqueIndex;not null" json:"configKey"`
	ConfigValue string     `gorm:"column:config_value;type:text" json:"configValue"`
	UpdateTime  *time.Time `gorm:"column:update_time;autoUpdateTime" json:"updateTime"`
}

func (SysConfig) TableName() string { return "sys_config" }
