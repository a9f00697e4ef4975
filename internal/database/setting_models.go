package database

import (
	"time"
)

// Setting 系统配置项数据模型
// 以键值对形式存储运行时可调整的配置，缺失的键使用内置默认值
type Setting struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Key       string    `json:"key" gorm:"type:varchar(100);uniqueIndex;not null"`
	Value     string    `json:"value" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Setting) TableName() string {
	return "gallery_settings"
}
