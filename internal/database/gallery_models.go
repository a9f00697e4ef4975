package database

import (
	"time"
)

// Gallery 相册数据模型
// 一个相册包含任意数量的图片，删除相册时级联删除其全部图片
type Gallery struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string    `json:"name" gorm:"type:varchar(255);not null" binding:"required"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_date" gorm:"autoCreateTime"`

	// 关联图片，按sort_order升序
	Images []GalleryImage `json:"images,omitempty" gorm:"foreignKey:GalleryID"`
}

// TableName 指定表名
func (Gallery) TableName() string {
	return "galleries"
}

// GalleryImage 相册图片数据模型
// FileName为磁盘存储名（uuid前缀+清洗后的原名），OriginalFilename保留上传时的原始文件名
type GalleryImage struct {
	ID               uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	GalleryID        uint      `json:"gallery_id" gorm:"not null;index"`
	FileName         string    `json:"filename" gorm:"type:varchar(255);not null"`
	OriginalFilename string    `json:"original_filename" gorm:"type:varchar(255);not null"`
	FilePath         string    `json:"file_path" gorm:"type:varchar(500);not null"`
	FileURL          string    `json:"file_url" gorm:"type:varchar(500);not null"`
	AltText          string    `json:"alt_text" gorm:"type:varchar(255)"`
	Title            string    `json:"title" gorm:"type:varchar(255)"`
	Description      string    `json:"description" gorm:"type:text"`
	SortOrder        int       `json:"sort_order" gorm:"not null;default:0;index"`
	UploadedAt       time.Time `json:"uploaded_date" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (GalleryImage) TableName() string {
	return "gallery_images"
}
