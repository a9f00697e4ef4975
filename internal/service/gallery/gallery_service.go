package gallery

import (
	"fmt"
	"mime/multipart"
	"strings"

	"gorm.io/gorm"

	"github.com/weiwangfds/galleria/internal/database"
	"github.com/weiwangfds/galleria/internal/errors"
	"github.com/weiwangfds/galleria/internal/logger"
	"github.com/weiwangfds/galleria/internal/service/mirror"
	"github.com/weiwangfds/galleria/internal/service/settings"
	"github.com/weiwangfds/galleria/internal/service/upload"
)

// CreateGalleryRequest 创建相册请求
type CreateGalleryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// UpdateGalleryRequest 更新相册请求
type UpdateGalleryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// UpdateImageRequest 更新图片元数据请求
// 指针字段区分"未提供"和"清空"
type UpdateImageRequest struct {
	AltText     *string `json:"alt_text"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// Service 相册服务接口
type Service interface {
	// CreateGallery 创建相册，名称为空白时拒绝
	CreateGallery(req *CreateGalleryRequest) (*database.Gallery, error)
	// GetGallery 获取相册及其图片（按sort_order升序）
	GetGallery(id uint) (*database.Gallery, error)
	// ListGalleries 获取全部相册，附带图片数量
	ListGalleries() ([]GallerySummary, error)
	// UpdateGallery 更新相册名称与描述
	UpdateGallery(id uint, req *UpdateGalleryRequest) (*database.Gallery, error)
	// DeleteGallery 删除相册并级联删除其全部图片（记录与文件）
	DeleteGallery(id uint) error
	// AttachImage 上传图片并挂入相册尾部
	AttachImage(galleryID uint, file *multipart.FileHeader) (*database.GalleryImage, error)
	// DeleteImage 删除单张图片（先删记录，后删文件）
	DeleteImage(imageID uint) error
	// UpdateImageMetadata 更新图片的alt/标题/描述
	UpdateImageMetadata(imageID uint, req *UpdateImageRequest) (*database.GalleryImage, error)
	// ReorderImages 按给定ID顺序重排相册图片
	ReorderImages(galleryID uint, imageIDs []uint) error
}

// GallerySummary 相册列表项
type GallerySummary struct {
	database.Gallery
	ImageCount int64 `json:"image_count"`
}

type galleryService struct {
	db       *gorm.DB
	uploader upload.Service
	settings settings.Service
	mirror   mirror.Service
}

// NewService 创建相册服务实例
func NewService(db *gorm.DB, uploader upload.Service, settingsSvc settings.Service, mirrorSvc mirror.Service) Service {
	return &galleryService{
		db:       db,
		uploader: uploader,
		settings: settingsSvc,
		mirror:   mirrorSvc,
	}
}

// CreateGallery 创建相册
func (s *galleryService) CreateGallery(req *CreateGalleryRequest) (*database.Gallery, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errors.NewByCode(errors.ErrGalleryNameRequired)
	}

	gallery := &database.Gallery{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
	}
	if err := s.db.Create(gallery).Error; err != nil {
		return nil, errors.Wrap(errors.ErrGalleryCreateFailed, "failed to create gallery", err)
	}

	logger.Infof("Gallery created: id=%d name=%q", gallery.ID, gallery.Name)
	return gallery, nil
}

// GetGallery 获取相册及其图片
func (s *galleryService) GetGallery(id uint) (*database.Gallery, error) {
	var gallery database.Gallery
	err := s.db.Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC, id ASC")
	}).First(&gallery, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewByCode(errors.ErrGalleryNotFound)
		}
		return nil, errors.Wrap(errors.ErrDatabaseQuery, "failed to query gallery", err)
	}
	return &gallery, nil
}

// ListGalleries 获取全部相册
func (s *galleryService) ListGalleries() ([]GallerySummary, error) {
	var galleries []database.Gallery
	if err := s.db.Order("created_at DESC").Find(&galleries).Error; err != nil {
		return nil, errors.Wrap(errors.ErrDatabaseQuery, "failed to list galleries", err)
	}

	summaries := make([]GallerySummary, 0, len(galleries))
	for _, g := range galleries {
		var count int64
		if err := s.db.Model(&database.GalleryImage{}).Where("gallery_id = ?", g.ID).Count(&count).Error; err != nil {
			return nil, errors.Wrap(errors.ErrDatabaseQuery, "failed to count gallery images", err)
		}
		summaries = append(summaries, GallerySummary{Gallery: g, ImageCount: count})
	}
	return summaries, nil
}

// UpdateGallery 更新相册
func (s *galleryService) UpdateGallery(id uint, req *UpdateGalleryRequest) (*database.Gallery, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errors.NewByCode(errors.ErrGalleryNameRequired)
	}

	result := s.db.Model(&database.Gallery{}).Where("id = ?", id).Updates(map[string]interface{}{
		"name":        name,
		"description": strings.TrimSpace(req.Description),
	})
	if result.Error != nil {
		return nil, errors.Wrap(errors.ErrGalleryUpdateFailed, "failed to update gallery", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, errors.NewByCode(errors.ErrGalleryNotFound)
	}

	return s.GetGallery(id)
}

// DeleteGallery 删除相册并级联删除其全部图片
// 文件删除尽力而为，单个文件删不掉不阻塞整体流程
func (s *galleryService) DeleteGallery(id uint) error {
	var gallery database.Gallery
	if err := s.db.First(&gallery, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.NewByCode(errors.ErrGalleryNotFound)
		}
		return errors.Wrap(errors.ErrDatabaseQuery, "failed to query gallery", err)
	}

	var images []database.GalleryImage
	if err := s.db.Where("gallery_id = ?", id).Find(&images).Error; err != nil {
		return errors.Wrap(errors.ErrDatabaseQuery, "failed to query gallery images", err)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("gallery_id = ?", id).Delete(&database.GalleryImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&database.Gallery{}, id).Error
	})
	if err != nil {
		return errors.Wrap(errors.ErrGalleryDeleteFailed, "failed to delete gallery", err)
	}

	for _, img := range images {
		if err := s.uploader.Remove(img.FilePath); err != nil {
			logger.Warnf("Failed to remove file for image %d: %v", img.ID, err)
		}
		if err := s.mirror.Delete(id, img.FileName); err != nil {
			logger.Warnf("Failed to remove mirrored file for image %d: %v", img.ID, err)
		}
	}

	logger.Infof("Gallery deleted: id=%d images=%d", id, len(images))
	return nil
}

// AttachImage 上传图片并挂入相册
// 顺序：校验相册存在、校验数量上限、落盘、插记录，落盘成功但入库失败时回收文件
func (s *galleryService) AttachImage(galleryID uint, file *multipart.FileHeader) (*database.GalleryImage, error) {
	var gallery database.Gallery
	if err := s.db.First(&gallery, galleryID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewByCode(errors.ErrGalleryNotFound)
		}
		return nil, errors.Wrap(errors.ErrDatabaseQuery, "failed to query gallery", err)
	}

	snap, err := s.settings.Get()
	if err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.Model(&database.GalleryImage{}).Where("gallery_id = ?", galleryID).Count(&count).Error; err != nil {
		return nil, errors.Wrap(errors.ErrDatabaseQuery, "failed to count gallery images", err)
	}
	if count >= int64(snap.MaxImagesPerGallery) {
		return nil, errors.NewByCode(errors.ErrGalleryImageLimit).
			WithDetails(fmt.Sprintf("gallery already has %d images (limit %d)", count, snap.MaxImagesPerGallery))
	}

	stored, err := s.uploader.Store(file, snap)
	if err != nil {
		return nil, err
	}

	image := &database.GalleryImage{
		GalleryID:        galleryID,
		FileName:         stored.FileName,
		OriginalFilename: stored.OriginalFilename,
		FilePath:         stored.FilePath,
		FileURL:          stored.FileURL,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// 新图片追加到队尾，空相册从0开始
		var next int
		row := tx.Model(&database.GalleryImage{}).
			Where("gallery_id = ?", galleryID).
			Select("COALESCE(MAX(sort_order), -1) + 1")
		if err := row.Scan(&next).Error; err != nil {
			return err
		}
		image.SortOrder = next
		return tx.Create(image).Error
	})
	if err != nil {
		if rmErr := s.uploader.Remove(stored.FilePath); rmErr != nil {
			logger.Warnf("Failed to clean up file after insert failure: %v", rmErr)
		}
		return nil, errors.Wrap(errors.ErrDatabaseInsert, "failed to record image", err)
	}

	if s.mirror.Enabled() {
		if err := s.mirror.Upload(galleryID, stored.FileName, stored.FilePath, stored.ContentType); err != nil {
			logger.Warnf("Failed to mirror image %d: %v", image.ID, err)
		}
	}

	logger.Infof("Image attached: gallery=%d image=%d file=%s", galleryID, image.ID, image.FileName)
	return image, nil
}

// DeleteImage 删除单张图片
// 先删数据库记录再删文件：记录删除失败则图片完好，文件删除失败仅留下孤儿文件
func (s *galleryService) DeleteImage(imageID uint) error {
	var image database.GalleryImage
	if err := s.db.First(&image, imageID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.NewByCode(errors.ErrImageNotFound)
		}
		return errors.Wrap(errors.ErrDatabaseQuery, "failed to query image", err)
	}

	if err := s.db.Delete(&database.GalleryImage{}, imageID).Error; err != nil {
		return errors.Wrap(errors.ErrImageDeleteFailed, "failed to delete image record", err)
	}

	if err := s.uploader.Remove(image.FilePath); err != nil {
		logger.Warnf("Image %d record deleted but file removal failed: %v", imageID, err)
		return errors.NewByCode(errors.ErrImagePartiallyDeleted).
			WithDetails(fmt.Sprintf("record deleted but file %s remains", image.FileName))
	}
	if err := s.mirror.Delete(image.GalleryID, image.FileName); err != nil {
		logger.Warnf("Failed to remove mirrored file for image %d: %v", imageID, err)
	}

	logger.Infof("Image deleted: id=%d file=%s", imageID, image.FileName)
	return nil
}

// UpdateImageMetadata 更新图片元数据
func (s *galleryService) UpdateImageMetadata(imageID uint, req *UpdateImageRequest) (*database.GalleryImage, error) {
	var image database.GalleryImage
	if err := s.db.First(&image, imageID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewByCode(errors.ErrImageNotFound)
		}
		return nil, errors.Wrap(errors.ErrDatabaseQuery, "failed to query image", err)
	}

	updates := map[string]interface{}{}
	if req.AltText != nil {
		updates["alt_text"] = *req.AltText
	}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if len(updates) == 0 {
		return &image, nil
	}

	if err := s.db.Model(&image).Updates(updates).Error; err != nil {
		return nil, errors.Wrap(errors.ErrImageUpdateFailed, "failed to update image", err)
	}
	if err := s.db.First(&image, imageID).Error; err != nil {
		return nil, errors.Wrap(errors.ErrDatabaseQuery, "failed to reload image", err)
	}
	return &image, nil
}

// ReorderImages 按给定ID顺序重排相册图片
// sort_order取ID在列表中的下标，不属于该相册的ID忽略，
// 未出现在列表中的图片保持原sort_order
func (s *galleryService) ReorderImages(galleryID uint, imageIDs []uint) error {
	var gallery database.Gallery
	if err := s.db.First(&gallery, galleryID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.NewByCode(errors.ErrGalleryNotFound)
		}
		return errors.Wrap(errors.ErrDatabaseQuery, "failed to query gallery", err)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for index, imageID := range imageIDs {
			result := tx.Model(&database.GalleryImage{}).
				Where("id = ? AND gallery_id = ?", imageID, galleryID).
				Update("sort_order", index)
			if result.Error != nil {
				return result.Error
			}
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(errors.ErrSortFailed, "failed to reorder images", err)
	}

	logger.Infof("Gallery %d reordered: %d images", galleryID, len(imageIDs))
	return nil
}
