package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/weiwangfds/galleria/internal/response"
	"github.com/weiwangfds/galleria/internal/service/gallery"
)

// GalleryHandler 相册管理HTTP处理器
type GalleryHandler struct {
	galleryService gallery.Service
}

// NewGalleryHandler 创建相册处理器实例
func NewGalleryHandler(galleryService gallery.Service) *GalleryHandler {
	return &GalleryHandler{galleryService: galleryService}
}

// CreateGallery 创建相册
// @Summary 创建相册
// @Description 创建一个新相册，名称必填
// @Tags 相册管理
// @Accept json
// @Produce json
// @Param request body gallery.CreateGalleryRequest true "相册信息"
// @Success 200 {object} response.Envelope
// @Router /api/v1/galleries [post]
func (h *GalleryHandler) CreateGallery(c *gin.Context) {
	var req gallery.CreateGalleryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	g, err := h.galleryService.CreateGallery(&req)
	if err != nil {
		response.FailWithError(c, err)
		return
	}

	response.Success(c, gin.H{
		"message": "Gallery created successfully",
		"gallery": g,
	})
}

// ListGalleries 获取相册列表
// @Summary 获取相册列表
// @Tags 相册管理
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /api/v1/galleries [get]
func (h *GalleryHandler) ListGalleries(c *gin.Context) {
	galleries, err := h.galleryService.ListGalleries()
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, galleries)
}

// GetGallery 获取相册详情
// @Summary 获取相册详情
// @Description 返回相册及其全部图片，图片按排序值升序
// @Tags 相册管理
// @Produce json
// @Param id path int true "相册ID"
// @Success 200 {object} response.Envelope
// @Router /api/v1/galleries/{id} [get]
func (h *GalleryHandler) GetGallery(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	g, err := h.galleryService.GetGallery(id)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, g)
}

// UpdateGallery 更新相册
// @Summary 更新相册
// @Tags 相册管理
// @Accept json
// @Produce json
// @Param id path int true "相册ID"
// @Param request body gallery.UpdateGalleryRequest true "相册信息"
// @Success 200 {object} response.Envelope
// @Router /api/v1/galleries/{id} [put]
func (h *GalleryHandler) UpdateGallery(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req gallery.UpdateGalleryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	g, err := h.galleryService.UpdateGallery(id, &req)
	if err != nil {
		response.FailWithError(c, err)
		return
	}

	response.Success(c, gin.H{
		"message": "Gallery updated successfully",
		"gallery": g,
	})
}

// DeleteGallery 删除相册
// @Summary 删除相册
// @Description 删除相册并级联删除其全部图片记录与文件
// @Tags 相册管理
// @Produce json
// @Param id path int true "相册ID"
// @Success 200 {object} response.Envelope
// @Router /api/v1/galleries/{id} [delete]
func (h *GalleryHandler) DeleteGallery(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	if err := h.galleryService.DeleteGallery(id); err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, "Gallery deleted successfully")
}

// UploadImage 上传图片到相册
// @Summary 上传图片
// @Description 校验并保存图片文件，新图片追加到相册末尾
// @Tags 图片管理
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "相册ID"
// @Param file formData file true "图片文件"
// @Success 200 {object} response.Envelope
// @Router /api/v1/galleries/{id}/images [post]
func (h *GalleryHandler) UploadImage(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "No file uploaded")
		return
	}

	image, err := h.galleryService.AttachImage(id, file)
	if err != nil {
		response.FailWithError(c, err)
		return
	}

	response.Success(c, gin.H{
		"message": "Image uploaded successfully",
		"image":   image,
	})
}

// ReorderImages 重排相册图片
// @Summary 重排图片
// @Description 按请求体中的ID顺序重设排序值
// @Tags 图片管理
// @Accept json
// @Produce json
// @Param id path int true "相册ID"
// @Success 200 {object} response.Envelope
// @Router /api/v1/galleries/{id}/images/order [put]
func (h *GalleryHandler) ReorderImages(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		ImageIDs []uint `json:"image_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.galleryService.ReorderImages(id, req.ImageIDs); err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, "Images sorted successfully")
}

// UpdateImage 更新图片元数据
// @Summary 更新图片信息
// @Description 更新图片的替代文本、标题和描述
// @Tags 图片管理
// @Accept json
// @Produce json
// @Param imageId path int true "图片ID"
// @Param request body gallery.UpdateImageRequest true "图片信息"
// @Success 200 {object} response.Envelope
// @Router /api/v1/images/{imageId} [put]
func (h *GalleryHandler) UpdateImage(c *gin.Context) {
	imageID, ok := parseUintParam(c, "imageId")
	if !ok {
		return
	}

	var req gallery.UpdateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	image, err := h.galleryService.UpdateImageMetadata(imageID, &req)
	if err != nil {
		response.FailWithError(c, err)
		return
	}

	response.Success(c, gin.H{
		"message": "Image data updated",
		"image":   image,
	})
}

// DeleteImage 删除图片
// @Summary 删除图片
// @Description 删除图片记录与文件
// @Tags 图片管理
// @Produce json
// @Param imageId path int true "图片ID"
// @Success 200 {object} response.Envelope
// @Router /api/v1/images/{imageId} [delete]
func (h *GalleryHandler) DeleteImage(c *gin.Context) {
	imageID, ok := parseUintParam(c, "imageId")
	if !ok {
		return
	}

	if err := h.galleryService.DeleteImage(imageID); err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, "Image deleted successfully")
}

// parseUintParam 解析路径中的数字ID参数，非法时直接写400响应
func parseUintParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || n == 0 {
		response.BadRequest(c, "Invalid "+name+" parameter")
		return 0, false
	}
	return uint(n), true
}
