package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/weiwangfds/galleria/config"
	"github.com/weiwangfds/galleria/internal/database"
	"github.com/weiwangfds/galleria/internal/service/gallery"
	"github.com/weiwangfds/galleria/internal/service/mirror"
	"github.com/weiwangfds/galleria/internal/service/render"
	"github.com/weiwangfds/galleria/internal/service/settings"
	"github.com/weiwangfds/galleria/internal/service/upload"
)

var pngBytes = append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 64)...)

// setupRouter 组装走真实服务栈的测试路由
func setupRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&database.Gallery{}, &database.GalleryImage{}, &database.Setting{}))

	settingsService := settings.NewService(db)
	uploadService := upload.NewService(&config.StorageConfig{
		ContentRoot: t.TempDir(),
		PublicPath:  "/uploads/custom-gallery",
	}, "")
	mirrorService, err := mirror.NewService(&config.MirrorConfig{Enabled: false})
	require.NoError(t, err)
	galleryService := gallery.NewService(db, uploadService, settingsService, mirrorService)
	renderService := render.NewService(galleryService, settingsService)

	galleryHandler := NewGalleryHandler(galleryService)
	renderHandler := NewRenderHandler(renderService)
	settingsHandler := NewSettingsHandler(settingsService, mirrorService)

	r := gin.New()
	v1 := r.Group("/api/v1")
	{
		v1.POST("/galleries", galleryHandler.CreateGallery)
		v1.GET("/galleries", galleryHandler.ListGalleries)
		v1.GET("/galleries/:id", galleryHandler.GetGallery)
		v1.PUT("/galleries/:id", galleryHandler.UpdateGallery)
		v1.DELETE("/galleries/:id", galleryHandler.DeleteGallery)
		v1.POST("/galleries/:id/images", galleryHandler.UploadImage)
		v1.PUT("/galleries/:id/images/order", galleryHandler.ReorderImages)
		v1.PUT("/images/:imageId", galleryHandler.UpdateImage)
		v1.DELETE("/images/:imageId", galleryHandler.DeleteImage)
		v1.GET("/settings", settingsHandler.GetSettings)
		v1.PUT("/settings", settingsHandler.UpdateSettings)
	}
	r.GET("/render/galleries/:id", renderHandler.RenderGallery)
	r.GET("/render/galleries/:id/slider", renderHandler.RenderSlider)

	return r
}

// doJSON 发送JSON请求并解析响应信封
func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return w, envelope
}

// uploadFile 通过multipart上传一张图片，返回图片ID
func uploadFile(t *testing.T, r *gin.Engine, galleryID uint, filename string) uint {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	h.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(pngBytes)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/galleries/%d/images", galleryID), &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var envelope struct {
		Success bool `json:"success"`
		Data    struct {
			Message string `json:"message"`
			Image   struct {
				ID uint `json:"id"`
			} `json:"image"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.True(t, envelope.Success, "upload failed: %s", w.Body.String())
	require.NotZero(t, envelope.Data.Image.ID)
	return envelope.Data.Image.ID
}

// createGallery 创建相册并返回ID
func createGallery(t *testing.T, r *gin.Engine, name string) uint {
	_, envelope := doJSON(t, r, http.MethodPost, "/api/v1/galleries", gin.H{"name": name})
	require.Equal(t, true, envelope["success"])
	data := envelope["data"].(map[string]interface{})
	g := data["gallery"].(map[string]interface{})
	return uint(g["id"].(float64))
}

// TestGalleryEndpoints 测试相册管理接口
func TestGalleryEndpoints(t *testing.T) {
	r := setupRouter(t)

	t.Run("创建相册", func(t *testing.T) {
		w, envelope := doJSON(t, r, http.MethodPost, "/api/v1/galleries", gin.H{"name": "Trip", "description": "Summer"})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, envelope["success"])
		data := envelope["data"].(map[string]interface{})
		assert.Equal(t, "Gallery created successfully", data["message"])
	})

	t.Run("名称为空返回业务失败", func(t *testing.T) {
		w, envelope := doJSON(t, r, http.MethodPost, "/api/v1/galleries", gin.H{"name": "  "})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, false, envelope["success"])
		assert.Equal(t, "Gallery name is required", envelope["data"])
	})

	t.Run("更新相册", func(t *testing.T) {
		id := createGallery(t, r, "Old")
		_, envelope := doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/v1/galleries/%d", id), gin.H{"name": "New"})
		assert.Equal(t, true, envelope["success"])
		data := envelope["data"].(map[string]interface{})
		assert.Equal(t, "Gallery updated successfully", data["message"])
	})

	t.Run("非法ID参数返回400", func(t *testing.T) {
		w, envelope := doJSON(t, r, http.MethodGet, "/api/v1/galleries/abc", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, false, envelope["success"])
	})

	t.Run("不存在的相册返回未找到消息", func(t *testing.T) {
		_, envelope := doJSON(t, r, http.MethodGet, "/api/v1/galleries/9999", nil)
		assert.Equal(t, false, envelope["success"])
	})
}

// TestImageEndpoints 测试图片管理接口
func TestImageEndpoints(t *testing.T) {
	r := setupRouter(t)
	galleryID := createGallery(t, r, "Trip")

	a := uploadFile(t, r, galleryID, "a.png")
	b := uploadFile(t, r, galleryID, "b.png")
	c := uploadFile(t, r, galleryID, "c.png")

	t.Run("重排图片", func(t *testing.T) {
		_, envelope := doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/v1/galleries/%d/images/order", galleryID), gin.H{
			"image_ids": []uint{c, a, b},
		})
		assert.Equal(t, true, envelope["success"])
		assert.Equal(t, "Images sorted successfully", envelope["data"])

		_, got := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/galleries/%d", galleryID), nil)
		data := got["data"].(map[string]interface{})
		images := data["images"].([]interface{})
		require.Len(t, images, 3)
		first := images[0].(map[string]interface{})
		assert.EqualValues(t, c, first["id"].(float64))
	})

	t.Run("更新图片元数据", func(t *testing.T) {
		_, envelope := doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/v1/images/%d", a), gin.H{
			"alt_text": "sunset",
			"title":    "Sunset",
		})
		assert.Equal(t, true, envelope["success"])
		data := envelope["data"].(map[string]interface{})
		assert.Equal(t, "Image data updated", data["message"])
		image := data["image"].(map[string]interface{})
		assert.Equal(t, "sunset", image["alt_text"])
	})

	t.Run("删除图片", func(t *testing.T) {
		_, envelope := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/v1/images/%d", b), nil)
		assert.Equal(t, true, envelope["success"])
		assert.Equal(t, "Image deleted successfully", envelope["data"])
	})

	t.Run("删除相册级联", func(t *testing.T) {
		_, envelope := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/v1/galleries/%d", galleryID), nil)
		assert.Equal(t, true, envelope["success"])
		assert.Equal(t, "Gallery deleted successfully", envelope["data"])

		_, got := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/galleries/%d", galleryID), nil)
		assert.Equal(t, false, got["success"])
	})
}

// TestRenderEndpoints 测试公开展示接口
func TestRenderEndpoints(t *testing.T) {
	r := setupRouter(t)
	galleryID := createGallery(t, r, "Trip")
	uploadFile(t, r, galleryID, "a.png")
	uploadFile(t, r, galleryID, "b.png")

	t.Run("相册渲染载荷", func(t *testing.T) {
		_, envelope := doJSON(t, r, http.MethodGet, fmt.Sprintf("/render/galleries/%d?size=small", galleryID), nil)
		assert.Equal(t, true, envelope["success"])
		data := envelope["data"].(map[string]interface{})
		assert.Equal(t, "small", data["size"])
		assert.Equal(t, "50%", data["width"])
		assert.Len(t, data["images"].([]interface{}), 2)
	})

	t.Run("轮播HTML", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/render/galleries/%d/slider", galleryID), nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, w.Body.String(), "cig-hero-slider")
	})
}

// TestSettingsEndpoints 测试配置接口
func TestSettingsEndpoints(t *testing.T) {
	r := setupRouter(t)

	t.Run("默认配置", func(t *testing.T) {
		_, envelope := doJSON(t, r, http.MethodGet, "/api/v1/settings", nil)
		assert.Equal(t, true, envelope["success"])
		data := envelope["data"].(map[string]interface{})
		assert.EqualValues(t, 5, data["max_file_size"].(float64))
		assert.Equal(t, "medium", data["default_size"])
	})

	t.Run("更新配置", func(t *testing.T) {
		_, envelope := doJSON(t, r, http.MethodPut, "/api/v1/settings", gin.H{"default_size": "full"})
		assert.Equal(t, true, envelope["success"])
		data := envelope["data"].(map[string]interface{})
		assert.Equal(t, "Settings saved successfully", data["message"])
	})

	t.Run("非法配置值整体拒绝", func(t *testing.T) {
		_, envelope := doJSON(t, r, http.MethodPut, "/api/v1/settings", gin.H{"slider_timer": "fast"})
		assert.Equal(t, false, envelope["success"])
	})
}
