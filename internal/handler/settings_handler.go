package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/weiwangfds/galleria/internal/response"
	"github.com/weiwangfds/galleria/internal/service/mirror"
	"github.com/weiwangfds/galleria/internal/service/settings"
)

// SettingsHandler 系统配置HTTP处理器
type SettingsHandler struct {
	settingsService settings.Service
	mirrorService   mirror.Service
}

// NewSettingsHandler 创建配置处理器实例
func NewSettingsHandler(settingsService settings.Service, mirrorService mirror.Service) *SettingsHandler {
	return &SettingsHandler{
		settingsService: settingsService,
		mirrorService:   mirrorService,
	}
}

// GetSettings 获取当前配置
// @Summary 获取当前配置
// @Description 返回全部配置项，缺省键为内置默认值
// @Tags 系统配置
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /api/v1/settings [get]
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	snap, err := h.settingsService.Get()
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, snap)
}

// UpdateSettings 更新配置
// @Summary 更新配置
// @Description 批量更新配置项，任一键非法时整体拒绝
// @Tags 系统配置
// @Accept json
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /api/v1/settings [put]
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var req map[string]string
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if len(req) == 0 {
		response.BadRequest(c, "No settings provided")
		return
	}

	snap, err := h.settingsService.Update(req)
	if err != nil {
		response.FailWithError(c, err)
		return
	}

	response.Success(c, gin.H{
		"message":  "Settings saved successfully",
		"settings": snap,
	})
}

// TestMirror 测试镜像连接
// @Summary 测试镜像连接
// @Description 使用当前镜像配置测试对象存储连通性
// @Tags 系统配置
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /api/v1/settings/mirror/test [post]
func (h *SettingsHandler) TestMirror(c *gin.Context) {
	if !h.mirrorService.Enabled() {
		response.Success(c, gin.H{
			"enabled": false,
			"message": "Mirror is not configured",
		})
		return
	}

	if err := h.mirrorService.TestConnection(); err != nil {
		response.InternalServerError(c, "Mirror connection test failed: "+err.Error())
		return
	}

	response.Success(c, gin.H{
		"enabled": true,
		"message": "Mirror connection OK",
	})
}
