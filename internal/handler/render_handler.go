package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/weiwangfds/galleria/internal/response"
	"github.com/weiwangfds/galleria/internal/service/render"
)

// RenderHandler 公开展示端HTTP处理器
// 与管理端不同，查不到相册时返回带标记的载荷而非错误
type RenderHandler struct {
	renderService render.Service
}

// NewRenderHandler 创建渲染处理器实例
func NewRenderHandler(renderService render.Service) *RenderHandler {
	return &RenderHandler{renderService: renderService}
}

// RenderGallery 获取相册展示数据
// @Summary 获取相册展示数据
// @Description 返回相册的渲染载荷，size取small/medium/full，非法值回退默认
// @Tags 公开展示
// @Produce json
// @Param id path int true "相册ID"
// @Param size query string false "尺寸标记"
// @Success 200 {object} response.Envelope
// @Router /render/galleries/{id} [get]
func (h *RenderHandler) RenderGallery(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	view, err := h.renderService.RenderGallery(id, c.Query("size"))
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, view)
}

// RenderSlider 获取相册轮播HTML
// @Summary 获取相册轮播HTML
// @Description 返回可直接嵌入页面的轮播HTML片段
// @Tags 公开展示
// @Produce html
// @Param id path int true "相册ID"
// @Param size query string false "尺寸标记"
// @Success 200 {string} string "HTML片段"
// @Router /render/galleries/{id}/slider [get]
func (h *RenderHandler) RenderSlider(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	html, err := h.renderService.RenderSliderHTML(id, c.Query("size"))
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// RenderShortcode 解析短代码并返回轮播HTML
// @Summary 解析短代码
// @Description 解析短代码文本并返回对应的轮播HTML片段
// @Tags 公开展示
// @Accept json
// @Produce html
// @Success 200 {string} string "HTML片段"
// @Router /render/shortcode [post]
func (h *RenderHandler) RenderShortcode(c *gin.Context) {
	var req struct {
		Shortcode string `json:"shortcode" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	html, err := h.renderService.RenderShortcode(req.Shortcode)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}
