package render

import (
	"bytes"
	"html/template"
	"regexp"
	"strconv"

	"github.com/weiwangfds/galleria/internal/errors"
	"github.com/weiwangfds/galleria/internal/service/gallery"
	"github.com/weiwangfds/galleria/internal/service/settings"
)

// 尺寸标记到容器宽度的映射
var sizeWidths = map[string]string{
	"small":  "50%",
	"medium": "75%",
	"full":   "100%",
}

// RenderedImage 渲染输出中的单张图片
type RenderedImage struct {
	ID          uint   `json:"id"`
	URL         string `json:"url"`
	AltText     string `json:"alt_text"`
	Title       string `json:"title"`
	Description string `json:"description"`
	SortOrder   int    `json:"sort_order"`
}

// GalleryView 相册渲染载荷
// Empty和NotFound是渲染标记：调用方据此输出占位内容而非报错
type GalleryView struct {
	GalleryID   uint            `json:"gallery_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Size        string          `json:"size"`
	Width       string          `json:"width"`
	SliderTimer int             `json:"slider_timer"`
	Images      []RenderedImage `json:"images"`
	Empty       bool            `json:"empty"`
	NotFound    bool            `json:"not_found"`
}

// Service 渲染服务接口
// 面向公开展示端：查不到相册返回带标记的载荷而不是错误
type Service interface {
	// RenderGallery 生成相册展示载荷
	RenderGallery(galleryID uint, size string) (*GalleryView, error)
	// RenderShortcode 解析短代码并生成轮播HTML
	RenderShortcode(shortcode string) (template.HTML, error)
	// RenderSliderHTML 生成指定相册的轮播HTML
	RenderSliderHTML(galleryID uint, size string) (template.HTML, error)
}

type renderService struct {
	galleries gallery.Service
	settings  settings.Service
}

// NewService 创建渲染服务实例
func NewService(gallerySvc gallery.Service, settingsSvc settings.Service) Service {
	return &renderService{galleries: gallerySvc, settings: settingsSvc}
}

// RenderGallery 生成相册展示载荷
// 非法尺寸标记回退到配置的默认尺寸
func (s *renderService) RenderGallery(galleryID uint, size string) (*GalleryView, error) {
	snap, err := s.settings.Get()
	if err != nil {
		return nil, err
	}

	if _, ok := sizeWidths[size]; !ok {
		size = snap.DefaultSize
	}

	view := &GalleryView{
		GalleryID:   galleryID,
		Size:        size,
		Width:       sizeWidths[size],
		SliderTimer: snap.SliderTimerMS,
		Images:      []RenderedImage{},
	}

	g, err := s.galleries.GetGallery(galleryID)
	if err != nil {
		if errors.IsCode(err, errors.ErrGalleryNotFound) {
			view.NotFound = true
			return view, nil
		}
		return nil, err
	}

	view.Name = g.Name
	view.Description = g.Description
	if len(g.Images) == 0 {
		view.Empty = true
		return view, nil
	}

	for _, img := range g.Images {
		view.Images = append(view.Images, RenderedImage{
			ID:          img.ID,
			URL:         img.FileURL,
			AltText:     img.AltText,
			Title:       img.Title,
			Description: img.Description,
			SortOrder:   img.SortOrder,
		})
	}
	return view, nil
}

// shortcodePattern 匹配 [image_gallery id="3" size="small"] 形式的短代码
// id必填，size可选，属性顺序不限，引号可省略
var shortcodePattern = regexp.MustCompile(`\[image_gallery\s+([^\]]+)\]`)
var attrPattern = regexp.MustCompile(`(\w+)\s*=\s*"?([^"\s\]]+)"?`)

// RenderShortcode 解析短代码并生成轮播HTML
func (s *renderService) RenderShortcode(shortcode string) (template.HTML, error) {
	match := shortcodePattern.FindStringSubmatch(shortcode)
	if match == nil {
		return "", errors.NewByCode(errors.ErrInvalidParams).
			WithDetails("not a valid gallery shortcode")
	}

	var galleryID uint
	var size string
	for _, attr := range attrPattern.FindAllStringSubmatch(match[1], -1) {
		switch attr[1] {
		case "id":
			n, err := strconv.ParseUint(attr[2], 10, 32)
			if err != nil {
				return "", errors.NewByCode(errors.ErrInvalidParams).
					WithDetails("shortcode id must be a positive integer")
			}
			galleryID = uint(n)
		case "size":
			size = attr[2]
		}
	}
	if galleryID == 0 {
		return "", errors.NewByCode(errors.ErrInvalidParams).
			WithDetails("shortcode requires an id attribute")
	}

	return s.RenderSliderHTML(galleryID, size)
}

// sliderTemplate 轮播HTML模板
// 首张幻灯片和首个圆点带active类，单图相册不输出圆点
var sliderTemplate = template.Must(template.New("slider").Parse(`{{if .NotFound}}<p class="cig-gallery-missing">Gallery not found.</p>
{{else if .Empty}}<p class="cig-gallery-empty">No images in gallery.</p>
{{else}}<div class="cig-hero-slider cig-size-{{.Size}}" style="max-width:{{.Width}}" data-timer="{{.SliderTimer}}">
  <div class="cig-slides">
{{range $i, $img := .Images}}    <div class="cig-slide{{if eq $i 0}} active{{end}}">
      <img src="{{$img.URL}}" alt="{{$img.AltText}}"{{if $img.Title}} title="{{$img.Title}}"{{end}}>
{{if $img.Description}}      <div class="cig-caption">{{$img.Description}}</div>
{{end}}    </div>
{{end}}  </div>
{{if gt (len .Images) 1}}  <div class="cig-dots">
{{range $i, $img := .Images}}    <span class="cig-dot{{if eq $i 0}} active{{end}}" data-slide="{{$i}}"></span>
{{end}}  </div>
{{end}}</div>
{{end}}`))

// RenderSliderHTML 生成指定相册的轮播HTML
func (s *renderService) RenderSliderHTML(galleryID uint, size string) (template.HTML, error) {
	view, err := s.RenderGallery(galleryID, size)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := sliderTemplate.Execute(&buf, view); err != nil {
		return "", errors.Wrap(errors.ErrInternalServer, "failed to render slider template", err)
	}
	return template.HTML(buf.String()), nil
}
