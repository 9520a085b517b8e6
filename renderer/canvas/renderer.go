package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/ByLCY/cartouche/layout"
	"github.com/ByLCY/cartouche/renderer"
)

const defaultStrokeWidth = 0.2

// Renderer draws layout results via github.com/tdewolff/canvas and also
// serves as the layout.Measurer backend (glyph widths from the embedded Go fonts).
type Renderer struct {
	baseDir string

	fontMu   sync.Mutex
	family   *canvas.FontFamily
	fontErr  error
	fontOnce bool
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Measurer   = (*Renderer)(nil)
)

// NewRenderer creates a canvas-based renderer rooted at baseDir for resolving image assets.
func NewRenderer(baseDir string) *Renderer {
	return &Renderer{baseDir: baseDir}
}

// TextWidth 实现 layout.Measurer。字号入参为 pt，返回宽度为 mm。
// 字体加载失败时退化为按字符数估算，而不是让调用方失败。
func (r *Renderer) TextWidth(text string, fontSize float64, bold bool) float64 {
	if text == "" {
		return 0
	}
	family, err := r.ensureFamily()
	if err != nil {
		return layout.ApproxMeasurer{}.TextWidth(text, fontSize, bold)
	}
	style := canvas.FontRegular
	if bold {
		style = canvas.FontBold
	}
	face := family.Face(fontSize, canvas.Black, style, canvas.FontNormal)
	return face.TextWidth(text)
}

// Render renders the result into a PDF byte slice.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	slide := result.Slide
	if slide.Width <= 0 || slide.Height <= 0 {
		return nil, fmt.Errorf("幻灯片尺寸非法: %gx%g", slide.Width, slide.Height)
	}

	var buf bytes.Buffer
	writer := pdf.New(&buf, slide.Width, slide.Height, nil)
	r.applyMeta(writer, result.Meta)

	c := canvas.New(slide.Width, slide.Height)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

	if err := r.drawSlide(ctx, slide); err != nil {
		return nil, err
	}
	c.RenderTo(writer)

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	if writer == nil {
		return
	}
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, meta.Creator)
}

// drawSlide 按 布局顺序 绘制：矩形（背景在前）、网格线、文本、图片。
func (r *Renderer) drawSlide(ctx *canvas.Context, slide layout.Slide) error {
	if err := r.drawRects(ctx, slide.Rects); err != nil {
		return err
	}
	if err := r.drawLines(ctx, slide.Lines); err != nil {
		return err
	}
	for _, tb := range slide.Texts {
		if err := r.drawTextBox(ctx, tb); err != nil {
			return err
		}
	}
	r.drawImages(ctx, slide.Images)
	return nil
}

func (r *Renderer) drawTextBox(ctx *canvas.Context, tb layout.TextBox) error {
	family, err := r.ensureFamily()
	if err != nil {
		return fmt.Errorf("加载内置字体失败: %w", err)
	}
	style := canvas.FontRegular
	if tb.Bold {
		style = canvas.FontBold
	}
	face := family.Face(tb.FontSize, colorFromLayout(tb.Color), style, canvas.FontNormal)

	// 处理水平对齐：left（默认）/center/right。
	var textAlign canvas.TextAlign
	var anchorX float64
	switch strings.ToLower(tb.Align) {
	case "center":
		textAlign = canvas.Center
		anchorX = tb.X + tb.Width/2
	case "right", "end":
		textAlign = canvas.Right
		anchorX = tb.X + tb.Width
	default:
		textAlign = canvas.Left
		anchorX = tb.X
	}

	metrics := face.Metrics()
	lineHeight := metrics.LineHeight
	if lineHeight <= 0 {
		lineHeight = tb.FontSize * layout.PtToMm * 1.4
	}

	cursorY := tb.Y
	for _, line := range strings.Split(tb.Content, "\n") {
		textLine := canvas.NewTextLine(face, line, textAlign)
		// 基线位置：行顶部加上字体上升部
		ctx.DrawText(anchorX, cursorY+metrics.Ascent, textLine)
		cursorY += lineHeight
	}
	return nil
}

// drawImages 逐张嵌入图片；单张失败只记录日志，不影响其余内容。
func (r *Renderer) drawImages(ctx *canvas.Context, images []layout.ImageBox) {
	for _, img := range images {
		if err := r.drawImage(ctx, img); err != nil {
			log.Printf("cartouche: 图片 %s 嵌入失败: %v", img.Path, err)
		}
	}
}

func (r *Renderer) drawImage(ctx *canvas.Context, box layout.ImageBox) error {
	if box.Path == "" {
		return fmt.Errorf("图片缺少路径")
	}
	path := box.Path
	if !filepath.IsAbs(path) {
		if r.baseDir == "" {
			return fmt.Errorf("未指定资源目录时不允许使用相对路径：%s", path)
		}
		path = filepath.Join(r.baseDir, path)
	}
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("读取图片失败: %w", err)
	}
	imgData, _, err := image.Decode(file)
	file.Close()
	if err != nil {
		return fmt.Errorf("解码图片失败: %w", err)
	}

	bounds := imgData.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 || box.Width <= 0 || box.Height <= 0 {
		return fmt.Errorf("图片或目标区域尺寸非法")
	}
	// 等比缩放到恰好放进目标框内
	dpmm := math.Max(float64(bounds.Dx())/box.Width, float64(bounds.Dy())/box.Height)
	ctx.DrawImage(box.X, box.Y, imgData, canvas.DPMM(dpmm))
	return nil
}

func (r *Renderer) drawLines(ctx *canvas.Context, lines []layout.Line) error {
	for _, ln := range lines {
		w := ln.Width
		if w <= 0 {
			w = defaultStrokeWidth
		}
		ctx.SetStrokeColor(colorFromLayout(ln.Color))
		ctx.SetStrokeWidth(w)
		p := &canvas.Path{}
		p.MoveTo(0, 0)
		p.LineTo(ln.X2-ln.X1, ln.Y2-ln.Y1)
		ctx.DrawPath(ln.X1, ln.Y1, p)
	}
	return nil
}

func (r *Renderer) drawRects(ctx *canvas.Context, rects []layout.Rect) error {
	for _, rc := range rects {
		w := rc.StrokeWidth
		if w <= 0 {
			w = defaultStrokeWidth
		}
		if rc.FillColor != nil {
			ctx.SetFillColor(colorFromLayout(*rc.FillColor))
		} else {
			ctx.SetFillColor(color.RGBA{0, 0, 0, 0})
		}
		ctx.SetStrokeColor(colorFromLayout(rc.StrokeColor))
		ctx.SetStrokeWidth(w)
		ctx.DrawPath(rc.X, rc.Y, canvas.Rectangle(rc.Width, rc.Height))
	}
	return nil
}

// ensureFamily 惰性加载内置 Go 字体（Regular/Bold），只加载一次。
func (r *Renderer) ensureFamily() (*canvas.FontFamily, error) {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	if r.fontOnce {
		return r.family, r.fontErr
	}
	r.fontOnce = true

	family := canvas.NewFontFamily("cartouche")
	if err := family.LoadFont(goregular.TTF, 0, canvas.FontRegular); err != nil {
		r.fontErr = err
		return nil, err
	}
	if err := family.LoadFont(gobold.TTF, 0, canvas.FontBold); err != nil {
		r.fontErr = err
		return nil, err
	}
	r.family = family
	return family, nil
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}
