package layout

import (
	"fmt"
	"log"
	"math"
	"strings"
)

// 默认值对应常见标题栏外观：细边框、灰色小标签、黑色正文。
const (
	DefaultStrokeWidth   = 0.35 // mm，约 1pt 的细线
	DefaultLabelFontSize = 10   // pt
	DefaultValueFontSize = 12   // pt
	DefaultMaxLines      = 2

	// 未显式给出 padding 时，内边距取单元格短边的比例
	DefaultCellPaddingFrac = 0.08

	// 标签条高度 = 标签字号 × 行高系数
	labelLineFactor = 1.4
	// 图片相对内容框的内缩比例（取内容框短边）
	imageInsetFrac = 0.08
)

// BuildTable 在注入的 Surface 上绘制一个锚定于画布右下角的标题栏表格。
// 每次调用都从头计算 anchor 与占用图，不在调用之间保留任何状态。
// 前置条件（Surface/Measurer 缺失、网格尺寸非法）立即报错且不产生任何绘图；
// 单条指令失败（例如图片嵌入）只记录日志，不中断其余单元格。
func BuildTable(spec GridSpec, cells []CellSpec, surf Surface, opts BuildOptions) error {
	if surf == nil {
		return fmt.Errorf("layout: 缺少绘图表面 Surface")
	}
	if opts.Measurer == nil {
		return fmt.Errorf("layout: 缺少测量后端 Measurer")
	}
	if spec.Columns <= 0 || spec.Rows <= 0 {
		return fmt.Errorf("layout: 网格行列数非法: %dx%d", spec.Columns, spec.Rows)
	}
	if spec.Width <= 0 || spec.Height <= 0 {
		return fmt.Errorf("layout: 表格区域尺寸非法: %gx%g", spec.Width, spec.Height)
	}
	spec = normalizeGridSpec(spec)

	// 区域原点由画布尺寸减去右/下偏移倒推，保证表格贴靠右下角。
	originX := spec.CanvasWidth - spec.RightOffset - spec.Width
	originY := spec.CanvasHeight - spec.BottomOffset - spec.Height
	cellW := spec.Width / float64(spec.Columns)
	cellH := spec.Height / float64(spec.Rows)

	pad := spec.CellPadding
	if pad <= 0 {
		pad = DefaultCellPaddingFrac * math.Min(cellW, cellH)
	}

	anchors := ResolveAnchors(spec, cells)

	// 背景矩形铺满整个区域
	fill := spec.Palette.Fill
	emitRect(surf, Rect{
		X:           originX,
		Y:           originY,
		Width:       spec.Width,
		Height:      spec.Height,
		StrokeColor: spec.Palette.Line,
		StrokeWidth: spec.StrokeWidth,
		FillColor:   &fill,
	})

	// 内部竖线：被某个 anchor 的列区间严格跨过的边界不画
	for b := 1; b < spec.Columns; b++ {
		if columnStraddled(anchors, b) {
			continue
		}
		x := originX + float64(b)*cellW
		emitLine(surf, Line{
			X1: x, Y1: originY, X2: x, Y2: originY + spec.Height,
			Color: spec.Palette.Line, Width: spec.StrokeWidth,
		})
	}
	// 内部横线，规则与竖线对称
	for b := 1; b < spec.Rows; b++ {
		if rowStraddled(anchors, b) {
			continue
		}
		y := originY + float64(b)*cellH
		emitLine(surf, Line{
			X1: originX, Y1: y, X2: originX + spec.Width, Y2: y,
			Color: spec.Palette.Line, Width: spec.StrokeWidth,
		})
	}

	for _, a := range anchors {
		drawAnchor(spec, a, originX, originY, cellW, cellH, pad, surf, opts.Measurer)
	}
	return nil
}

// ResolveAnchors 以行优先顺序扫描网格，把稀疏的单元格描述解析成互不重叠、
// 恰好铺满整个网格的 anchor 列表。声明的跨度超出网格边界时按边界裁剪；
// 已被先前 anchor 占用的位置上的描述会被忽略。
func ResolveAnchors(spec GridSpec, cells []CellSpec) []Anchor {
	index := make(map[[2]int]*CellSpec, len(cells))
	for i := range cells {
		c := &cells[i]
		index[[2]int{c.Row, c.Col}] = c
	}

	occupied := make([]bool, spec.Rows*spec.Columns)
	var anchors []Anchor
	for r := 0; r < spec.Rows; r++ {
		for c := 0; c < spec.Columns; c++ {
			if occupied[r*spec.Columns+c] {
				continue
			}
			cell := index[[2]int{r, c}]
			colspan, rowspan := 1, 1
			if cell != nil {
				colspan = clampSpan(cell.Colspan, spec.Columns-c)
				rowspan = clampSpan(cell.Rowspan, spec.Rows-r)
			}
			for rr := r; rr < r+rowspan; rr++ {
				for cc := c; cc < c+colspan; cc++ {
					occupied[rr*spec.Columns+cc] = true
				}
			}
			anchors = append(anchors, Anchor{Row: r, Col: c, Colspan: colspan, Rowspan: rowspan, Cell: cell})
		}
	}
	return anchors
}

func clampSpan(span, max int) int {
	if span < 1 {
		return 1
	}
	if span > max {
		return max
	}
	return span
}

// columnStraddled 判断列边界 b 是否被某个 anchor 严格跨过（start < b 且 end > b）。
func columnStraddled(anchors []Anchor, b int) bool {
	for _, a := range anchors {
		if a.Col < b && a.Col+a.Colspan > b {
			return true
		}
	}
	return false
}

func rowStraddled(anchors []Anchor, b int) bool {
	for _, a := range anchors {
		if a.Row < b && a.Row+a.Rowspan > b {
			return true
		}
	}
	return false
}

func drawAnchor(spec GridSpec, a Anchor, originX, originY, cellW, cellH, pad float64, surf Surface, m Measurer) {
	x := originX + float64(a.Col)*cellW
	y := originY + float64(a.Row)*cellH
	w := float64(a.Colspan) * cellW
	h := float64(a.Rowspan) * cellH

	// 标签条高度与标签字号成正比，但不挤占超过半个单元格
	strip := spec.LabelFontSize * PtToMm * labelLineFactor
	if strip > h/2 {
		strip = h / 2
	}
	contentY := y + strip
	contentH := h - strip

	// 内容框边框
	emitRect(surf, Rect{
		X:           x,
		Y:           contentY,
		Width:       w,
		Height:      contentH,
		StrokeColor: spec.Palette.Line,
		StrokeWidth: spec.StrokeWidth,
	})

	cell := a.Cell
	if cell == nil {
		return // 空单元格只有边框
	}

	textW := w - 2*pad
	if textW <= 0 {
		textW = w
	}

	// 标签按整个内容框宽度折行，内边距只作用于正文
	if cell.Label != "" {
		lines := WrapWithEllipsis(m, cell.Label, spec.LabelFontSize, w, 1)
		if len(lines) > 0 {
			emitText(surf, TextBox{
				Content:  lines[0],
				X:        x + pad,
				Y:        y,
				Width:    w,
				FontSize: spec.LabelFontSize,
				Color:    spec.Palette.Label,
			})
		}
	}

	if cell.Image != "" {
		inset := imageInsetFrac * math.Min(w, contentH)
		err := surf.AddImage(ImageBox{
			Path:   cell.Image,
			X:      x + inset,
			Y:      contentY + inset,
			Width:  w - 2*inset,
			Height: contentH - 2*inset,
		})
		if err != nil {
			// 单元格图片失败不中断整表
			log.Printf("cartouche: 单元格(%d,%d)图片 %s 嵌入失败: %v", a.Row, a.Col, cell.Image, err)
		}
	}

	if cell.Value != "" {
		size := cell.FontSize
		if size <= 0 {
			size = spec.ValueFontSize
		}
		maxLines := cell.MaxLines
		if maxLines < 1 {
			maxLines = DefaultMaxLines
		}
		lines := WrapWithEllipsis(m, cell.Value, size, textW, maxLines)
		if len(lines) > 0 {
			emitText(surf, TextBox{
				Content:  strings.Join(lines, "\n"),
				X:        x + pad,
				Y:        contentY + pad,
				Width:    textW,
				FontSize: size,
				Color:    spec.Palette.Text,
			})
		}
	}
}

func normalizeGridSpec(spec GridSpec) GridSpec {
	if spec.StrokeWidth <= 0 {
		spec.StrokeWidth = DefaultStrokeWidth
	}
	if spec.LabelFontSize <= 0 {
		spec.LabelFontSize = DefaultLabelFontSize
	}
	if spec.ValueFontSize <= 0 {
		spec.ValueFontSize = DefaultValueFontSize
	}
	if spec.CellPadding < 0 {
		spec.CellPadding = 0
	}
	zero := Color{}
	if spec.Palette.Line == zero && spec.Palette.Label == zero && spec.Palette.Fill == zero {
		p := DefaultPalette()
		if spec.Palette.Text == zero {
			p.Text = Color{0, 0, 0}
		} else {
			p.Text = spec.Palette.Text
		}
		spec.Palette = p
	}
	return spec
}

// emitRect/emitLine/emitText：单条指令失败只记录日志（尽力而为渲染）。
func emitRect(surf Surface, r Rect) {
	if err := surf.AddRect(r); err != nil {
		log.Printf("cartouche: 矩形绘制失败: %v", err)
	}
}

func emitLine(surf Surface, ln Line) {
	if err := surf.AddLine(ln); err != nil {
		log.Printf("cartouche: 线段绘制失败: %v", err)
	}
}

func emitText(surf Surface, tb TextBox) {
	if err := surf.AddText(tb); err != nil {
		log.Printf("cartouche: 文本绘制失败: %v", err)
	}
}
