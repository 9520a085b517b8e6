package layout

import (
	"fmt"
	"math"
	"strings"
	"testing"
)

// recordingSurface 记录所有绘图指令，供断言使用。
type recordingSurface struct {
	rects  []Rect
	lines  []Line
	texts  []TextBox
	images []ImageBox

	imageErr error
}

func (s *recordingSurface) AddRect(r Rect) error { s.rects = append(s.rects, r); return nil }
func (s *recordingSurface) AddLine(l Line) error { s.lines = append(s.lines, l); return nil }
func (s *recordingSurface) AddText(t TextBox) error {
	s.texts = append(s.texts, t)
	return nil
}
func (s *recordingSurface) AddImage(i ImageBox) error {
	if s.imageErr != nil {
		return s.imageErr
	}
	s.images = append(s.images, i)
	return nil
}

func testGridSpec() GridSpec {
	return GridSpec{
		Columns:      3,
		Rows:         2,
		CanvasWidth:  338.7,
		CanvasHeight: 190.5,
		RightOffset:  10,
		BottomOffset: 8,
		Width:        120,
		Height:       30,
	}
}

func TestBuildTablePreconditions(t *testing.T) {
	spec := testGridSpec()
	if err := BuildTable(spec, nil, nil, BuildOptions{Measurer: fixedMeasurer{}}); err == nil {
		t.Fatal("缺少 Surface 应报错")
	}
	surf := &recordingSurface{}
	if err := BuildTable(spec, nil, surf, BuildOptions{}); err == nil {
		t.Fatal("缺少 Measurer 应报错")
	}
	if len(surf.rects)+len(surf.lines)+len(surf.texts) != 0 {
		t.Fatal("前置条件失败时不应产生任何绘图指令")
	}

	bad := spec
	bad.Columns = 0
	if err := BuildTable(bad, nil, surf, BuildOptions{Measurer: fixedMeasurer{}}); err == nil {
		t.Fatal("行列数非法应报错")
	}
	bad = spec
	bad.Width = 0
	if err := BuildTable(bad, nil, surf, BuildOptions{Measurer: fixedMeasurer{}}); err == nil {
		t.Fatal("区域尺寸非法应报错")
	}
}

// TestResolveAnchorsExactTiling anchor 必须互不重叠且恰好铺满整个网格。
func TestResolveAnchorsExactTiling(t *testing.T) {
	cases := []struct {
		spec  GridSpec
		cells []CellSpec
	}{
		{GridSpec{Columns: 3, Rows: 2}, nil},
		{GridSpec{Columns: 4, Rows: 3}, []CellSpec{
			{Row: 0, Col: 0, Colspan: 2, Rowspan: 2},
			{Row: 0, Col: 2, Colspan: 2},
			{Row: 2, Col: 0, Colspan: 4},
		}},
		{GridSpec{Columns: 5, Rows: 5}, []CellSpec{
			{Row: 1, Col: 1, Colspan: 3, Rowspan: 3},
		}},
	}
	for i, tc := range cases {
		anchors := ResolveAnchors(tc.spec, tc.cells)
		seen := make(map[[2]int]bool)
		for _, a := range anchors {
			for r := a.Row; r < a.Row+a.Rowspan; r++ {
				for c := a.Col; c < a.Col+a.Colspan; c++ {
					key := [2]int{r, c}
					if seen[key] {
						t.Fatalf("case %d: 位置 (%d,%d) 被多个 anchor 占用", i, r, c)
					}
					seen[key] = true
				}
			}
		}
		if len(seen) != tc.spec.Rows*tc.spec.Columns {
			t.Fatalf("case %d: 覆盖 %d 个位置, 期望 %d", i, len(seen), tc.spec.Rows*tc.spec.Columns)
		}
	}
}

// TestResolveAnchorsClampSpan 声明跨度超出网格边界时按边界裁剪。
func TestResolveAnchorsClampSpan(t *testing.T) {
	spec := GridSpec{Columns: 5, Rows: 4}
	anchors := ResolveAnchors(spec, []CellSpec{{Row: 3, Col: 0, Colspan: 9, Rowspan: 9}})
	var found *Anchor
	for i := range anchors {
		if anchors[i].Row == 3 && anchors[i].Col == 0 {
			found = &anchors[i]
			break
		}
	}
	if found == nil {
		t.Fatal("未找到 (3,0) 处的 anchor")
	}
	if found.Colspan != 5 || found.Rowspan != 1 {
		t.Fatalf("跨度未按边界裁剪: colspan=%d rowspan=%d", found.Colspan, found.Rowspan)
	}
	if found.Cell == nil {
		t.Fatal("anchor 应保留其单元格描述")
	}
}

// TestResolveAnchorsIgnoresOccupied 落在已占用位置上的描述被忽略。
func TestResolveAnchorsIgnoresOccupied(t *testing.T) {
	spec := GridSpec{Columns: 3, Rows: 3}
	shadowed := CellSpec{Row: 1, Col: 1, Value: "shadowed"}
	anchors := ResolveAnchors(spec, []CellSpec{
		{Row: 0, Col: 0, Colspan: 2, Rowspan: 2, Value: "big"},
		shadowed,
	})
	for _, a := range anchors {
		if a.Cell != nil && a.Cell.Value == "shadowed" {
			t.Fatalf("被覆盖位置上的描述不应生成 anchor: %+v", a)
		}
	}
}

// TestBuildTableGeometry 表格区域由画布尺寸与右/下偏移倒推，贴靠右下角。
func TestBuildTableGeometry(t *testing.T) {
	spec := testGridSpec()
	surf := &recordingSurface{}
	if err := BuildTable(spec, nil, surf, BuildOptions{Measurer: fixedMeasurer{}}); err != nil {
		t.Fatal(err)
	}
	if len(surf.rects) == 0 {
		t.Fatal("缺少背景矩形")
	}
	bg := surf.rects[0]
	wantX := spec.CanvasWidth - spec.RightOffset - spec.Width
	wantY := spec.CanvasHeight - spec.BottomOffset - spec.Height
	if math.Abs(bg.X-wantX) > 1e-9 || math.Abs(bg.Y-wantY) > 1e-9 {
		t.Fatalf("背景原点错误: got (%g,%g) want (%g,%g)", bg.X, bg.Y, wantX, wantY)
	}
	if bg.Width != spec.Width || bg.Height != spec.Height {
		t.Fatalf("背景尺寸错误: %gx%g", bg.Width, bg.Height)
	}
	if bg.FillColor == nil {
		t.Fatal("背景矩形应带填充色")
	}
}

// TestBuildTableEmptyCells 没有描述的网格只输出边框，不输出文本与图片。
func TestBuildTableEmptyCells(t *testing.T) {
	spec := testGridSpec() // 3x2
	surf := &recordingSurface{}
	if err := BuildTable(spec, nil, surf, BuildOptions{Measurer: fixedMeasurer{}}); err != nil {
		t.Fatal(err)
	}
	if len(surf.texts) != 0 || len(surf.images) != 0 {
		t.Fatalf("空网格不应输出文本或图片: texts=%d images=%d", len(surf.texts), len(surf.images))
	}
	// 背景 + 每个单元格的内容框
	wantRects := 1 + spec.Columns*spec.Rows
	if len(surf.rects) != wantRects {
		t.Fatalf("矩形数量错误: got %d want %d", len(surf.rects), wantRects)
	}
	// 无跨度时全部内部网格线都要画
	wantLines := (spec.Columns - 1) + (spec.Rows - 1)
	if len(surf.lines) != wantLines {
		t.Fatalf("网格线数量错误: got %d want %d", len(surf.lines), wantLines)
	}
}

// TestBuildTableLineSuppression 只有被跨度严格跨过的边界才不画线。
func TestBuildTableLineSuppression(t *testing.T) {
	spec := testGridSpec() // 3 列 2 行，内部竖线边界 b=1,2，横线边界 b=1
	surf := &recordingSurface{}
	cells := []CellSpec{{Row: 0, Col: 0, Colspan: 2, Value: "wide"}}
	if err := BuildTable(spec, cells, surf, BuildOptions{Measurer: fixedMeasurer{}}); err != nil {
		t.Fatal(err)
	}
	originX := spec.CanvasWidth - spec.RightOffset - spec.Width
	cellW := spec.Width / float64(spec.Columns)

	var verticalAt []float64
	var horizontal int
	for _, ln := range surf.lines {
		if ln.X1 == ln.X2 {
			verticalAt = append(verticalAt, ln.X1)
		} else {
			horizontal++
		}
	}
	// 跨度 (0,0)+colspan2 严格跨过列边界 1，只剩边界 2 的竖线
	if len(verticalAt) != 1 {
		t.Fatalf("期望 1 条竖线, got %d", len(verticalAt))
	}
	if want := originX + 2*cellW; math.Abs(verticalAt[0]-want) > 1e-9 {
		t.Fatalf("竖线位置错误: got %g want %g", verticalAt[0], want)
	}
	// 无 rowspan，横线照画
	if horizontal != spec.Rows-1 {
		t.Fatalf("期望 %d 条横线, got %d", spec.Rows-1, horizontal)
	}
}

// TestBuildTableCellContent 标签在标签条内、正文在内容框内，字号与颜色取自规格。
func TestBuildTableCellContent(t *testing.T) {
	spec := testGridSpec()
	surf := &recordingSurface{}
	cells := []CellSpec{{Row: 0, Col: 0, Label: "DRAWN BY", Value: "QA-7"}}
	if err := BuildTable(spec, cells, surf, BuildOptions{Measurer: fixedMeasurer{}}); err != nil {
		t.Fatal(err)
	}
	if len(surf.texts) != 2 {
		t.Fatalf("期望 2 条文本指令, got %d", len(surf.texts))
	}
	label, value := surf.texts[0], surf.texts[1]
	// 标签按整个内容框宽度折行："DRAWN BY" 恰好占满 40mm，不应被内边距挤出省略号
	if label.Content != "DRAWN BY" {
		t.Fatalf("标签内容错误: %q", label.Content)
	}
	if label.FontSize != DefaultLabelFontSize {
		t.Fatalf("标签字号错误: %g", label.FontSize)
	}
	if label.Color != DefaultPalette().Label {
		t.Fatalf("标签颜色错误: %+v", label.Color)
	}
	if value.FontSize != DefaultValueFontSize {
		t.Fatalf("正文字号错误: %g", value.FontSize)
	}
	if value.Y <= label.Y {
		t.Fatal("正文应位于标签条下方")
	}
	if value.Content != "QA-7" {
		t.Fatalf("正文内容错误: %q", value.Content)
	}
}

// TestBuildTableDefaultPadding 未显式给出 padding 时，内边距取单元格短边的 0.08。
func TestBuildTableDefaultPadding(t *testing.T) {
	spec := testGridSpec() // 单元格 40×15mm，短边 15
	surf := &recordingSurface{}
	cells := []CellSpec{{Row: 0, Col: 0, Value: "QA"}}
	if err := BuildTable(spec, cells, surf, BuildOptions{Measurer: fixedMeasurer{}}); err != nil {
		t.Fatal(err)
	}
	if len(surf.texts) != 1 {
		t.Fatalf("期望 1 条文本指令, got %d", len(surf.texts))
	}
	originX := spec.CanvasWidth - spec.RightOffset - spec.Width
	wantPad := DefaultCellPaddingFrac * 15.0
	if got, want := surf.texts[0].X, originX+wantPad; math.Abs(got-want) > 1e-9 {
		t.Fatalf("默认内边距错误: got X=%g want %g", got, want)
	}

	// 显式 padding 覆盖默认比例
	surf = &recordingSurface{}
	spec.CellPadding = 3
	if err := BuildTable(spec, cells, surf, BuildOptions{Measurer: fixedMeasurer{}}); err != nil {
		t.Fatal(err)
	}
	if got, want := surf.texts[0].X, originX+3.0; math.Abs(got-want) > 1e-9 {
		t.Fatalf("显式内边距未生效: got X=%g want %g", got, want)
	}
}

// TestBuildTableDefaultStroke 未显式给出 stroke 时用细线默认值。
func TestBuildTableDefaultStroke(t *testing.T) {
	surf := &recordingSurface{}
	if err := BuildTable(testGridSpec(), nil, surf, BuildOptions{Measurer: fixedMeasurer{}}); err != nil {
		t.Fatal(err)
	}
	if surf.rects[0].StrokeWidth != DefaultStrokeWidth {
		t.Fatalf("默认线宽错误: %g", surf.rects[0].StrokeWidth)
	}
	for _, ln := range surf.lines {
		if ln.Width != DefaultStrokeWidth {
			t.Fatalf("网格线默认线宽错误: %g", ln.Width)
		}
	}
}

// TestBuildTableValueMaxLines 单元格自定义 max-lines 与字号生效。
func TestBuildTableValueMaxLines(t *testing.T) {
	spec := testGridSpec()
	surf := &recordingSurface{}
	cells := []CellSpec{{
		Row: 0, Col: 0,
		Value:    strings.Repeat("lorem ipsum ", 20),
		MaxLines: 3,
		FontSize: 8,
	}}
	if err := BuildTable(spec, cells, surf, BuildOptions{Measurer: fixedMeasurer{}}); err != nil {
		t.Fatal(err)
	}
	if len(surf.texts) != 1 {
		t.Fatalf("期望 1 条文本指令, got %d", len(surf.texts))
	}
	tb := surf.texts[0]
	if tb.FontSize != 8 {
		t.Fatalf("单元格字号未生效: %g", tb.FontSize)
	}
	got := strings.Split(tb.Content, "\n")
	if len(got) != 3 {
		t.Fatalf("期望 3 行, got %d: %q", len(got), tb.Content)
	}
	if !strings.HasSuffix(got[2], Ellipsis) {
		t.Fatalf("截断末行应以省略号结尾: %q", got[2])
	}
}

// TestBuildTableImageFailure 单元格图片失败不中断整表，其余内容照常输出。
func TestBuildTableImageFailure(t *testing.T) {
	spec := testGridSpec()
	surf := &recordingSurface{imageErr: fmt.Errorf("decode failed")}
	cells := []CellSpec{{Row: 0, Col: 0, Label: "LOGO", Image: "logo.png", Value: "ACME"}}
	if err := BuildTable(spec, cells, surf, BuildOptions{Measurer: fixedMeasurer{}}); err != nil {
		t.Fatalf("图片失败不应让 BuildTable 报错: %v", err)
	}
	if len(surf.texts) != 2 {
		t.Fatalf("图片失败后文本仍应输出: got %d", len(surf.texts))
	}
}

// TestBuildTableImageInset 图片相对内容框内缩，且完全落在单元格内。
func TestBuildTableImageInset(t *testing.T) {
	spec := testGridSpec()
	surf := &recordingSurface{}
	cells := []CellSpec{{Row: 1, Col: 2, Image: "stamp.png"}}
	if err := BuildTable(spec, cells, surf, BuildOptions{Measurer: fixedMeasurer{}}); err != nil {
		t.Fatal(err)
	}
	if len(surf.images) != 1 {
		t.Fatalf("期望 1 条图片指令, got %d", len(surf.images))
	}
	img := surf.images[0]
	originX := spec.CanvasWidth - spec.RightOffset - spec.Width
	originY := spec.CanvasHeight - spec.BottomOffset - spec.Height
	cellW := spec.Width / float64(spec.Columns)
	cellH := spec.Height / float64(spec.Rows)
	cellX := originX + 2*cellW
	cellY := originY + 1*cellH
	if img.X <= cellX || img.Y <= cellY {
		t.Fatalf("图片未内缩: (%g,%g)", img.X, img.Y)
	}
	if img.X+img.Width >= cellX+cellW+1e-9 || img.Y+img.Height >= cellY+cellH+1e-9 {
		t.Fatalf("图片超出单元格: x2=%g y2=%g", img.X+img.Width, img.Y+img.Height)
	}
}
