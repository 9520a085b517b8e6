package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ByLCY/cartouche/binding"
	"github.com/ByLCY/cartouche/dsl"
)

// 未显式给出表格区域尺寸时按画布比例取默认值。
const (
	defaultRegionWidthFrac  = 0.45
	defaultRegionHeightFrac = 0.14
)

// Build 根据 DSL AST 生成幻灯片标题栏的布局结果。
func Build(doc *dsl.Document, data any, opts BuildOptions) (*Result, error) {
	if doc == nil {
		return nil, fmt.Errorf("文档为空")
	}
	if opts.Measurer == nil {
		return nil, fmt.Errorf("layout: 缺少测量后端 Measurer")
	}

	res, err := collectResources(doc)
	if err != nil {
		return nil, err
	}
	meta := collectMeta(doc)
	section := firstSlide(doc)
	if section == nil {
		return nil, fmt.Errorf("文档中缺少 slide 段落")
	}
	if section.Block == nil {
		return nil, fmt.Errorf("slide 段落缺少内容")
	}

	width, height, err := resolveSlideSize(section.Spec)
	if err != nil {
		return nil, err
	}
	collector := NewCollector(width, height)

	var anchors []Anchor
	found := false
	for _, st := range section.Block.Statements {
		if st.Command == nil || st.Command.Name != "titleblock" {
			continue
		}
		spec, cells, err := parseTitleBlock(st.Command, width, height, res, data)
		if err != nil {
			return nil, err
		}
		if err := BuildTable(spec, cells, collector, opts); err != nil {
			return nil, err
		}
		if opts.Debug.Anchors {
			anchors = append(anchors, ResolveAnchors(spec, cells)...)
		}
		found = true
	}
	if !found {
		return nil, fmt.Errorf("slide 段落缺少 titleblock 命令")
	}

	return &Result{
		Slide:     collector.Slide(),
		Resources: res,
		Meta:      meta,
		Anchors:   anchors,
	}, nil
}

// parseTitleBlock 把 titleblock 命令解析为 GridSpec 与稀疏单元格列表。
func parseTitleBlock(cmd *dsl.Command, canvasW, canvasH float64, res ResourceSet, data any) (GridSpec, []CellSpec, error) {
	attrs := parseArgs(cmd.Args)

	spec := GridSpec{
		CanvasWidth:  canvasW,
		CanvasHeight: canvasH,
		Palette:      DefaultPalette(),
	}
	if v := attrs["columns"]; v != "" {
		if c, err := strconv.Atoi(v); err == nil && c > 0 {
			spec.Columns = c
		}
	}
	if v := attrs["rows"]; v != "" {
		if r, err := strconv.Atoi(v); err == nil && r > 0 {
			spec.Rows = r
		}
	}
	if spec.Columns <= 0 || spec.Rows <= 0 {
		return GridSpec{}, nil, fmt.Errorf("titleblock 需要正的 columns/rows: %dx%d", spec.Columns, spec.Rows)
	}

	spec.Width = parseDimension(attrs["width"], canvasW)
	if spec.Width <= 0 {
		spec.Width = canvasW * defaultRegionWidthFrac
	}
	spec.Height = parseDimension(attrs["height"], canvasH)
	if spec.Height <= 0 {
		spec.Height = canvasH * defaultRegionHeightFrac
	}
	spec.RightOffset = parseDimension(attrs["right"], canvasW)
	spec.BottomOffset = parseDimension(attrs["bottom"], canvasH)
	spec.StrokeWidth = parseLength(attrs["stroke"])
	spec.CellPadding = parseLength(attrs["padding"])
	if v := attrs["label-size"]; v != "" {
		spec.LabelFontSize = ParseLengthStr(v).ToPT()
	}
	if v := attrs["value-size"]; v != "" {
		spec.ValueFontSize = ParseLengthStr(v).ToPT()
	}
	if v := attrs["line"]; v != "" {
		spec.Palette.Line = resolveColor(v, res, spec.Palette.Line)
	}
	if v := attrs["label"]; v != "" {
		spec.Palette.Label = resolveColor(v, res, spec.Palette.Label)
	}
	if v := attrs["text"]; v != "" {
		spec.Palette.Text = resolveColor(v, res, spec.Palette.Text)
	}
	if v := attrs["fill"]; v != "" {
		spec.Palette.Fill = resolveColor(v, res, spec.Palette.Fill)
	}

	var cells []CellSpec
	if cmd.Block != nil {
		for _, st := range cmd.Block.Statements {
			if st.Command == nil || st.Command.Name != "cell" {
				continue
			}
			cell, err := parseCell(st.Command, res, data)
			if err != nil {
				return GridSpec{}, nil, err
			}
			cells = append(cells, cell)
		}
	}
	return spec, cells, nil
}

// parseCell 解析 `cell <row> <col> [属性对...] { label: ... value: ... }`。
func parseCell(cmd *dsl.Command, res ResourceSet, data any) (CellSpec, error) {
	if len(cmd.Args) < 2 {
		return CellSpec{}, fmt.Errorf("cell 需要 row 与 col 两个坐标参数")
	}
	row, err := strconv.Atoi(cmd.Args[0].Value)
	if err != nil || row < 0 {
		return CellSpec{}, fmt.Errorf("cell 的 row 参数非法: %s", cmd.Args[0].Value)
	}
	col, err := strconv.Atoi(cmd.Args[1].Value)
	if err != nil || col < 0 {
		return CellSpec{}, fmt.Errorf("cell 的 col 参数非法: %s", cmd.Args[1].Value)
	}

	cell := CellSpec{Row: row, Col: col}
	attrs := parseArgs(cmd.Args[2:])
	if v := attrs["colspan"]; v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cell.Colspan = n
		}
	}
	if v := attrs["rowspan"]; v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cell.Rowspan = n
		}
	}
	if v := attrs["max-lines"]; v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cell.MaxLines = n
		}
	}
	if v := attrs["size"]; v != "" {
		cell.FontSize = ParseLengthStr(v).ToPT()
	}
	if v := attrs["image"]; v != "" {
		if img, ok := res.Images[v]; ok && img.Src != "" {
			cell.Image = img.Src
		} else {
			cell.Image = v
		}
	}

	if cmd.Block != nil {
		for _, st := range cmd.Block.Statements {
			if st.Assignment == nil {
				continue
			}
			val := valueToString(st.Assignment.Value)
			switch st.Assignment.Key {
			case "label":
				cell.Label = val
			case "value":
				cell.Value = val
			}
		}
	}
	if data != nil {
		cell.Label = binding.Interpolate(cell.Label, data)
		cell.Value = binding.Interpolate(cell.Value, data)
	}
	return cell, nil
}

func collectResources(doc *dsl.Document) (ResourceSet, error) {
	res := ResourceSet{
		Colors: map[string]Color{},
		Images: map[string]ImageResource{},
	}
	for _, section := range doc.Sections {
		if section.Resources == nil || section.Resources.Block == nil {
			continue
		}
		for _, stmt := range section.Resources.Block.Statements {
			if stmt.Command == nil {
				continue
			}
			switch stmt.Command.Name {
			case "color":
				name, value := parseColorResource(stmt.Command)
				if name == "" || value == "" {
					continue
				}
				c, err := parseColor(value)
				if err != nil {
					return res, err
				}
				res.Colors[name] = c
			case "image":
				image := parseImageResource(stmt.Command)
				if image.Name != "" {
					res.Images[image.Name] = image
				}
			}
		}
	}
	return res, nil
}

func collectMeta(doc *dsl.Document) DocumentMeta {
	meta := DocumentMeta{
		Creator: "Cartouche",
	}
	for _, section := range doc.Sections {
		if section.Meta == nil || section.Meta.Block == nil {
			continue
		}
		for _, stmt := range section.Meta.Block.Statements {
			if stmt.Assignment == nil {
				continue
			}
			key := strings.ToLower(stmt.Assignment.Key)
			switch key {
			case "title":
				meta.Title = valueToString(stmt.Assignment.Value)
			case "author":
				meta.Author = valueToString(stmt.Assignment.Value)
			case "subject":
				meta.Subject = valueToString(stmt.Assignment.Value)
			case "creator":
				meta.Creator = valueToString(stmt.Assignment.Value)
			case "keywords":
				meta.Keywords = valueToStringSlice(stmt.Assignment.Value)
			}
		}
	}
	return meta
}

func parseColorResource(cmd *dsl.Command) (string, string) {
	if len(cmd.Args) == 0 {
		return "", ""
	}
	name := cmd.Args[0].Value
	value := ""
	if len(cmd.Args) > 1 {
		value = cmd.Args[len(cmd.Args)-1].Value
	}
	return name, value
}

func parseImageResource(cmd *dsl.Command) ImageResource {
	if len(cmd.Args) == 0 {
		return ImageResource{}
	}
	image := ImageResource{
		Name: cmd.Args[0].Value,
	}
	if cmd.Block == nil {
		return image
	}
	for _, stmt := range cmd.Block.Statements {
		if stmt.Assignment == nil {
			continue
		}
		switch stmt.Assignment.Key {
		case "src":
			if stmt.Assignment.Value.String != nil {
				image.Src = string(*stmt.Assignment.Value.String)
			}
		case "width":
			if stmt.Assignment.Value.Number != nil {
				image.Width = parseLength(*stmt.Assignment.Value.Number)
			}
		case "height":
			if stmt.Assignment.Value.Number != nil {
				image.Height = parseLength(*stmt.Assignment.Value.Number)
			}
		}
	}
	return image
}

func resolveSlideSize(spec dsl.SlideSpec) (float64, float64, error) {
	base, ok := slidePresets[strings.ToUpper(spec.Size)]
	if !ok {
		return 0, 0, fmt.Errorf("暂不支持的幻灯片尺寸：%s", spec.Size)
	}
	return base[0], base[1], nil
}

// 常见投影比例，单位 mm（10in×7.5in 与 13.33in×7.5in）。
var slidePresets = map[string][2]float64{
	"SCREEN4X3":  {254, 190.5},
	"SCREEN16X9": {338.7, 190.5},
}

func firstSlide(doc *dsl.Document) *dsl.SlideSection {
	for _, section := range doc.Sections {
		if section.Slide != nil {
			return section.Slide
		}
	}
	return nil
}

// parseArgs 把命令参数按 key value 成对解析。
func parseArgs(args []*dsl.Lexeme) map[string]string {
	result := map[string]string{}
	cursor := 0
	for cursor < len(args)-1 {
		key := args[cursor].Value
		val := args[cursor+1].Value
		result[key] = val
		cursor += 2
	}
	return result
}

func valueToString(val *dsl.Value) string {
	if val == nil {
		return ""
	}
	switch {
	case val.String != nil:
		return string(*val.String)
	case val.Number != nil:
		return *val.Number
	case val.Color != nil:
		return *val.Color
	case val.Expr != nil:
		var builder strings.Builder
		for _, part := range val.Expr.Parts {
			builder.WriteString(part.Value)
		}
		return builder.String()
	default:
		return ""
	}
}

func valueToStringSlice(val *dsl.Value) []string {
	if val == nil {
		return nil
	}
	if val.Array != nil {
		out := make([]string, 0, len(val.Array.Values))
		for _, item := range val.Array.Values {
			if s := valueToString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	if s := valueToString(val); s != "" {
		return []string{s}
	}
	return nil
}

// resolveColor 支持资源颜色名与 #RGB/#RRGGBB 字面量，解析失败时返回 fallback。
func resolveColor(value string, res ResourceSet, fallback Color) Color {
	if value == "" {
		return fallback
	}
	if c, ok := res.Colors[value]; ok {
		return c
	}
	if strings.HasPrefix(value, "#") {
		if c, err := parseColor(value); err == nil {
			return c
		}
	}
	return fallback
}

func parseColor(value string) (Color, error) {
	value = strings.TrimPrefix(value, "#")
	switch len(value) {
	case 3:
		r := strings.Repeat(string(value[0]), 2)
		g := strings.Repeat(string(value[1]), 2)
		b := strings.Repeat(string(value[2]), 2)
		return Color{
			R: mustHex(r),
			G: mustHex(g),
			B: mustHex(b),
		}, nil
	case 6, 8:
		return Color{
			R: mustHex(value[0:2]),
			G: mustHex(value[2:4]),
			B: mustHex(value[4:6]),
		}, nil
	default:
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
}

func mustHex(s string) int {
	v, _ := strconv.ParseInt(s, 16, 64)
	return int(v)
}

func parseLength(value string) float64 {
	if value == "" {
		return 0
	}
	return ParseLengthStr(value).ToMM()
}

func parseDimension(value string, reference float64) float64 {
	if value == "" {
		return 0
	}
	if strings.HasSuffix(value, "%") {
		num := strings.TrimSuffix(value, "%")
		if f, err := strconv.ParseFloat(num, 64); err == nil {
			return reference * f / 100
		}
		return 0
	}
	return parseLength(value)
}
