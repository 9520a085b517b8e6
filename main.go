package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ByLCY/cartouche/binding"
	"github.com/ByLCY/cartouche/dsl"
	"github.com/ByLCY/cartouche/export"
	"github.com/ByLCY/cartouche/layout"
	"github.com/ByLCY/cartouche/renderer"
	canvasrenderer "github.com/ByLCY/cartouche/renderer/canvas"
)

func main() {
	input := flag.String("in", "examples/demo.cart", "DSL 文件路径")
	output := flag.String("out", "output/deck.pdf", "PDF 输出路径")
	debug := flag.String("debug", "", "布局调试 JSON 输出路径")
	debugAnchors := flag.Bool("debug-anchors", false, "在调试 JSON 中输出 anchor 列表")
	dataArg := flag.String("data", "", "绑定到 DSL 的数据：JSON 字面量、.json 或 .xlsx 文件")
	flag.Parse()

	data, err := loadData(*dataArg)
	if err != nil {
		log.Fatalf("加载绑定数据失败: %v", err)
	}

	var r renderer.Renderer = canvasrenderer.NewRenderer(filepath.Dir(*input))
	if err := run(*input, *output, *debug, *debugAnchors, data, r); err != nil {
		log.Fatalf("生成 PDF 失败: %v", err)
	}
	fmt.Printf("已生成 PDF：%s\n", *output)
}

// loadData 支持三种数据来源：内联 JSON、.json 文件与 .xlsx 键值表。
func loadData(arg string) (any, error) {
	if arg == "" {
		return nil, nil
	}
	switch {
	case strings.HasSuffix(arg, ".xlsx"):
		return binding.LoadXLSX(arg)
	case strings.HasSuffix(arg, ".json"):
		raw, err := os.ReadFile(arg)
		if err != nil {
			return nil, fmt.Errorf("读取数据文件 %s 失败: %w", arg, err)
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("解析数据文件 %s 失败: %w", arg, err)
		}
		return v, nil
	default:
		var v any
		if err := json.Unmarshal([]byte(arg), &v); err != nil {
			return nil, fmt.Errorf("解析 data JSON 失败: %w", err)
		}
		return v, nil
	}
}

// run 串联解析、布局与导出。
func run(inputPath, outputPath, debugPath string, debugAnchors bool, data any, r renderer.Renderer) error {
	if r == nil {
		return fmt.Errorf("renderer 不能为空")
	}
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("无法打开 DSL 文件 %s: %w", inputPath, err)
	}
	defer file.Close()

	doc, err := dsl.Parse(file)
	if err != nil {
		return fmt.Errorf("解析 DSL 失败: %w", err)
	}

	m, ok := r.(layout.Measurer)
	if !ok {
		return fmt.Errorf("renderer 未实现测量接口")
	}

	result, err := layout.Build(doc, data, layout.BuildOptions{
		Measurer: m,
		Debug:    layout.DebugOptions{Anchors: debugAnchors},
	})
	if err != nil {
		return fmt.Errorf("布局计算失败: %w", err)
	}

	if debugPath != "" {
		if err := writeDebug(result, debugPath); err != nil {
			return err
		}
	}

	return export.Save(result, r, outputPath)
}

func writeDebug(result *layout.Result, debugPath string) error {
	if err := layout.WriteDebugJSON(result, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
