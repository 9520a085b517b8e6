package layout

import (
	"strings"
	"testing"
	"unicode/utf8"
)

// fixedMeasurer 是测试用的等宽测量桩：每个字符宽 = 字号 × 0.5，不做单位换算。
type fixedMeasurer struct{}

func (fixedMeasurer) TextWidth(text string, fontSize float64, bold bool) float64 {
	return float64(utf8.RuneCountInString(text)) * fontSize * 0.5
}

func TestWrapEmptyInput(t *testing.T) {
	if got := WrapWithEllipsis(fixedMeasurer{}, "", 12, 100, 2); len(got) != 0 {
		t.Fatalf("空输入应返回空切片, got %v", got)
	}
	if got := WrapWithEllipsis(fixedMeasurer{}, "   \t  ", 12, 100, 2); len(got) != 0 {
		t.Fatalf("纯空白输入应返回空切片, got %v", got)
	}
}

// TestWrapRoundTrip 内容放得下时，各行用单个空格重新拼接应精确还原（归一化后的）输入。
func TestWrapRoundTrip(t *testing.T) {
	m := fixedMeasurer{}
	text := "drawn by QA team rev 7"
	lines := WrapWithEllipsis(m, text, 10, 60, 3) // 每行最多 12 字符
	joined := strings.Join(lines, " ")
	if joined != text {
		t.Fatalf("拼接结果与输入不一致: got=%q want=%q", joined, text)
	}
	for i, ln := range lines {
		if w := m.TextWidth(ln, 10, false); w > 60 {
			t.Fatalf("第 %d 行超宽: %q width=%g", i, ln, w)
		}
	}
}

// TestWrapNormalizesWhitespace 不规则空白（连续空格、制表符）不应触发误截断。
func TestWrapNormalizesWhitespace(t *testing.T) {
	lines := WrapWithEllipsis(fixedMeasurer{}, "alpha \t beta   gamma", 10, 500, 2)
	if len(lines) != 1 {
		t.Fatalf("期望 1 行, got %v", lines)
	}
	if lines[0] != "alpha beta gamma" {
		t.Fatalf("空白未归一化: %q", lines[0])
	}
	if strings.HasSuffix(lines[0], Ellipsis) {
		t.Fatalf("未截断的内容不应带省略号: %q", lines[0])
	}
}

func TestWrapNeverExceedsMaxLines(t *testing.T) {
	m := fixedMeasurer{}
	text := strings.Repeat("word ", 40)
	for maxLines := 1; maxLines <= 4; maxLines++ {
		lines := WrapWithEllipsis(m, text, 12, 50, maxLines)
		if len(lines) > maxLines {
			t.Fatalf("maxLines=%d 时返回 %d 行", maxLines, len(lines))
		}
	}
}

// TestWrapTruncationEllipsis 截断时末行必须以省略号结尾且仍满足宽度限制。
func TestWrapTruncationEllipsis(t *testing.T) {
	m := fixedMeasurer{}
	text := "metadata block contents that cannot possibly fit in two short lines"
	maxWidth := 40.0 // 每行最多 8 字符（字号 10）
	lines := WrapWithEllipsis(m, text, 10, maxWidth, 2)
	if len(lines) != 2 {
		t.Fatalf("期望 2 行, got %d: %v", len(lines), lines)
	}
	last := lines[len(lines)-1]
	if !strings.HasSuffix(last, Ellipsis) {
		t.Fatalf("末行应以省略号结尾: %q", last)
	}
	if w := m.TextWidth(last, 10, false); w > maxWidth {
		t.Fatalf("截断后的末行仍超宽: %q width=%g", last, w)
	}
}

// TestWrapHardBreakSingleLine 单个超宽 token、maxLines=1：恰好一行，硬拆并截断。
func TestWrapHardBreakSingleLine(t *testing.T) {
	m := fixedMeasurer{}
	lines := WrapWithEllipsis(m, "BH-00123-VERY-LONG-TOKEN", 10, 30, 1) // 每行最多 6 字符
	if len(lines) != 1 {
		t.Fatalf("期望恰好 1 行, got %v", lines)
	}
	if !strings.HasSuffix(lines[0], Ellipsis) {
		t.Fatalf("硬拆行应以省略号结尾: %q", lines[0])
	}
	if w := m.TextWidth(lines[0], 10, false); w > 30 {
		t.Fatalf("硬拆行超宽: %q width=%g", lines[0], w)
	}
}

// TestWrapHardBreakMultiLine 超宽 token 铺满多行后剩余内容被丢弃并标记截断。
func TestWrapHardBreakMultiLine(t *testing.T) {
	m := fixedMeasurer{}
	lines := WrapWithEllipsis(m, "BH-00123-VERY-LONG-TOKEN", 10, 20, 3) // 每行最多 4 字符
	if len(lines) != 3 {
		t.Fatalf("期望 3 行, got %d: %v", len(lines), lines)
	}
	for i, ln := range lines {
		if w := m.TextWidth(ln, 10, false); w > 20 {
			t.Fatalf("第 %d 行超宽: %q", i, ln)
		}
	}
	if !strings.HasSuffix(lines[2], Ellipsis) {
		t.Fatalf("末行应以省略号结尾: %q", lines[2])
	}
}

// TestWrapDegradesToBareEllipsis 宽度小到连 “一个字符+省略号” 都放不下时，末行退化为仅省略号。
func TestWrapDegradesToBareEllipsis(t *testing.T) {
	m := fixedMeasurer{}
	// 字号 10 时每字符宽 5；宽度 6 只能放一个字符，放不下 “字符+省略号”。
	lines := WrapWithEllipsis(m, "overflow", 10, 6, 1)
	if len(lines) != 1 {
		t.Fatalf("期望 1 行, got %v", lines)
	}
	if lines[0] != Ellipsis {
		t.Fatalf("期望退化为仅省略号, got %q", lines[0])
	}
}

func TestApproxMeasurer(t *testing.T) {
	m := ApproxMeasurer{}
	if w := m.TextWidth("", 12, false); w != 0 {
		t.Fatalf("空字符串宽度应为 0, got %g", w)
	}
	short := m.TextWidth("ab", 12, false)
	long := m.TextWidth("abcd", 12, false)
	if long != 2*short {
		t.Fatalf("估算宽度应与字符数成正比: short=%g long=%g", short, long)
	}
}
