package layout

import (
	"strings"
	"unicode/utf8"
)

// Ellipsis 是截断标记。
const Ellipsis = "…"

// Measurer 负责测量一段文本在给定字号（pt）下的渲染宽度（mm）。
// 实现必须对空字符串返回 0，且不允许失败；测量后端不可用时应退化为估算。
type Measurer interface {
	TextWidth(text string, fontSize float64, bold bool) float64
}

// ApproxMeasurer 在没有真实字体度量时按字符数估算宽度。
// 宽度 ≈ 字符数 × 字号 × 0.5，换算到 mm。
type ApproxMeasurer struct{}

func (ApproxMeasurer) TextWidth(text string, fontSize float64, bold bool) float64 {
	if text == "" {
		return 0
	}
	return float64(utf8.RuneCountInString(text)) * fontSize * 0.5 * PtToMm
}

// WrapWithEllipsis 将文本按贪心策略折成不超过 maxLines 行，每行宽度不超过 maxWidth（mm）。
// 空白按 strings.Fields 归一化；单个超宽 token 逐字符硬拆；
// 内容放不下时在末行做尾部截断并追加省略号，截断后的末行仍满足宽度限制
// （宽度小到连一个字符加省略号都放不下时，末行退化为仅省略号）。
// 返回值永远不超过 maxLines 行；空输入返回空切片。
func WrapWithEllipsis(m Measurer, text string, fontSize, maxWidth float64, maxLines int) []string {
	if maxLines < 1 {
		maxLines = 1
	}
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return nil
	}

	// 显式的 token 队列：整行放不下时不弹出 token，下一轮重新处理。
	queue := tokens
	var lines []string
	acc := ""
	dropped := false

	for len(queue) > 0 && len(lines) < maxLines {
		tok := queue[0]

		if acc == "" {
			if m.TextWidth(tok, fontSize, false) > maxWidth {
				part, cut := hardBreak(m, tok, fontSize, maxWidth, &lines, maxLines)
				if cut {
					dropped = true
				}
				acc = part
				queue = queue[1:]
				continue
			}
			acc = tok
			queue = queue[1:]
			continue
		}

		joined := acc + " " + tok
		if m.TextWidth(joined, fontSize, false) <= maxWidth {
			acc = joined
			queue = queue[1:]
			continue
		}

		// 行满：落下当前行，token 留在队列里重新处理
		lines = append(lines, acc)
		acc = ""
	}

	if len(lines) < maxLines && acc != "" {
		lines = append(lines, acc)
		acc = ""
	}
	if acc != "" || len(queue) > 0 {
		dropped = true
	}

	last := lines[len(lines)-1]
	if dropped || (len(lines) == maxLines && m.TextWidth(last, fontSize, false) > maxWidth) {
		// 逐字符去尾直到 “行+省略号” 放得下
		for last != "" && m.TextWidth(last+Ellipsis, fontSize, false) > maxWidth {
			_, size := utf8.DecodeLastRuneInString(last)
			last = last[:len(last)-size]
		}
		lines[len(lines)-1] = last + Ellipsis
	}
	return lines
}

// hardBreak 逐字符拆分一个本身就超宽的 token。
// 返回未落行的残余部分；当行数到达 maxLines 提前停止时丢弃剩余字符并报告 cut。
func hardBreak(m Measurer, token string, fontSize, maxWidth float64, lines *[]string, maxLines int) (string, bool) {
	part := ""
	for _, r := range token {
		next := part + string(r)
		if part != "" && m.TextWidth(next, fontSize, false) > maxWidth {
			*lines = append(*lines, part)
			part = string(r)
			if len(*lines) >= maxLines {
				// part 里刚开始的字符与其后内容都被丢弃
				return "", true
			}
			continue
		}
		part = next
	}
	return part, false
}
