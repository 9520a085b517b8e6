package layout

// Collector 实现 Surface，把绘图指令按顺序累积到 Slide 中，
// 供渲染器消费或输出为调试 JSON。
type Collector struct {
	slide Slide
}

// NewCollector 创建一个以给定画布尺寸（mm）为底的收集器。
func NewCollector(width, height float64) *Collector {
	return &Collector{slide: Slide{Width: width, Height: height}}
}

func (c *Collector) AddRect(r Rect) error {
	c.slide.Rects = append(c.slide.Rects, r)
	return nil
}

func (c *Collector) AddLine(ln Line) error {
	c.slide.Lines = append(c.slide.Lines, ln)
	return nil
}

func (c *Collector) AddText(tb TextBox) error {
	c.slide.Texts = append(c.slide.Texts, tb)
	return nil
}

func (c *Collector) AddImage(img ImageBox) error {
	c.slide.Images = append(c.slide.Images, img)
	return nil
}

// Slide 返回累积到目前为止的幻灯片内容。
func (c *Collector) Slide() Slide { return c.slide }
