package display

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/emirpasic/gods/sets"
	"golang.org/x/term"

	"github.com/fansqz/dap-inspector/protocol"
	"github.com/fansqz/dap-inspector/utils"
)

// 过滤掉的变量名，多是解释器或调试器自带的样板变量，展示时没有价值
var VariableNamesToFilter = []string{
	"__builtins__",
	"__doc__",
	"__loader__",
	"__name__",
	"__package__",
	"__spec__",
	"special variables",
	"function variables",
	"module variables",
	"class variables",
	"debugpy",
}

// 过滤掉的变量类型
var VariableTypesToFilter = []string{
	"builtin_function_or_method",
	"method-wrapper",
}

// Renderer 把探查结果渲染成缩进的文本树
// 只做展示过滤，不会修改探查结果本身
type Renderer struct {
	out        io.Writer
	nameFilter sets.Set
	typeFilter sets.Set
	// maxWidth 输出到终端时把过长的值截断到该宽度，为0表示不截断
	maxWidth int
}

func NewRenderer(out io.Writer) *Renderer {
	r := &Renderer{
		out:        out,
		nameFilter: utils.List2set(VariableNamesToFilter),
		typeFilter: utils.List2set(VariableTypesToFilter),
	}
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil {
			r.maxWidth = width
		}
	}
	return r
}

// RenderResult 渲染所有栈帧
func (r *Renderer) RenderResult(result *protocol.InspectResult) {
	if len(result.Frames) == 0 {
		fmt.Fprintln(r.out, "no frames to inspect")
		return
	}
	for _, frame := range result.Frames {
		r.renderFrame(frame)
	}
}

func (r *Renderer) renderFrame(frame *protocol.Frame) {
	if frame.Path != "" {
		fmt.Fprintf(r.out, "frame %d: %s (%s)\n", frame.ID, frame.Name, frame.Path)
	} else {
		fmt.Fprintf(r.out, "frame %d: %s\n", frame.ID, frame.Name)
	}
	for name, nodes := range frame.Scopes {
		fmt.Fprintf(r.out, "  scope %s:\n", name)
		r.renderNodes(nodes, 2)
	}
}

func (r *Renderer) renderNodes(nodes []*protocol.VariableNode, depth int) {
	for _, node := range nodes {
		if r.nameFilter.Contains(node.Name) || r.typeFilter.Contains(node.Type) {
			continue
		}
		fmt.Fprintln(r.out, r.clamp(r.formatNode(node, depth)))
		if len(node.Children) > 0 {
			r.renderNodes(node.Children, depth+1)
		}
	}
}

func (r *Renderer) formatNode(node *protocol.VariableNode, depth int) string {
	indent := strings.Repeat("  ", depth)
	line := fmt.Sprintf("%s%s = %s", indent, node.Name, node.Value)
	if node.Type != "" {
		line = fmt.Sprintf("%s (%s)", line, node.Type)
	}
	if node.EvaluateName != "" && node.EvaluateName != node.Name {
		line = fmt.Sprintf("%s [%s]", line, node.EvaluateName)
	}
	return line
}

// clamp 终端输出时截断过长的行
// 按rune数截断，变量值里可能有多字节字符，按字节切会切出半个字符
func (r *Renderer) clamp(line string) string {
	if r.maxWidth <= 3 {
		return line
	}
	runes := []rune(line)
	if len(runes) <= r.maxWidth {
		return line
	}
	return string(runes[:r.maxWidth-3]) + "..."
}
