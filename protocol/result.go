package protocol

import (
	"github.com/google/go-dap"

	"github.com/fansqz/dap-inspector/constants"
)

// VariableNode 变量树中的一个节点
// Children只在该节点有引用、深度预算未耗尽、且不在当前递归路径上时才会被填充
type VariableNode struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Type  string `json:"type,omitempty"`
	// EvaluateName 可以提交给调试器求值的表达式，可能为空
	EvaluateName string `json:"evaluateName,omitempty"`
	// Reference 变量引用，为0表示没有可以继续展开的子节点
	Reference int             `json:"reference"`
	Children  []*VariableNode `json:"children"`
}

// NewVariableNode 根据调试器上报的变量构造节点，缺失的可选字段取零值
func NewVariableNode(v dap.Variable) *VariableNode {
	return &VariableNode{
		Name:         v.Name,
		Value:        v.Value,
		Type:         v.Type,
		EvaluateName: v.EvaluateName,
		Reference:    v.VariablesReference,
		Children:     []*VariableNode{},
	}
}

// NewCycleNode 检测到环时的哨兵节点，没有引用也没有子节点
func NewCycleNode() *VariableNode {
	return &VariableNode{
		Name:     constants.CycleMarker,
		Children: []*VariableNode{},
	}
}

// IsCycle 判断节点是否是环哨兵
func (n *VariableNode) IsCycle() bool {
	return n.Name == constants.CycleMarker && n.Reference == 0
}

// Frame 暂停线程的一个栈帧，以及每个作用域展开后的变量树
type Frame struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	// Path 源文件路径，调试器没有上报时为空
	Path   string                     `json:"path,omitempty"`
	Scopes map[string][]*VariableNode `json:"scopes"`
}

// InspectResult 一次探查的完整结果
// Frames按栈序排列，最外层的栈帧在最后；没有线程可暂停时Frames为空
type InspectResult struct {
	Frames []*Frame `json:"frames"`
}

func NewInspectResult() *InspectResult {
	return &InspectResult{Frames: []*Frame{}}
}
