package inspector

import (
	"github.com/emirpasic/gods/sets"
	"github.com/google/go-dap"
	"github.com/sirupsen/logrus"

	"github.com/fansqz/dap-inspector/constants"
	"github.com/fansqz/dap-inspector/protocol"
)

// Expander 对一个变量引用做深度受限、防环的递归展开
// 每层展开只发一次variables请求，总请求数等于深度范围内
// 可达的、带非零引用且不成环的节点数
type Expander struct {
	session *Session
}

func NewExpander(session *Session) *Expander {
	return &Expander{session: session}
}

// Expand 获取reference的下一层变量，并在深度预算内继续展开
//
// visited记录的是当前递归路径上正在展开的引用，不是全局去重缓存：
// 路径上出现过的引用再次出现说明成环，用哨兵节点截断；
// 子树展开完之后引用会从集合里移除，兄弟分支可以合法地再次展开同一个引用。
// depthBudget为0时只取本层子变量，不再继续展开，这是叶子情况不是错误。
func (ex *Expander) Expand(reference int, depthBudget int, visited sets.Set) ([]*protocol.VariableNode, error) {
	if visited.Contains(reference) {
		logrus.Infof("[Expander] cycle detected, reference = %d", reference)
		return []*protocol.VariableNode{protocol.NewCycleNode()}, nil
	}
	visited.Add(reference)
	defer visited.Remove(reference)

	variables, err := ex.fetchVariables(reference)
	if err != nil {
		return nil, err
	}

	// 保持调试器上报的顺序，不重新排序
	nodes := make([]*protocol.VariableNode, 0, len(variables))
	for _, v := range variables {
		node := protocol.NewVariableNode(v)
		if node.Reference != 0 && depthBudget > 0 {
			children, err := ex.Expand(node.Reference, depthBudget-1, visited)
			if err != nil {
				return nil, err
			}
			node.Children = children
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// fetchVariables 发一次variables请求获取引用的直接子变量
// 调试器应答失败时按没有子变量处理，传输层错误才向上传播
func (ex *Expander) fetchVariables(reference int) ([]dap.Variable, error) {
	if _, err := ex.session.Send(newVariablesRequest(reference)); err != nil {
		return nil, err
	}
	resp, err := ex.session.AwaitResponse(constants.CommandVariables)
	if err != nil {
		return nil, err
	}
	variablesResp, ok := resp.(*dap.VariablesResponse)
	if !ok {
		logrus.Warnf("[Expander] variables request failed, reference = %d", reference)
		return nil, nil
	}
	return variablesResp.Body.Variables, nil
}
