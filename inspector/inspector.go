package inspector

import (
	"context"
	"strings"

	"github.com/emirpasic/gods/sets/hashset"
	"github.com/google/go-dap"
	"github.com/sirupsen/logrus"

	"github.com/fansqz/dap-inspector/constants"
	"github.com/fansqz/dap-inspector/protocol"
)

// Inspector 探查的总编排
// 完成握手后暂停第一个线程，取它的栈帧，对每个栈帧的每个作用域
// 用Expander展开出变量树，组装成最终结果
type Inspector struct {
	session   *Session
	handshake *Handshake
	expander  *Expander
	// depthLimit 每个作用域展开变量树的深度预算
	depthLimit int
}

func NewInspector(session *Session, adapterID string, depthLimit int) *Inspector {
	if depthLimit < 0 {
		depthLimit = constants.DefaultDepthLimit
	}
	return &Inspector{
		session:    session,
		handshake:  NewHandshake(session, adapterID),
		expander:   NewExpander(session),
		depthLimit: depthLimit,
	}
}

// Inspect 执行一次完整的探查
// 没有线程可以暂停时返回空结果，这是合法的终态不是错误；
// 传输层错误会中断整次探查，由调用方负责关闭连接
func (i *Inspector) Inspect(ctx context.Context) (*protocol.InspectResult, error) {
	if err := i.handshake.Initialize(); err != nil {
		return nil, err
	}
	if err := i.handshake.Attach(); err != nil {
		return nil, err
	}
	if err := i.handshake.ConfigurationDone(); err != nil {
		return nil, err
	}

	threads, err := i.handshake.Threads()
	if err != nil {
		return nil, err
	}
	if len(threads) == 0 {
		logrus.Infof("[Inspector] no threads to pause")
		return protocol.NewInspectResult(), nil
	}

	threadID := threads[0].Id
	if err = i.handshake.Pause(threadID); err != nil {
		return nil, err
	}

	// 暂停后再取一次线程列表，确认线程还在（沿用既有行为）
	if _, err = i.handshake.Threads(); err != nil {
		return nil, err
	}

	frames, err := i.handshake.StackTrace(threadID)
	if err != nil {
		return nil, err
	}

	result := protocol.NewInspectResult()
	for _, frame := range frames {
		frameResult, err := i.inspectFrame(frame)
		if err != nil {
			return nil, err
		}
		result.Frames = append(result.Frames, frameResult)
	}
	return result, nil
}

// inspectFrame 获取一个栈帧的作用域并逐个展开
func (i *Inspector) inspectFrame(frame dap.StackFrame) (*protocol.Frame, error) {
	logrus.Infof("[Inspector] inspect frame %d: %s", frame.Id, frame.Name)
	frameResult := &protocol.Frame{
		ID:     frame.Id,
		Name:   frame.Name,
		Scopes: map[string][]*protocol.VariableNode{},
	}
	if frame.Source != nil {
		frameResult.Path = frame.Source.Path
	}

	scopes, err := i.fetchScopes(frame.Id)
	if err != nil {
		return nil, err
	}
	for _, scope := range scopes {
		// 每个作用域一个全新的visited集合，防环不跨作用域
		visited := hashset.New()
		nodes, err := i.expander.Expand(scope.VariablesReference, i.depthLimit, visited)
		if err != nil {
			return nil, err
		}
		frameResult.Scopes[scope.Name] = nodes
	}

	dropDuplicatedGlobals(frameResult)
	return frameResult, nil
}

// fetchScopes 获取栈帧的作用域列表
func (i *Inspector) fetchScopes(frameID int) ([]dap.Scope, error) {
	if _, err := i.session.Send(newScopesRequest(frameID)); err != nil {
		return nil, err
	}
	resp, err := i.session.AwaitResponse(constants.CommandScopes)
	if err != nil {
		return nil, err
	}
	scopesResp, ok := resp.(*dap.ScopesResponse)
	if !ok {
		return nil, nil
	}
	return scopesResp.Body.Scopes, nil
}

// dropDuplicatedGlobals 部分调试器会把同一份合成作用域按locals和globals上报两次，
// 当两者的顶层条目数相同时丢掉globals。
// 这是条目数启发式，不做内容比较，保持原行为不要改进
func dropDuplicatedGlobals(frame *protocol.Frame) {
	var localsName, globalsName string
	for name := range frame.Scopes {
		switch constants.ScopeName(strings.ToLower(name)) {
		case constants.ScopeLocals:
			localsName = name
		case constants.ScopeGlobals:
			globalsName = name
		}
	}
	if localsName == "" || globalsName == "" {
		return
	}
	if len(frame.Scopes[localsName]) == len(frame.Scopes[globalsName]) {
		logrus.Infof("[Inspector] dropping duplicated globals scope, entries = %d", len(frame.Scopes[globalsName]))
		delete(frame.Scopes, globalsName)
	}
}
