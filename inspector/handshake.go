package inspector

import (
	"github.com/google/go-dap"
	"github.com/sirupsen/logrus"

	"github.com/fansqz/dap-inspector/constants"
	"github.com/fansqz/dap-inspector/utils"
)

// Handshake 驱动固定的握手路径：
// Connected → Initialized → Attached → ConfigurationDone → ThreadsKnown → Paused → StackRetrieved
// 每次状态推进对应一对请求/响应，只有Paused额外要求观察到stopped事件。
// 响应里success为false不会中断握手，只记录后继续（沿用既有行为，失败策略未定义）。
type Handshake struct {
	session *Session
	status  *utils.StatusManager
	// adapterID initialize请求里上报的调试器标识
	adapterID string
}

func NewHandshake(session *Session, adapterID string) *Handshake {
	return &Handshake{
		session:   session,
		status:    utils.NewStatusManager(),
		adapterID: adapterID,
	}
}

// Status 当前握手状态
func (h *Handshake) Status() *utils.StatusManager {
	return h.status
}

// Initialize 发送initialize请求并等待响应
func (h *Handshake) Initialize() error {
	logrus.Infof("[Handshake] Initialize")
	if _, err := h.session.Send(newInitializeRequest(h.adapterID)); err != nil {
		return err
	}
	if _, err := h.session.AwaitResponse(constants.CommandInitialize); err != nil {
		return err
	}
	h.status.Set(utils.Initialized)
	return nil
}

// Attach 发送attach请求
// attach和configurationDone一起应答，这里只发送不单独等待，
// 避免部分调试器按配置顺序延迟attach响应时互相等死
func (h *Handshake) Attach() error {
	logrus.Infof("[Handshake] Attach")
	if _, err := h.session.Send(newAttachRequest()); err != nil {
		return err
	}
	h.status.Set(utils.Attached)
	return nil
}

// ConfigurationDone 发送configurationDone并等待响应
func (h *Handshake) ConfigurationDone() error {
	logrus.Infof("[Handshake] ConfigurationDone")
	if _, err := h.session.Send(newConfigurationDoneRequest()); err != nil {
		return err
	}
	if _, err := h.session.AwaitResponse(constants.CommandConfigurationDone); err != nil {
		return err
	}
	h.status.Set(utils.ConfigurationDone)
	return nil
}

// Threads 获取线程列表
func (h *Handshake) Threads() ([]dap.Thread, error) {
	logrus.Infof("[Handshake] Threads")
	if _, err := h.session.Send(newThreadsRequest()); err != nil {
		return nil, err
	}
	resp, err := h.session.AwaitResponse(constants.CommandThreads)
	if err != nil {
		return nil, err
	}
	h.status.Set(utils.ThreadsKnown)
	threadsResp, ok := resp.(*dap.ThreadsResponse)
	if !ok {
		// 失败响应没有线程列表
		return nil, nil
	}
	return threadsResp.Body.Threads, nil
}

// Pause 暂停目标线程
// pause的成功响应并不代表线程真的停了，必须同时观察到目标线程的stopped事件
// 才算进入Paused状态。响应和事件哪个先到没有约定，统一在一次等待里消费
func (h *Handshake) Pause(threadID int) error {
	logrus.Infof("[Handshake] Pause, threadID = %d", threadID)
	if _, err := h.session.Send(newPauseRequest(threadID)); err != nil {
		return err
	}
	if _, _, err := h.session.AwaitResponseAndStopped(constants.CommandPause, threadID); err != nil {
		return err
	}
	h.status.Set(utils.Paused)
	return nil
}

// StackTrace 获取暂停线程的栈帧，按栈序排列，最外层在最后
func (h *Handshake) StackTrace(threadID int) ([]dap.StackFrame, error) {
	logrus.Infof("[Handshake] StackTrace, threadID = %d", threadID)
	if _, err := h.session.Send(newStackTraceRequest(threadID)); err != nil {
		return nil, err
	}
	resp, err := h.session.AwaitResponse(constants.CommandStackTrace)
	if err != nil {
		return nil, err
	}
	h.status.Set(utils.StackRetrieved)
	stackResp, ok := resp.(*dap.StackTraceResponse)
	if !ok {
		return nil, nil
	}
	return stackResp.Body.StackFrames, nil
}
