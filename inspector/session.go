package inspector

import (
	"github.com/google/go-dap"
	"github.com/sirupsen/logrus"
)

// MessageObserver 等待期间观察到的无关消息都会交给该回调，之后即被丢弃
// 回调里只做记录和状态推断，不要在里面再发请求
type MessageObserver func(msg dap.Message)

// Session 一次探查运行的会话
// 持有连接和请求序列号，同一时刻只会有一个在途请求，
// 所以响应匹配只需要按命令名扫描，不需要seq到等待者的映射
type Session struct {
	transport Transport
	// seq 下一个要使用的请求序列号
	seq      int
	observer MessageObserver
}

func NewSession(transport Transport, observer MessageObserver) *Session {
	return &Session{
		transport: transport,
		seq:       1,
		observer:  observer,
	}
}

// Send 填充序列号并发送请求，返回使用的序列号
func (s *Session) Send(req dap.RequestMessage) (int, error) {
	seq := s.seq
	req.GetRequest().Seq = seq
	if err := s.transport.WriteMessage(req); err != nil {
		return 0, err
	}
	s.seq++
	logrus.Infof("[Session] sent request, command = %s, seq = %d", req.GetRequest().Command, seq)
	return seq, nil
}

// AwaitResponse 阻塞读取消息，直到出现command对应的响应
// 中间读到的事件、其他命令的响应都交给observer后丢弃
// 本方法自身不做超时控制，超时由Transport的读超时兜底
func (s *Session) AwaitResponse(command string) (dap.ResponseMessage, error) {
	for {
		msg, err := s.transport.ReadMessage()
		if err != nil {
			return nil, err
		}
		if resp, ok := msg.(dap.ResponseMessage); ok && resp.GetResponse().Command == command {
			if !resp.GetResponse().Success {
				logrus.Warnf("[Session] adapter reports failure, command = %s, message = %s",
					command, resp.GetResponse().Message)
			}
			return resp, nil
		}
		s.observe(msg)
	}
}

// AwaitResponseAndStopped 阻塞读取消息，直到既收到command的响应，
// 又收到目标线程的stopped事件。两者到达顺序不固定，调试器可能先发事件再发响应，
// 所以必须在同一个循环里消费，分两次等待会把先到的那个当无关消息丢掉。
// 调试器上报allThreadsStopped时也算目标线程已暂停
func (s *Session) AwaitResponseAndStopped(command string, threadID int) (dap.ResponseMessage, *dap.StoppedEvent, error) {
	var resp dap.ResponseMessage
	var stopped *dap.StoppedEvent
	for resp == nil || stopped == nil {
		msg, err := s.transport.ReadMessage()
		if err != nil {
			return nil, nil, err
		}
		if r, ok := msg.(dap.ResponseMessage); ok && resp == nil && r.GetResponse().Command == command {
			if !r.GetResponse().Success {
				logrus.Warnf("[Session] adapter reports failure, command = %s, message = %s",
					command, r.GetResponse().Message)
			}
			resp = r
			continue
		}
		if event, ok := msg.(*dap.StoppedEvent); ok && stopped == nil &&
			(event.Body.ThreadId == threadID || event.Body.AllThreadsStopped) {
			logrus.Infof("[Session] thread %d stopped, reason = %s", threadID, event.Body.Reason)
			stopped = event
			continue
		}
		s.observe(msg)
	}
	return resp, stopped, nil
}

func (s *Session) observe(msg dap.Message) {
	if s.observer != nil {
		s.observer(msg)
	}
}

// Close 关闭底层连接，任何退出路径上都要保证调用到一次
func (s *Session) Close() error {
	return s.transport.Close()
}

// LogObserver 默认的消息观察者，把等待期间读到的消息记录到日志
func LogObserver(msg dap.Message) {
	switch m := msg.(type) {
	case dap.EventMessage:
		logrus.Infof("[Session] event received, event = %s", m.GetEvent().Event)
	case dap.ResponseMessage:
		logrus.Infof("[Session] unrelated response received, command = %s", m.GetResponse().Command)
	default:
		logrus.Infof("[Session] unexpected message received, seq = %d", msg.GetSeq())
	}
}
