package inspector

import (
	"bufio"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/google/go-dap"
)

const (
	eventuallyTimeout = time.Second * 2
	eventuallyTick    = time.Millisecond * 10
)

// fakeAdapter 在net.Pipe的另一端扮演一个调试器，按固定的表应答请求
type fakeAdapter struct {
	t      *testing.T
	conn   net.Conn
	reader *bufio.Reader

	// threads threads请求的应答内容
	threads []dap.Thread
	// frames stackTrace请求的应答内容
	frames []dap.StackFrame
	// scopes 栈帧id -> 作用域列表
	scopes map[int][]dap.Scope
	// variables 引用 -> 子变量列表，variablesFunc优先
	variables     map[int][]dap.Variable
	variablesFunc func(reference int) []dap.Variable
	// stoppedOnPause pause应答后是否自动发送stopped事件
	stoppedOnPause bool
	// stoppedFirst stopped事件排在pause响应前面发送
	stoppedFirst bool

	// sendQueue net.Pipe没有缓冲，应答统一排队由单独的协程写出，
	// 避免客户端连续发请求时和应答写入互相等死
	sendQueue chan dap.Message

	mutex    sync.Mutex
	commands []string
	seqs     []int
}

// newTestSession 建立一对互联的Session和fakeAdapter
func newTestSession(t *testing.T, observer MessageObserver) (*Session, *fakeAdapter) {
	clientConn, adapterConn := net.Pipe()
	adapter := &fakeAdapter{
		t:         t,
		conn:      adapterConn,
		reader:    bufio.NewReader(adapterConn),
		scopes:    map[int][]dap.Scope{},
		variables: map[int][]dap.Variable{},
		sendQueue: make(chan dap.Message, 64),
	}
	go adapter.sendFromQueue()
	session := NewSession(NewConnTransport(clientConn, time.Second*5), observer)
	t.Cleanup(func() {
		session.Close()
		adapterConn.Close()
		close(adapter.sendQueue)
	})
	return session, adapter
}

// sendFromQueue 从队列里取消息写给客户端
func (a *fakeAdapter) sendFromQueue() {
	for msg := range a.sendQueue {
		if err := dap.WriteProtocolMessage(a.conn, msg); err != nil {
			return
		}
	}
}

// serve 循环应答请求，连接关闭时退出
func (a *fakeAdapter) serve() {
	go func() {
		for {
			msg, err := dap.ReadProtocolMessage(a.reader)
			if err != nil {
				return
			}
			req, ok := msg.(dap.RequestMessage)
			if !ok {
				continue
			}
			a.record(req.GetRequest().Command, req.GetRequest().Seq)
			a.respond(msg)
		}
	}()
}

// recordOnly 只记录收到的请求，不做任何应答
func (a *fakeAdapter) recordOnly() {
	go func() {
		for {
			msg, err := dap.ReadProtocolMessage(a.reader)
			if err != nil {
				return
			}
			if req, ok := msg.(dap.RequestMessage); ok {
				a.record(req.GetRequest().Command, req.GetRequest().Seq)
			}
		}
	}()
}

func (a *fakeAdapter) record(command string, seq int) {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	a.commands = append(a.commands, command)
	a.seqs = append(a.seqs, seq)
}

func (a *fakeAdapter) receivedCommands() []string {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	return append([]string{}, a.commands...)
}

func (a *fakeAdapter) receivedSeqs() []int {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	return append([]int{}, a.seqs...)
}

func (a *fakeAdapter) respond(msg dap.Message) {
	switch req := msg.(type) {
	case *dap.InitializeRequest:
		resp := &dap.InitializeResponse{Response: *newTestResponse(req.Seq, req.Command)}
		a.send(resp)
	case *dap.AttachRequest:
		a.send(&dap.AttachResponse{Response: *newTestResponse(req.Seq, req.Command)})
	case *dap.ConfigurationDoneRequest:
		a.send(&dap.ConfigurationDoneResponse{Response: *newTestResponse(req.Seq, req.Command)})
	case *dap.ThreadsRequest:
		resp := &dap.ThreadsResponse{Response: *newTestResponse(req.Seq, req.Command)}
		resp.Body.Threads = a.threads
		a.send(resp)
	case *dap.PauseRequest:
		if a.stoppedOnPause && a.stoppedFirst {
			a.sendStopped(req.Arguments.ThreadId)
		}
		a.send(&dap.PauseResponse{Response: *newTestResponse(req.Seq, req.Command)})
		if a.stoppedOnPause && !a.stoppedFirst {
			a.sendStopped(req.Arguments.ThreadId)
		}
	case *dap.StackTraceRequest:
		resp := &dap.StackTraceResponse{Response: *newTestResponse(req.Seq, req.Command)}
		resp.Body.StackFrames = a.frames
		resp.Body.TotalFrames = len(a.frames)
		a.send(resp)
	case *dap.ScopesRequest:
		resp := &dap.ScopesResponse{Response: *newTestResponse(req.Seq, req.Command)}
		resp.Body.Scopes = a.scopes[req.Arguments.FrameId]
		a.send(resp)
	case *dap.VariablesRequest:
		resp := &dap.VariablesResponse{Response: *newTestResponse(req.Seq, req.Command)}
		if a.variablesFunc != nil {
			resp.Body.Variables = a.variablesFunc(req.Arguments.VariablesReference)
		} else {
			resp.Body.Variables = a.variables[req.Arguments.VariablesReference]
		}
		a.send(resp)
	}
}

func (a *fakeAdapter) send(msg dap.Message) {
	a.sendQueue <- msg
}

func (a *fakeAdapter) sendStopped(threadID int) {
	event := &dap.StoppedEvent{Event: *newTestEvent("stopped")}
	event.Body.Reason = "pause"
	event.Body.ThreadId = threadID
	a.send(event)
}

func (a *fakeAdapter) sendOutput(text string) {
	a.send(&dap.OutputEvent{
		Event: *newTestEvent("output"),
		Body:  dap.OutputEventBody{Output: text},
	})
}

func newTestResponse(requestSeq int, command string) *dap.Response {
	return &dap.Response{
		ProtocolMessage: dap.ProtocolMessage{
			Seq:  0,
			Type: "response",
		},
		Command:    command,
		RequestSeq: requestSeq,
		Success:    true,
	}
}

func newTestEvent(event string) *dap.Event {
	return &dap.Event{
		ProtocolMessage: dap.ProtocolMessage{
			Seq:  0,
			Type: "event",
		},
		Event: event,
	}
}
