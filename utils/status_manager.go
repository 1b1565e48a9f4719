package utils

import "sync"

// 探查会话的状态，严格按此顺序推进
const (
	// Connected 已建立连接，尚未初始化
	Connected = "connected"
	// Initialized initialize请求已应答
	Initialized = "initialized"
	// Attached attach请求已应答
	Attached = "attached"
	// ConfigurationDone configurationDone请求已应答
	ConfigurationDone = "configurationDone"
	// ThreadsKnown 已获取线程列表
	ThreadsKnown = "threadsKnown"
	// Paused pause请求已应答，并且观察到了对应线程的stopped事件
	Paused = "paused"
	// StackRetrieved 已获取暂停线程的栈帧
	StackRetrieved = "stackRetrieved"
)

// StatusManager 记录探查会话的状态的
type StatusManager struct {
	lock   sync.RWMutex
	status string
}

func NewStatusManager() *StatusManager {
	return &StatusManager{
		status: Connected,
	}
}

func (s *StatusManager) Set(status string) {
	defer s.lock.Unlock()
	s.lock.Lock()
	s.status = status
}

func (s *StatusManager) Get() string {
	defer s.lock.RUnlock()
	s.lock.RLock()
	return s.status
}

func (s *StatusManager) Is(statusList ...string) bool {
	defer s.lock.RUnlock()
	s.lock.RLock()
	for _, status := range statusList {
		if s.status == status {
			return true
		}
	}
	return false
}
