package utils

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fansqz/dap-inspector/utils/gosync"
)

// TimeoutManager 一个一次性的计时器
// Start之后若没有Cancel，到期就执行fun函数
// 用来给整次探查加一个总时长上限：单次读超时挡不住一直在发事件的调试器
type TimeoutManager struct {
	timer         *time.Timer
	cancelChannel chan struct{}
	cancelOnce    sync.Once
	fun           func()
}

// NewTimeoutManager 创建一个新的计时器实例
func NewTimeoutManager() *TimeoutManager {
	return &TimeoutManager{}
}

// Start 开始计时，timeout之后执行fun函数
func (t *TimeoutManager) Start(ctx context.Context, timeout time.Duration, option func()) {
	t.timer = time.NewTimer(timeout)
	t.fun = option
	t.cancelChannel = make(chan struct{})
	gosync.Go(ctx, func(ctx context.Context) {
		select {
		case <-t.timer.C:
			logrus.Infof("[TimeoutManager] timer expired, performing action")
			t.fun()
		case <-t.cancelChannel:
			if !t.timer.Stop() {
				select {
				case <-t.timer.C:
				default:
				}
			}
		}
	})
}

// Cancel 停止计时，可重复调用，计时器已经到期时什么都不做
// 用关闭通道通知，协程还没走到select也不会漏掉取消
func (t *TimeoutManager) Cancel() {
	t.cancelOnce.Do(func() {
		close(t.cancelChannel)
	})
}
