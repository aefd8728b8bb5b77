package eventbus

import (
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
)

// timedLock 带超时的互斥锁
//
// 单槽信号量：持有锁即占用通道中的唯一位置。等待方与时钟定时器
// 做 select，超时返回 ErrLockTimeout。不可重入。
type timedLock struct {
	sem     chan struct{}
	timeout time.Duration
	clock   clock.Clock
}

func newTimedLock(timeout time.Duration, clk clock.Clock) *timedLock {
	return &timedLock{
		sem:     make(chan struct{}, 1),
		timeout: timeout,
		clock:   clk,
	}
}

// acquire 获取锁，超时返回包装了 ErrLockTimeout 的错误
func (l *timedLock) acquire() error {
	// 无竞争时不创建定时器
	select {
	case l.sem <- struct{}{}:
		return nil
	default:
	}

	t := l.clock.Timer(l.timeout)
	defer t.Stop()

	select {
	case l.sem <- struct{}{}:
		return nil
	case <-t.C:
		return fmt.Errorf("%w after %s", ErrLockTimeout, l.timeout)
	}
}

// release 释放锁，未持有时为空操作
func (l *timedLock) release() {
	select {
	case <-l.sem:
	default:
	}
}

// withLock 在锁内执行 fn，任何退出路径（包括 panic）都会释放锁
func (l *timedLock) withLock(fn func() error) error {
	if err := l.acquire(); err != nil {
		return err
	}
	defer l.release()
	return fn()
}
