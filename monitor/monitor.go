package monitor

import (
	"github.com/pkg/errors"

	"github.com/dreamsxin/iorate/types"
)

// ErrNotFound 表示无法读取进程的 I/O 计数
var ErrNotFound = errors.New("process io counters not found")

// CounterReader 读取进程累计 I/O 字节数的接口
type CounterReader interface {
	// 读取进程当前的累计读写字节数，不做缓存
	ReadCounters(pid int) (types.Counters, error)
}

// Process 采样循环控制的子进程
type Process interface {
	Pid() int

	// 非阻塞检查子进程是否已退出
	Poll() (exited bool, err error)

	// 暂停子进程并等待暂停生效；期间退出时返回 exited
	Pause() (exited bool, err error)

	// 恢复已暂停的子进程
	Resume() error
}
