package monitor

import (
	"github.com/pkg/errors"
	"github.com/prometheus/procfs"

	"github.com/dreamsxin/iorate/types"
)

// StorageReader 通过 procfs 读取 read_bytes/write_bytes，
// 即真正到达存储层的字节数
type StorageReader struct {
	fs procfs.FS
}

// NewStorageReader 创建读取器，root 为空时使用 /proc
func NewStorageReader(root string) (*StorageReader, error) {
	if root == "" {
		root = procfs.DefaultMountPoint
	}
	fs, err := procfs.NewFS(root)
	if err != nil {
		return nil, errors.Wrapf(err, "open procfs at %s", root)
	}
	return &StorageReader{fs: fs}, nil
}

// ReadCounters 读取进程当前的 read_bytes/write_bytes
func (r *StorageReader) ReadCounters(pid int) (types.Counters, error) {
	proc, err := r.fs.Proc(pid)
	if err != nil {
		return types.Counters{}, errors.Wrapf(ErrNotFound, "pid %d: %v", pid, err)
	}
	stats, err := proc.IO()
	if err != nil {
		return types.Counters{}, errors.Wrapf(ErrNotFound, "pid %d: %v", pid, err)
	}
	return types.Counters{Read: stats.ReadBytes, Write: stats.WriteBytes}, nil
}
