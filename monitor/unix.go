package monitor

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/prometheus/procfs"

	"github.com/dreamsxin/iorate/types"
)

const (
	readCharsKey  = "rchar:"
	writeCharsKey = "wchar:"
)

// ProcReader 从 /proc/<pid>/io 读取 rchar 和 wchar，
// 即传给 read 和 write 类系统调用的字节数
type ProcReader struct {
	root string
}

// NewProcReader 创建读取器，root 为空时使用 /proc
func NewProcReader(root string) *ProcReader {
	if root == "" {
		root = procfs.DefaultMountPoint
	}
	return &ProcReader{root: root}
}

// ReadCounters 读取进程当前的 rchar/wchar
func (r *ProcReader) ReadCounters(pid int) (types.Counters, error) {
	path := filepath.Join(r.root, strconv.Itoa(pid), "io")
	f, err := os.Open(path)
	if err != nil {
		return types.Counters{}, errors.Wrapf(ErrNotFound, "open %s: %v", path, err)
	}
	defer f.Close()

	counters, err := parseIOCounters(f)
	if err != nil {
		return types.Counters{}, errors.Wrapf(err, "pid %d", pid)
	}
	return counters, nil
}

// parseIOCounters 解析 "key: value" 格式的记录，字段顺序任意，两个字段都找到后立即停止
func parseIOCounters(r io.Reader) (types.Counters, error) {
	var (
		counters            types.Counters
		haveRead, haveWrite bool
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case readCharsKey:
			counters.Read, haveRead = parseCounter(fields)
		case writeCharsKey:
			counters.Write, haveWrite = parseCounter(fields)
		}

		if haveRead && haveWrite {
			return counters, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return types.Counters{}, errors.Wrapf(ErrNotFound, "read io record: %v", err)
	}

	if !haveRead {
		return types.Counters{}, errors.Wrapf(ErrNotFound, "missing %s", strings.TrimSuffix(readCharsKey, ":"))
	}
	return types.Counters{}, errors.Wrapf(ErrNotFound, "missing %s", strings.TrimSuffix(writeCharsKey, ":"))
}

// parseCounter 解析字段值，缺失或非法时视为未找到
func parseCounter(fields []string) (uint64, bool) {
	if len(fields) < 2 {
		return 0, false
	}
	v, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
