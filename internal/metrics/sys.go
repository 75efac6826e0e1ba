package metrics

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/dustin/go-humanize"
)

// SysHealth represents process and data directory metrics.
type SysHealth struct {
	AllocBytes   uint64
	SysBytes     uint64
	NumGC        uint32
	DataDiskSize uint64
	DataFiles    int
}

// GetSysHealth collects health data for the given data directories.
func GetSysHealth(dataPaths ...string) SysHealth {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	h := SysHealth{
		AllocBytes: m.Alloc,
		SysBytes:   m.Sys,
		NumGC:      m.NumGC,
	}
	for _, p := range dataPaths {
		size, files := calculateDirSize(p)
		h.DataDiskSize += size
		h.DataFiles += files
	}
	return h
}

// DiskSize renders the data size for people, e.g. "42 kB".
func (h SysHealth) DiskSize() string {
	return humanize.Bytes(h.DataDiskSize)
}

// Memory renders the heap in use, e.g. "3.1 MB".
func (h SysHealth) Memory() string {
	return humanize.Bytes(h.AllocBytes)
}

// calculateDirSize sums regular files under path. A missing path counts as
// empty; a plain file counts as itself.
func calculateDirSize(path string) (uint64, int) {
	var size uint64
	var files int
	_ = filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += uint64(info.Size())
			files++
		}
		return nil
	})
	return size, files
}
