package storage

import (
	"fmt"
	"os"
	"sync"
)

// EventLog is an append-only line log for boundary-level audit (submitted
// orders, shutdown markers). Best-effort: writers ignore append failures.
type EventLog interface {
	Append(line string)
}

type NopLog struct{}

func NewNopLog() *NopLog          { return &NopLog{} }
func (l *NopLog) Append(_ string) {}

type FileLog struct {
	mu sync.Mutex
	f  *os.File
}

func NewFileLog(path string) (*FileLog, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &FileLog{f: f}, nil
}

func (l *FileLog) Append(line string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.f, line)
}

var _ EventLog = (*NopLog)(nil)
var _ EventLog = (*FileLog)(nil)
