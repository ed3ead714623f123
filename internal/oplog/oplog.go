// Package oplog keeps an append-only JSON-lines audit trail of filesystem
// operations. Moves record the old and new path; deletions performed during
// duplicate resolution additionally record the file's content hash so a
// deleted file can be identified forensically. There is no replay engine;
// the log exists for audit and manual recovery.
package oplog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Nomadcxx/videolabels/internal/logging"
)

// Operation types recorded in the log.
const (
	OpMove   = "move"
	OpDelete = "delete"
)

// Record is one log line.
type Record struct {
	Op       string    `json:"op"`
	Original string    `json:"original"`
	New      string    `json:"new,omitempty"`
	Hash     string    `json:"hash,omitempty"`
	Reason   string    `json:"reason,omitempty"`
	At       time.Time `json:"at"`
}

// Log appends records to a single JSONL file. Safe for concurrent use.
type Log struct {
	path string
	log  *logging.Logger
	mu   sync.Mutex
	f    *os.File
}

// Open opens or creates the operations log at path.
func Open(path string, log *logging.Logger) (*Log, error) {
	if log == nil {
		log = logging.Nop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create operations log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open operations log: %w", err)
	}
	return &Log{path: path, log: log, f: f}, nil
}

// Close closes the underlying file.
func (l *Log) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}

// Path returns the log file location.
func (l *Log) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Move records a completed file move.
func (l *Log) Move(original, newPath string) {
	l.append(Record{Op: OpMove, Original: original, New: newPath, At: time.Now().UTC()})
}

// Delete records a file deletion with its content hash and the reason the
// resolver chose to delete it.
func (l *Log) Delete(path, hash, reason string) {
	l.append(Record{Op: OpDelete, Original: path, Hash: hash, Reason: reason, At: time.Now().UTC()})
}

// append is best-effort: a failed write is logged and dropped rather than
// failing the operation it describes, which has already happened.
func (l *Log) append(rec Record) {
	if l == nil {
		return
	}

	line, err := json.Marshal(rec)
	if err != nil {
		l.log.Warn("oplog", "failed to encode operation record", logging.F("reason", err))
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.f.Write(append(line, '\n')); err != nil {
		l.log.Warn("oplog", "failed to append operation record",
			logging.F("path", l.path), logging.F("reason", err))
	}
}

// Recent returns up to n records from the end of the log, oldest first.
// Unparseable lines are skipped.
func (l *Log) Recent(n int) ([]Record, error) {
	if l == nil || n <= 0 {
		return nil, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read operations log: %w", err)
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var rec Record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan operations log: %w", err)
	}

	if len(records) > n {
		records = records[len(records)-n:]
	}
	return records, nil
}
