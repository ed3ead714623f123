// Package transfer moves files into their destination. Same-filesystem
// moves are a rename; cross-filesystem moves copy through a .partial file
// that is fsynced, optionally checksum-verified, and renamed into place
// before the source is removed, so an interrupted move never leaves a
// half-written file at the destination path.
package transfer

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/Nomadcxx/videolabels/internal/logging"
)

const partialSuffix = ".partial"

// Mover moves files with rename-first semantics.
type Mover struct {
	bufferSize      int
	verifyChecksums bool
	log             *logging.Logger
}

// Option configures a Mover.
type Option func(*Mover)

// WithBufferSize overrides the copy buffer size.
func WithBufferSize(n int) Option {
	return func(m *Mover) {
		if n > 0 {
			m.bufferSize = n
		}
	}
}

// WithChecksumVerify enables SHA-256 verification of cross-filesystem
// copies before the source is removed.
func WithChecksumVerify(enabled bool) Option {
	return func(m *Mover) { m.verifyChecksums = enabled }
}

// NewMover returns a Mover with a 4 MiB copy buffer and verification off.
func NewMover(log *logging.Logger, opts ...Option) *Mover {
	if log == nil {
		log = logging.Nop()
	}
	m := &Mover{
		bufferSize: 4 * 1024 * 1024,
		log:        log,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Move places src at dst, creating parent directories as needed.
func (m *Mover) Move(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !isCrossDevice(err) {
		return fmt.Errorf("failed to move %s to %s: %w", src, dst, err)
	}

	m.log.Debug("transfer", "cross-filesystem move, copying",
		logging.F("src", src), logging.F("dst", dst))
	return m.copyAcross(src, dst)
}

func (m *Mover) copyAcross(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}
	partial := dst + partialSuffix

	if err := m.copyFile(src, partial); err != nil {
		os.Remove(partial)
		return err
	}

	if m.verifyChecksums {
		if err := m.verify(src, partial); err != nil {
			os.Remove(partial)
			return err
		}
	}

	if err := os.Rename(partial, dst); err != nil {
		os.Remove(partial)
		return fmt.Errorf("failed to finalize %s: %w", dst, err)
	}

	if err := os.Remove(src); err != nil {
		// The copy is complete and in place; a stuck source is not fatal.
		m.log.Warn("transfer", "moved file but failed to remove source",
			logging.F("src", src), logging.F("reason", err))
	}
	return nil
}

func (m *Mover) copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer srcFile.Close()

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}

	if _, err := io.CopyBuffer(dstFile, srcFile, make([]byte, m.bufferSize)); err != nil {
		dstFile.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	if err := dstFile.Sync(); err != nil {
		dstFile.Close()
		return fmt.Errorf("failed to sync destination: %w", err)
	}
	return dstFile.Close()
}

func (m *Mover) verify(src, dst string) error {
	srcSum, err := m.checksum(src)
	if err != nil {
		return fmt.Errorf("failed to checksum source: %w", err)
	}
	dstSum, err := m.checksum(dst)
	if err != nil {
		return fmt.Errorf("failed to checksum copy: %w", err)
	}
	if srcSum != dstSum {
		return fmt.Errorf("checksum mismatch after copying %s", src)
	}
	return nil
}

func (m *Mover) checksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	hasher := sha256.New()
	if _, err := io.CopyBuffer(hasher, f, make([]byte, m.bufferSize)); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

func isCrossDevice(err error) bool {
	var linkErr *os.LinkError
	if errors.As(err, &linkErr) {
		return errors.Is(linkErr.Err, syscall.EXDEV)
	}
	return errors.Is(err, syscall.EXDEV)
}
