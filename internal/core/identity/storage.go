package identity

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dep2p/go-quicboot/pkg/interfaces"
	"github.com/dep2p/go-quicboot/pkg/types"
)

// 文件权限
const (
	certFileMode os.FileMode = 0o644
	keyFileMode  os.FileMode = 0o600 // 仅所有者读写
)

var (
	_ interfaces.IdentityStore = (*FileStore)(nil)
	_ interfaces.IdentityStore = (*MemoryStore)(nil)
)

// ============================================================================
//                              FileStore
// ============================================================================

// FileStore 基于两个 PEM 文件的身份存储
type FileStore struct {
	CertPath string
	KeyPath  string
}

// NewFileStore 创建文件存储
func NewFileStore(certPath, keyPath string) *FileStore {
	return &FileStore{CertPath: certPath, KeyPath: keyPath}
}

// Save 保存证书与私钥
//
// 使用原子写操作（临时文件 + rename），已有文件会被覆盖。
// 失败时返回的错误匹配 types.ErrCertificatePersistFailed。
func (s *FileStore) Save(id *types.Identity) error {
	if id == nil {
		return fmt.Errorf("%w: nil identity", types.ErrCertificatePersistFailed)
	}
	if err := atomicWriteFile(s.CertPath, id.CertPEM, certFileMode); err != nil {
		return fmt.Errorf("%w: %s: %w", types.ErrCertificatePersistFailed, s.CertPath, err)
	}
	if err := atomicWriteFile(s.KeyPath, id.KeyPEM, keyFileMode); err != nil {
		return fmt.Errorf("%w: %s: %w", types.ErrCertificatePersistFailed, s.KeyPath, err)
	}

	logger.Info("身份已保存", "cert", s.CertPath, "key", s.KeyPath)
	return nil
}

// Load 从文件加载身份
//
// 任一文件不存在时返回 ErrIdentityNotFound。
func (s *FileStore) Load() (*types.Identity, error) {
	certPEM, err := os.ReadFile(s.CertPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}
	keyPEM, err := os.ReadFile(s.KeyPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}
	return FromPEM(certPEM, keyPEM)
}

// atomicWriteFile 原子写文件
//
// 写入同目录临时文件，fsync 后 rename 到目标路径。
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	success = true
	return nil
}

// ============================================================================
//                              MemoryStore
// ============================================================================

// MemoryStore 内存身份存储（用于测试和临时身份）
type MemoryStore struct {
	mu      sync.RWMutex
	certPEM []byte
	keyPEM  []byte
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save 保存身份的 PEM 副本
func (s *MemoryStore) Save(id *types.Identity) error {
	if id == nil {
		return fmt.Errorf("%w: nil identity", types.ErrCertificatePersistFailed)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.certPEM = append([]byte(nil), id.CertPEM...)
	s.keyPEM = append([]byte(nil), id.KeyPEM...)
	return nil
}

// Load 加载身份
func (s *MemoryStore) Load() (*types.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.certPEM == nil {
		return nil, ErrIdentityNotFound
	}
	return FromPEM(s.certPEM, s.keyPEM)
}
