package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-quicboot/internal/core/identity"
)

// execute 运行一次命令并返回标准输出
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// TestVersion 测试版本命令
func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "quicboot")
}

// TestGencert 测试证书生成
func TestGencert(t *testing.T) {
	dir := t.TempDir()
	certPath := filepath.Join(dir, "out", "server.crt")
	keyPath := filepath.Join(dir, "out", "server.key")

	out, err := execute(t, "gencert",
		"--hostname", "localhost", "--hostname", "127.0.0.1",
		"--cert", certPath, "--key", keyPath)
	require.NoError(t, err)
	assert.Contains(t, out, certPath)

	id, err := identity.NewFileStore(certPath, keyPath).Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"localhost"}, id.Leaf.DNSNames)
	require.Len(t, id.Leaf.IPAddresses, 1)
	assert.Equal(t, "127.0.0.1", id.Leaf.IPAddresses[0].String())
}

// TestConnect_RequiresPolicy 测试未选择策略时拒绝连接
func TestConnect_RequiresPolicy(t *testing.T) {
	_, err := execute(t, "connect", "127.0.0.1:5001")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "explicitly")
}

// TestDemo 测试 demo 子命令
func TestDemo(t *testing.T) {
	out, err := execute(t, "demo",
		"--listen", "127.0.0.1:0", "--no-persist", "--probe", "",
		"--format", "%Y", "--format", "%A, %B")
	require.NoError(t, err)
	assert.Contains(t, out, "[server] listening")
	assert.Contains(t, out, "[client] policy: anchored")
	assert.Contains(t, out, "[client] connected")
	assert.Contains(t, out, `"%A, %B" ->`)
	assert.NotContains(t, out, "probe")
}

// TestConfigFile 测试从配置文件加载
func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quicboot.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"security": {"policy": "permissive"},
		"transport": {"listen_addr": "127.0.0.1:0"},
		"identity": {"persist": false},
		"log": {"level": "warn", "format": "json"}
	}`), 0o600))

	out, err := execute(t, "--config", path, "demo", "--probe", "", "--format", "%Y")
	require.NoError(t, err)
	assert.Contains(t, out, "permissive-INSECURE")

	_, err = execute(t, "--config", filepath.Join(t.TempDir(), "missing.json"), "version")
	assert.Error(t, err)
}
