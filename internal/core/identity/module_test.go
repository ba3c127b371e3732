package identity

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-quicboot/config"
	"github.com/dep2p/go-quicboot/pkg/interfaces"
	"github.com/dep2p/go-quicboot/pkg/types"
)

// TestProvide_LoadExisting 测试优先加载已有身份
func TestProvide_LoadExisting(t *testing.T) {
	store := NewMemoryStore()
	existing, err := Generate([]string{"localhost"})
	require.NoError(t, err)
	require.NoError(t, store.Save(existing))

	cfg := config.DefaultIdentityConfig()
	cfg.LoadExisting = true

	id, err := Provide(cfg, store)
	require.NoError(t, err)
	assert.Equal(t, existing.CertDER, id.CertDER)
}

// TestProvide_GenerateAndPersist 测试生成并持久化
func TestProvide_GenerateAndPersist(t *testing.T) {
	store := NewMemoryStore()

	cfg := config.DefaultIdentityConfig()
	cfg.LoadExisting = true
	cfg.Validity = config.Duration(48 * time.Hour)

	id, err := Provide(cfg, store)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(48*time.Hour), id.Leaf.NotAfter, time.Minute)

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, id.CertDER, loaded.CertDER)
}

// TestProvide_NoPersist 测试不持久化
func TestProvide_NoPersist(t *testing.T) {
	store := NewMemoryStore()

	cfg := config.DefaultIdentityConfig()
	cfg.Persist = false

	_, err := Provide(cfg, store)
	require.NoError(t, err)

	_, err = store.Load()
	assert.ErrorIs(t, err, ErrIdentityNotFound)
}

// TestModule_Load 测试 Fx 模块加载
func TestModule_Load(t *testing.T) {
	dir := t.TempDir()
	cfg := config.NewConfig()
	cfg.Identity.CertFile = filepath.Join(dir, "server.crt")
	cfg.Identity.KeyFile = filepath.Join(dir, "server.key")

	var id *types.Identity
	app := fxtest.New(t,
		fx.Supply(cfg),
		Module(),
		fx.Populate(&id),
	)
	app.RequireStart()
	defer app.RequireStop()

	require.NotNil(t, id)
	assert.Equal(t, []string{"localhost"}, id.Hostnames)

	loaded, err := NewFileStore(cfg.Identity.CertFile, cfg.Identity.KeyFile).Load()
	require.NoError(t, err)
	assert.Equal(t, id.CertDER, loaded.CertDER)
}

// TestModule_InjectedStore 测试注入自定义存储
func TestModule_InjectedStore(t *testing.T) {
	store := NewMemoryStore()

	var id *types.Identity
	app := fxtest.New(t,
		fx.Supply(config.NewConfig()),
		fx.Provide(func() interfaces.IdentityStore { return store }),
		Module(),
		fx.Populate(&id),
	)
	app.RequireStart()
	defer app.RequireStop()

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, id.CertDER, loaded.CertDER)
}
