package tls

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-quicboot/config"
	"github.com/dep2p/go-quicboot/internal/core/identity"
	"github.com/dep2p/go-quicboot/pkg/interfaces"
)

// TestModule_PinnedFromGraph 测试从依赖图注入固定证书
func TestModule_PinnedFromGraph(t *testing.T) {
	id, err := identity.Generate([]string{"localhost"})
	require.NoError(t, err)

	cfg := config.NewConfig()
	cfg.Security.Policy = "anchored"

	var policy interfaces.VerificationPolicy
	app := fxtest.New(t,
		fx.Supply(cfg),
		fx.Provide(fx.Annotate(
			func() [][]byte { return [][]byte{id.CertDER} },
			fx.ResultTags(`name:"pinned_certs"`),
		)),
		Module(),
		fx.Populate(&policy),
	)
	app.RequireStart()
	defer app.RequireStop()

	assert.Equal(t, AnchoredName, policy.Name())
}

// TestModule_UnspecifiedPolicy 测试未选择策略时启动失败
func TestModule_UnspecifiedPolicy(t *testing.T) {
	var policy interfaces.VerificationPolicy
	app := fx.New(
		fx.NopLogger,
		fx.Supply(config.NewConfig()),
		Module(),
		fx.Populate(&policy),
	)
	require.Error(t, app.Err())
	assert.Contains(t, app.Err().Error(), "chosen explicitly")
}
