package rgconfig_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gogpu/rendergraph/backend/noop"
	"github.com/gogpu/rendergraph/budget"
	"github.com/gogpu/rendergraph/node"
	"github.com/gogpu/rendergraph/nodes/framesync"
	"github.com/gogpu/rendergraph/rgconfig"
)

const sceneYAML = `
frame_count: 5
log_level: debug
nodes:
  - name: sync0
    type: FrameSync
    params:
      - name: maxFramesInFlight
        kind: uint
        uint_value: 3
budgets:
  - resource_type: DeviceMemory
    max_bytes: 1048576
    strict: true
`

func writeScene(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sceneYAML), 0o644))
	return path
}

func TestLoadParsesSceneFile(t *testing.T) {
	s, err := rgconfig.Load(writeScene(t))
	require.NoError(t, err)
	require.Equal(t, uint64(5), s.FrameCount)
	require.Equal(t, "debug", s.LogLevel)
	require.Len(t, s.Nodes, 1)
	require.Equal(t, "FrameSync", s.Nodes[0].TypeName)
}

func TestBuildAssemblesGraphFromScene(t *testing.T) {
	s, err := rgconfig.Load(writeScene(t))
	require.NoError(t, err)

	registry := node.NewRegistry()
	require.NoError(t, registry.Register(framesync.NewType(framesync.TypeID)))

	dev := noop.NewDevice(0)
	g, err := rgconfig.Build(s, registry, zap.NewNop(), dev, nil)
	require.NoError(t, err)

	inst, ok := g.Node("sync0")
	require.True(t, ok)
	p, ok := inst.Param("maxFramesInFlight")
	require.True(t, ok)
	v, ok := p.Uint()
	require.True(t, ok)
	require.Equal(t, uint64(3), v)
}

func TestBuildRejectsUnknownType(t *testing.T) {
	s := &rgconfig.Scene{Nodes: []rgconfig.NodeSpec{{Name: "x", TypeName: "DoesNotExist"}}}
	registry := node.NewRegistry()
	_, err := rgconfig.Build(s, registry, zap.NewNop(), noop.NewDevice(0), nil)
	require.Error(t, err)
}

func TestBuildBudgetsInstallsConfiguredBudgets(t *testing.T) {
	s, err := rgconfig.Load(writeScene(t))
	require.NoError(t, err)

	m := budget.NewManager()
	rgconfig.BuildBudgets(s, m)

	b, ok := m.GetBudget("DeviceMemory")
	require.True(t, ok)
	require.Equal(t, uint64(1048576), b.MaxBytes)
	require.True(t, b.Strict)
}
