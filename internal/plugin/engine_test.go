package plugin

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/backpack/internal/plugin/api"
)

const kindScript = `
local kind, value
if type(event_data) == "string" then
  kind = event_data
else
  kind, value = next(event_data)
end

if kind == "plugin-registered" then
  print(kind .. "=" .. value)
elseif kind == "cli-command-execution-run" then
  print(kind .. "=" .. value.command .. "[" .. table.concat(value.args, ",") .. "]")
else
  print(kind)
end
`

func newTestEngine(t *testing.T, opts ...EngineOption) (*Engine, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, errOut bytes.Buffer
	registry, err := api.DefaultRegistry(api.NewConsole(&out, &errOut, true), time.Second)
	require.NoError(t, err)
	return NewEngine(registry, opts...), &out, &errOut
}

func loadOne(t *testing.T, root, name, script string) *Plugin {
	t.Helper()
	p, err := FromDir(writePlugin(t, root, name, name, script))
	require.NoError(t, err)
	return p
}

func TestEngineRunEcho(t *testing.T) {
	engine, out, _ := newTestEngine(t)
	p := loadOne(t, t.TempDir(), "echo", `
local kind = type(event_data) == "string" and event_data or next(event_data)
print("Received event: " .. kind)
`)

	outcome := engine.Run(context.Background(), p, PluginRegistered{Name: "echo"})
	require.NoError(t, outcome.Err)
	assert.True(t, outcome.OK())
	assert.Equal(t, "echo", outcome.Plugin)
	assert.Equal(t, KindPluginRegistered, outcome.Event)
	assert.Equal(t, "Received event: plugin-registered\n", out.String())
}

func TestEngineDiscriminatesAllKinds(t *testing.T) {
	engine, out, _ := newTestEngine(t)
	p := loadOne(t, t.TempDir(), "kinds", kindScript)

	events := []Event{
		PluginRegistrationInit{},
		PluginRegistered{Name: "kinds"},
		PluginRegistrationEnd{},
		CliCommandExecutionInit{},
		CliCommandExecutionRun{Command: "wip", Args: []string{"true", "false"}},
		CliCommandExecutionRun{Command: "hello"},
		CliCommandExecutionEnd{},
	}
	for _, e := range events {
		outcome := engine.Run(context.Background(), p, e)
		require.NoError(t, outcome.Err, e.Kind())
	}

	assert.Equal(t, strings.Join([]string{
		"plugin-registration-init",
		"plugin-registered=kinds",
		"plugin-registration-end",
		"cli-command-execution-init",
		"cli-command-execution-run=wip[true,false]",
		"cli-command-execution-run=hello[]",
		"cli-command-execution-end",
	}, "\n")+"\n", out.String())
}

func TestEngineScriptError(t *testing.T) {
	engine, out, _ := newTestEngine(t)
	p := loadOne(t, t.TempDir(), "divider", divideScript)

	outcome := engine.Run(context.Background(), p, CliCommandExecutionInit{})
	require.Error(t, outcome.Err)
	assert.False(t, outcome.OK())
	assert.Equal(t, "divider", outcome.Plugin)

	var serr *ScriptError
	require.True(t, errors.As(outcome.Err, &serr))
	assert.Equal(t, "divider", serr.Plugin)
	assert.Contains(t, outcome.Err.Error(), "division by zero")
	assert.Contains(t, outcome.Err.Error(), "plugin 'divider' script failed during Lua execution")
	assert.Empty(t, out.String())
}

func TestEngineSyntaxError(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	p := loadOne(t, t.TempDir(), "broken", `this is not lua`)

	outcome := engine.Run(context.Background(), p, CliCommandExecutionEnd{})
	var serr *ScriptError
	assert.True(t, errors.As(outcome.Err, &serr))
}

func TestEngineSandboxed(t *testing.T) {
	engine, out, _ := newTestEngine(t)
	p := loadOne(t, t.TempDir(), "probe", `
local leaked = {}
for _, name in ipairs({"dofile", "loadfile", "load", "loadstring", "require", "module",
                       "getfenv", "setfenv", "io", "os", "debug", "package"}) do
  if _G[name] ~= nil then table.insert(leaked, name) end
end
print(#leaked == 0 and "sealed" or table.concat(leaked, ","))
`)

	outcome := engine.Run(context.Background(), p, PluginRegistrationEnd{})
	require.NoError(t, outcome.Err)
	assert.Equal(t, "sealed\n", out.String())
}

func TestEngineCapabilitiesInstalled(t *testing.T) {
	engine, out, _ := newTestEngine(t)
	p := loadOne(t, t.TempDir(), "caps", `
assert(type(cprint) == "function")
assert(type(print_red) == "function")
assert(type(print_white) == "function")
assert(type(http) == "table" and type(http.get) == "function")
assert(type(json) == "table" and type(json.get) == "function")
assert(type(string.format) == "function")
cprint("hi", "green")
print(json.get('{"a":{"b":7}}', "a.b"))
`)

	outcome := engine.Run(context.Background(), p, PluginRegistrationEnd{})
	require.NoError(t, outcome.Err)
	assert.Equal(t, "hi\n7\n", out.String())
}

func TestEngineFreshStatePerRun(t *testing.T) {
	engine, out, _ := newTestEngine(t)
	p := loadOne(t, t.TempDir(), "counter", `
if counter == nil then counter = 0 end
counter = counter + 1
print(counter)
`)

	for i := 0; i < 3; i++ {
		require.NoError(t, engine.Run(context.Background(), p, CliCommandExecutionInit{}).Err)
	}
	assert.Equal(t, "1\n1\n1\n", out.String())
}

func TestEngineRereadsScript(t *testing.T) {
	engine, out, _ := newTestEngine(t)
	p := loadOne(t, t.TempDir(), "edit", `print("v1")`)

	require.NoError(t, engine.Run(context.Background(), p, CliCommandExecutionInit{}).Err)
	require.NoError(t, os.WriteFile(p.ScriptPath, []byte(`print("v2")`), 0o644))
	require.NoError(t, engine.Run(context.Background(), p, CliCommandExecutionInit{}).Err)

	assert.Equal(t, "v1\nv2\n", out.String())
}

func TestEngineScriptRemoved(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	p := loadOne(t, t.TempDir(), "gone", `print("x")`)
	require.NoError(t, os.Remove(p.ScriptPath))

	outcome := engine.Run(context.Background(), p, CliCommandExecutionInit{})
	require.Error(t, outcome.Err)
	assert.ErrorIs(t, outcome.Err, os.ErrNotExist)
	assert.Contains(t, outcome.Err.Error(), p.ScriptPath)
}

func TestEngineTimeout(t *testing.T) {
	engine, _, _ := newTestEngine(t, WithTimeout(50*time.Millisecond))
	p := loadOne(t, t.TempDir(), "spin", `while true do end`)

	start := time.Now()
	outcome := engine.Run(context.Background(), p, CliCommandExecutionInit{})
	require.Error(t, outcome.Err)
	assert.ErrorIs(t, outcome.Err, ErrScriptTimeout)

	var serr *ScriptError
	assert.True(t, errors.As(outcome.Err, &serr))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestEngineCallerCancellation(t *testing.T) {
	engine, _, _ := newTestEngine(t, WithTimeout(0))
	p := loadOne(t, t.TempDir(), "spin", `while true do end`)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	outcome := engine.Run(ctx, p, CliCommandExecutionInit{})
	require.Error(t, outcome.Err)
	assert.ErrorIs(t, outcome.Err, context.Canceled)
	assert.NotErrorIs(t, outcome.Err, ErrScriptTimeout)
}

func TestEngineNilEvent(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	p := loadOne(t, t.TempDir(), "nil", `print("x")`)

	outcome := engine.Run(context.Background(), p, nil)
	assert.ErrorIs(t, outcome.Err, ErrUnknownEvent)
	assert.Equal(t, "unknown", outcome.Event)
}

func TestEngineRecordsMetrics(t *testing.T) {
	m := NewMetrics()
	engine, _, _ := newTestEngine(t, WithEngineMetrics(m))
	root := t.TempDir()
	ok := loadOne(t, root, "ok", `-- fine`)
	bad := loadOne(t, root, "bad", `error("nope")`)

	engine.Run(context.Background(), ok, CliCommandExecutionInit{})
	engine.Run(context.Background(), ok, CliCommandExecutionInit{})
	engine.Run(context.Background(), bad, CliCommandExecutionInit{})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.invocations.WithLabelValues("ok", KindCliCommandExecutionInit, outcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.invocations.WithLabelValues("bad", KindCliCommandExecutionInit, outcomeFailure)))
}
