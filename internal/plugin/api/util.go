package api

import (
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// UtilModule installs the util table: string helpers and helpers for
// inspecting the argument list of a cli-command-execution-run event.
type UtilModule struct{}

// NewUtilModule creates a new util module.
func NewUtilModule() *UtilModule {
	return &UtilModule{}
}

// Name returns the module name.
func (m *UtilModule) Name() string {
	return "util"
}

// Register registers the module into the Lua state.
func (m *UtilModule) Register(L *lua.LState) error {
	mod := L.NewTable()

	L.SetField(mod, "split", L.NewFunction(m.split))
	L.SetField(mod, "trim", L.NewFunction(m.trim))
	L.SetField(mod, "starts_with", L.NewFunction(m.startsWith))
	L.SetField(mod, "ends_with", L.NewFunction(m.endsWith))
	L.SetField(mod, "contains", L.NewFunction(m.contains))
	L.SetField(mod, "join", L.NewFunction(m.join))
	L.SetField(mod, "keys", L.NewFunction(m.keys))
	L.SetField(mod, "is_empty", L.NewFunction(m.isEmpty))
	L.SetField(mod, "has_arg", L.NewFunction(m.hasArg))
	L.SetField(mod, "arg", L.NewFunction(m.arg))

	L.SetGlobal("util", mod)
	return nil
}

// split(str, sep) -> {parts}
func (m *UtilModule) split(L *lua.LState) int {
	str := L.CheckString(1)
	sep := L.CheckString(2)

	tbl := L.NewTable()
	if str == "" {
		L.Push(tbl)
		return 1
	}
	for i, part := range strings.Split(str, sep) {
		tbl.RawSetInt(i+1, lua.LString(part))
	}
	L.Push(tbl)
	return 1
}

// trim(str) -> string
func (m *UtilModule) trim(L *lua.LState) int {
	L.Push(lua.LString(strings.TrimSpace(L.CheckString(1))))
	return 1
}

// starts_with(str, prefix) -> bool
func (m *UtilModule) startsWith(L *lua.LState) int {
	L.Push(lua.LBool(strings.HasPrefix(L.CheckString(1), L.CheckString(2))))
	return 1
}

// ends_with(str, suffix) -> bool
func (m *UtilModule) endsWith(L *lua.LState) int {
	L.Push(lua.LBool(strings.HasSuffix(L.CheckString(1), L.CheckString(2))))
	return 1
}

// contains(str, substr) -> bool
func (m *UtilModule) contains(L *lua.LState) int {
	L.Push(lua.LBool(strings.Contains(L.CheckString(1), L.CheckString(2))))
	return 1
}

// join(seq, sep) -> string
// Joins the sequence part of seq in index order.
func (m *UtilModule) join(L *lua.LState) int {
	seq := L.CheckTable(1)
	sep := L.OptString(2, "")

	n := seq.Len()
	parts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		parts = append(parts, L.ToStringMeta(seq.RawGetInt(i)).String())
	}

	L.Push(lua.LString(strings.Join(parts, sep)))
	return 1
}

// keys(tbl) -> {keys}
// Keys are returned sorted by their string form so output is stable.
func (m *UtilModule) keys(L *lua.LState) int {
	tbl := L.CheckTable(1)

	var keys []lua.LValue
	tbl.ForEach(func(key, _ lua.LValue) {
		keys = append(keys, key)
	})
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})

	result := L.NewTable()
	for i, key := range keys {
		result.RawSetInt(i+1, key)
	}
	L.Push(result)
	return 1
}

// is_empty(tbl) -> bool
func (m *UtilModule) isEmpty(L *lua.LState) int {
	key, _ := L.CheckTable(1).Next(lua.LNil)
	L.Push(lua.LBool(key == lua.LNil))
	return 1
}

// has_arg(args, name) -> bool
// Reports whether name appears in the args sequence.
func (m *UtilModule) hasArg(L *lua.LState) int {
	args := L.CheckTable(1)
	name := L.CheckString(2)

	for i := 1; i <= args.Len(); i++ {
		if s, ok := args.RawGetInt(i).(lua.LString); ok && string(s) == name {
			L.Push(lua.LTrue)
			return 1
		}
	}
	L.Push(lua.LFalse)
	return 1
}

// arg(args, i, default) -> string
// Returns args[i], or default (nil when omitted) when i is out of range.
func (m *UtilModule) arg(L *lua.LState) int {
	args := L.CheckTable(1)
	i := L.CheckInt(2)

	if i >= 1 && i <= args.Len() {
		L.Push(args.RawGetInt(i))
		return 1
	}
	L.Push(L.Get(3))
	return 1
}
