package api

import (
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	lua "github.com/yuin/gopher-lua"

	plua "github.com/dshills/backpack/internal/plugin/lua"
)

// JSONModule exposes gjson queries and sjson edits to scripts so plugins
// can work with HTTP response bodies. It performs no I/O.
type JSONModule struct{}

// NewJSONModule creates a new json module.
func NewJSONModule() *JSONModule {
	return &JSONModule{}
}

// Name returns the module name.
func (m *JSONModule) Name() string {
	return "json"
}

// Register registers the json table into the Lua state.
func (m *JSONModule) Register(L *lua.LState) error {
	mod := L.NewTable()
	L.SetField(mod, "get", L.NewFunction(m.get))
	L.SetField(mod, "set", L.NewFunction(m.set))
	L.SetField(mod, "valid", L.NewFunction(m.valid))
	L.SetGlobal("json", mod)
	return nil
}

// get(doc, path) -> value
// Scalars are returned as Lua values; objects and arrays as raw JSON text.
// A missing path returns nil.
func (m *JSONModule) get(L *lua.LState) int {
	doc := L.CheckString(1)
	path := L.CheckString(2)

	r := gjson.Get(doc, path)
	switch {
	case !r.Exists():
		L.Push(lua.LNil)
	case r.Type == gjson.String:
		L.Push(lua.LString(r.Str))
	case r.Type == gjson.Number:
		L.Push(lua.LNumber(r.Num))
	case r.Type == gjson.True, r.Type == gjson.False:
		L.Push(lua.LBool(r.Bool()))
	case r.Type == gjson.JSON:
		L.Push(lua.LString(r.Raw))
	default:
		L.Push(lua.LNil)
	}
	return 1
}

// set(doc, path, value) -> doc | nil, err
func (m *JSONModule) set(L *lua.LState) int {
	doc := L.CheckString(1)
	path := L.CheckString(2)
	value := plua.NewBridge(L).ToGoValue(L.Get(3))

	out, err := sjson.Set(doc, path, value)
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LString(out))
	return 1
}

// valid(doc) -> bool
func (m *JSONModule) valid(L *lua.LState) int {
	L.Push(lua.LBool(gjson.Valid(L.CheckString(1))))
	return 1
}
