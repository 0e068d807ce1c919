package api

import (
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// ColorModule installs print, cprint and the print_<color> helpers.
type ColorModule struct {
	console *Console
}

// NewColorModule creates a color module writing to console.
func NewColorModule(console *Console) *ColorModule {
	return &ColorModule{console: console}
}

// Name returns the module name.
func (m *ColorModule) Name() string {
	return "color"
}

// Register registers the module into the Lua state.
func (m *ColorModule) Register(L *lua.LState) error {
	L.SetGlobal("print", L.NewFunction(m.print))
	L.SetGlobal("cprint", L.NewFunction(m.cprint))

	for _, color := range Colors {
		color := color
		L.SetGlobal("print_"+string(color), L.NewFunction(func(L *lua.LState) int {
			m.console.PrintColor(L.CheckString(1), color)
			return 0
		}))
	}
	return nil
}

// print(...) writes its arguments separated by tabs, like the Lua builtin.
func (m *ColorModule) print(L *lua.LState) int {
	top := L.GetTop()
	parts := make([]string, top)
	for i := 1; i <= top; i++ {
		parts[i-1] = L.ToStringMeta(L.Get(i)).String()
	}
	m.console.Println(strings.Join(parts, "\t"))
	return 0
}

// cprint(message, color) prints message in the named color.
// An unknown color is not an error: the message is printed plain and a
// diagnostic goes to the error stream.
func (m *ColorModule) cprint(L *lua.LState) int {
	msg := L.CheckString(1)
	name := L.CheckString(2)

	color, ok := ParseColor(name)
	if !ok {
		m.console.Errorln(fmt.Sprintf("Lua color error: unknown color '%s'. Printing uncolored.", name))
		m.console.Println(msg)
		return 0
	}

	m.console.PrintColor(msg, color)
	return 0
}
