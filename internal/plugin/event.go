package plugin

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/sjson"
)

// Event kinds, as seen by scripts.
const (
	KindPluginRegistrationInit  = "plugin-registration-init"
	KindPluginRegistered        = "plugin-registered"
	KindPluginRegistrationEnd   = "plugin-registration-end"
	KindCliCommandExecutionInit = "cli-command-execution-init"
	KindCliCommandExecutionRun  = "cli-command-execution-run"
	KindCliCommandExecutionEnd  = "cli-command-execution-end"
)

// AllEventKinds lists every event kind in lifecycle order.
var AllEventKinds = []string{
	KindPluginRegistrationInit,
	KindPluginRegistered,
	KindPluginRegistrationEnd,
	KindCliCommandExecutionInit,
	KindCliCommandExecutionRun,
	KindCliCommandExecutionEnd,
}

// Event is a host lifecycle notification broadcast to plugins.
// The set of implementations is closed to this package.
type Event interface {
	// Kind returns the kebab-case variant name.
	Kind() string
	isEvent()
}

// PluginRegistrationInit is emitted before plugins are discovered.
type PluginRegistrationInit struct{}

// PluginRegistered is emitted once per successfully loaded plugin.
type PluginRegistered struct {
	Name string
}

// PluginRegistrationEnd is emitted after all plugins are registered.
type PluginRegistrationEnd struct{}

// CliCommandExecutionInit is emitted before a command is dispatched.
type CliCommandExecutionInit struct{}

// CliCommandExecutionRun carries the dispatched command and its arguments.
type CliCommandExecutionRun struct {
	Command string
	Args    []string
}

// CliCommandExecutionEnd is emitted after a command has finished.
type CliCommandExecutionEnd struct{}

func (PluginRegistrationInit) Kind() string  { return KindPluginRegistrationInit }
func (PluginRegistered) Kind() string        { return KindPluginRegistered }
func (PluginRegistrationEnd) Kind() string   { return KindPluginRegistrationEnd }
func (CliCommandExecutionInit) Kind() string { return KindCliCommandExecutionInit }
func (CliCommandExecutionRun) Kind() string  { return KindCliCommandExecutionRun }
func (CliCommandExecutionEnd) Kind() string  { return KindCliCommandExecutionEnd }

func (PluginRegistrationInit) isEvent()  {}
func (PluginRegistered) isEvent()        {}
func (PluginRegistrationEnd) isEvent()   {}
func (CliCommandExecutionInit) isEvent() {}
func (CliCommandExecutionRun) isEvent()  {}
func (CliCommandExecutionEnd) isEvent()  {}

// EncodeEvent converts an event to the dynamic form bound inside the sandbox.
//
// Unit variants become a bare string holding the kind. Variants with data
// become a single-entry map keyed by the kind: the value is the field itself
// for single-field variants, or a record of the named fields otherwise.
// Scripts rely on the string/map distinction to discover the kind.
func EncodeEvent(e Event) (any, error) {
	switch ev := e.(type) {
	case PluginRegistrationInit, PluginRegistrationEnd, CliCommandExecutionInit, CliCommandExecutionEnd:
		return ev.Kind(), nil
	case PluginRegistered:
		return map[string]any{ev.Kind(): ev.Name}, nil
	case CliCommandExecutionRun:
		return map[string]any{
			ev.Kind(): map[string]any{
				"command": ev.Command,
				"args":    ev.args(),
			},
		}, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownEvent, e)
	}
}

// args never returns nil so an empty argument list encodes as an empty sequence.
func (e CliCommandExecutionRun) args() []string {
	if e.Args == nil {
		return []string{}
	}
	out := make([]string, len(e.Args))
	copy(out, e.Args)
	return out
}

func (e PluginRegistrationInit) MarshalJSON() ([]byte, error)  { return json.Marshal(e.Kind()) }
func (e PluginRegistrationEnd) MarshalJSON() ([]byte, error)   { return json.Marshal(e.Kind()) }
func (e CliCommandExecutionInit) MarshalJSON() ([]byte, error) { return json.Marshal(e.Kind()) }
func (e CliCommandExecutionEnd) MarshalJSON() ([]byte, error)  { return json.Marshal(e.Kind()) }

func (e PluginRegistered) MarshalJSON() ([]byte, error) {
	return sjson.SetBytes([]byte(`{}`), e.Kind(), e.Name)
}

// MarshalJSON keeps the record fields in declaration order.
func (e CliCommandExecutionRun) MarshalJSON() ([]byte, error) {
	record, err := sjson.SetBytes([]byte(`{}`), "command", e.Command)
	if err != nil {
		return nil, err
	}
	record, err = sjson.SetBytes(record, "args", e.args())
	if err != nil {
		return nil, err
	}
	return sjson.SetRawBytes([]byte(`{}`), e.Kind(), record)
}

// NewEvent builds an event from its kind and positional arguments.
// plugin-registered takes the plugin name; cli-command-execution-run takes
// the command followed by its arguments; unit kinds take none.
func NewEvent(kind string, args []string) (Event, error) {
	unit := func(e Event) (Event, error) {
		if len(args) != 0 {
			return nil, fmt.Errorf("event %s takes no arguments", kind)
		}
		return e, nil
	}

	switch kind {
	case KindPluginRegistrationInit:
		return unit(PluginRegistrationInit{})
	case KindPluginRegistrationEnd:
		return unit(PluginRegistrationEnd{})
	case KindCliCommandExecutionInit:
		return unit(CliCommandExecutionInit{})
	case KindCliCommandExecutionEnd:
		return unit(CliCommandExecutionEnd{})
	case KindPluginRegistered:
		if len(args) != 1 {
			return nil, fmt.Errorf("event %s takes exactly one argument (plugin name)", kind)
		}
		return PluginRegistered{Name: args[0]}, nil
	case KindCliCommandExecutionRun:
		if len(args) < 1 {
			return nil, fmt.Errorf("event %s requires a command name", kind)
		}
		return CliCommandExecutionRun{Command: args[0], Args: args[1:]}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, kind)
	}
}
