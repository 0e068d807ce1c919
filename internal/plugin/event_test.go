package plugin

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestEncodeEventUnitVariants(t *testing.T) {
	tests := []struct {
		event Event
		want  string
	}{
		{PluginRegistrationInit{}, "plugin-registration-init"},
		{PluginRegistrationEnd{}, "plugin-registration-end"},
		{CliCommandExecutionInit{}, "cli-command-execution-init"},
		{CliCommandExecutionEnd{}, "cli-command-execution-end"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got, err := EncodeEvent(tt.event)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, tt.event.Kind())
		})
	}
}

func TestEncodeEventPluginRegistered(t *testing.T) {
	got, err := EncodeEvent(PluginRegistered{Name: "notify"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"plugin-registered": "notify"}, got)
}

func TestEncodeEventCommandRun(t *testing.T) {
	got, err := EncodeEvent(CliCommandExecutionRun{Command: "maintain", Args: []string{"my-repo", "none"}})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"cli-command-execution-run": map[string]any{
			"command": "maintain",
			"args":    []string{"my-repo", "none"},
		},
	}, got)
}

func TestEncodeEventEmptyArgs(t *testing.T) {
	got, err := EncodeEvent(CliCommandExecutionRun{Command: "hello"})
	require.NoError(t, err)

	record := got.(map[string]any)["cli-command-execution-run"].(map[string]any)
	args, ok := record["args"].([]string)
	require.True(t, ok)
	assert.NotNil(t, args)
	assert.Empty(t, args)
}

func TestEncodeEventDoesNotAliasArgs(t *testing.T) {
	args := []string{"a"}
	got, err := EncodeEvent(CliCommandExecutionRun{Command: "c", Args: args})
	require.NoError(t, err)

	args[0] = "changed"
	record := got.(map[string]any)["cli-command-execution-run"].(map[string]any)
	assert.Equal(t, []string{"a"}, record["args"])
}

func TestEncodeEventNil(t *testing.T) {
	_, err := EncodeEvent(nil)
	assert.ErrorIs(t, err, ErrUnknownEvent)
}

func TestEventJSON(t *testing.T) {
	tests := []struct {
		event Event
		want  string
	}{
		{PluginRegistrationInit{}, `"plugin-registration-init"`},
		{CliCommandExecutionEnd{}, `"cli-command-execution-end"`},
		{PluginRegistered{Name: "echo"}, `{"plugin-registered":"echo"}`},
		{
			CliCommandExecutionRun{Command: "merge", Args: []string{"repo"}},
			`{"cli-command-execution-run":{"command":"merge","args":["repo"]}}`,
		},
		{
			CliCommandExecutionRun{Command: "hello"},
			`{"cli-command-execution-run":{"command":"hello","args":[]}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.event.Kind(), func(t *testing.T) {
			got, err := json.Marshal(tt.event)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestNewEvent(t *testing.T) {
	tests := []struct {
		kind    string
		args    []string
		want    Event
		wantErr bool
	}{
		{KindPluginRegistrationInit, nil, PluginRegistrationInit{}, false},
		{KindPluginRegistrationEnd, nil, PluginRegistrationEnd{}, false},
		{KindCliCommandExecutionInit, nil, CliCommandExecutionInit{}, false},
		{KindCliCommandExecutionEnd, nil, CliCommandExecutionEnd{}, false},
		{KindPluginRegistered, []string{"echo"}, PluginRegistered{Name: "echo"}, false},
		{KindCliCommandExecutionRun, []string{"wip", "true"}, CliCommandExecutionRun{Command: "wip", Args: []string{"true"}}, false},
		{KindPluginRegistrationInit, []string{"extra"}, nil, true},
		{KindPluginRegistered, nil, nil, true},
		{KindCliCommandExecutionRun, nil, nil, true},
		{"nope", nil, nil, true},
	}

	for _, tt := range tests {
		got, err := NewEvent(tt.kind, tt.args)
		if tt.wantErr {
			assert.Error(t, err, "NewEvent(%q, %v)", tt.kind, tt.args)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestAllEventKindsConstructible(t *testing.T) {
	sample := map[string][]string{
		KindPluginRegistered:       {"x"},
		KindCliCommandExecutionRun: {"cmd"},
	}
	for _, kind := range AllEventKinds {
		e, err := NewEvent(kind, sample[kind])
		require.NoError(t, err, kind)
		assert.Equal(t, kind, e.Kind())
	}
}

func genEvent() *rapid.Generator[Event] {
	return rapid.Custom(func(t *rapid.T) Event {
		switch rapid.IntRange(0, 5).Draw(t, "variant") {
		case 0:
			return PluginRegistrationInit{}
		case 1:
			return PluginRegistered{Name: rapid.String().Draw(t, "name")}
		case 2:
			return PluginRegistrationEnd{}
		case 3:
			return CliCommandExecutionInit{}
		case 4:
			return CliCommandExecutionRun{
				Command: rapid.String().Draw(t, "command"),
				Args:    rapid.SliceOf(rapid.String()).Draw(t, "args"),
			}
		default:
			return CliCommandExecutionEnd{}
		}
	})
}

// Unit variants encode to their kind string; data variants to a single
// entry map keyed by their kind.
func TestEncodeEventShapeProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		e := genEvent().Draw(t, "event")

		got, err := EncodeEvent(e)
		if err != nil {
			t.Fatalf("EncodeEvent(%#v) error = %v", e, err)
		}

		switch v := got.(type) {
		case string:
			if v != e.Kind() {
				t.Fatalf("unit encoding = %q, want %q", v, e.Kind())
			}
		case map[string]any:
			if len(v) != 1 {
				t.Fatalf("data encoding has %d keys, want 1", len(v))
			}
			if _, ok := v[e.Kind()]; !ok {
				t.Fatalf("data encoding missing key %q", e.Kind())
			}
		default:
			t.Fatalf("EncodeEvent returned %T", got)
		}
	})
}

func TestEventJSONValidProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		e := genEvent().Draw(t, "event")

		raw, err := json.Marshal(e)
		if err != nil {
			t.Fatalf("Marshal(%#v) error = %v", e, err)
		}
		var decoded any
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("Marshal produced invalid JSON %s: %v", raw, err)
		}
	})
}
