package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
)

const (
	// DefaultHTTPTimeout bounds a single request when no timeout is configured.
	DefaultHTTPTimeout = 30 * time.Second
	// HTTPMaxResponseSize is the maximum response body size (10MB).
	HTTPMaxResponseSize = 10 * 1024 * 1024
)

// HTTPModule provides outbound HTTP access to plugins.
// The client is shared by all invocations; each request is bound to the
// context of the Lua state that issued it.
type HTTPModule struct {
	client *http.Client
}

// NewHTTPModule creates an HTTP module whose requests time out after timeout.
func NewHTTPModule(timeout time.Duration) *HTTPModule {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	return &HTTPModule{
		client: &http.Client{Timeout: timeout},
	}
}

// Name returns the module name.
func (h *HTTPModule) Name() string {
	return "http"
}

// Register adds the http table to the Lua state.
func (h *HTTPModule) Register(L *lua.LState) error {
	mod := L.NewTable()

	mod.RawSetString("get", L.NewFunction(h.method(http.MethodGet)))
	mod.RawSetString("post", L.NewFunction(h.method(http.MethodPost)))
	mod.RawSetString("put", L.NewFunction(h.method(http.MethodPut)))
	mod.RawSetString("patch", L.NewFunction(h.method(http.MethodPatch)))
	mod.RawSetString("delete", L.NewFunction(h.method(http.MethodDelete)))
	mod.RawSetString("request", L.NewFunction(h.request))

	L.SetGlobal("http", mod)
	return nil
}

// httpRequest is a request decoded from Lua arguments.
type httpRequest struct {
	method  string
	url     string
	body    string
	headers map[string]string
}

// method returns a Lua function: http.<method>(url, {body=..., headers={...}}).
func (h *HTTPModule) method(method string) lua.LGFunction {
	return func(L *lua.LState) int {
		req := httpRequest{method: method, url: L.CheckString(1)}
		if opts, ok := L.Get(2).(*lua.LTable); ok {
			readOptions(opts, &req)
		}
		return h.do(L, req)
	}
}

// request(tbl) takes {method=, url=, body=, headers=}; method defaults to GET.
func (h *HTTPModule) request(L *lua.LState) int {
	opts := L.CheckTable(1)
	req := httpRequest{method: http.MethodGet}
	if v, ok := opts.RawGetString("method").(lua.LString); ok {
		req.method = strings.ToUpper(string(v))
	}
	u, ok := opts.RawGetString("url").(lua.LString)
	if !ok {
		L.ArgError(1, "url is required")
		return 0
	}
	req.url = string(u)
	readOptions(opts, &req)
	return h.do(L, req)
}

func readOptions(opts *lua.LTable, req *httpRequest) {
	if body := opts.RawGetString("body"); body != lua.LNil {
		req.body = body.String()
	}
	if headers, ok := opts.RawGetString("headers").(*lua.LTable); ok {
		req.headers = make(map[string]string)
		headers.ForEach(func(k, v lua.LValue) {
			req.headers[k.String()] = v.String()
		})
	}
}

// do performs req and pushes {status, body, headers}, or nil and an error message.
func (h *HTTPModule) do(L *lua.LState, req httpRequest) int {
	resp, err := h.send(L.Context(), req)
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}

	result := L.NewTable()
	result.RawSetString("status", lua.LNumber(resp.status))
	result.RawSetString("body", lua.LString(resp.body))

	headers := L.NewTable()
	for k, v := range resp.headers {
		headers.RawSetString(k, lua.LString(v))
	}
	result.RawSetString("headers", headers)

	L.Push(result)
	return 1
}

type httpResponse struct {
	status  int
	body    string
	headers map[string]string
}

func (h *HTTPModule) send(ctx context.Context, req httpRequest) (*httpResponse, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	parsed, err := url.Parse(req.url)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme %q", parsed.Scheme)
	}

	var body io.Reader
	if req.body != "" {
		body = strings.NewReader(req.body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, parsed.String(), body)
	if err != nil {
		return nil, err
	}
	for k, v := range req.headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := h.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, HTTPMaxResponseSize))
	if err != nil {
		return nil, err
	}

	headers := make(map[string]string, len(resp.Header))
	for k, v := range resp.Header {
		if len(v) > 0 {
			headers[k] = v[0]
		}
	}

	return &httpResponse{status: resp.StatusCode, body: string(data), headers: headers}, nil
}
