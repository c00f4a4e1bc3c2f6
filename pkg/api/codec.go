// Package api defines the Connect RPC surface: procedure names, request and
// response messages, handler constructors and clients.
//
// Messages are plain Go structs carried by a JSON codec, so any Connect or
// HTTP/JSON client can call the services without generated stubs.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// Package is the RPC package prefix of every service.
const Package = "messmonitor.v1"

// Codec marshals messages as JSON. It registers under the name "json", so it
// replaces Connect's protobuf-only JSON codec on handlers and clients.
type Codec struct{}

var _ connect.Codec = Codec{}

// Name implements connect.Codec.
func (Codec) Name() string { return "json" }

// Marshal implements connect.Codec.
func (Codec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

// Unmarshal implements connect.Codec. An empty body decodes to the zero message.
func (Codec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
}

func clientURL(baseURL, procedure string) string {
	return strings.TrimRight(baseURL, "/") + procedure
}

// serviceMux routes one service's procedures and returns its mount path.
type serviceMux struct {
	path string
	mux  *http.ServeMux
	opts []connect.HandlerOption
}

func newServiceMux(service string, opts []connect.HandlerOption) *serviceMux {
	return &serviceMux{
		path: "/" + Package + "." + service + "/",
		mux:  http.NewServeMux(),
		opts: handlerOptions(opts),
	}
}

func unary[Req, Res any](s *serviceMux, procedure string, fn func(context.Context, *connect.Request[Req]) (*connect.Response[Res], error)) {
	s.mux.Handle(procedure, connect.NewUnaryHandler(procedure, fn, s.opts...))
}

func serverStream[Req, Res any](s *serviceMux, procedure string, fn func(context.Context, *connect.Request[Req], *connect.ServerStream[Res]) error) {
	s.mux.Handle(procedure, connect.NewServerStreamHandler(procedure, fn, s.opts...))
}

func (s *serviceMux) handler() (string, http.Handler) {
	return s.path, s.mux
}

func newClient[Req, Res any](httpClient connect.HTTPClient, baseURL, procedure string, opts []connect.ClientOption) *connect.Client[Req, Res] {
	return connect.NewClient[Req, Res](httpClient, clientURL(baseURL, procedure), clientOptions(opts)...)
}
