package policy

import (
	"net"
	"net/http"
	"net/url"

	"github.com/always-cache/accelerator/header"
	cachekey "github.com/always-cache/accelerator/pkg/cache-key"
)

// Environment attributes of a Request.
const (
	EnvRequestMethod  = "REQUEST_METHOD"
	EnvPathInfo       = "PATH_INFO"
	EnvQueryString    = "QUERY_STRING"
	EnvServerName     = "SERVER_NAME"
	EnvServerPort     = "SERVER_PORT"
	EnvServerProtocol = "SERVER_PROTOCOL"
	EnvRemoteAddr     = "REMOTE_ADDR"
	EnvRemoteUser     = "REMOTE_USER"
	EnvHTTPHost       = "HTTP_HOST"
	EnvURLScheme      = "URL_SCHEME"
)

// Request is the read-only view of an inbound request the policy decides on.
type Request struct {
	Method string
	Header header.Fields
	// Environ holds transport and protocol attributes, keyed by the Env* names.
	Environ map[string]string

	escapedPath string
}

// NewRequest describes r.
func NewRequest(r *http.Request) *Request {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	} else if r.URL.Scheme != "" {
		scheme = r.URL.Scheme
	}
	host := r.Host
	if host == "" {
		host = r.URL.Host
	}
	serverName, serverPort := host, ""
	if h, p, err := net.SplitHostPort(host); err == nil {
		serverName, serverPort = h, p
	} else if scheme == "https" {
		serverPort = "443"
	} else {
		serverPort = "80"
	}

	env := map[string]string{
		EnvRequestMethod:  r.Method,
		EnvPathInfo:       r.URL.Path,
		EnvQueryString:    r.URL.RawQuery,
		EnvServerName:     serverName,
		EnvServerPort:     serverPort,
		EnvServerProtocol: r.Proto,
		EnvURLScheme:      scheme,
	}
	if host != "" {
		env[EnvHTTPHost] = host
	}
	if r.RemoteAddr != "" {
		env[EnvRemoteAddr] = r.RemoteAddr
		if ip, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			env[EnvRemoteAddr] = ip
		}
	}
	if user, _, ok := r.BasicAuth(); ok {
		env[EnvRemoteUser] = user
	}

	fields := header.FromHTTP(r.Header)
	// net/http moves the Host header out of r.Header
	if host != "" {
		fields = append(header.Fields{{Name: "Host", Value: host}}, fields...)
	}

	return &Request{
		Method:      r.Method,
		Header:      fields,
		Environ:     env,
		escapedPath: r.URL.EscapedPath(),
	}
}

// URL returns the resource identity of the request.
func (r *Request) URL() string {
	host := r.Environ[EnvHTTPHost]
	if host == "" {
		host = net.JoinHostPort(r.Environ[EnvServerName], r.Environ[EnvServerPort])
	}
	path := r.escapedPath
	if path == "" {
		path = (&url.URL{Path: r.Environ[EnvPathInfo]}).EscapedPath()
	}
	return cachekey.URL(r.scheme(), host, path, r.Environ[EnvQueryString])
}

// Secure reports whether the request came in over an encrypted transport.
func (r *Request) Secure() bool {
	return r.scheme() == "https"
}

func (r *Request) scheme() string {
	if scheme := r.Environ[EnvURLScheme]; scheme != "" {
		return scheme
	}
	return "http"
}

func (r *Request) method() string {
	if r.Method != "" {
		return r.Method
	}
	if m := r.Environ[EnvRequestMethod]; m != "" {
		return m
	}
	return http.MethodGet
}
