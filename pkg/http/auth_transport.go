package http

import "net/http"

// headerTransport sets one credential header on every outgoing request.
type headerTransport struct {
	header    string
	value     string
	transport http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.value == "" {
		return t.transport.RoundTrip(req)
	}

	reqCopy := req.Clone(req.Context())
	reqCopy.Header.Set(t.header, t.value)

	return t.transport.RoundTrip(reqCopy)
}

// WithAuthToken sends "Authorization: Bearer <token>" when token is set.
func WithAuthToken(token string) HttpOpts {
	value := ""
	if token != "" {
		value = "Bearer " + token
	}
	return WithAPIKeyHeader("Authorization", value)
}

// WithAPIKeyHeader sends key verbatim in the named header, e.g. xi-api-key.
func WithAPIKeyHeader(header, key string) HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &headerTransport{
			header:    header,
			value:     key,
			transport: rt,
		}
	})
}
