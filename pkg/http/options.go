package http

import "time"

type HttpOpts func(*httpConfig)

// withDuration ignores zero values so unset config keeps the defaults.
func withDuration(set func(*httpConfig, time.Duration), d time.Duration) HttpOpts {
	return func(c *httpConfig) {
		if d > 0 {
			set(c, d)
		}
	}
}

func WithConnClientTimeout(timeout time.Duration) HttpOpts {
	return withDuration(func(c *httpConfig, d time.Duration) { c.connClientTimeout = d }, timeout)
}

func WithRequestTimeout(timeout time.Duration) HttpOpts {
	return withDuration(func(c *httpConfig, d time.Duration) { c.requestTimeout = d }, timeout)
}

func WithClientKeepAlive(keepAlive time.Duration) HttpOpts {
	return withDuration(func(c *httpConfig, d time.Duration) { c.clientKeepAlive = d }, keepAlive)
}

func WithTLSHandshakeTimeout(timeout time.Duration) HttpOpts {
	return withDuration(func(c *httpConfig, d time.Duration) { c.tlsHandshakeTimeout = d }, timeout)
}

func WithResponseHeaderTimeout(timeout time.Duration) HttpOpts {
	return withDuration(func(c *httpConfig, d time.Duration) { c.responseHeaderTimeout = d }, timeout)
}

func WithIdleConnTimeout(timeout time.Duration) HttpOpts {
	return withDuration(func(c *httpConfig, d time.Duration) { c.idleConnTimeout = d }, timeout)
}

func WithMaxIdleConnsPerHost(maxConns int) HttpOpts {
	return func(c *httpConfig) {
		if maxConns > 0 {
			c.maxIdleConnsPerHost = maxConns
		}
	}
}

func WithTransport(transport TransportFunc) HttpOpts {
	return func(c *httpConfig) {
		c.transports = append(c.transports, transport)
	}
}
