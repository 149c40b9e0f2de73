package mapsearch

import (
	"time"

	"go.uber.org/zap"

	"github.com/homegrid/mapsearch/internal/usecase/urlstate"
)

// Layout is the page layout mode mirrored into the shareable URL.
type Layout string

// Layout constants.
const (
	LayoutList  Layout = Layout(urlstate.LayoutList)
	LayoutSplit Layout = Layout(urlstate.LayoutSplit)
	LayoutMap   Layout = Layout(urlstate.LayoutMap)
)

// Option configures a Session.
type Option interface {
	apply(*sessionConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*sessionConfig)

func (f optionFunc) apply(c *sessionConfig) { f(c) }

type sessionConfig struct {
	pageSize int
	timeout  time.Duration
	layout   Layout
	logger   *zap.Logger
}

// WithPageSize sets the listings page size. Defaults to 20.
func WithPageSize(n int) Option {
	return optionFunc(func(c *sessionConfig) {
		c.pageSize = n
	})
}

// WithQueryTimeout bounds each viewport fetch cycle. Defaults to 10s.
func WithQueryTimeout(d time.Duration) Option {
	return optionFunc(func(c *sessionConfig) {
		c.timeout = d
	})
}

// WithLayout sets the initial page layout. Defaults to split.
func WithLayout(l Layout) Option {
	return optionFunc(func(c *sessionConfig) {
		c.layout = l
	})
}

// WithLogger sets the session logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return optionFunc(func(c *sessionConfig) {
		c.logger = logger
	})
}
