// Package marshal converts canonical integers to and from native
// representations: bounded C integers, address-sized pointers and
// fixed-length byte buffers.
//
// Every conversion is pure. The only state a Converter carries is the range
// table it checks against and the logger it reports failures to.
package marshal

import (
	"sync"

	"intbridge/bigint"
	"intbridge/errors"
	"intbridge/logging"
	"intbridge/platform"
)

// Converter performs conversions against one platform table.
type Converter struct {
	table  *platform.Table
	logger logging.Logger
}

// Option configures a Converter
type Option func(*Converter)

// WithTable selects the range table. The process-wide table is used by default.
func WithTable(table *platform.Table) Option {
	return func(c *Converter) {
		c.table = table
	}
}

// WithLogger sets the logger failed conversions are reported to.
func WithLogger(logger logging.Logger) Option {
	return func(c *Converter) {
		c.logger = logger
	}
}

// New creates a Converter.
func New(opts ...Option) *Converter {
	c := &Converter{}
	for _, opt := range opts {
		opt(c)
	}
	if c.table == nil {
		c.table = platform.Current()
	}
	if c.logger == nil {
		c.logger = logging.NewNopLogger()
	}
	c.logger = c.logger.WithComponent("marshal")
	return c
}

// Table returns the range table of the converter.
func (c *Converter) Table() *platform.Table {
	return c.table
}

// fail logs a failed conversion at debug level and returns err unchanged.
func (c *Converter) fail(width string, value any, err error) error {
	if !c.logger.Enabled(logging.LevelDebug) {
		return err
	}
	fields := []logging.LogField{
		logging.StringField("width", width),
		logging.StringField("value", describe(value)),
	}
	if convErr, ok := errors.AsConversionError(err); ok {
		fields = append(fields,
			logging.StringField("error_code", convErr.Code),
			logging.StringField("exception", convErr.ExceptionName()))
	}
	c.logger.Debug("conversion failed", fields...)
	return err
}

func describe(value any) string {
	if x, ok := bigint.AsInstance(value); ok {
		return x.String()
	}
	return bigint.TypeName(value)
}

var (
	defaultOnce      sync.Once
	defaultConverter *Converter
)

// Default returns the converter over the process-wide table used by the
// package-level functions.
func Default() *Converter {
	defaultOnce.Do(func() {
		defaultConverter = New()
	})
	return defaultConverter
}
