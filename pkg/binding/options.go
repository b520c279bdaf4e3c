package binding

import (
	"github.com/keepmind9/radarcord/internal/logger"
	"github.com/sirupsen/logrus"
)

// Option configures a connection, messenger or gateway
type Option func(*options)

type options struct {
	custom logrus.FieldLogger
}

// WithLogger sets the logger a binding writes to. Without it the process-wide
// logger is used.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) {
		o.custom = l
	}
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) log() logrus.FieldLogger {
	if o.custom != nil {
		return o.custom
	}
	return logger.GetLogger()
}
