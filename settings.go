package accelerator

import (
	"errors"
	"io"

	"github.com/rs/zerolog"

	"github.com/always-cache/accelerator/cache"
	"github.com/always-cache/accelerator/config"
	"github.com/always-cache/accelerator/policy"
)

// Instance is an accelerator built from settings, along with the resources it owns.
type Instance struct {
	*Accelerator
	Storage cache.Storage
	closers []io.Closer
}

// Close releases the storage and the log file.
func (i *Instance) Close() error {
	var errs []error
	if i.Storage != nil {
		errs = append(errs, i.Storage.Close())
	}
	for _, c := range i.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// NewFromSettings creates the storage, policy and accelerator described by settings.
// If logger is nil, the logger is created from the "logger.*" settings.
func NewFromSettings(settings config.Settings, logger *zerolog.Logger) (*Instance, error) {
	i := &Instance{}
	if logger == nil {
		l, closer, err := NewLogger(settings)
		if err != nil {
			return nil, err
		}
		logger = &l
		i.closers = append(i.closers, closer)
	}
	fail := func(err error) (*Instance, error) {
		i.Close()
		return nil, err
	}

	storage, err := cache.Open(settings)
	if err != nil {
		return fail(err)
	}
	i.Storage = storage
	p, err := policy.New(storage, settings, logger)
	if err != nil {
		return fail(err)
	}
	bufferSize, err := settings.Int("accelerator.buffer_size", defaultBufferSize)
	if err != nil {
		return fail(err)
	}

	i.Accelerator = New(Config{
		Policy:     p,
		Logger:     logger,
		Identifier: settings.String("accelerator.identifier", DefaultIdentifier),
		BufferSize: bufferSize,
	})
	return i, nil
}
