package proxy

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/sarchlab/eventreport/report"
	"go.uber.org/zap"
)

// A Constructor builds a typed proxy of T around a wrapped value. Generated
// proxies register one with Register.
type Constructor[T any] func(ic *Interceptor, wrapped T) T

type registration struct {
	table *TypeTable
	build any
}

var (
	registryLock sync.RWMutex
	registry     = make(map[reflect.Type]registration)
)

// Register makes typed proxies of T available to Create. The table must
// describe T. Registering T twice panics.
func Register[T any](table *TypeTable, build Constructor[T]) {
	iface := reflect.TypeFor[T]()
	if table == nil || table.Interface() != iface {
		panic(fmt.Sprintf("table does not describe %v", iface))
	}

	if build == nil {
		panic(fmt.Sprintf("constructor of %v must not be nil", iface))
	}

	registryLock.Lock()
	defer registryLock.Unlock()

	if _, dup := registry[iface]; dup {
		panic(fmt.Sprintf("proxy of %v registered twice", iface))
	}

	registry[iface] = registration{table: table, build: build}
}

// Registered returns the table of the typed proxy registered for T.
func Registered[T any]() (*TypeTable, bool) {
	registryLock.RLock()
	defer registryLock.RUnlock()

	reg, ok := registry[reflect.TypeFor[T]()]

	return reg.table, ok
}

// A Factory creates reporting proxies. Every proxy it creates records into
// the report that its source designates at the time of each call.
type Factory struct {
	ic     *Interceptor
	logger *zap.Logger
}

// FactoryOption configures a Factory.
type FactoryOption func(*factoryConfig)

type factoryConfig struct {
	logger *zap.Logger
}

// WithLogger sets the logger of the factory and of its interceptor.
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(c *factoryConfig) {
		c.logger = logger
	}
}

// NewFactory creates a Factory.
func NewFactory(source report.Source, opts ...FactoryOption) *Factory {
	cfg := factoryConfig{logger: zap.NewNop()}
	for _, o := range opts {
		o(&cfg)
	}

	return &Factory{
		ic:     NewInterceptor(source, cfg.logger),
		logger: cfg.logger,
	}
}

// Interceptor returns the interceptor shared by the factory's proxies.
func (f *Factory) Interceptor() *Interceptor {
	return f.ic
}

// Create wraps a value in a typed proxy of T. Creating the proxy does not
// touch the wrapped value and records nothing. It panics if wrapped is nil or
// if no proxy of T has been registered.
func Create[T any](f *Factory, wrapped T) T {
	iface := reflect.TypeFor[T]()

	if isNil(wrapped) {
		panic(fmt.Sprintf("cannot proxy a nil %v", iface))
	}

	registryLock.RLock()
	reg, ok := registry[iface]
	registryLock.RUnlock()

	if !ok {
		panic(fmt.Sprintf("no proxy registered for %v", iface))
	}

	p := reg.build.(Constructor[T])(f.ic, wrapped)

	f.logger.Debug("proxy created",
		zap.String("type", reg.table.Name()),
		zap.String("wrapped", fmt.Sprintf("%T", wrapped)))

	return p
}

// Dynamic wraps a value in a reflective proxy driven by the table.
func (f *Factory) Dynamic(wrapped any, table *TypeTable) (*Dynamic, error) {
	if isNil(wrapped) {
		return nil, fmt.Errorf("%w: nil value", ErrNotImplemented)
	}

	concrete := reflect.TypeOf(wrapped)
	if !concrete.Implements(table.Interface()) {
		return nil, fmt.Errorf("%w: %v does not implement %v",
			ErrNotImplemented, concrete, table.Interface())
	}

	d := &Dynamic{
		ic:      f.ic,
		table:   table,
		binding: table.bind(concrete),
		target:  reflect.ValueOf(wrapped),
	}

	f.logger.Debug("dynamic proxy created",
		zap.String("type", table.Name()),
		zap.String("wrapped", concrete.String()))

	return d, nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func,
		reflect.Chan, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
