package core

// Options controls query execution.
type Options struct {
	// IsClearAfterExecution clears the query state after every execution.
	IsClearAfterExecution bool `koanf:"clear_after_execution"`
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() *Options {
	return &Options{}
}

// Clone returns a copy of o.
func (o *Options) Clone() *Options {
	if o == nil {
		return DefaultOptions()
	}
	c := *o
	return &c
}

// ConfigProvider supplies process-wide query options.
type ConfigProvider interface {
	Options() (*Options, error)
}

// ConfigProviderFunc adapts a function to ConfigProvider.
type ConfigProviderFunc func() (*Options, error)

// Options calls f.
func (f ConfigProviderFunc) Options() (*Options, error) {
	return f()
}

// loadOptions asks provider for options. A nil provider, an error, a nil
// result or a panic in the provider all yield DefaultOptions.
func loadOptions(provider ConfigProvider) (opts *Options) {
	if provider == nil {
		return DefaultOptions()
	}
	defer func() {
		if recover() != nil {
			opts = DefaultOptions()
		}
	}()
	o, err := provider.Options()
	if err != nil || o == nil {
		return DefaultOptions()
	}
	return o.Clone()
}
