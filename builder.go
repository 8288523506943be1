package asynclog

// Builder provides a fluent construction API over Config, grounded on
// the teacher's Builder in builder.go.
type Builder struct {
	cfg *Config
	err error
}

// NewBuilder starts from the built-in defaults.
func NewBuilder() *Builder {
	return &Builder{cfg: DefaultConfig()}
}

func (b *Builder) Level(level int64) *Builder {
	b.cfg.Level = level
	return b
}

func (b *Builder) Name(name string) *Builder {
	b.cfg.Name = name
	return b
}

func (b *Builder) Directory(dir string) *Builder {
	b.cfg.Directory = dir
	return b
}

func (b *Builder) Extension(ext string) *Builder {
	b.cfg.Extension = ext
	return b
}

func (b *Builder) MaxBytes(n int64) *Builder {
	b.cfg.MaxBytes = n
	return b
}

func (b *Builder) FileLogging(enabled bool) *Builder {
	b.cfg.FileLogging = enabled
	return b
}

func (b *Builder) Debug(enabled bool) *Builder {
	b.cfg.Debug = enabled
	return b
}

func (b *Builder) EnableStdout(enabled bool) *Builder {
	b.cfg.EnableStdout = enabled
	return b
}

func (b *Builder) TraceDepth(depth int64) *Builder {
	b.cfg.TraceDepth = depth
	return b
}

func (b *Builder) HeartbeatLevel(level int64) *Builder {
	b.cfg.HeartbeatLevel = level
	return b
}

func (b *Builder) HeartbeatIntervalS(seconds int64) *Builder {
	b.cfg.HeartbeatIntervalS = seconds
	return b
}

// Build validates the accumulated configuration and constructs a Logger.
func (b *Builder) Build() (*Logger, error) {
	if b.err != nil {
		return nil, b.err
	}
	if err := b.cfg.validate(); err != nil {
		return nil, err
	}
	return NewLoggerWithConfig(b.cfg)
}
