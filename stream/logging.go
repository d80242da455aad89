package stream

// WithLogging returns a copy of cfg whose lifecycle callbacks additionally
// write to the logger. Existing callbacks still run, after the log line.
// Useful for verbose console modes and debugging reconnect behavior.
func WithLogging(cfg Config, logger Logger) Config {
	if logger == nil {
		return cfg
	}

	onOpen := cfg.OnOpen
	cfg.OnOpen = func() {
		logger.Info("stream connected")
		if onOpen != nil {
			onOpen()
		}
	}

	onError := cfg.OnError
	cfg.OnError = func(err error) {
		logger.Warn("stream error", "error", err)
		if onError != nil {
			onError(err)
		}
	}

	onClose := cfg.OnClose
	cfg.OnClose = func() {
		logger.Info("stream closed")
		if onClose != nil {
			onClose()
		}
	}

	onMessage := cfg.OnMessage
	cfg.OnMessage = func(event Event) {
		logger.Debug("stream event", "type", event.Type)
		if onMessage != nil {
			onMessage(event)
		}
	}

	if cfg.Logger == nil {
		cfg.Logger = logger
	}
	return cfg
}
