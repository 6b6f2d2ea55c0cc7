package config

const (
	EngineSQLite = "sqlite"
	EngineJSON   = "json"
)

const (
	defaultDataDir        = "~/.local/share/lifelens"
	defaultLogDir         = "~/.local/share/lifelens/logs"
	defaultAPIBind        = "127.0.0.1:7488"
	defaultLLMBaseURL     = "https://openrouter.ai/api/v1/chat/completions"
	defaultClassifyModel  = "google/gemini-2.5-flash"
	defaultAnalyzeModel   = "google/gemini-3-pro-preview"
	defaultLLMTitle       = "LifeLens AI"
	defaultLLMTimeout     = 60
	defaultStoreEngine    = EngineSQLite
	defaultSpeakCommand   = "espeak-ng"
	defaultDemoSpeed      = 1.0
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	maxDemoSpeed          = 100.0
	defaultSpeechEnabled  = true
	defaultListenCommand  = ""
	defaultLLMReferer     = ""
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			ClassifyModel:  defaultClassifyModel,
			AnalyzeModel:   defaultAnalyzeModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeout,
		},
		Store: Store{
			Engine: defaultStoreEngine,
		},
		Speech: Speech{
			Enabled:       defaultSpeechEnabled,
			SpeakCommand:  defaultSpeakCommand,
			ListenCommand: defaultListenCommand,
		},
		Demo: Demo{
			Speed: defaultDemoSpeed,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
