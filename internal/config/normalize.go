package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize(env environment) error {
	if err := c.normalizePaths(env); err != nil {
		return err
	}
	c.normalizeLLM(env)
	c.normalizeStore()
	c.normalizeSpeech()
	c.normalizeDemo()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths(env environment) error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	if c.Paths.APIToken == "" {
		if value, ok := env.lookup("LIFELENS_API_TOKEN"); ok {
			c.Paths.APIToken = value
		}
	}
	return nil
}

func (c *Config) normalizeLLM(env environment) {
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		if value, ok := env.lookup("LIFELENS_API_KEY", "OPENROUTER_API_KEY"); ok {
			c.LLM.APIKey = value
		}
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.ClassifyModel = strings.TrimSpace(c.LLM.ClassifyModel)
	if c.LLM.ClassifyModel == "" {
		c.LLM.ClassifyModel = defaultClassifyModel
	}
	c.LLM.AnalyzeModel = strings.TrimSpace(c.LLM.AnalyzeModel)
	if c.LLM.AnalyzeModel == "" {
		c.LLM.AnalyzeModel = defaultAnalyzeModel
	}
	c.LLM.Referer = strings.TrimSpace(c.LLM.Referer)
	c.LLM.Title = strings.TrimSpace(c.LLM.Title)
	if c.LLM.Title == "" {
		c.LLM.Title = defaultLLMTitle
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeout
	}
}

func (c *Config) normalizeStore() {
	c.Store.Engine = strings.ToLower(strings.TrimSpace(c.Store.Engine))
	if c.Store.Engine == "" {
		c.Store.Engine = defaultStoreEngine
	}
}

func (c *Config) normalizeSpeech() {
	c.Speech.SpeakCommand = strings.TrimSpace(c.Speech.SpeakCommand)
	c.Speech.ListenCommand = strings.TrimSpace(c.Speech.ListenCommand)
}

func (c *Config) normalizeDemo() {
	if c.Demo.Speed == 0 {
		c.Demo.Speed = defaultDemoSpeed
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
