package config

import "time"

const defaultSqlDsn = "root:123456@tcp(127.0.0.1:3306)/senseact?charset=utf8mb4&parseTime=True&loc=Local"

type DBConfig struct {
	DSN          string `yaml:"dsn"`
	MaxIdleConns int    `yaml:"maxIdleConns"`
	MaxOpenConns int    `yaml:"maxOpenConns"`
	MaxLifetime  int    `yaml:"maxLifetime"`
}

type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"accessKeyID"`
	SecretAccessKey string `yaml:"secretAccessKey"`
	UseSSL          bool   `yaml:"useSSL"`
	Region          string `yaml:"region"`
}

type NSQConfig struct {
	NSQDAddrs []string `yaml:"nsqdAddrs"`
	Topic     string   `yaml:"topic"`
	Channel   string   `yaml:"channel"`
}

// LLMConfig points at an OpenAI-compatible chat completions endpoint. The
// analyzer and the summarizer carry separate configs so they can target
// different models or deployments.
type LLMConfig struct {
	BaseURL     string  `yaml:"baseURL"`
	APIKey      string  `yaml:"apiKey"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"maxTokens"`
	TimeoutSec  int     `yaml:"timeoutSec"`
}

func (c *LLMConfig) Timeout() time.Duration {
	if c.TimeoutSec <= 0 {
		return time.Minute
	}
	return time.Duration(c.TimeoutSec) * time.Second
}

type VideoConfig struct {
	// FrameInterval is the sampling stride: only every Nth decoded frame is
	// considered for keyframe selection.
	FrameInterval int `yaml:"frameInterval"`
	// ThumbnailScale is the downscale factor applied before encoding the
	// stored thumbnail.
	ThumbnailScale float64 `yaml:"thumbnailScale"`
	// SimilarityThreshold gates keyframe selection: a sampled frame scoring
	// below it against the last keyframe is dissimilar enough to keep.
	SimilarityThreshold float64 `yaml:"similarityThreshold"`
	// ContextEvents bounds how many prior event lines are fed back to the
	// analyzer as context.
	ContextEvents int `yaml:"contextEvents"`
}

type SummaryConfig struct {
	// MaxGapMs closes a window once no frame of its category arrived for
	// this long.
	MaxGapMs int64 `yaml:"maxGapMs"`
	// MaxDurationMs closes a window once its span exceeds this, even if
	// frames keep arriving.
	MaxDurationMs int64 `yaml:"maxDurationMs"`
	IntervalSec   int   `yaml:"intervalSec"`
}

func (c *SummaryConfig) Interval() time.Duration {
	if c.IntervalSec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.IntervalSec) * time.Second
}

type WorkerConfig struct {
	// Concurrency bounds how many video segments are processed at once.
	Concurrency int    `yaml:"concurrency"`
	WindowDir   string `yaml:"windowDir"`
}

type NotifyConfig struct {
	// Endpoint of the serve process the worker publishes notifications to.
	Endpoint   string `yaml:"endpoint"`
	TimeoutSec int    `yaml:"timeoutSec"`
}

func (c *NotifyConfig) Timeout() time.Duration {
	if c.TimeoutSec <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.TimeoutSec) * time.Second
}

type Config struct {
	Addr       string        `yaml:"addr"`
	SSLCert    string        `yaml:"sslCert"`
	SSLKey     string        `yaml:"sslKey"`
	DB         DBConfig      `yaml:"db"`
	S3         S3Config      `yaml:"s3"`
	NSQ        NSQConfig     `yaml:"nsq"`
	VLM        LLMConfig     `yaml:"vlm"`
	SummaryLLM LLMConfig     `yaml:"summaryLLM"`
	Video      VideoConfig   `yaml:"video"`
	Summary    SummaryConfig `yaml:"summary"`
	Worker     WorkerConfig  `yaml:"worker"`
	Notify     NotifyConfig  `yaml:"notify"`
}

func DefaultConfig() *Config {
	return &Config{
		Addr: "127.0.0.1:16532",
		DB: DBConfig{
			DSN:          defaultSqlDsn,
			MaxIdleConns: 100,
			MaxOpenConns: 1000,
			MaxLifetime:  60,
		},
		S3: S3Config{
			Bucket:   "senseact",
			Endpoint: "127.0.0.1:9000",
			UseSSL:   false,
			Region:   "us-east-1",
		},
		NSQ: NSQConfig{
			NSQDAddrs: []string{"127.0.0.1:4150"},
			Topic:     "video_segments",
			Channel:   "senseact-worker",
		},
		VLM: LLMConfig{
			BaseURL:     "http://127.0.0.1:8000/v1",
			Model:       "Qwen/Qwen2.5-VL-3B-Instruct",
			Temperature: 0.5,
			MaxTokens:   1024,
			TimeoutSec:  60,
		},
		SummaryLLM: LLMConfig{
			BaseURL:     "http://127.0.0.1:8000/v1",
			Model:       "Qwen/Qwen2.5-VL-3B-Instruct",
			Temperature: 0.5,
			MaxTokens:   1024,
			TimeoutSec:  60,
		},
		Video: VideoConfig{
			FrameInterval:       10,
			ThumbnailScale:      0.25,
			SimilarityThreshold: 0.8,
			ContextEvents:       3,
		},
		Summary: SummaryConfig{
			MaxGapMs:      60 * 1000,
			MaxDurationMs: 2 * 60 * 1000,
			IntervalSec:   10,
		},
		Worker: WorkerConfig{
			Concurrency: 4,
			WindowDir:   "data/windows",
		},
		Notify: NotifyConfig{
			Endpoint:   "http://127.0.0.1:16532",
			TimeoutSec: 5,
		},
	}
}
