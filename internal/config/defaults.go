package config

const (
	defaultDataDir    = "~/.local/share/podscribe"
	defaultLogDir     = "~/.local/share/podscribe/logs"
	defaultScratchDir = "~/.local/share/podscribe/scratch"
	defaultExportDir  = "~/podcasts/transcripts"
	defaultBind       = "127.0.0.1:8642"

	defaultFetchMaxRetries     = 3
	defaultFetchRetryDelay     = 5
	defaultFetchRequestTimeout = 30
	defaultFetchChunkSize      = 8192

	defaultEngineBinary   = "~/.local/share/podscribe/whisper.cpp/main"
	defaultEngineBuildDir = "~/.local/share/podscribe/whisper.cpp"
	defaultEngineRepoURL  = "https://github.com/ggerganov/whisper.cpp.git"
	defaultModelPath      = "~/.local/share/podscribe/models/ggml-base.en.bin"
	defaultModelURL       = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-base.en.bin"
	defaultFFmpegBinary   = "ffmpeg"

	defaultKeepaliveInterval = 20
	defaultChannelBuffer     = 64

	defaultMaxActiveJobs = 2

	defaultITunesBaseURL        = "https://itunes.apple.com"
	defaultITunesSearchLimit    = 10
	defaultITunesEpisodeLimit   = 50
	defaultITunesRequestTimeout = 30

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:    defaultDataDir,
			LogDir:     defaultLogDir,
			ScratchDir: defaultScratchDir,
			ExportDir:  defaultExportDir,
			Bind:       defaultBind,
		},
		Fetch: Fetch{
			MaxRetries:     defaultFetchMaxRetries,
			RetryDelay:     defaultFetchRetryDelay,
			RequestTimeout: defaultFetchRequestTimeout,
			ChunkSize:      defaultFetchChunkSize,
		},
		Engine: Engine{
			Binary:       defaultEngineBinary,
			BuildDir:     defaultEngineBuildDir,
			RepoURL:      defaultEngineRepoURL,
			ModelPath:    defaultModelPath,
			ModelURL:     defaultModelURL,
			FFmpegBinary: defaultFFmpegBinary,
		},
		Events: Events{
			KeepaliveInterval: defaultKeepaliveInterval,
			ChannelBuffer:     defaultChannelBuffer,
		},
		Workflow: Workflow{
			MaxActiveJobs: defaultMaxActiveJobs,
		},
		ITunes: ITunes{
			BaseURL:        defaultITunesBaseURL,
			SearchLimit:    defaultITunesSearchLimit,
			EpisodeLimit:   defaultITunesEpisodeLimit,
			RequestTimeout: defaultITunesRequestTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
