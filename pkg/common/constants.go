package common

const (
	// RedisChannelAnalysisProgress is the pub/sub channel prefix for batch progress, suffixed with ".{task_id}".
	RedisChannelAnalysisProgress = "analysis.progress"
	// RedisChannelAnalysisProgressAll receives every task's progress.
	RedisChannelAnalysisProgressAll = "analysis.progress.all"

	DefaultTechnicalWeight   = 0.5
	DefaultFundamentalWeight = 0.3
	DefaultSentimentWeight   = 0.2
)
