package config

type Config struct {
	OrderServiceAddr string
	Asset            string
	AssetDecimals    int32
	Commitment       string
	MaxAttempts      int
	SendMaxRetries   int
}
