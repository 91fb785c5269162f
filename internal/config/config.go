package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 投票データの取得元
const (
	VotesSourceRequest   = "request"
	VotesSourcePostgres  = "postgres"
	VotesSourceSupabase  = "supabase"
	VotesSourceFirestore = "firestore"
)

type Config struct {
	ServerConfig
	StorageConfig
	DominanceConfig
}

type ServerConfig struct {
	Port     string
	GinMode  string
	LogLevel string
}

type StorageConfig struct {
	VotesSource              string
	SupabaseURL              string
	SupabaseAnonKey          string
	SupabaseDBPassword       string
	FirestoreProjectID       string
	FirestoreDatabaseID      string
	FirestoreCredentialsFile string
}

// DominanceConfig 支配グリッド計算のデフォルト値と制限
type DominanceConfig struct {
	MaxCells            int
	Workers             int
	Timeout             time.Duration
	DefaultRadiusKm     float64
	SmoothingIterations int
	MergeIslandSize     int
	ContestedMaxMargin  float64
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("VOTES_SOURCE", VotesSourceRequest)
	v.SetDefault("DOMINANCE_MAX_CELLS", 40000)
	v.SetDefault("DOMINANCE_WORKERS", 2)
	v.SetDefault("DOMINANCE_TIMEOUT", "30s")
	v.SetDefault("DOMINANCE_DEFAULT_RADIUS_KM", 20.0)
	v.SetDefault("DOMINANCE_SMOOTHING_ITERATIONS", 1)
	v.SetDefault("DOMINANCE_MERGE_ISLAND_SIZE", 4)
	v.SetDefault("DOMINANCE_CONTESTED_MAX_MARGIN", 0.2)
}

// bindEnvFallbacks 別名の環境変数を読む
func bindEnvFallbacks(v *viper.Viper) {
	_ = v.BindEnv("FIRESTORE_CREDENTIALS_FILE", "FIRESTORE_CREDENTIALS_FILE", "GOOGLE_APPLICATION_CREDENTIALS")
}

// Load .env を読み込んだうえで環境変数から設定を組み立てる
// .env が存在しない場合はシステムの環境変数のみを使う
func Load() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	bindEnvFallbacks(v)
	setDefaults(v)
	return FromViper(v)
}

// FromViper viper インスタンスから設定を読み出す
func FromViper(v *viper.Viper) *Config {
	cfg := &Config{
		ServerConfig: ServerConfig{
			Port:     v.GetString("PORT"),
			GinMode:  v.GetString("GIN_MODE"),
			LogLevel: v.GetString("LOG_LEVEL"),
		},
		StorageConfig: StorageConfig{
			VotesSource:         v.GetString("VOTES_SOURCE"),
			SupabaseURL:         v.GetString("SUPABASE_URL"),
			SupabaseAnonKey:     v.GetString("SUPABASE_ANON_KEY"),
			SupabaseDBPassword:  v.GetString("SUPABASE_DB_PASSWORD"),
			FirestoreProjectID:  v.GetString("FIRESTORE_PROJECT_ID"),
			FirestoreDatabaseID: v.GetString("FIRESTORE_DATABASE_ID"),
			// 未指定なら GOOGLE_APPLICATION_CREDENTIALS を使う
			FirestoreCredentialsFile: v.GetString("FIRESTORE_CREDENTIALS_FILE"),
		},
		DominanceConfig: DominanceConfig{
			MaxCells:            v.GetInt("DOMINANCE_MAX_CELLS"),
			Workers:             v.GetInt("DOMINANCE_WORKERS"),
			Timeout:             v.GetDuration("DOMINANCE_TIMEOUT"),
			DefaultRadiusKm:     v.GetFloat64("DOMINANCE_DEFAULT_RADIUS_KM"),
			SmoothingIterations: v.GetInt("DOMINANCE_SMOOTHING_ITERATIONS"),
			MergeIslandSize:     v.GetInt("DOMINANCE_MERGE_ISLAND_SIZE"),
			ContestedMaxMargin:  v.GetFloat64("DOMINANCE_CONTESTED_MAX_MARGIN"),
		},
	}

	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return cfg
}

// Defaults 環境変数を参照しないデフォルト設定（テスト用）
func Defaults() *Config {
	v := viper.New()
	setDefaults(v)
	return FromViper(v)
}
