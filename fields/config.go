package fields

// SanctraConfig holds the system-level configuration. Values come from the
// embedded config.yaml, an optional on-disk override, then environment
// variables; zero values are filled by Defaults.
type SanctraConfig struct {
	Port              int    `json:"port" yaml:"port"`
	DatabasePath      string `json:"db_path" yaml:"db_path"`
	RedisHost         string `json:"redis_host" yaml:"redis_host"`
	JWTKey            string `json:"jwt_key" yaml:"jwt_key"`
	AdminUser         string `json:"admin_user" yaml:"admin_user"`
	AdminPasswordHash string `json:"admin_password_hash" yaml:"admin_password_hash"`
	AdminTOTPSecret   string `json:"admin_totp_secret" yaml:"admin_totp_secret"`
	AdminKey          string `json:"admin_key" yaml:"admin_key"`
	IsDebug           bool   `json:"is_debug" yaml:"is_debug"`

	LogSamplingTickMS  int `json:"log_sampling_tick_ms" yaml:"log_sampling_tick_ms"`
	LogSamplingAfterMS int `json:"log_sampling_after_ms" yaml:"log_sampling_after_ms"`

	DefaultSampleRate int     `json:"default_sample_rate" yaml:"default_sample_rate"`
	MaxRenderSeconds  float64 `json:"max_render_seconds" yaml:"max_render_seconds"`
	RenderCacheTTLMin int     `json:"render_cache_ttl_min" yaml:"render_cache_ttl_min"`
}

// Defaults fills any unset field with its production default.
func (s *SanctraConfig) Defaults() {
	if s.Port == 0 {
		s.Port = 10000
	}
	if s.DatabasePath == "" {
		s.DatabasePath = "sanctra.db"
	}
	if s.AdminUser == "" {
		s.AdminUser = "admin"
	}
	if s.DefaultSampleRate == 0 {
		s.DefaultSampleRate = 22050
	}
	if s.MaxRenderSeconds == 0 {
		s.MaxRenderSeconds = 6
	}
	if s.RenderCacheTTLMin == 0 {
		s.RenderCacheTTLMin = 60
	}
	if s.LogSamplingTickMS == 0 {
		s.LogSamplingTickMS = 1000
	}
	if s.LogSamplingAfterMS == 0 {
		s.LogSamplingAfterMS = 2000
	}
}
