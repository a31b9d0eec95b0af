package entities_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/superfaceai/one-sdk-sub004/domain/entities"
)

func TestNewHostConfig_Defaults(t *testing.T) {
	cfg := entities.NewHostConfig()

	assert.Equal(t, entities.StrategyBlocking, cfg.Strategy)
	assert.Equal(t, entities.CodecJSON, cfg.Codec)
	assert.Equal(t, 30*time.Second, cfg.ExchangeTimeout())
	assert.Equal(t, time.Millisecond, cfg.PollInterval())
	assert.Zero(t, cfg.MaxConcurrentOperations)
	assert.Zero(t, cfg.PollBudget)
}

func TestHostConfig_PollAttempts(t *testing.T) {
	tests := []struct {
		name string
		cfg  entities.HostConfig
		want int
	}{
		{
			name: "default outlasts the exchange timeout",
			cfg:  entities.NewHostConfig(),
			want: 33_001,
		},
		{
			name: "explicit budget",
			cfg:  entities.NewHostConfig(entities.WithPollBudget(50)),
			want: 50,
		},
		{
			name: "derived from interval",
			cfg:  entities.NewHostConfig(entities.WithExchangeTimeout(time.Second), entities.WithPollInterval(10*time.Millisecond)),
			want: 201,
		},
		{
			name: "timeout disabled",
			cfg:  entities.NewHostConfig(entities.WithExchangeTimeout(0), entities.WithPollInterval(time.Second)),
			want: 301,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.PollAttempts())
		})
	}

	cfg := entities.NewHostConfig()
	assert.Greater(t, time.Duration(cfg.PollAttempts()-1)*cfg.PollInterval(), cfg.ExchangeTimeout())
}

func TestNewHostConfig_Options(t *testing.T) {
	cfg := entities.NewHostConfig(
		entities.WithStrategy(entities.StrategyCooperative),
		entities.WithExchangeTimeout(2*time.Second),
		entities.WithMaxRequestSize(1024),
		entities.WithMaxRequestSize(-1),
		entities.WithPollBudget(5),
		entities.WithPollInterval(20*time.Millisecond),
		entities.WithMaxConcurrentOperations(4),
		entities.WithCodec(entities.CodecCBOR),
		entities.WithBaseURL("https://api.example.com"),
		entities.WithSecurity(entities.SecurityConfig{ID: "token", Type: entities.SecurityBearer, Token: "t"}),
	)

	assert.Equal(t, entities.StrategyCooperative, cfg.Strategy)
	assert.Equal(t, 2*time.Second, cfg.ExchangeTimeout())
	assert.Equal(t, 1024, cfg.MaxRequestSize)
	assert.Equal(t, 5, cfg.PollBudget)
	assert.Equal(t, 20*time.Millisecond, cfg.PollInterval())
	assert.Equal(t, 4, cfg.MaxConcurrentOperations)
	assert.Equal(t, entities.CodecCBOR, cfg.Codec)
	assert.Equal(t, "https://api.example.com", cfg.BaseURL)

	sec, ok := cfg.SecurityByID("token")
	require.True(t, ok)
	assert.Equal(t, "t", sec.Token)
	_, ok = cfg.SecurityByID("missing")
	assert.False(t, ok)
}

func TestSecurityConfig_Check(t *testing.T) {
	tests := []struct {
		name    string
		cfg     entities.SecurityConfig
		wantErr bool
	}{
		{"apikey ok", entities.SecurityConfig{ID: "k", Type: entities.SecurityAPIKey, In: entities.APIKeyInHeader, Name: "X-Key", APIKey: "s"}, false},
		{"apikey missing name", entities.SecurityConfig{ID: "k", Type: entities.SecurityAPIKey, APIKey: "s"}, true},
		{"basic ok", entities.SecurityConfig{ID: "b", Type: entities.SecurityBasic, Username: "u"}, false},
		{"bearer missing token", entities.SecurityConfig{ID: "t", Type: entities.SecurityBearer}, true},
		{"unknown type", entities.SecurityConfig{ID: "x", Type: "digest"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Check()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
