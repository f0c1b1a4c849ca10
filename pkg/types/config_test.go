package types

import (
	"errors"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "empty store returns ErrStoreEmpty",
			config:  Config{Store: "", DataDir: "/tmp/data"},
			wantErr: ErrStoreEmpty,
		},
		{
			name:    "unknown store returns ErrStoreUnknown",
			config:  Config{Store: "postgres", DataDir: "/tmp/data"},
			wantErr: ErrStoreUnknown,
		},
		{
			name:    "valid file config without remote",
			config:  Config{Store: StoreFile, DataDir: "/tmp/data"},
			wantErr: nil,
		},
		{
			name:    "remote without api base",
			config:  Config{Store: StoreSQLite, Remote: true, ProbeInterval: time.Second},
			wantErr: ErrAPIBaseEmpty,
		},
		{
			name:    "remote with zero probe interval",
			config:  Config{Store: StoreSQLite, Remote: true, APIBase: DefaultAPIBase},
			wantErr: ErrProbeIntervalInvalid,
		},
		{
			name:    "negative remote timeout",
			config:  Config{Store: StoreMemory, RemoteTimeout: -time.Second},
			wantErr: ErrRemoteTimeoutInvalid,
		},
		{
			name:    "defaults are valid",
			config:  DefaultConfig(),
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %v, got nil", tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}
