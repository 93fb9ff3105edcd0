package cache

import "testing"

func TestParseStoreURL(t *testing.T) {
	tests := []struct {
		raw     string
		addr    string
		db      int
		tls     bool
		user    string
		wantErr bool
	}{
		{raw: "redis://localhost", addr: "localhost:6379"},
		{raw: "rediss://user:pw@cache.internal:6380/2", addr: "cache.internal:6380", db: 2, tls: true, user: "user"},
		{raw: "valkey://10.0.0.5:7000/", addr: "10.0.0.5:7000"},
		{raw: "localhost:6390", addr: "localhost:6390"},
		{raw: "valkey-host", addr: "valkey-host:6379"},
		{raw: "redis://host/x", wantErr: true},
		{raw: "http://host", wantErr: true},
		{raw: "redis:///0", wantErr: true},
		{raw: "   ", wantErr: true},
	}
	for _, tt := range tests {
		info, err := parseStoreURL(tt.raw)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("%q: expected error", tt.raw)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tt.raw, err)
		}
		if info.addr != tt.addr || info.selectDB != tt.db || info.useTLS != tt.tls || info.username != tt.user {
			t.Fatalf("%q: unexpected info %+v", tt.raw, info)
		}
	}
}
