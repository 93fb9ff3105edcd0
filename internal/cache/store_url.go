package cache

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

const defaultValkeyPort = "6379"

type connInfo struct {
	addr     string
	username string
	password string
	selectDB int
	useTLS   bool
}

// parseStoreURL 은 redis://, rediss://, valkey:// URL 또는 host[:port] 주소를 해석한다.
func parseStoreURL(raw string) (connInfo, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return connInfo{}, errors.New("result cache url is empty")
	}
	if !strings.Contains(raw, "://") {
		return parseStoreAddr(raw)
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return connInfo{}, fmt.Errorf("parse url: %w", err)
	}
	switch strings.ToLower(parsed.Scheme) {
	case "redis", "rediss", "valkey", "valkeys":
	default:
		return connInfo{}, fmt.Errorf("unsupported result cache scheme: %s", parsed.Scheme)
	}

	host := parsed.Hostname()
	if host == "" {
		return connInfo{}, errors.New("result cache host missing")
	}
	port := parsed.Port()
	if port == "" {
		port = defaultValkeyPort
	}

	info := connInfo{
		addr:   net.JoinHostPort(host, port),
		useTLS: strings.HasSuffix(strings.ToLower(parsed.Scheme), "s"),
	}

	if path := strings.TrimPrefix(parsed.Path, "/"); strings.TrimSpace(path) != "" {
		db, err := strconv.Atoi(path)
		if err != nil || db < 0 {
			return connInfo{}, fmt.Errorf("invalid result cache db: %q", path)
		}
		info.selectDB = db
	}

	if parsed.User != nil {
		info.username = parsed.User.Username()
		info.password, _ = parsed.User.Password()
	}
	return info, nil
}

func parseStoreAddr(addr string) (connInfo, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		var addrErr *net.AddrError
		if !errors.As(err, &addrErr) || addrErr.Err != "missing port in address" {
			return connInfo{}, fmt.Errorf("invalid result cache address: %w", err)
		}
		host = strings.TrimSuffix(strings.TrimPrefix(addr, "["), "]")
		port = defaultValkeyPort
	}
	if strings.TrimSpace(host) == "" {
		return connInfo{}, errors.New("result cache host missing")
	}
	return connInfo{addr: net.JoinHostPort(host, port)}, nil
}
