package realtime

import (
	"fmt"
	"net/url"
	"strings"
)

// SocketURL собирает адрес сокета: http(s) превращается в ws(s), токен уходит в query-параметр token.
func SocketURL(base, path, token string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("ошибка при разборе адреса сокета: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("неподдерживаемая схема адреса сокета: %q", u.Scheme)
	}

	u.Path = strings.TrimRight(u.Path, "/") + path

	query := u.Query()
	query.Set("token", token)
	u.RawQuery = query.Encode()

	return u.String(), nil
}

// SocketBase возвращает базовый адрес сокета: явно заданный или хост REST API без пути.
func SocketBase(wsBase, apiBase string) string {
	if wsBase != "" {
		return wsBase
	}

	u, err := url.Parse(apiBase)
	if err != nil {
		return apiBase
	}

	u.Path = ""
	u.RawQuery = ""

	return u.String()
}
