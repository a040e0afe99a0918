package remote

import (
	"log/slog"
	"strings"
)

// OverrideSource はローカルに永続化された認証情報の上書きを返すのだ。
type OverrideSource interface {
	APIKeyOverride() (string, error)
}

// CredentialResolver は呼び出しのたびに認証情報を解決するのだ。
// 上書きが優先で、無ければ環境由来の既定値を使うのだ。キャッシュはしないのだ。
type CredentialResolver struct {
	overrides OverrideSource
	fallback  string
}

// NewCredentialResolver は CredentialResolver を作るのだ。overrides は nil でもよいのだ。
func NewCredentialResolver(overrides OverrideSource, fallback string) *CredentialResolver {
	return &CredentialResolver{overrides: overrides, fallback: fallback}
}

// Resolve は現在有効な API キーを返すのだ。
func (r *CredentialResolver) Resolve() (string, error) {
	if r.overrides != nil {
		key, err := r.overrides.APIKeyOverride()
		if err != nil {
			slog.Warn("Failed to read credential override, falling back to default", "error", err)
		} else if key = strings.TrimSpace(key); key != "" {
			return key, nil
		}
	}
	if key := strings.TrimSpace(r.fallback); key != "" {
		return key, nil
	}
	return "", ErrMissingCredential
}
