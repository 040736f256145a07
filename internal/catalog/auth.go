package catalog

import (
	"net/http"
)

type AuthEngine interface {
	GetApiKey() string
	SetApiKey(request *http.Request)
}

type BearerAuth struct {
	apiKey string
}

// NewBearerAuth возвращает интерфейсный nil при пустом ключе, чтобы проверка
// auth != nil в клиенте отключала заголовок, а не падала на nil-получателе.
func NewBearerAuth(apiKey string) AuthEngine {
	if apiKey == "" {
		return nil
	}
	return &BearerAuth{apiKey: apiKey}
}

func (b *BearerAuth) GetApiKey() string {
	return b.apiKey
}

func (b *BearerAuth) SetApiKey(request *http.Request) {
	request.Header.Set("Authorization", "Bearer "+b.apiKey)
}
