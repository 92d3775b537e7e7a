package config

type ChatConfig interface {
	GetChatBackendURL() string
}

type Chat struct{}

var _ ChatConfig = Chat{}

func (Chat) GetChatBackendURL() string {
	return GetEnv("CHAT_BACKEND_URL", "")
}
