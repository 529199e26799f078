package token

import "jobboard_chat_service/pkg/config"

// 測試時可覆蓋
var (
	GenerateJWTFunc = GenerateJWT
	ParseJWTFunc    = ParseJWT
)

// GenerateJWTWrapper sign a token issued by this service
func GenerateJWTWrapper(memberID, role string) (string, error) {
	return GenerateJWTFunc(memberID, role, config.EnvConfig.ChatService)
}

// ParseJWTWrapper parse token through the replaceable func
func ParseJWTWrapper(t string) (*Claims, error) {
	return ParseJWTFunc(t)
}
