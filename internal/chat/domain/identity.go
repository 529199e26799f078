package domain

import "jobboard_chat_service/pkg/token"

// Identity authenticated caller
type Identity struct {
	MemberID string
	Role     string
}

// IsOperator admin / operator capability
func (i Identity) IsOperator() bool {
	return token.IsOperatorRole(i.Role)
}
