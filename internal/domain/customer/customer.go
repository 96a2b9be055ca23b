// Package customer holds the customer-creation form model.
package customer

import (
	"strings"

	"github.com/exoorder/backend/internal/domain/shared"
)

// nickNamePrefix marks a social-media handle
const nickNamePrefix = "@"

// Draft is the customer being entered in the customer form
type Draft struct {
	Name     string `json:"name"`
	NickName string `json:"nick_name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

// Payload is the customer record sent to the remote backend
type Payload struct {
	Name     string `json:"name"`
	NickName string `json:"nickName"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

// Validate requires all four fields
func (d Draft) Validate() error {
	for _, f := range []struct {
		name  string
		value string
	}{
		{"name", d.Name},
		{"nick_name", d.NickName},
		{"phone", d.Phone},
		{"address", d.Address},
	} {
		if strings.TrimSpace(f.value) == "" {
			return shared.NewValidationError(f.name, "All customer fields are required")
		}
	}
	return nil
}

// NormalizeNickName prefixes the nickname with "@" unless it already has one
func NormalizeNickName(nick string) string {
	if strings.HasPrefix(nick, nickNamePrefix) {
		return nick
	}
	return nickNamePrefix + nick
}

// ToPayload builds the remote record
func (d Draft) ToPayload() Payload {
	return Payload{
		Name:     d.Name,
		NickName: NormalizeNickName(d.NickName),
		Phone:    d.Phone,
		Address:  d.Address,
	}
}
