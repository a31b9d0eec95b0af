package hostfuncs

import (
	"encoding/base64"
	"net/url"

	"github.com/superfaceai/one-sdk-sub004/domain/entities"
)

// applySecurity adds the credential described by sec to the outgoing
// request. Credentials replace any value the guest set for the same name.
func applySecurity(sec entities.SecurityConfig, headers entities.Multimap, query url.Values) {
	switch sec.Type {
	case entities.SecurityAPIKey:
		if sec.In == entities.APIKeyInQuery {
			query.Set(sec.Name, sec.APIKey)
			return
		}
		headers.Set(sec.Name, sec.APIKey)
	case entities.SecurityBasic:
		token := base64.StdEncoding.EncodeToString([]byte(sec.Username + ":" + sec.Password))
		headers.Set("authorization", "Basic "+token)
	case entities.SecurityBearer:
		headers.Set("authorization", "Bearer "+sec.Token)
	}
}
