package auth

import (
	"crypto/md5"
	"fmt"
	"strings"
)

// GravatarURL returns the gravatar identicon URL for an email address.
// Gravatar hashes the trimmed, lowercased email with MD5; accounts without
// a gravatar fall back to a generated identicon (d=identicon), rated pg,
// 200px.
//
// MD5 here is an addressing scheme required by the gravatar protocol, not a
// security mechanism.
func GravatarURL(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	sum := md5.Sum([]byte(normalized))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?s=200&r=pg&d=identicon", sum)
}
