// Package email delivers verification mail and tracks verification tokens.
//
// Tokens live in an in-process TTL cache rather than the database. This is a
// known availability limitation: tokens do not survive a restart and are not
// shared between instances, so multi-instance deployments need a shared cache
// before this can scale out.
package email

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"time"

	"metaserver/backend/internal/config"

	cache "github.com/patrickmn/go-cache"
	gomail "gopkg.in/gomail.v2"
)

const tokenTTL = 5 * time.Minute

type tokenEntry struct {
	token   string
	created time.Time
}

var tokenCache = cache.New(tokenTTL, 10*time.Minute)

// NewVerificationToken generates a 6-character token for userID, replacing
// any previous token for the same user.
func NewVerificationToken(userID uint) string {
	buf := make([]byte, 4)
	rand.Read(buf)
	token := base64.RawURLEncoding.EncodeToString(buf)

	tokenCache.Set(cacheKey(userID), tokenEntry{token: token, created: time.Now()}, tokenTTL)
	return token
}

// VerifyToken reports whether token matches the live verification token for
// userID.
func VerifyToken(userID uint, token string) bool {
	entry, ok := currentToken(userID)
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(entry.token), []byte(token)) == 1
}

// HasToken reports whether userID has a live verification token.
func HasToken(userID uint) bool {
	_, ok := currentToken(userID)
	return ok
}

// TokenAge returns how long ago the live token for userID was generated.
func TokenAge(userID uint) (time.Duration, bool) {
	entry, ok := currentToken(userID)
	if !ok {
		return 0, false
	}
	return time.Since(entry.created), true
}

func currentToken(userID uint) (tokenEntry, bool) {
	v, ok := tokenCache.Get(cacheKey(userID))
	if !ok {
		return tokenEntry{}, false
	}
	return v.(tokenEntry), true
}

func cacheKey(userID uint) string {
	return fmt.Sprintf("%d", userID)
}

// SendVerificationEmail mails the verification token to recipient.
func SendVerificationEmail(recipient, token string) error {
	cfg := config.AppConfig

	m := gomail.NewMessage()
	m.SetHeader("From", cfg.EmailSender)
	m.SetHeader("To", recipient)
	m.SetHeader("Subject", "Email Verification for the Community Server")
	m.SetBody("text/plain",
		"Community Server\n"+
			"Verify your email by entering the following code in the in-game verification box.\n"+
			token+"\n"+
			"See you on the field!\n"+
			"Kind regards,\n"+
			"The Community Server team")
	m.AddAlternative("text/html", fmt.Sprintf(`<html>
<body>
    <h1>Community Server</h1>
    <p>Verify your email by entering the following code in the in-game verification box.</p>
    <h2>%s</h2>
    <p>See you on the field!</p>
    <p>Kind regards,</p>
    <p>The Community Server team.</p>
</body>
</html>`, token))

	d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
	return d.DialAndSend(m)
}
