package jwt

import (
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operator"
	RoleViewer   Role = "viewer"
)

const (
	TokenTypeAccess = "access"
	TokenTypeSSE    = "sse"

	sseTokenTTL = 5 * time.Minute
)

// rank orders roles by privilege. Unknown roles rank zero.
func (r Role) rank() int {
	switch r {
	case RoleAdmin:
		return 3
	case RoleOperator:
		return 2
	case RoleViewer:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether r carries every permission of required.
func (r Role) AtLeast(required Role) bool {
	return r.rank() > 0 && r.rank() >= required.rank()
}

// CanWrite reports whether the role may change punches, schedules or records.
func (r Role) CanWrite() bool {
	return r.AtLeast(RoleOperator)
}

func ParseRole(s string) (Role, error) {
	role := Role(s)
	if role.rank() == 0 {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return role, nil
}

// Claims is the typed view of a verified token.
type Claims struct {
	UserID string
	Role   Role
	Type   string
}

// ClaimsFromMap reads the private claims set by this package. A token
// without user_id or type is rejected.
func ClaimsFromMap(m map[string]interface{}) (Claims, error) {
	var c Claims
	c.UserID, _ = m["user_id"].(string)
	c.Type, _ = m["type"].(string)
	role, _ := m["role"].(string)
	c.Role = Role(role)

	if c.UserID == "" || c.Type == "" {
		return Claims{}, jwt.ErrInvalidJWT()
	}
	return c, nil
}

type Service interface {
	GenerateAccessToken(userID string, role Role) (token string, expiresAt int64, err error)
	GenerateSSEToken(userID string) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string) (userID string, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTTL string
	tokenAuth *jwtauth.JWTAuth
	now       func() time.Time
}

func NewJWTService(secretKey string, accessTTL string) Service {
	return &JWTService{
		accessTTL: accessTTL,
		tokenAuth: jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		now:       time.Now,
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func (j *JWTService) sign(claims map[string]interface{}, ttl time.Duration) (string, int64, error) {
	expiresAt := j.now().Add(ttl).Unix()
	claims["exp"] = expiresAt
	_, tokenString, err := j.tokenAuth.Encode(claims)
	if err != nil {
		return "", 0, fmt.Errorf("sign token: %w", err)
	}
	return tokenString, expiresAt, nil
}

// GenerateAccessToken mints an API token. The API never issues these itself;
// the token command and tests do.
func (j *JWTService) GenerateAccessToken(userID string, role Role) (string, int64, error) {
	ttl, err := time.ParseDuration(j.accessTTL)
	if err != nil {
		return "", 0, fmt.Errorf("access token expiration: %w", err)
	}
	if _, err := ParseRole(string(role)); err != nil {
		return "", 0, err
	}
	return j.sign(map[string]interface{}{
		"user_id": userID,
		"role":    string(role),
		"type":    TokenTypeAccess,
	}, ttl)
}

// GenerateSSEToken mints a short-lived token that is only accepted on the
// record stream, where it travels in the query string.
func (j *JWTService) GenerateSSEToken(userID string) (string, int, error) {
	token, _, err := j.sign(map[string]interface{}{
		"user_id": userID,
		"type":    TokenTypeSSE,
	}, sseTokenTTL)
	if err != nil {
		return "", 0, err
	}
	return token, int(sseTokenTTL.Seconds()), nil
}

func (j *JWTService) ValidateSSEToken(tokenString string) (string, error) {
	token, err := j.tokenAuth.Decode(tokenString)
	if err != nil {
		return "", err
	}

	claims, err := ClaimsFromMap(token.PrivateClaims())
	if err != nil {
		return "", err
	}
	if claims.Type != TokenTypeSSE {
		return "", jwt.ErrInvalidJWT()
	}
	return claims.UserID, nil
}
