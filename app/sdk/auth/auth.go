// Package auth provides authentication and authorization support. Tokens
// are RS256 JWTs whose key is selected by the kid header.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jcpaschoal/jhgestor/business/domain/userbus"
	"github.com/jcpaschoal/jhgestor/business/types/role"
	"github.com/jcpaschoal/jhgestor/foundation/logger"
)

// Set of error variables for authentication and authorization.
var (
	ErrForbidden    = errors.New("attempted action is not allowed")
	ErrKIDMissing   = errors.New("kid missing from token header")
	ErrKIDMalformed = errors.New("kid in token header is malformed")
	ErrUserRemoved  = errors.New("user no longer exists")
	ErrInvalidRole  = errors.New("token contains an invalid role")
)

// DefaultTTL is how long a generated token stays valid.
const DefaultTTL = 24 * time.Hour

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.RegisteredClaims
	OwnerID string `json:"owner_id"`
	Role    string `json:"role"`
}

// KeyLookup declares a method set of behavior for looking up
// private and public keys for JWT use.
type KeyLookup interface {
	PrivateKey(kid string) (key string, err error)
	PublicKey(kid string) (key string, err error)
}

// UserFinder looks up the user a token was issued to.
type UserFinder interface {
	QueryByID(ctx context.Context, userID uuid.UUID) (userbus.User, error)
}

// Config represents information required to initialize auth.
type Config struct {
	Log       *logger.Logger
	Users     UserFinder
	KeyLookup KeyLookup
	Issuer    string
	TTL       time.Duration
}

// Auth is used to authenticate clients.
type Auth struct {
	log       *logger.Logger
	keyLookup KeyLookup
	users     UserFinder
	method    jwt.SigningMethod
	parser    *jwt.Parser
	issuer    string
	ttl       time.Duration
}

// New creates an Auth to support authentication/authorization.
func New(cfg Config) *Auth {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Auth{
		log:       cfg.Log,
		keyLookup: cfg.KeyLookup,
		users:     cfg.Users,
		method:    jwt.GetSigningMethod(jwt.SigningMethodRS256.Name),
		parser:    jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Name})),
		issuer:    cfg.Issuer,
		ttl:       ttl,
	}
}

// Issuer provides the configured issuer used to authenticate tokens.
func (a *Auth) Issuer() string {
	return a.issuer
}

// GenerateToken generates a signed JWT token string for the user.
func (a *Auth) GenerateToken(kid string, usr userbus.User) (string, error) {
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   usr.ID.String(),
			Issuer:    a.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		OwnerID: usr.OwnerID.String(),
		Role:    usr.Role.String(),
	}

	token := jwt.NewWithClaims(a.method, claims)
	token.Header["kid"] = kid

	privateKeyPEM, err := a.keyLookup.PrivateKey(kid)
	if err != nil {
		return "", fmt.Errorf("private key: %w", err)
	}

	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(privateKeyPEM))
	if err != nil {
		return "", fmt.Errorf("parsing private key from PEM: %w", err)
	}

	str, err := token.SignedString(privateKey)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return str, nil
}

// Authenticate processes the token to validate the sender's token is valid.
func (a *Auth) Authenticate(ctx context.Context, bearerToken string) (Claims, error) {
	parts := strings.Split(bearerToken, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return Claims{}, errors.New("expected authorization header format: Bearer <token>")
	}

	jwtUnverified := parts[1]

	var claims Claims
	token, _, err := a.parser.ParseUnverified(jwtUnverified, &claims)
	if err != nil {
		return Claims{}, fmt.Errorf("error parsing token: %w", err)
	}

	kidRaw, exists := token.Header["kid"]
	if !exists {
		return Claims{}, ErrKIDMissing
	}

	kid, ok := kidRaw.(string)
	if !ok {
		return Claims{}, ErrKIDMalformed
	}

	pem, err := a.keyLookup.PublicKey(kid)
	if err != nil {
		return Claims{}, fmt.Errorf("fetching public key for kid %q: %w", kid, err)
	}

	if err := a.verifySignatureAndClaims(jwtUnverified, pem); err != nil {
		a.log.Info(ctx, "**Authenticate-FAILED**", "userID", claims.Subject, "ERROR", err)
		return Claims{}, fmt.Errorf("authentication failed: %w", err)
	}

	if _, err := role.Parse(claims.Role); err != nil {
		return Claims{}, ErrInvalidRole
	}

	if err := a.userExists(ctx, claims); err != nil {
		return Claims{}, err
	}

	return claims, nil
}

// Authorize checks the user holds one of the allowed roles.
func (a *Auth) Authorize(ctx context.Context, r role.Role, allowedRoles ...role.Role) error {
	if len(allowedRoles) == 0 {
		return fmt.Errorf("%w: no roles authorized for this endpoint", ErrForbidden)
	}

	for _, ar := range allowedRoles {
		if r == ar {
			return nil
		}
	}

	return fmt.Errorf("%w: role %q is not in the allowed list %v", ErrForbidden, r, allowedRoles)
}

// userExists rejects tokens of users an administrator removed.
func (a *Auth) userExists(ctx context.Context, claims Claims) error {
	if a.users == nil {
		return nil
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return fmt.Errorf("parsing user ID %q from claims: %w", claims.Subject, err)
	}

	if _, err := a.users.QueryByID(ctx, userID); err != nil {
		if errors.Is(err, userbus.ErrNotFound) {
			return ErrUserRemoved
		}
		return fmt.Errorf("query user: %w", err)
	}

	return nil
}

// verifySignatureAndClaims parses the token with the public key, validates the signature, and checks the issuer claim.
func (a *Auth) verifySignatureAndClaims(tokenStr, pemStr string) error {
	publicKey, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pemStr))
	if err != nil {
		return fmt.Errorf("parsing public key: %w", err)
	}

	var claims Claims
	token, err := a.parser.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		return publicKey, nil
	})
	if err != nil {
		return fmt.Errorf("validating token signature: %w", err)
	}

	if !token.Valid {
		return errors.New("token is invalid")
	}

	if claims.Issuer != a.issuer {
		return fmt.Errorf("invalid issuer: expected %q, got %q", a.issuer, claims.Issuer)
	}

	return nil
}
