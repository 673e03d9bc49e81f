package identity

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/13x54n/thamelbar/internal/domain"
	"github.com/13x54n/thamelbar/internal/infrastructure/google"
	pkgcode "github.com/13x54n/thamelbar/internal/pkg/code"
	"github.com/13x54n/thamelbar/internal/pkg/id"
	"golang.org/x/crypto/bcrypt"
)

// AccountStore is the account registry surface the resolver needs.
type AccountStore interface {
	Get(ctx context.Context, accountID string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetBySubject(ctx context.Context, subjectID string) (*domain.Account, error)
	Create(ctx context.Context, a *domain.Account) error
	Update(ctx context.Context, accountID string, updates map[string]interface{}) error
	ClaimSubject(ctx context.Context, subjectID, accountID string) error
}

// CredentialStore issues and redeems single-use codes. Redemption must be
// atomic with respect to concurrent callers.
type CredentialStore interface {
	PutVerification(ctx context.Context, email, code string, expiresAt int64) error
	RedeemVerification(ctx context.Context, email, code string) error
	PutHandoff(ctx context.Context, code, accountID string, expiresAt int64) error
	RedeemHandoff(ctx context.Context, code string) (string, error)
}

// Mailer delivers verification codes.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

// TokenSigner issues session tokens.
type TokenSigner interface {
	Sign(accountID string) (string, error)
}

// FederatedVerifier validates provider ID tokens. May be nil, in which case
// posted subject ids are trusted as-is (development / source-compatible mode).
type FederatedVerifier interface {
	Verify(ctx context.Context, token string) (*google.Payload, error)
}

type VerifyRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Code     string `json:"code" validate:"required"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Flow     string `json:"flow"` // "login" | "signup"
}

type FederatedRequest struct {
	SubjectID string `json:"subject_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	IDToken   string `json:"id_token"`
}

type HandoffRequest struct {
	SubjectID   string `json:"subject_id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	RedirectURI string `json:"redirect_uri"`
	IDToken     string `json:"id_token"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Code        string `json:"code" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

// AuthResult is the single shape every successful resolution returns.
type AuthResult struct {
	Token   string
	Account *domain.Account
}

type Service interface {
	RequestCode(ctx context.Context, email string) error
	VerifyCode(ctx context.Context, req VerifyRequest) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	FederatedLogin(ctx context.Context, req FederatedRequest) (*AuthResult, error)
	CreateHandoffCode(ctx context.Context, req HandoffRequest) (code, redirectURI string, err error)
	ExchangeHandoffCode(ctx context.Context, code string) (*AuthResult, error)
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
	Me(ctx context.Context, accountID string) (*domain.Account, error)
	RegisterPushTarget(ctx context.Context, accountID, target string) error
}

// ServiceDeps bundles the resolver's collaborators.
type ServiceDeps struct {
	Accounts      AccountStore
	Credentials   CredentialStore
	Mailer        Mailer
	Signer        TokenSigner
	Verifier      FederatedVerifier
	CodeExpiry    time.Duration
	HandoffExpiry time.Duration
}

type service struct {
	accounts      AccountStore
	credentials   CredentialStore
	mailer        Mailer
	signer        TokenSigner
	verifier      FederatedVerifier
	codeExpiry    time.Duration
	handoffExpiry time.Duration
}

func NewService(d ServiceDeps) Service {
	return &service{
		accounts:      d.Accounts,
		credentials:   d.Credentials,
		mailer:        d.Mailer,
		signer:        d.Signer,
		verifier:      d.Verifier,
		codeExpiry:    d.CodeExpiry,
		handoffExpiry: d.HandoffExpiry,
	}
}

// customSchemeRE accepts "myapp://", "exp://" etc. http(s) is rejected
// separately so hand-off codes can never be bounced to a web origin.
var customSchemeRE = regexp.MustCompile(`^[a-zA-Z0-9+.-]+://`)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// errInvalidLogin collapses unknown-email, federated-only and bad-password
// into one message so callers cannot probe which accounts exist.
func errInvalidLogin() error {
	return fmt.Errorf("invalid email or password: %w", domain.ErrUnauthorized)
}

func (s *service) RequestCode(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return fmt.Errorf("email is required: %w", domain.ErrBadRequest)
	}
	vcode, err := pkgcode.NewVerificationCode()
	if err != nil {
		return err
	}
	expiresAt := time.Now().Add(s.codeExpiry).Unix()
	if err := s.credentials.PutVerification(ctx, email, vcode, expiresAt); err != nil {
		return err
	}
	// No account lookup here: the response is identical for unknown emails.
	body := fmt.Sprintf("Your verification code is %s. It expires in %d minutes.",
		vcode, int(s.codeExpiry.Minutes()))
	return s.mailer.SendEmail(email, "Your verification code", body)
}

func (s *service) VerifyCode(ctx context.Context, req VerifyRequest) (*AuthResult, error) {
	email := normalizeEmail(req.Email)
	vcode := strings.TrimSpace(req.Code)
	if email == "" || vcode == "" {
		return nil, fmt.Errorf("email and code are required: %w", domain.ErrBadRequest)
	}
	if err := s.credentials.RedeemVerification(ctx, email, vcode); err != nil {
		return nil, err
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if !account.Verified {
			if err := s.accounts.Update(ctx, account.AccountID, map[string]interface{}{"verified": true}); err != nil {
				return nil, err
			}
			account.Verified = true
		}
	case errors.Is(err, domain.ErrNotFound):
		if req.Flow == "login" {
			return nil, fmt.Errorf("no account found for this email, please sign up first: %w", domain.ErrNotFound)
		}
		name := strings.TrimSpace(req.Name)
		if name == "" || req.Password == "" {
			return nil, fmt.Errorf("name and password are required for sign up: %w", domain.ErrBadRequest)
		}
		account, err = s.createLocal(ctx, email, name, req.Password)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	return s.issueToken(account)
}

func (s *service) createLocal(ctx context.Context, email, name, password string) (*domain.Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	account := &domain.Account{
		AccountID:    id.New(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Provider:     domain.ProviderLocal,
		Verified:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("email and password are required: %w", domain.ErrBadRequest)
	}
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, errInvalidLogin()
	}
	if account.PasswordHash == "" {
		// Federated-only account; same message as a bad password.
		return nil, errInvalidLogin()
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return nil, errInvalidLogin()
	}
	return s.issueToken(account)
}

func (s *service) FederatedLogin(ctx context.Context, req FederatedRequest) (*AuthResult, error) {
	subject, email, name, err := s.federatedIdentity(ctx, req.SubjectID, req.Email, req.Name, req.IDToken)
	if err != nil {
		return nil, err
	}
	account, err := s.resolveFederated(ctx, subject, email, name)
	if err != nil {
		return nil, err
	}
	return s.issueToken(account)
}

func (s *service) CreateHandoffCode(ctx context.Context, req HandoffRequest) (string, string, error) {
	redirect := strings.TrimSpace(req.RedirectURI)
	// Schemes are case-insensitive (RFC 3986): "HTTPS://" is as much a web
	// origin as "https://".
	lowered := strings.ToLower(redirect)
	if redirect == "" ||
		strings.HasPrefix(lowered, "http://") ||
		strings.HasPrefix(lowered, "https://") ||
		!customSchemeRE.MatchString(redirect) {
		return "", "", fmt.Errorf("redirect_uri must be a custom app scheme (e.g. myapp://): %w", domain.ErrBadRequest)
	}

	subject, email, name, err := s.federatedIdentity(ctx, req.SubjectID, req.Email, req.Name, req.IDToken)
	if err != nil {
		return "", "", err
	}
	account, err := s.resolveFederated(ctx, subject, email, name)
	if err != nil {
		return "", "", err
	}

	hcode, err := pkgcode.NewHandoffCode()
	if err != nil {
		return "", "", err
	}
	expiresAt := time.Now().Add(s.handoffExpiry).Unix()
	if err := s.credentials.PutHandoff(ctx, hcode, account.AccountID, expiresAt); err != nil {
		return "", "", err
	}
	return hcode, redirect, nil
}

func (s *service) ExchangeHandoffCode(ctx context.Context, hcode string) (*AuthResult, error) {
	hcode = strings.TrimSpace(hcode)
	if hcode == "" {
		return nil, fmt.Errorf("code is required: %w", domain.ErrBadRequest)
	}
	accountID, err := s.credentials.RedeemHandoff(ctx, hcode)
	if err != nil {
		return nil, err
	}
	account, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		// The code is already burned; the caller only learns it was invalid.
		return nil, fmt.Errorf("invalid or expired code: %w", domain.ErrUnauthorized)
	}
	return s.issueToken(account)
}

func (s *service) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	email := normalizeEmail(req.Email)
	if email == "" || strings.TrimSpace(req.Code) == "" || req.NewPassword == "" {
		return fmt.Errorf("email, code, and new password are required: %w", domain.ErrBadRequest)
	}
	if len(req.NewPassword) < 6 {
		return fmt.Errorf("password must be at least 6 characters: %w", domain.ErrBadRequest)
	}
	if err := s.credentials.RedeemVerification(ctx, email, strings.TrimSpace(req.Code)); err != nil {
		return err
	}
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.accounts.Update(ctx, account.AccountID, map[string]interface{}{"password_hash": string(hash)})
}

func (s *service) Me(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.accounts.Get(ctx, accountID)
}

func (s *service) RegisterPushTarget(ctx context.Context, accountID, target string) error {
	target = strings.TrimSpace(target)
	if target == "" {
		return fmt.Errorf("token is required: %w", domain.ErrBadRequest)
	}
	return s.accounts.Update(ctx, accountID, map[string]interface{}{"push_target": target})
}

// federatedIdentity decides which identity attributes to trust. With a
// verifier configured the ID token is mandatory and authoritative; without
// one the posted values pass through.
func (s *service) federatedIdentity(ctx context.Context, subject, email, name, idToken string) (string, string, string, error) {
	if s.verifier != nil {
		if idToken == "" {
			return "", "", "", fmt.Errorf("id_token is required: %w", domain.ErrBadRequest)
		}
		payload, err := s.verifier.Verify(ctx, idToken)
		if err != nil {
			return "", "", "", err
		}
		return payload.Sub, normalizeEmail(payload.Email), strings.TrimSpace(payload.Name), nil
	}
	if strings.TrimSpace(subject) == "" {
		return "", "", "", fmt.Errorf("subject_id is required: %w", domain.ErrBadRequest)
	}
	return strings.TrimSpace(subject), normalizeEmail(email), strings.TrimSpace(name), nil
}

// resolveFederated maps a federated identity onto exactly one account:
// subject match wins, then an email match converts the local account in
// place (subject attached, provider flipped, verified set), else a fresh
// federated account is created. The subject claim is a conditional write, so
// two concurrent logins for the same human still converge on one account.
func (s *service) resolveFederated(ctx context.Context, subject, email, name string) (*domain.Account, error) {
	account, err := s.accounts.GetBySubject(ctx, subject)
	if err == nil {
		if name != "" && name != account.Name {
			if err := s.accounts.Update(ctx, account.AccountID, map[string]interface{}{"name": name}); err != nil {
				return nil, err
			}
			account.Name = name
		}
		return account, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	if email != "" {
		account, err = s.accounts.GetByEmail(ctx, email)
		if err == nil {
			if err := s.accounts.ClaimSubject(ctx, subject, account.AccountID); err != nil {
				return nil, err
			}
			updates := map[string]interface{}{
				"subject_id": subject,
				"provider":   domain.ProviderFederated,
				"verified":   true,
			}
			if name != "" {
				updates["name"] = name
				account.Name = name
			}
			if err := s.accounts.Update(ctx, account.AccountID, updates); err != nil {
				return nil, err
			}
			account.SubjectID = subject
			account.Provider = domain.ProviderFederated
			account.Verified = true
			return account, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	if email == "" {
		email = subject + "@federated.local"
	}
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	now := time.Now().UTC()
	account = &domain.Account{
		AccountID: id.New(),
		Name:      name,
		Email:     email,
		Provider:  domain.ProviderFederated,
		SubjectID: subject,
		Verified:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *service) issueToken(account *domain.Account) (*AuthResult, error) {
	token, err := s.signer.Sign(account.AccountID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, Account: account}, nil
}
