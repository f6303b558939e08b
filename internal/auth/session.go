package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/izzy-ti/go-storefront-client/internal/api"
	"github.com/izzy-ti/go-storefront-client/internal/dto"
	"github.com/izzy-ti/go-storefront-client/internal/model"
	"github.com/izzy-ti/go-storefront-client/internal/store"
)

var (
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPasswordMismatch   = errors.New("passwords do not match")
)

// cookieMarker is stored when the backend authenticates via cookie and
// returns no token of its own.
const cookieMarker = "cookie-auth"

type Backend interface {
	GetJSON(ctx context.Context, path string, query url.Values, out any) error
	PostJSON(ctx context.Context, path string, body, out any) error
}

// Session holds the current user identity in memory and mirrors it to the
// durable store so it survives restarts.
type Session struct {
	api Backend
	kv  store.KV
	log *slog.Logger

	mu      sync.RWMutex
	current *model.Session
}

func NewSession(backend Backend, kv store.KV, log *slog.Logger) *Session {
	return &Session{api: backend, kv: kv, log: log}
}

func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil
}

// Current returns the signed-in user, or false when there is no session.
func (s *Session) Current() (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return model.User{}, false
	}
	return s.current.User, true
}

// Token implements api.TokenSource.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.Token
}

type loginResponse struct {
	dto.Envelope
	Token string `json:"token"`
}

// Login authenticates against the backend and stores the session. The user
// profile comes from getUserData when that endpoint cooperates; otherwise a
// minimal profile is synthesized from the email local-part, which the
// backend has historically forced on us.
func (s *Session) Login(ctx context.Context, email, password string) error {
	var resp loginResponse
	err := s.api.PostJSON(ctx, "/user/login", dto.LoginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		var be *api.BackendError
		if errors.As(err, &be) && (be.Status == 400 || be.Status == 401) {
			return fmt.Errorf("%w: %s", ErrInvalidCredentials, be.Message)
		}
		return fmt.Errorf("login: %w", err)
	}
	if !resp.Success {
		return fmt.Errorf("%w: %s", ErrInvalidCredentials, resp.Message)
	}

	token := resp.Token
	if token == "" {
		token = cookieMarker
	}

	user := s.fetchProfile(ctx, email)
	sess := &model.Session{Token: token, User: user}

	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()

	if err := s.persist(ctx, sess); err != nil {
		s.log.Warn("persist session", "error", err)
	}
	s.log.Info("logged in", "email", email, "user_id", user.ID)
	return nil
}

func (s *Session) fetchProfile(ctx context.Context, email string) model.User {
	var resp dto.UserDataResponse
	err := s.api.PostJSON(ctx, "/user/getUserData", dto.UserDataRequest{UserID: email}, &resp)
	if err == nil && resp.Success && resp.UserData.ID != "" {
		return resp.UserData
	}
	if err != nil {
		s.log.Warn("user data unavailable, synthesizing profile", "error", err)
	}
	local := email
	if i := strings.IndexByte(email, '@'); i > 0 {
		local = email[:i]
	}
	return model.User{
		ID:       fmt.Sprintf("temp-%d", time.Now().UnixNano()),
		Email:    email,
		Name:     local,
		Username: local,
		Role:     model.RoleBuyer,
	}
}

type RegisterData struct {
	Email           string
	Password        string
	ConfirmPassword string
	FirstName       string
	LastName        string
	Phone           string
	Address         string
}

// Register validates the password confirmation locally; everything else
// (uniqueness, strength) is the backend's call.
func (s *Session) Register(ctx context.Context, data RegisterData) error {
	if data.Password != data.ConfirmPassword {
		return ErrPasswordMismatch
	}

	local := data.Email
	if i := strings.IndexByte(data.Email, '@'); i > 0 {
		local = data.Email[:i]
	}
	req := dto.RegisterRequest{
		Email:     data.Email,
		Password:  data.Password,
		Name:      strings.TrimSpace(data.FirstName + " " + data.LastName),
		FirstName: data.FirstName,
		LastName:  data.LastName,
		Username:  local,
		Phone:     data.Phone,
		Address:   data.Address,
	}
	if req.Name == "" {
		req.Name = local
	}

	var resp dto.Envelope
	if err := s.api.PostJSON(ctx, "/user/signup", req, &resp); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	if !resp.Success {
		return fmt.Errorf("register rejected: %s", resp.Message)
	}
	return nil
}

// Logout clears the session locally. The observed backend has no
// invalidation endpoint, so none is called.
func (s *Session) Logout(ctx context.Context) {
	s.Teardown(ctx)
	s.log.Info("logged out")
}

// Teardown drops the in-memory session and its mirrored keys. It is also
// wired as the client's global 401 hook.
func (s *Session) Teardown(ctx context.Context) {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	for _, key := range []string{store.KeyUser, store.KeyToken, store.KeyUserID, store.KeyUserEmail} {
		if err := s.kv.Delete(ctx, key); err != nil {
			s.log.Warn("clear session key", "key", key, "error", err)
		}
	}
}

// Restore rebuilds the session from the durable store without any network
// call (trust-on-read). A JWT-shaped token past its expiry is treated as no
// session. Returns true when a session was restored.
func (s *Session) Restore(ctx context.Context) bool {
	tokenData, err := s.kv.Get(ctx, store.KeyToken)
	if err != nil {
		return false
	}
	userData, err := s.kv.Get(ctx, store.KeyUser)
	if err != nil {
		// A token without a user record is a half-written session; drop
		// the remaining mirrored keys too.
		s.Teardown(ctx)
		return false
	}

	token := string(tokenData)
	if tokenExpired(token) {
		s.log.Info("stored token expired, discarding session")
		s.Teardown(ctx)
		return false
	}

	var user model.User
	if err := json.Unmarshal(userData, &user); err != nil {
		s.log.Warn("corrupt stored user, discarding session", "error", err)
		s.Teardown(ctx)
		return false
	}

	s.mu.Lock()
	s.current = &model.Session{Token: token, User: user}
	s.mu.Unlock()
	return true
}

// Verify revalidates a restored session against the backend and tears it
// down when the backend no longer recognizes it.
func (s *Session) Verify(ctx context.Context) error {
	if !s.Authenticated() {
		return ErrNotAuthenticated
	}
	var resp dto.Envelope
	if err := s.api.PostJSON(ctx, "/user/isAuth", nil, &resp); err != nil {
		if api.IsUnauthorized(err) {
			// The 401 hook already tore the session down.
			return fmt.Errorf("%w: session rejected", ErrNotAuthenticated)
		}
		return fmt.Errorf("verify session: %w", err)
	}
	if !resp.Success {
		s.Teardown(ctx)
		return fmt.Errorf("%w: session rejected", ErrNotAuthenticated)
	}
	return nil
}

func (s *Session) SendVerifyOTP(ctx context.Context) error {
	return s.simplePost(ctx, "/user/sendVerifyOTP", nil)
}

func (s *Session) VerifyOTP(ctx context.Context, otp string) error {
	err := s.simplePost(ctx, "/user/verifyOTP", dto.VerifyOTPRequest{OTP: otp})
	if err != nil {
		return err
	}
	s.mu.Lock()
	if s.current != nil {
		s.current.User.Verified = true
	}
	sess := s.current
	s.mu.Unlock()
	if sess != nil {
		if perr := s.persist(ctx, sess); perr != nil {
			s.log.Warn("persist session", "error", perr)
		}
	}
	return nil
}

func (s *Session) SendResetOTP(ctx context.Context, email string) error {
	return s.simplePost(ctx, "/user/sendResetOTP", dto.SendResetOTPRequest{Email: email})
}

func (s *Session) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	return s.simplePost(ctx, "/user/resetPassword", dto.ResetPasswordRequest{
		Email: email, OTP: otp, NewPassword: newPassword,
	})
}

func (s *Session) AddAddress(ctx context.Context, addr model.Address) error {
	if !s.Authenticated() {
		return ErrNotAuthenticated
	}
	// Path spelling is the backend's, not ours.
	return s.simplePost(ctx, "/user/addAdress", addr)
}

func (s *Session) GetAddress(ctx context.Context, addressID string) (*model.Address, error) {
	if !s.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	var resp dto.AddressResponse
	if err := s.api.GetJSON(ctx, "/user/seeAddress/"+addressID, nil, &resp); err != nil {
		return nil, fmt.Errorf("get address: %w", err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("get address rejected: %s", resp.Message)
	}
	return &resp.Data, nil
}

func (s *Session) simplePost(ctx context.Context, path string, body any) error {
	var resp dto.Envelope
	if err := s.api.PostJSON(ctx, path, body, &resp); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if !resp.Success {
		return fmt.Errorf("%s rejected: %s", path, resp.Message)
	}
	return nil
}

func (s *Session) persist(ctx context.Context, sess *model.Session) error {
	userData, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	entries := map[string][]byte{
		store.KeyUser:      userData,
		store.KeyToken:     []byte(sess.Token),
		store.KeyUserID:    []byte(sess.User.ID),
		store.KeyUserEmail: []byte(sess.User.Email),
	}
	for key, value := range entries {
		if err := s.kv.Set(ctx, key, value); err != nil {
			return fmt.Errorf("store %s: %w", key, err)
		}
	}
	return nil
}

// tokenExpired reports whether token is a JWT with an exp claim in the
// past. Opaque markers are assumed live; the backend gets the final say
// via Verify.
func tokenExpired(token string) bool {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
