package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yndnr/tokgate/internal/core/domain"
	"github.com/yndnr/tokgate/internal/telemetry/logger"
	"github.com/yndnr/tokgate/pkg/token"
)

var seedUsers = []domain.User{
	{ID: "1", Username: "admin666", Password: "admin666"},
	{ID: "2", Username: "michael", Password: "michael"},
}

type fixture struct {
	svc      *AuthService
	users    *mockUserRepo
	sessions *mockRegistry
	codec    *token.Codec
	recorder *countingRecorder
	now      time.Time
}

func newFixture(t *testing.T, opts ...AuthOption) *fixture {
	t.Helper()
	f := &fixture{
		users:    newMockUserRepo(seedUsers...),
		sessions: newMockRegistry(),
		recorder: newCountingRecorder(),
		now:      time.Unix(1_700_000_000, 0),
	}
	f.codec = token.NewCodec([]byte("generate_token"), token.WithClock(func() time.Time { return f.now }))

	base := []AuthOption{WithLogger(logger.Nop()), WithRecorder(f.recorder)}
	f.svc = NewAuthService(f.users, f.sessions, f.codec, append(base, opts...)...)
	return f
}

func (f *fixture) signIn(t *testing.T, username, password string) string {
	t.Helper()
	res, err := f.svc.SignIn(context.Background(), &SignInRequest{Method: http.MethodPost, Username: username, Password: password})
	require.NoError(t, err)
	require.Nil(t, res.AppErr)
	return res.Token
}

func TestSignIn_Success(t *testing.T) {
	f := newFixture(t)

	tok := f.signIn(t, "admin666", "admin666")

	assert.Equal(t, 2, strings.Count(tok, "."))
	assert.Equal(t, tok, f.sessions.get("admin666"))

	claims, err := f.codec.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "1", claims.ID)
	assert.Equal(t, "admin666", claims.Username)
	assert.Equal(t, uint64(f.now.Add(token.DefaultTTL).Unix()), claims.Exp)

	assert.Equal(t, 1, f.recorder.get(OpSignIn, ResultSuccess))
}

func TestSignIn_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		username string
		password string
		wantErr  *domain.DomainError
	}{
		{"GET method", http.MethodGet, "admin666", "admin666", domain.ErrMethodInvalid},
		{"PUT method", http.MethodPut, "admin666", "admin666", domain.ErrMethodInvalid},
		{"short username", http.MethodPost, "admin", "admin666", domain.ErrInvalidCredentials},
		{"long password", http.MethodPost, "admin666", strings.Repeat("x", 17), domain.ErrInvalidCredentials},
		{"empty fields", http.MethodPost, "", "", domain.ErrInvalidCredentials},
		{"unknown user", http.MethodPost, "nobody66", "nobody66", domain.ErrInvalidCredentials},
		{"wrong password", http.MethodPost, "admin666", "wrongpw1", domain.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			res, err := f.svc.SignIn(context.Background(), &SignInRequest{
				Method: tt.method, Username: tt.username, Password: tt.password,
			})

			assert.Nil(t, res)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantErr.Message, domain.GetErrorMessage(err))
			assert.Zero(t, f.sessions.Count(context.Background()), "registry must not change")
			assert.Equal(t, 1, f.recorder.get(OpSignIn, ResultRejected))
		})
	}
}

func TestSignIn_UnknownUserAndWrongPasswordLookAlike(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, errUnknown := f.svc.SignIn(ctx, &SignInRequest{Method: http.MethodPost, Username: "ghost666", Password: "admin666"})
	_, errWrong := f.svc.SignIn(ctx, &SignInRequest{Method: http.MethodPost, Username: "admin666", Password: "ghost666"})

	assert.Equal(t, domain.GetErrorCode(errUnknown), domain.GetErrorCode(errWrong))
	assert.Equal(t, domain.GetErrorMessage(errUnknown), domain.GetErrorMessage(errWrong))
}

type countingVerifier struct {
	mu       sync.Mutex
	hashes   int
	compared []string
}

func (v *countingVerifier) Hash(plain string) (string, error) {
	v.mu.Lock()
	v.hashes++
	v.mu.Unlock()
	return "stored:" + plain, nil
}

func (v *countingVerifier) Compare(stored, presented string) bool {
	v.mu.Lock()
	v.compared = append(v.compared, stored)
	v.mu.Unlock()
	return stored == "stored:"+presented
}

func TestSignIn_UnknownUserStillComparesPassword(t *testing.T) {
	v := &countingVerifier{}
	f := newFixture(t, WithPasswordVerifier(v))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := f.svc.SignIn(ctx, &SignInRequest{Method: http.MethodPost, Username: "ghost666", Password: "admin666"})
		require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	}

	assert.Equal(t, []string{"stored:" + decoyPassword, "stored:" + decoyPassword}, v.compared)
	assert.Equal(t, 1, v.hashes, "decoy is hashed once")

	_, err := f.svc.SignIn(ctx, &SignInRequest{Method: http.MethodPost, Username: "ghost666", Password: decoyPassword})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials, "the decoy never signs anyone in")
}

func TestSignIn_IssuanceFailureIsSoft(t *testing.T) {
	f := newFixture(t)
	svc := NewAuthService(f.users, f.sessions, failingCodec{f.codec}, WithLogger(logger.Nop()))

	res, err := svc.SignIn(context.Background(), &SignInRequest{Method: http.MethodPost, Username: "admin666", Password: "admin666"})

	require.NoError(t, err)
	require.NotNil(t, res.AppErr)
	assert.Equal(t, -1, res.AppErr.Code)
	assert.Equal(t, "user login failed, generate token error", res.AppErr.Message)
	assert.Empty(t, res.Token)
	assert.Zero(t, f.sessions.Count(context.Background()))
}

func TestSignIn_StorageFailure(t *testing.T) {
	f := newFixture(t)
	f.users.findErr = errors.New("disk on fire")

	_, err := f.svc.SignIn(context.Background(), &SignInRequest{Method: http.MethodPost, Username: "admin666", Password: "admin666"})

	require.ErrorIs(t, err, domain.ErrStorage)
	assert.Equal(t, 1, f.recorder.get(OpSignIn, ResultError))
}

func TestSignIn_SecondSignInSupersedesFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.signIn(t, "admin666", "admin666")
	f.now = f.now.Add(time.Second)
	second := f.signIn(t, "admin666", "admin666")
	require.NotEqual(t, first, second)

	_, err := f.svc.CheckLogin(ctx, first)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)

	u, err := f.svc.CheckLogin(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, "admin666", u.Username)
}

func TestSignUp_Success(t *testing.T) {
	f := newFixture(t)

	u, err := f.svc.SignUp(context.Background(), &SignUpRequest{
		Method: http.MethodPost, Username: "alice1", Password: "secret1", Email: "a@b.co",
	})

	require.NoError(t, err)
	assert.Equal(t, &domain.User{ID: "3", Username: "alice1", Password: "secret1", Email: "a@b.co"}, u)
	assert.Zero(t, f.sessions.Count(context.Background()), "sign-up issues no token")

	tok := f.signIn(t, "alice1", "secret1")
	assert.NotEmpty(t, tok)
}

func TestSignUp_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		req     SignUpRequest
		wantErr *domain.DomainError
		wantMsg string
	}{
		{"GET method", SignUpRequest{Method: http.MethodGet, Username: "alice1", Password: "secret1", Email: "a@b.co"},
			domain.ErrMethodInvalid, "http method is invalid"},
		{"short password", SignUpRequest{Method: http.MethodPost, Username: "alice1", Password: "s1", Email: "a@b.co"},
			domain.ErrInvalidCredentials, "username or password is invalid"},
		{"short email", SignUpRequest{Method: http.MethodPost, Username: "alice1", Password: "secret1", Email: "a@b."},
			domain.ErrEmailInvalid, "email is invalid"},
		{"empty email", SignUpRequest{Method: http.MethodPost, Username: "alice1", Password: "secret1"},
			domain.ErrEmailInvalid, "email is invalid"},
		{"taken username", SignUpRequest{Method: http.MethodPost, Username: "michael", Password: "secret1", Email: "m@b.co"},
			domain.ErrUserExists, "username: michael is registered"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			req := tt.req

			u, err := f.svc.SignUp(context.Background(), &req)

			assert.Nil(t, u)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantMsg, domain.GetErrorMessage(err))

			n, _ := f.users.Count(context.Background())
			assert.Equal(t, 2, n)
		})
	}
}

func TestSignUp_StoreFailureFailsClosed(t *testing.T) {
	f := newFixture(t)
	f.users.insertErr = errors.New("write refused")

	u, err := f.svc.SignUp(context.Background(), &SignUpRequest{
		Method: http.MethodPost, Username: "alice1", Password: "secret1", Email: "a@b.co",
	})

	assert.Nil(t, u)
	require.ErrorIs(t, err, domain.ErrSignUpFailed)
	assert.Equal(t, "sign_up error", domain.GetErrorMessage(err))
}

func TestSignUp_ConcurrentSameUsername(t *testing.T) {
	f := newFixture(t)

	const workers = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins, dups := 0, 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.SignUp(context.Background(), &SignUpRequest{
				Method: http.MethodPost, Username: "racer1", Password: "secret1", Email: "r@b.co",
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, domain.ErrUserExists):
				dups++
			default:
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, workers-1, dups)
}

func TestSignUp_BcryptStoresHash(t *testing.T) {
	f := newFixture(t, WithPasswordVerifier(BcryptVerifier{Cost: 4}))

	u, err := f.svc.SignUp(context.Background(), &SignUpRequest{
		Method: http.MethodPost, Username: "alice1", Password: "secret1", Email: "a@b.co",
	})
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", u.Password)
	assert.True(t, strings.HasPrefix(u.Password, "$2"))

	tok := f.signIn(t, "alice1", "secret1")
	assert.NotEmpty(t, tok)
}

func TestRefreshToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	old := f.signIn(t, "admin666", "admin666")
	f.now = f.now.Add(time.Second)

	fresh, err := f.svc.RefreshToken(ctx, old)
	require.NoError(t, err)
	require.NotEqual(t, old, fresh)

	claims, err := f.codec.Verify(fresh)
	require.NoError(t, err)
	assert.Equal(t, "1", claims.ID)
	assert.Equal(t, "admin666", claims.Username)

	_, err = f.svc.CheckLogin(ctx, old)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid, "old token no longer passes check-login")

	_, err = f.svc.CheckLogin(ctx, fresh)
	assert.NoError(t, err)
}

func TestRefreshToken_AcceptsSupersededToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.signIn(t, "admin666", "admin666")
	f.now = f.now.Add(time.Second)
	_ = f.signIn(t, "admin666", "admin666")
	f.now = f.now.Add(time.Second)

	fresh, err := f.svc.RefreshToken(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, fresh, f.sessions.get("admin666"))
}

func TestRefreshToken_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	valid := f.signIn(t, "admin666", "admin666")

	_, err := f.svc.RefreshToken(ctx, "")
	assert.ErrorIs(t, err, domain.ErrTokenMissing)

	_, err = f.svc.RefreshToken(ctx, "garbage")
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)

	tampered := valid[:len(valid)-3] + "abc"
	if tampered == valid {
		tampered = valid[:len(valid)-3] + "xyz"
	}
	_, err = f.svc.RefreshToken(ctx, tampered)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)

	f.now = f.now.Add(token.DefaultTTL)
	_, err = f.svc.RefreshToken(ctx, valid)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)

	assert.Equal(t, valid, f.sessions.get("admin666"), "failed refresh must not touch the registry")
}

func TestCheckLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tok := f.signIn(t, "michael", "michael")

	u, err := f.svc.CheckLogin(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, &domain.User{ID: "2", Username: "michael"}, u)
	assert.Equal(t, 1, f.recorder.get(OpCheckLogin, ResultSuccess))
}

func TestCheckLogin_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tok := f.signIn(t, "michael", "michael")

	otherSecret, err := token.NewCodec([]byte("other")).Issue("2", "michael")
	require.NoError(t, err)

	unregistered, err := f.codec.Issue("1", "admin666")
	require.NoError(t, err)

	tests := []struct {
		name    string
		tok     string
		advance time.Duration
		wantErr *domain.DomainError
	}{
		{"empty", "", 0, domain.ErrTokenRequired},
		{"garbage", "a.b.c", 0, domain.ErrTokenInvalid},
		{"other secret", otherSecret, 0, domain.ErrTokenInvalid},
		{"never registered", unregistered, 0, domain.ErrTokenInvalid},
		{"expired", tok, token.DefaultTTL, domain.ErrTokenExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			saved := f.now
			f.now = f.now.Add(tt.advance)
			defer func() { f.now = saved }()

			u, err := f.svc.CheckLogin(ctx, tt.tok)
			assert.Nil(t, u)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestConcurrentSignInsLeaveOneLiveToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const workers = 16
	tokens := make([]string, workers)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := f.svc.SignIn(ctx, &SignInRequest{Method: http.MethodPost, Username: "admin666", Password: "admin666"})
			if !assert.NoError(t, err) {
				return
			}
			tokens[i] = res.Token
		}(i)
	}
	wg.Wait()

	live := f.sessions.get("admin666")
	assert.Contains(t, tokens, live)
	_, err := f.svc.CheckLogin(ctx, live)
	assert.NoError(t, err)
}

func TestNewPasswordVerifier(t *testing.T) {
	for _, scheme := range []string{"", PasswordSchemePlain, PasswordSchemeBcrypt, PasswordSchemeArgon2} {
		t.Run(fmt.Sprintf("scheme=%q", scheme), func(t *testing.T) {
			v, err := NewPasswordVerifier(scheme)
			require.NoError(t, err)
			require.NotNil(t, v)
		})
	}

	_, err := NewPasswordVerifier("md5")
	assert.Error(t, err)
}

func TestPasswordVerifiers(t *testing.T) {
	verifiers := map[string]PasswordVerifier{
		"plain":    PlainVerifier{},
		"bcrypt":   BcryptVerifier{Cost: 4},
		"argon2id": Argon2Verifier{Time: 1, Memory: 1024, Threads: 1, SaltLen: 16, KeyLen: 32},
	}

	for name, v := range verifiers {
		t.Run(name, func(t *testing.T) {
			stored, err := v.Hash("admin666")
			require.NoError(t, err)

			assert.True(t, v.Compare(stored, "admin666"))
			assert.False(t, v.Compare(stored, "admin667"))
			assert.False(t, v.Compare(stored, ""))
		})
	}

	assert.False(t, BcryptVerifier{}.Compare("not-a-hash", "admin666"))
}

func TestArgon2Verifier_Format(t *testing.T) {
	v := DefaultArgon2Verifier()

	stored, err := v.Hash("admin666")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored, "$argon2id$v=19$m=16384,t=2,p=2$"), stored)

	again, err := v.Hash("admin666")
	require.NoError(t, err)
	assert.NotEqual(t, stored, again, "each hash uses a fresh salt")
	assert.True(t, v.Compare(again, "admin666"))
}

func TestArgon2Verifier_HighThreadCount(t *testing.T) {
	v := Argon2Verifier{Time: 1, Memory: 64, Threads: 200, SaltLen: 16, KeyLen: 32}

	stored, err := v.Hash("admin666")
	require.NoError(t, err)
	assert.True(t, v.Compare(stored, "admin666"), "p=200 is within twice the configured threads")
}

func TestWithinTwice(t *testing.T) {
	assert.True(t, withinTwice(10, 5))
	assert.False(t, withinTwice(11, 5))
	assert.False(t, withinTwice(0, 5))
	assert.True(t, withinTwice(400, 200))
	assert.True(t, withinTwice(math.MaxUint32, math.MaxUint32), "doubling a uint32 limit must not wrap")
	assert.True(t, withinTwice(6<<30, 3<<30))
}

func TestArgon2Verifier_RejectsMalformed(t *testing.T) {
	v := Argon2Verifier{Time: 1, Memory: 1024, Threads: 1, SaltLen: 16, KeyLen: 32}
	stored, err := v.Hash("admin666")
	require.NoError(t, err)
	parts := strings.Split(stored, "$")

	tests := map[string]string{
		"empty":         "",
		"bcrypt hash":   "$2a$04$abcdefghijklmnopqrstuu",
		"wrong version": strings.Join([]string{"", "argon2id", "v=16", parts[3], parts[4], parts[5]}, "$"),
		"bad params":    strings.Join([]string{"", "argon2id", parts[2], "m=x", parts[4], parts[5]}, "$"),
		"costly params": strings.Join([]string{"", "argon2id", parts[2], "m=1048576,t=1,p=1", parts[4], parts[5]}, "$"),
		"bad salt":      strings.Join([]string{"", "argon2id", parts[2], parts[3], "!!", parts[5]}, "$"),
		"short key":     strings.Join([]string{"", "argon2id", parts[2], parts[3], parts[4], "AAAA"}, "$"),
	}
	for name, hash := range tests {
		t.Run(name, func(t *testing.T) {
			assert.False(t, v.Compare(hash, "admin666"))
		})
	}
}
