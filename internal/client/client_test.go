package client_test

import (
	"context"
	"testing"

	"github.com/fivetwenty-io/tdapi-client/internal/auth"
	. "github.com/fivetwenty-io/tdapi-client/internal/client"
	"github.com/fivetwenty-io/tdapi-client/pkg/tdapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("requires config", func(t *testing.T) {
		t.Parallel()

		_, err := New(context.Background(), nil)
		require.ErrorIs(t, err, tdapi.ErrConfigRequired)
	})

	t.Run("rejects relative endpoint", func(t *testing.T) {
		t.Parallel()

		_, err := New(context.Background(), &tdapi.Config{APIEndpoint: "api.php"})
		require.ErrorIs(t, err, tdapi.ErrAPIEndpointInvalid)
	})

	t.Run("credential selects static authenticator", func(t *testing.T) {
		t.Parallel()

		client, err := New(context.Background(), &tdapi.Config{Credential: fixtureKey})
		require.NoError(t, err)

		assert.IsType(t, &auth.StaticAuthenticator{}, client.GetAuthenticator())
		assert.True(t, client.IsAuthenticated())
	})

	t.Run("email with token cache selects cached authenticator", func(t *testing.T) {
		t.Parallel()

		client, err := New(context.Background(), &tdapi.Config{
			Email:      fixtureEmail,
			Password:   fixturePassword,
			TokenCache: &tdapi.TokenCacheConfig{Type: tdapi.TokenCacheMemory},
		})
		require.NoError(t, err)

		assert.IsType(t, &auth.CachedAuthenticator{}, client.GetAuthenticator())
		assert.False(t, client.IsAuthenticated())
	})

	t.Run("email selects password authenticator", func(t *testing.T) {
		t.Parallel()

		client, err := New(context.Background(), &tdapi.Config{Email: fixtureEmail, Password: fixturePassword})
		require.NoError(t, err)

		assert.IsType(t, &auth.PasswordAuthenticator{}, client.GetAuthenticator())
	})

	t.Run("invalid token cache config", func(t *testing.T) {
		t.Parallel()

		_, err := New(context.Background(), &tdapi.Config{
			Email:      fixtureEmail,
			TokenCache: &tdapi.TokenCacheConfig{Type: "redis"},
		})
		require.ErrorIs(t, err, tdapi.ErrUnsupportedTokenCache)
	})

	t.Run("no credentials", func(t *testing.T) {
		t.Parallel()

		client, err := New(context.Background(), &tdapi.Config{})
		require.NoError(t, err)

		assert.Nil(t, client.GetAuthenticator())
		assert.False(t, client.IsAuthenticated())

		_, err = client.Authenticate(context.Background())
		require.ErrorIs(t, err, tdapi.ErrMissingCredential)
	})
}

func TestClient_AuthenticationFlow(t *testing.T) {
	t.Parallel()

	service := newFakeService(t)
	service.respond("getServerInfo", `<server>
		<unixtime>1228476730</unixtime>
		<date>Fri, 05 Dec 2008 05:32:10 -0600</date>
		<tokenexpires>238.53</tokenexpires>
	</server>`)

	client, err := New(context.Background(), &tdapi.Config{
		APIEndpoint: service.endpoint(),
		Email:       fixtureEmail,
		Password:    fixturePassword,
		AppID:       "testapp",
	})
	require.NoError(t, err)

	key, err := client.Authenticate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fixtureKey, key)
	assert.Equal(t, fixtureUserID, client.UserID())

	userIDCalls := service.calls("getUserid")
	require.Len(t, userIDCalls, 1)
	assert.Equal(t, fixtureEmail, userIDCalls[0]["email"])
	assert.Equal(t, fixturePassword, userIDCalls[0]["pass"])

	tokenCalls := service.calls("getToken")
	require.Len(t, tokenCalls, 1)
	assert.Equal(t, fixtureUserID, tokenCalls[0]["userid"])
	assert.Equal(t, "testapp", tokenCalls[0]["appid"])

	info, err := client.GetServerInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, tdapi.KindServer, info.Kind())

	expires, ok := info.Float("tokenexpires")
	require.True(t, ok)
	assert.InDelta(t, 238.53, expires, 1e-9)

	infoCalls := service.calls("getServerInfo")
	require.Len(t, infoCalls, 1)
	assert.Equal(t, fixtureKey, infoCalls[0]["key"])
}

func TestClient_InvalidCredentials(t *testing.T) {
	t.Parallel()

	service := newFakeService(t)
	service.respond("getUserid", `<error>invalid username/password</error>`)

	client, err := New(context.Background(), &tdapi.Config{
		APIEndpoint: service.endpoint(),
		Email:       fixtureEmail,
		Password:    "wrong",
	})
	require.NoError(t, err)

	_, err = client.Authenticate(context.Background())
	require.ErrorIs(t, err, tdapi.ErrInvalidCredentials)

	assert.False(t, client.IsAuthenticated())
	assert.Empty(t, service.calls("getToken"))
}

func TestClient_MissingCredential(t *testing.T) {
	t.Parallel()

	service := newFakeService(t)
	service.respond("getFolders", `<folders/>`)

	client, err := New(context.Background(), &tdapi.Config{APIEndpoint: service.endpoint()})
	require.NoError(t, err)

	_, err = client.Folders().List(context.Background())
	require.ErrorIs(t, err, tdapi.ErrMissingCredential)
	assert.Contains(t, err.Error(), "getFolders")
	assert.Empty(t, service.calls("getFolders"))

	folders, err := client.Folders().List(context.Background(), tdapi.WithCredential(fixtureKey))
	require.NoError(t, err)
	assert.Empty(t, folders)

	calls := service.calls("getFolders")
	require.Len(t, calls, 1)
	assert.Equal(t, fixtureKey, calls[0]["key"])
}

func TestClient_ExplicitCredentialWins(t *testing.T) {
	t.Parallel()

	service := newFakeService(t)
	service.respond("getAccountInfo", `<account><userid>`+fixtureUserID+`</userid><alias>sample</alias><pro>1</pro></account>`)

	client, err := New(context.Background(), &tdapi.Config{APIEndpoint: service.endpoint(), Credential: "held-key"})
	require.NoError(t, err)

	_, err = client.GetAccountInfo(context.Background())
	require.NoError(t, err)

	account, err := client.GetAccountInfo(context.Background(), tdapi.WithCredential("explicit-key"))
	require.NoError(t, err)

	pro, ok := account.Bool("pro")
	require.True(t, ok)
	assert.True(t, pro)

	calls := service.calls("getAccountInfo")
	require.Len(t, calls, 2)
	assert.Equal(t, "held-key", calls[0]["key"])
	assert.Equal(t, "explicit-key", calls[1]["key"])
}

func TestClient_UnauthenticatedCalls(t *testing.T) {
	t.Parallel()

	service := newFakeService(t)
	service.respond("createAccount", `<userid>newuser00000001</userid>`)

	client, err := New(context.Background(), &tdapi.Config{APIEndpoint: service.endpoint()})
	require.NoError(t, err)

	userID, err := client.GetUserID(context.Background(), fixtureEmail, fixturePassword)
	require.NoError(t, err)
	assert.Equal(t, fixtureUserID, userID)

	token, err := client.GetToken(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, fixtureToken, token)

	_, err = client.GetToken(context.Background(), "")
	require.ErrorIs(t, err, tdapi.ErrUserIDRequired)

	created, err := client.CreateAccount(context.Background(), "new@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "newuser00000001", created)

	calls := service.calls("createAccount")
	require.Len(t, calls, 1)
	assert.Equal(t, "new@example.com", calls[0]["email"])
	assert.Equal(t, "secret", calls[0]["pass"])
}

func TestClient_ServerError(t *testing.T) {
	t.Parallel()

	service := newFakeService(t)
	service.respond("getGoals", `<error>Invalid key</error>`)

	client, err := New(context.Background(), &tdapi.Config{APIEndpoint: service.endpoint(), Credential: "stale"})
	require.NoError(t, err)

	_, err = client.Goals().List(context.Background())
	require.Error(t, err)

	var serverErr *tdapi.ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, "Invalid key", serverErr.Message)
}

func TestClient_Logout(t *testing.T) {
	t.Parallel()

	service := newFakeService(t)

	client, err := New(context.Background(), &tdapi.Config{
		APIEndpoint: service.endpoint(),
		Email:       fixtureEmail,
		Password:    fixturePassword,
		TokenCache:  &tdapi.TokenCacheConfig{Type: tdapi.TokenCacheMemory},
	})
	require.NoError(t, err)

	_, err = client.Authenticate(context.Background())
	require.NoError(t, err)
	require.True(t, client.IsAuthenticated())

	require.NoError(t, client.Logout(context.Background()))
	assert.False(t, client.IsAuthenticated())

	plain, err := New(context.Background(), &tdapi.Config{Credential: fixtureKey})
	require.NoError(t, err)
	require.ErrorIs(t, plain.Logout(context.Background()), ErrNotForgettable)
}

// closingCache is a memory cache that records Close calls.
type closingCache struct {
	*tdapi.MemoryTokenCache

	closed int
}

func (c *closingCache) Close() error {
	c.closed++

	return nil
}

func TestClient_SharedTokenCache(t *testing.T) {
	t.Parallel()

	service := newFakeService(t)
	service.respond("getServerInfo", `<server><unixtime>1228476730</unixtime><tokenexpires>238.53</tokenexpires></server>`)

	memory, err := tdapi.NewMemoryTokenCache(4)
	require.NoError(t, err)

	shared := &closingCache{MemoryTokenCache: memory}

	newClient := func() *Client {
		client, err := New(context.Background(), &tdapi.Config{
			APIEndpoint: service.endpoint(),
			Email:       fixtureEmail,
			Password:    fixturePassword,
			TokenCache:  &tdapi.TokenCacheConfig{Type: tdapi.TokenCacheMemory, Cache: shared},
		})
		require.NoError(t, err)

		return client
	}

	first := newClient()
	key, err := first.Authenticate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fixtureKey, key)
	require.NoError(t, first.Close())

	second := newClient()
	key, err = second.Authenticate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fixtureKey, key)
	require.NoError(t, second.Close())

	assert.Len(t, service.calls("getUserid"), 1)
	assert.Len(t, service.calls("getToken"), 1)
	assert.Len(t, service.calls("getServerInfo"), 1)
	assert.Equal(t, 0, shared.closed)
}

func TestClient_CloseWithoutCache(t *testing.T) {
	t.Parallel()

	client, err := New(context.Background(), &tdapi.Config{Credential: fixtureKey})
	require.NoError(t, err)

	require.NoError(t, client.Close())
	require.NoError(t, client.Close())
}
