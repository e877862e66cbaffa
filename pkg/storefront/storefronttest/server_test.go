package storefronttest

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/coffeemarket/pkg/types"
)

func TestAuthedRoutesRejectMissingBearer(t *testing.T) {
	srv := New()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/orders")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRevokedTokenIsRejected(t *testing.T) {
	srv := New()
	defer srv.Close()
	user := srv.AddUser(types.User{Name: "tester"}, types.ProviderGoogle, "g")
	access, _ := srv.IssueTokens(user.ID)

	get := func() int {
		req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/auth/me", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+access)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}
	assert.Equal(t, http.StatusOK, get())
	srv.RevokeAccessTokens()
	assert.Equal(t, http.StatusUnauthorized, get())
}

func TestFailNextAppliesOnce(t *testing.T) {
	srv := New()
	defer srv.Close()
	srv.FailNext(http.MethodGet, "/api/products/best", http.StatusServiceUnavailable)

	first, err := http.Get(srv.URL + "/api/products/best")
	require.NoError(t, err)
	first.Body.Close()
	second, err := http.Get(srv.URL + "/api/products/best")
	require.NoError(t, err)
	second.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, first.StatusCode)
	assert.Equal(t, http.StatusOK, second.StatusCode)
	assert.Len(t, srv.Requests(), 2)
}

func TestSeedCartMergesSameOption(t *testing.T) {
	srv := New()
	defer srv.Close()
	user := srv.AddUser(types.User{Name: "tester"}, types.ProviderKakao, "k")

	a := srv.SeedCart(user.ID, 1, 11, 1)
	b := srv.SeedCart(user.ID, 1, 11, 2)
	assert.Equal(t, a.CartItemID, b.CartItemID)
	assert.Equal(t, 3, b.Quantity)
	assert.Equal(t, 54000, b.TotalPrice)
}

func TestGuestCartRequiresSessionID(t *testing.T) {
	srv := New()
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/cart", "application/json", strings.NewReader(`{"productId":1,"optionId":11,"quantity":1}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/api/cart", "application/json", strings.NewReader(`{"productId":1,"optionId":11,"quantity":1,"sessionId":"guest-1-abc"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, srv.GuestCart("guest-1-abc"), 1)
}
