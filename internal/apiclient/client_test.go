package apiclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"snackstack/internal/apiclient"
	"snackstack/internal/domain"
)

func newClient(t *testing.T, h http.HandlerFunc) *apiclient.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := apiclient.New(srv.URL)
	c.RetryInitial = time.Millisecond
	return c
}

func TestLogin(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/user/login", r.URL.Path)
		var body struct{ Email, Password string }
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body.Password != "Passw0rd!" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"message":"Invalid email or password"}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"message":"Login successful"}`))
	})

	res, err := c.Login(context.Background(), "alice@snackstack.test", "Passw0rd!")
	require.NoError(t, err)
	assert.True(t, res.Success)

	_, err = c.Login(context.Background(), "alice@snackstack.test", "nope")
	require.ErrorIs(t, err, apiclient.ErrBadCredentials)
	assert.Equal(t, "Invalid email or password", apiclient.LoginMessage(err))
}

func TestLogin_ServerErrorIsUnavailable(t *testing.T) {
	var calls atomic.Int32
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.Login(context.Background(), "alice@snackstack.test", "Passw0rd!")
	require.ErrorIs(t, err, apiclient.ErrUnavailable)
	assert.NotEqual(t, "Invalid email or password", apiclient.LoginMessage(err))
	assert.Equal(t, int32(1), calls.Load(), "login is not retried")
}

func TestLogin_UnreachableIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := apiclient.New(url).Login(context.Background(), "a@b.test", "x")
	require.ErrorIs(t, err, apiclient.ErrUnavailable)
}

func TestUser(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/user/alice@snackstack.test" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"email":"alice@snackstack.test","firstName":"Alice","lastName":"Nguyen"}`))
	})

	p, err := c.User(context.Background(), "alice@snackstack.test")
	require.NoError(t, err)
	assert.Equal(t, "Alice", p.FirstName)

	_, err = c.User(context.Background(), "ghost@snackstack.test")
	require.ErrorIs(t, err, apiclient.ErrNotFound)
}

func TestOrders_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[{"orderId":7,"userEmail":"alice@snackstack.test","productName":"Lay's Classic Sea Salt","quantity":2,"price":3.99,"totalPrice":7.98,"status":"DELIVERED","orderDate":"2026-02-20T10:00:00"}]`))
	})

	orders, err := c.Orders(context.Background(), "alice@snackstack.test")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, int64(7), orders[0].OrderID)
	assert.Equal(t, "Lay's Classic Sea Salt", orders[0].ProductName)
	assert.Equal(t, int32(3), calls.Load())
}

func TestOrders_GivesUpAfterTries(t *testing.T) {
	var calls atomic.Int32
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.Orders(context.Background(), "alice@snackstack.test")
	require.ErrorIs(t, err, apiclient.ErrUnavailable)
	assert.Equal(t, int32(3), calls.Load())
}

func TestOrders_NotFoundIsPermanent(t *testing.T) {
	var calls atomic.Int32
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.Orders(context.Background(), "ghost@snackstack.test")
	require.ErrorIs(t, err, apiclient.ErrNotFound)
	assert.Equal(t, int32(1), calls.Load())
}

func TestOrders_EmptyHistory(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	})
	orders, err := c.Orders(context.Background(), "bob@snackstack.test")
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.NotNil(t, orders)
}

func TestSendNudge(t *testing.T) {
	got := make(chan apiclient.NudgeRequest, 1)
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/user/nudge", r.URL.Path)
		var req apiclient.NudgeRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		got <- req
		_, _ = w.Write([]byte(`{"success":true,"message":"Nudge recorded"}`))
	})

	require.NoError(t, c.SendNudge(context.Background(), "alice@snackstack.test", "Lay's Classic Sea Salt", domain.Replenishment))
	assert.Equal(t, apiclient.NudgeRequest{
		UserEmail:   "alice@snackstack.test",
		ProductName: "Lay's Classic Sea Salt",
		NudgeType:   "replenishment",
	}, <-got)
}

func TestSendNudge_Throttled(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true}`))
	})
	c.Limiter = rate.NewLimiter(rate.Every(time.Hour), 1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.NoError(t, c.SendNudge(ctx, "a@b.test", "x", domain.Idle))
	require.Error(t, c.SendNudge(ctx, "a@b.test", "x", domain.Idle), "second send exceeds the budget")
}

func TestOrders_SendsServiceToken(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(apiclient.ServiceTokenHeader) != "s3cret" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := c.Orders(context.Background(), "alice@snackstack.test")
	require.Error(t, err, "no token configured")

	c.Token = "s3cret"
	orders, err := c.Orders(context.Background(), "alice@snackstack.test")
	require.NoError(t, err)
	assert.Empty(t, orders)
}
