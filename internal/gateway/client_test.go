package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"voice-console/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	opts = append([]Option{WithRetry(RetryConfig{Retries: 3})}, opts...)
	return NewClient(srv.URL+"/api", opts...)
}

type recordingObserver struct {
	mu       sync.Mutex
	statuses []int
}

func (r *recordingObserver) ObserveResponse(_ Credentials, _, _ string, status int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, status)
}

func TestGetRetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		io.WriteString(w, `[{"_id":"t1"}]`)
	})

	tenants, err := c.For(StaticCredentials{AccessToken: "tok"}).Tenants(context.Background())
	require.NoError(t, err)
	assert.Len(t, tenants, 1)
	assert.EqualValues(t, 3, calls.Load())
}

func TestGetGivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.For(nil).Tenants(context.Background())
	require.Error(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, StatusCode(err))
	assert.EqualValues(t, 4, calls.Load())
}

func TestNoRetryOnAuthErrors(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		var calls atomic.Int32
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(status)
			io.WriteString(w, `{"message":"denied"}`)
		})

		_, err := c.For(nil).SubUsers(context.Background())
		require.Error(t, err)
		assert.EqualValues(t, 1, calls.Load())

		var ge *Error
		require.True(t, errors.As(err, &ge))
		assert.Equal(t, "denied", ge.Message)
		assert.Equal(t, status == http.StatusUnauthorized, IsUnauthorized(err))
		assert.Equal(t, status == http.StatusForbidden, IsForbidden(err))
	}
}

func TestMutationsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	err := c.For(nil).ToggleUserStatus(context.Background(), "u1")
	require.Error(t, err)
	assert.EqualValues(t, 1, calls.Load())
}

func TestTransportErrorIsTagged(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(url, WithRetry(RetryConfig{Retries: 1}))
	_, err := c.For(nil).Tenants(context.Background())
	require.Error(t, err)
	assert.True(t, IsTransport(err))
	assert.Zero(t, StatusCode(err))
}

func TestObserverSeesEveryResponse(t *testing.T) {
	obs := &recordingObserver{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/admin/sub-users" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		io.WriteString(w, `[]`)
	}, WithObserver(obs))

	s := c.For(StaticCredentials{AccessToken: "tok"})
	_, _ = s.Tenants(context.Background())
	_, _ = s.SubUsers(context.Background())

	assert.Equal(t, []int{http.StatusOK, http.StatusUnauthorized}, obs.statuses)
}

func TestRequestsCarrySignedHeaders(t *testing.T) {
	var gotAuth, gotTenant string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotTenant = r.Header.Get("X-Tenant-ID")
		io.WriteString(w, `{"data":[]}`)
	})

	_, err := c.For(StaticCredentials{AccessToken: "tok", Scope: "T1"}).Contacts(context.Background(), "L1")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "T1", gotTenant)
}

func TestLoginMapsBothShapes(t *testing.T) {
	for _, body := range []string{
		`{"token":"tok","user":{"_id":"u1","role":"admin"}}`,
		`{"token":"tok","_id":"u1","role":"admin"}`,
	} {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			var req models.LoginRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "ana@example.com", req.Email)
			assert.Empty(t, r.Header.Get("Authorization"))
			io.WriteString(w, body)
		})
		resp, err := c.For(nil).Login(context.Background(), models.LoginRequest{Email: "ana@example.com", Password: "secret"})
		require.NoError(t, err)
		assert.Equal(t, "tok", resp.Token)
		assert.Equal(t, "u1", resp.User.ID)
		assert.Equal(t, models.RoleAdmin, resp.User.Role)
	}
}

func TestLoginToleratesLooseUserFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"token":"tok","user":{"_id":"u1","role":"admin","tenant_id":7,"isActive":1}}`)
	})
	resp, err := c.For(nil).Login(context.Background(), models.LoginRequest{Email: "a@b.co", Password: "x"})
	require.NoError(t, err)
	assert.Equal(t, "7", resp.User.TenantKey())
	assert.True(t, resp.User.IsActive)
}

func TestLoginWithoutTokenIsMalformed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"message":"welcome"}`)
	})
	_, err := c.For(nil).Login(context.Background(), models.LoginRequest{Email: "a@b.co", Password: "x"})
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestCreditBalanceShapes(t *testing.T) {
	for body, want := range map[string]models.Amount{
		`{"balance":12.5}`:         12.5,
		`{"data":{"balance":"3"}}`: 3,
		`40`:                       40,
		`{}`:                       0,
	} {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, body)
		})
		got, err := c.For(nil).CreditBalance(context.Background())
		require.NoError(t, err, body)
		assert.Equal(t, want, got, body)
	}
}

func TestHistoryPaging(t *testing.T) {
	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path + "?" + r.URL.RawQuery
		io.WriteString(w, `{"calls":[{"_id":"c1","phoneNumber":"+1"}],"pagination":{"currentPage":2,"totalPages":5,"hasNextPage":true}}`)
	})

	page, err := c.For(nil).History(context.Background(), 2, 20, true)
	require.NoError(t, err)
	assert.Equal(t, "/api/admin/all-calls?limit=20&page=2", gotPath)
	require.Len(t, page.Calls, 1)
	assert.Equal(t, "+1", page.Calls[0].Phone)
	assert.Equal(t, 5, page.Pagination.TotalPages)
	assert.True(t, page.Pagination.HasNextPage)
}

func TestImportExcelSendsMultipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		b, _ := io.ReadAll(f)
		assert.Equal(t, "leads.xlsx", hdr.Filename)
		assert.Equal(t, "xlsx-bytes", string(b))
		io.WriteString(w, `{"imported":3}`)
	})

	out, err := c.For(StaticCredentials{AccessToken: "tok"}).ImportExcel(context.Background(), "leads.xlsx", strings.NewReader("xlsx-bytes"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"imported":3}`, string(out))
}

func TestImportExcelRejectsNon2xx(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotModified)
	})

	_, err := c.For(StaticCredentials{AccessToken: "tok"}).ImportExcel(context.Background(), "leads.xlsx", strings.NewReader("x"))
	require.Error(t, err)
	assert.Equal(t, http.StatusNotModified, StatusCode(err))
}

func TestBackoffHonoursContext(t *testing.T) {
	c := NewClient("http://unused", WithRetry(RetryConfig{Retries: 1, BaseDelay: time.Hour, MaxDelay: time.Hour}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.backoff(ctx, 1, ""), context.Canceled)
}
