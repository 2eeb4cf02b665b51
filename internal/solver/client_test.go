package solver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// testMatrix is a 2x2 QUBO with the pair bias half-split across the
// off-diagonal cells.
func testMatrix() *mat.SymDense {
	return mat.NewSymDense(2, []float64{-1, 0.5, 0.5, -2})
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		wantErr string
	}{
		{"http", "http://localhost:8000/solve", ""},
		{"https", "https://solver.example.com/v1/solve", ""},
		{"empty", "", "must be absolute http or https"},
		{"no scheme", "localhost:8000", "must be absolute http or https"},
		{"wrong scheme", "ftp://solver.example.com", "must be absolute http or https"},
		{"no host", "http://", "must be absolute http or https"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.baseURL, "tok")
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, c)
		})
	}
}

func TestSolve(t *testing.T) {
	var gotReq solveRequest
	var gotAuth, gotContentType string
	var decodeErr error

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		decodeErr = json.NewDecoder(r.Body).Decode(&gotReq)

		json.NewEncoder(w).Encode(solveResponse{
			Configuration: []int{1, 0},
			Energy:        -3.25,
			Time:          1.5,
		})
	}))
	defer srv.Close()

	c, err := New(srv.URL, "secret-token", WithNumReads(500), WithMeasurementBudget(2000))
	require.NoError(t, err)

	res, err := c.Solve(context.Background(), testMatrix())
	require.NoError(t, err)
	require.NoError(t, decodeErr)

	assert.Equal(t, []int{1, 0}, res.Selection)
	assert.Equal(t, -3.25, res.Energy)
	assert.Equal(t, 1500*time.Millisecond, res.Runtime, "seconds convert to a duration")

	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, 500, gotReq.NumReads)
	assert.Equal(t, 2000, gotReq.MeasurementBudget)
	require.Len(t, gotReq.Matrix, 2)
	assert.Equal(t, []float64{-1, 0.5}, gotReq.Matrix[0], "rows carry the full symmetric matrix")
	assert.Equal(t, []float64{0.5, -2}, gotReq.Matrix[1])
}

func TestSolveWithoutToken(t *testing.T) {
	var sawAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawAuth = r.Header["Authorization"]
		json.NewEncoder(w).Encode(solveResponse{Configuration: []int{0, 0}})
	}))
	defer srv.Close()

	c, err := New(srv.URL, "")
	require.NoError(t, err)

	_, err = c.Solve(context.Background(), testMatrix())
	require.NoError(t, err)
	assert.False(t, sawAuth, "an empty token must not send an Authorization header")
}

func TestSolveStatusClassification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		sentinel error
	}{
		{"unauthorized", http.StatusUnauthorized, ErrAuthentication},
		{"forbidden", http.StatusForbidden, ErrAuthentication},
		{"request timeout", http.StatusRequestTimeout, ErrUnavailable},
		{"too many requests", http.StatusTooManyRequests, ErrUnavailable},
		{"internal error", http.StatusInternalServerError, ErrUnavailable},
		{"bad gateway", http.StatusBadGateway, ErrUnavailable},
		{"service unavailable", http.StatusServiceUnavailable, ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c, err := New(srv.URL, "tok")
			require.NoError(t, err)

			_, err = c.Solve(context.Background(), testMatrix())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)
		})
	}
}

func TestSolveUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "matrix too large", http.StatusBadRequest)
	}))
	defer srv.Close()

	c, err := New(srv.URL, "tok")
	require.NoError(t, err)

	_, err = c.Solve(context.Background(), testMatrix())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAuthentication)
	assert.NotErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "unexpected status 400")
	assert.Contains(t, err.Error(), "matrix too large")
}

func TestSolveTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c, err := New(srv.URL, "tok")
	require.NoError(t, err)

	_, err = c.Solve(context.Background(), testMatrix())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestSolveTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c, err := New(srv.URL, "tok", WithTimeout(50*time.Millisecond))
	require.NoError(t, err)

	start := time.Now()
	_, err = c.Solve(context.Background(), testMatrix())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Less(t, time.Since(start), 5*time.Second, "the client timeout must bound the request")
}

func TestSolveLengthMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(solveResponse{Configuration: []int{1, 0, 1}})
	}))
	defer srv.Close()

	c, err := New(srv.URL, "tok")
	require.NoError(t, err)

	_, err = c.Solve(context.Background(), testMatrix())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 configuration entries for 2 variables")
}

func TestSolveMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c, err := New(srv.URL, "tok")
	require.NoError(t, err)

	_, err = c.Solve(context.Background(), testMatrix())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding response")
}

func TestSolveNilMatrix(t *testing.T) {
	c, err := New("http://localhost:8000/solve", "tok")
	require.NoError(t, err)

	_, err = c.Solve(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "matrix is nil")
}

func TestSolveContextCancelled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c, err := New(srv.URL, "tok")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Solve(ctx, testMatrix())
	require.Error(t, err)
}
