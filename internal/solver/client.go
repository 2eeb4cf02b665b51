// Package solver is an HTTP client for a hosted hybrid QUBO solver service.
//
// The service takes a dense QUBO matrix and sampling parameters, runs its
// hybrid workflow, and answers with the lowest-energy configuration it found.
// The adapter stays thin: no retries, no recovery, errors pass through to the
// caller classified as authentication or availability failures.
package solver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/chargeplan/chargeplan/internal/placement"
)

const (
	defaultTimeout           = 5 * time.Minute
	defaultNumReads          = 10000
	defaultMeasurementBudget = 50000
)

// Result is a solved sample returned by the service.
type Result struct {
	// Selection holds one 0/1 entry per QUBO variable.
	Selection []int
	// Energy is the objective value the service reports for Selection.
	Energy float64
	// Runtime is the solve time the service reports.
	Runtime time.Duration
}

// Client submits QUBO matrices to the solver service.
type Client struct {
	baseURL string
	token   string

	httpClient        *http.Client
	timeout           time.Duration
	numReads          int
	measurementBudget int

	logger *zap.Logger
}

// New creates a client for the service at baseURL, authenticating with the
// bearer token. An empty token sends no Authorization header.
func New(baseURL, token string, opts ...Option) (*Client, error) {
	const op = "New"

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, placement.WrapErrorf(err, "solver: %s: parsing base URL", op)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		err := fmt.Errorf("base URL %q must be absolute http or https", baseURL)
		return nil, placement.WrapError(err, "solver: "+op)
	}

	c := &Client{
		baseURL:           baseURL,
		token:             token,
		httpClient:        &http.Client{},
		timeout:           defaultTimeout,
		numReads:          defaultNumReads,
		measurementBudget: defaultMeasurementBudget,
		logger:            zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

type solveRequest struct {
	Matrix            [][]float64 `json:"matrix"`
	NumReads          int         `json:"num_reads"`
	MeasurementBudget int         `json:"measurement_budget"`
}

type solveResponse struct {
	Configuration []int   `json:"configuration"`
	Energy        float64 `json:"energy"`
	Time          float64 `json:"time"`
}

// Solve submits the QUBO and blocks until the service answers, the context
// ends, or the client timeout expires. The returned selection always has one
// entry per matrix variable.
func (c *Client) Solve(ctx context.Context, q *mat.SymDense) (*Result, error) {
	const op = "Client.Solve"

	if q == nil {
		err := errors.New("matrix is nil")
		return nil, placement.WrapError(err, "solver: "+op)
	}
	n := q.SymmetricDim()

	payload, err := json.Marshal(solveRequest{
		Matrix:            denseRows(q),
		NumReads:          c.numReads,
		MeasurementBudget: c.measurementBudget,
	})
	if err != nil {
		return nil, placement.WrapError(err, "solver: "+op)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, placement.WrapError(err, "solver: "+op)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.logger.Debug("Submitting QUBO",
		zap.Int("variables", n),
		zap.Int("num_reads", c.numReads),
		zap.Int("measurement_budget", c.measurementBudget),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrUnavailable, err)
		return nil, placement.WrapError(err, "solver: "+op)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden:
		err := fmt.Errorf("%w: status %d", ErrAuthentication, resp.StatusCode)
		return nil, placement.WrapError(err, "solver: "+op)
	case resp.StatusCode == http.StatusRequestTimeout,
		resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode >= http.StatusInternalServerError:
		err := fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
		return nil, placement.WrapError(err, "solver: "+op)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		return nil, placement.WrapError(err, "solver: "+op)
	}

	var sr solveResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, placement.WrapErrorf(err, "solver: %s: decoding response", op)
	}
	if len(sr.Configuration) != n {
		err := fmt.Errorf("service answered %d configuration entries for %d variables",
			len(sr.Configuration), n)
		return nil, placement.WrapError(err, "solver: "+op)
	}

	result := &Result{
		Selection: sr.Configuration,
		Energy:    sr.Energy,
		Runtime:   time.Duration(sr.Time * float64(time.Second)),
	}

	c.logger.Debug("Solve completed",
		zap.Float64("energy", result.Energy),
		zap.Duration("runtime", result.Runtime),
	)

	return result, nil
}

// denseRows expands the symmetric matrix to full row-major form for the wire.
func denseRows(q *mat.SymDense) [][]float64 {
	n := q.SymmetricDim()
	rows := make([][]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, n)
		for j := 0; j < n; j++ {
			row[j] = q.At(i, j)
		}
		rows[i] = row
	}
	return rows
}
