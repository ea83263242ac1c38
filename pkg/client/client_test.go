package client

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/tensorplex-labs/fare/internal/config"
	"github.com/tensorplex-labs/fare/internal/server"
	"github.com/tensorplex-labs/fare/pkg/api"
	"github.com/tensorplex-labs/fare/pkg/fare"
)

// ClientTestSuite runs the client against a live in-process server.
type ClientTestSuite struct {
	suite.Suite
	client *Client
	cancel context.CancelFunc
	done   chan error
}

func (suite *ClientTestSuite) SetupSuite() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	suite.Require().NoError(err)

	srv := server.NewServer(&server.ServerConfig{Host: "127.0.0.1"})
	ctx, cancel := context.WithCancel(context.Background())
	suite.cancel = cancel
	suite.done = make(chan error, 1)
	go func() {
		suite.done <- srv.Serve(ctx, ln)
	}()

	client, err := NewClient(&ClientConfig{
		BaseURL:         fmt.Sprintf("http://%s", ln.Addr()),
		Timeout:         5 * time.Second,
		ZstdCompression: true,
	})
	suite.Require().NoError(err)
	suite.client = client
}

func (suite *ClientTestSuite) TearDownSuite() {
	suite.client.Close()
	suite.cancel()
	suite.NoError(<-suite.done)
}

func (suite *ClientTestSuite) TestHealth() {
	resp, err := suite.client.Health(context.Background())
	suite.Require().NoError(err)
	suite.Equal("ok", resp.Status)
}

func (suite *ClientTestSuite) TestScore() {
	resp, err := suite.client.Score(context.Background(), api.ScoreRequest{
		RankingInput: api.RankingInput{
			YTrue:  []float64{1, 2, 3, 4},
			YPred:  []float64{1, 3, 4, 2},
			Groups: []int{0, 1, 0, 1},
		},
		Metrics: []fare.Metric{fare.MetricCalibration},
	})
	suite.Require().NoError(err)
	suite.Require().Len(resp.Scores, 1)
	suite.InDelta(0.2, resp.Scores[0].Result.E0, 1e-12)
	suite.InDelta(0.4, resp.Scores[0].Result.E1, 1e-12)
}

func (suite *ClientTestSuite) TestAudit() {
	parity := fare.MetricParity
	resp, err := suite.client.Audit(context.Background(), api.AuditRequest{
		RankingInput: api.RankingInput{
			YPred:  []float64{6, 1, 4, 2, 5, 3},
			Groups: []int{0, 0, 1, 1, 1, 0},
		},
		Metric:      &parity,
		Window:      3,
		Step:        2,
		Diagnostics: true,
	})
	suite.Require().NoError(err)
	suite.InDeltaSlice([]float64{0.5, 1, 0}, resp.Sequences.Err0, 1e-12)
	suite.InDeltaSlice([]float64{0.5, 0, 1}, resp.Sequences.Err1, 1e-12)
	suite.NotNil(resp.Diagnostics)
}

func (suite *ClientTestSuite) TestDiagnostics() {
	resp, err := suite.client.Diagnostics(context.Background(), api.DiagnosticsRequest{
		Err0: []float64{0, 1},
		Err1: []float64{1, 0},
	})
	suite.Require().NoError(err)
	suite.InDeltaSlice([]float64{2, -2, 1}, resp.Vector[:], 1e-12)
}

func (suite *ClientTestSuite) TestReport() {
	rep, err := suite.client.Report(context.Background(), api.ReportRequest{
		RankingInput: api.RankingInput{
			YPred:  []float64{6, 1, 4, 2, 5, 3},
			Groups: []int{0, 0, 1, 1, 1, 0},
		},
		Window: 3,
		Step:   2,
	})
	suite.Require().NoError(err)
	suite.Equal(6, rep.Items)
	suite.Len(rep.Metrics, len(fare.Metrics))
}

func (suite *ClientTestSuite) TestInputErrorIsBadRequest() {
	_, err := suite.client.Audit(context.Background(), api.AuditRequest{
		RankingInput: api.RankingInput{YPred: []float64{1, 2}, Groups: []int{0, 1}},
		Window:       5,
		Step:         1,
	})
	suite.Require().Error(err)
	suite.True(IsBadRequest(err), err.Error())
	suite.Contains(err.Error(), "window exceeds ranking length")
}

func TestClientTestSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient(nil)
	assert.Error(t, err)

	_, err = NewClient(&ClientConfig{})
	assert.Error(t, err)
}

func TestConfigFromEnv(t *testing.T) {
	cfg, err := config.LoadConfigFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"FARE_SERVER_URL":       "http://fare:9000",
		"FARE_CLIENT_RETRY_MAX": "7",
	}))
	require.NoError(t, err)

	cc := ConfigFromEnv(cfg)
	assert.Equal(t, "http://fare:9000", cc.BaseURL)
	assert.Equal(t, 7, cc.RetryMax)
	assert.Equal(t, 30*time.Second, cc.Timeout)
	assert.True(t, cc.ZstdCompression)
}

func TestPlainJSONServer(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Content-Encoding"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"body":{"diagnostics":{"trend0":1,"trend1":-1,"distance":0.5},"vector":[1,-1,0.5]}}`))
	}))
	defer ts.Close()

	client, err := NewClient(&ClientConfig{BaseURL: ts.URL})
	require.NoError(t, err)
	defer client.Close()

	resp, err := client.Diagnostics(context.Background(), api.DiagnosticsRequest{Err0: []float64{0, 1}, Err1: []float64{1, 0}})
	require.NoError(t, err)
	assert.Equal(t, fare.Diagnostics{Trend0: 1, Trend1: -1, Distance: 0.5}, resp.Diagnostics)
}

func TestNonJSONError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadRequest)
	}))
	defer ts.Close()

	client, err := NewClient(&ClientConfig{BaseURL: ts.URL})
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Health(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP error 400")
}

func TestRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"body":{},"error":"boom"}`))
	}))
	defer ts.Close()

	client, err := NewClient(&ClientConfig{
		BaseURL:      ts.URL,
		RetryMax:     2,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: 2 * time.Millisecond,
	})
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Score(context.Background(), api.ScoreRequest{})
	var se *ServerError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
	assert.Equal(t, "boom", se.Message)
	assert.False(t, IsBadRequest(err))
	assert.EqualValues(t, 3, hits.Load())
}
