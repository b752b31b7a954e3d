package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zanex/poker-planning/internal/config"
	"github.com/Zanex/poker-planning/internal/domain"
	"github.com/Zanex/poker-planning/internal/room"
)

type nopRecorder struct{}

func (nopRecorder) CreateSession(context.Context, uuid.UUID, string, time.Time) error {
	return nil
}

func (nopRecorder) SaveRound(context.Context, uuid.UUID, int, time.Time, domain.Stats, []domain.VoteRecord) error {
	return nil
}

type fakeHistoryReader struct {
	history []domain.SessionHistory
	err     error
}

func (f *fakeHistoryReader) RoomHistory(context.Context, string) ([]domain.SessionHistory, error) {
	return f.history, f.err
}

type fakePinger struct{ err error }

func (f *fakePinger) Ping(context.Context) error { return f.err }

func testConfig() *config.Config {
	return &config.Config{
		Port:                    "0",
		MaxClientsPerRoom:       50,
		MaxWebSocketConnections: 1000,
		MaxConnectionsPerIP:     100,
		ConnectionRatePerIP:     1000,
		ConnectionBurstPerIP:    1000,
	}
}

func newTestServer(t *testing.T, history domain.HistoryReader, db postgresHealthChecker) (*Server, *httptest.Server) {
	t.Helper()
	rooms := room.NewManager(nopRecorder{}, clockwork.NewRealClock(), 50)
	t.Cleanup(rooms.Stop)

	srv := NewServer(testConfig(), rooms, history, db)
	ts := httptest.NewServer(srv.echo)
	t.Cleanup(ts.Close)
	return srv, ts
}

func sampleHistory() []domain.SessionHistory {
	sessionID := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return []domain.SessionHistory{
		{
			ID:        sessionID,
			CreatedAt: created,
			Rounds: []domain.RoundHistory{
				{
					RoundNumber: 1,
					RevealedAt:  created.Add(5 * time.Minute),
					Average:     6.5,
					Median:      6.5,
					Votes: []domain.HistoryVote{
						{UserName: "Alice", Vote: "5"},
						{UserName: "Bob", Vote: "8"},
					},
				},
				{
					RoundNumber: 2,
					RevealedAt:  created.Add(10 * time.Minute),
					Average:     3,
					Median:      3,
					Votes: []domain.HistoryVote{
						{UserName: "Alice", Vote: "3"},
					},
				},
			},
		},
	}
}

func TestHandleHistory(t *testing.T) {
	_, ts := newTestServer(t, &fakeHistoryReader{history: sampleHistory()}, &fakePinger{})

	resp, err := http.Get(ts.URL + "/api/history/sprint-42")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")

	var got []domain.SessionHistory
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, sampleHistory(), got)
}

func TestHandleHistory_ReaderError(t *testing.T) {
	_, ts := newTestServer(t, &fakeHistoryReader{err: errors.New("connection refused")}, &fakePinger{})

	resp, err := http.Get(ts.URL + "/api/history/sprint-42")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestHandleExportCSV(t *testing.T) {
	_, ts := newTestServer(t, &fakeHistoryReader{history: sampleHistory()}, &fakePinger{})

	resp, err := http.Get(ts.URL + "/api/export/sprint-42")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
	assert.Equal(t, `attachment; filename="poker-planning-sprint-42.csv"`, resp.Header.Get("Content-Disposition"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Timestamp,Session,Round,User,Vote,Average,Median", lines[0])
	assert.Equal(t, "2025-03-01T10:05:00Z,11111111-2222-3333-4444-555555555555,1,Alice,5,6.5,6.5", lines[1])
	assert.Equal(t, "2025-03-01T10:05:00Z,11111111-2222-3333-4444-555555555555,1,Bob,8,6.5,6.5", lines[2])
	assert.Equal(t, "2025-03-01T10:10:00Z,11111111-2222-3333-4444-555555555555,2,Alice,3,3,3", lines[3])
}

func TestHandleExportCSV_EmptyHistory(t *testing.T) {
	_, ts := newTestServer(t, &fakeHistoryReader{}, &fakePinger{})

	resp, err := http.Get(ts.URL + "/api/export/sprint-42")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Timestamp,Session,Round,User,Vote,Average,Median\n", string(body))
}

func TestHandleLiveness(t *testing.T) {
	_, ts := newTestServer(t, &fakeHistoryReader{}, &fakePinger{})

	resp, err := http.Get(ts.URL + "/health/live")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestHandleReadiness(t *testing.T) {
	_, ts := newTestServer(t, &fakeHistoryReader{}, &fakePinger{})

	resp, err := http.Get(ts.URL + "/health/ready")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHandleReadiness_DatabaseDown(t *testing.T) {
	_, ts := newTestServer(t, &fakeHistoryReader{}, &fakePinger{err: errors.New("dial tcp: connection refused")})

	resp, err := http.Get(ts.URL + "/health/ready")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "unhealthy", body["status"])
	assert.Equal(t, "postgres", body["failed_check"])
}
