package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	mockmatrix "github.com/Oslicek/Sazinka-sub005/matrix/mock"
	"github.com/Oslicek/Sazinka-sub005/planning"
	"github.com/Oslicek/Sazinka-sub005/schedule"
	"github.com/Oslicek/Sazinka-sub005/util"
)

// failingProvider simulates a matrix service outage.
type failingProvider struct{}

func (failingProvider) Matrix(context.Context, []planning.Location, []planning.Location) ([][]planning.Leg, error) {
	return nil, fmt.Errorf("matrix service down")
}

func testWorkday() planning.Workday {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	return planning.Workday{
		Start: day.Add(8 * time.Hour),
		End:   day.Add(18 * time.Hour),
	}
}

func TestCalculateInsertionAPI(t *testing.T) {
	workday := testWorkday()
	depot := planning.Location{Lat: 49.2, Lng: 16.6}
	candidate := planning.Candidate{ID: 7, Location: planning.Location{Lat: 49.3, Lng: 16.7}}

	testCases := []struct {
		name          string
		body          calculateInsertionRequest
		provider      planning.MatrixProvider
		checkResponse func(t *testing.T, recorder *httptest.ResponseRecorder)
	}{
		{
			name: "OK_EmptyRoute",
			body: calculateInsertionRequest{
				Depot:     depot,
				Candidate: candidate,
				Workday:   workday,
			},
			provider: constantLegProvider{km: 10, min: 10},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)

				var result planning.InsertionResult
				require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
				require.Equal(t, int64(7), result.CandidateID)
				require.True(t, result.IsFeasible)
				require.NotNil(t, result.BestPosition)
				require.Equal(t, -1, result.BestPosition.InsertAfterIndex)
				// 10 min travel padded by 10% + 5 min, plus the 60 min
				// default service duration.
				require.InDelta(t, 76, result.BestPosition.DeltaMin, 1e-9)
				require.InDelta(t, 10, result.BestPosition.DeltaKm, 1e-9)
				require.Equal(t, workday.Start.Add(16*time.Minute), result.BestPosition.EstimatedArrival.UTC())
			},
		},
		{
			name: "MissingWorkday",
			body: calculateInsertionRequest{
				Depot:     depot,
				Candidate: candidate,
			},
			provider: constantLegProvider{km: 10, min: 10},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name: "InvalidDepotCoordinates",
			body: calculateInsertionRequest{
				Depot:     planning.Location{Lat: 95, Lng: 16.6},
				Candidate: candidate,
				Workday:   workday,
			},
			provider: constantLegProvider{km: 10, min: 10},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name: "WorkdayEndBeforeStart",
			body: calculateInsertionRequest{
				Depot:     depot,
				Candidate: candidate,
				Workday:   planning.Workday{Start: workday.End, End: workday.Start},
			},
			provider: constantLegProvider{km: 10, min: 10},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name: "MatrixOutageIsNotAnError",
			body: calculateInsertionRequest{
				Depot:     depot,
				Candidate: candidate,
				Workday:   workday,
			},
			provider: failingProvider{},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)

				var result planning.InsertionResult
				require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
				require.False(t, result.IsFeasible)
				require.Equal(t, planning.ReasonMatrixUnavailable, result.InfeasibleReason)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			server := newTestServer(t, schedule.NewMemStore(), tc.provider)
			recorder := httptest.NewRecorder()

			body, err := json.Marshal(tc.body)
			require.NoError(t, err)

			request, err := http.NewRequest(http.MethodPost, "/v1/insertions/calculate", bytes.NewReader(body))
			require.NoError(t, err)

			server.router.ServeHTTP(recorder, request)
			tc.checkResponse(t, recorder)
		})
	}
}

func TestCalculateInsertionAPIDefaultWorkday(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	depot := planning.Location{Lat: 49.2, Lng: 16.6}
	candidate := planning.Candidate{ID: 7, Location: planning.Location{Lat: 49.3, Lng: 16.7}}

	config := util.Config{
		Environment:        "test",
		MatrixRetryMax:     1,
		MatrixRetryBackoff: time.Millisecond,
		WorkdayStart:       "08:00",
		WorkdayEnd:         "17:00",
	}

	testCases := []struct {
		name          string
		body          calculateInsertionRequest
		checkResponse func(t *testing.T, recorder *httptest.ResponseRecorder)
	}{
		{
			name: "ConfigDefaultApplies",
			body: calculateInsertionRequest{
				Route:     planning.Route{Date: day},
				Depot:     depot,
				Candidate: candidate,
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)

				var result planning.InsertionResult
				require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
				require.True(t, result.IsFeasible)
				require.NotNil(t, result.BestPosition)
				// the configured 08:00 start plus the 16 min padded leg
				require.Equal(t, day.Add(8*time.Hour+16*time.Minute), result.BestPosition.EstimatedArrival.UTC())
				require.InDelta(t, 76, result.BestPosition.DeltaMin, 1e-9)
			},
		},
		{
			name: "RequestBoundsOverrideConfig",
			body: calculateInsertionRequest{
				Route:        planning.Route{Date: day},
				Depot:        depot,
				Candidate:    candidate,
				WorkdayStart: "09:00",
				WorkdayEnd:   "12:00",
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)

				var result planning.InsertionResult
				require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
				require.True(t, result.IsFeasible)
				require.NotNil(t, result.BestPosition)
				require.Equal(t, day.Add(9*time.Hour+16*time.Minute), result.BestPosition.EstimatedArrival.UTC())
			},
		},
		{
			name: "ExplicitWorkdayStillWins",
			body: calculateInsertionRequest{
				Route:     planning.Route{Date: day},
				Depot:     depot,
				Candidate: candidate,
				Workday:   testWorkday(),
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)

				var result planning.InsertionResult
				require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
				require.Equal(t, testWorkday().Start.Add(16*time.Minute), result.BestPosition.EstimatedArrival.UTC())
			},
		},
		{
			name: "MalformedBoundRejected",
			body: calculateInsertionRequest{
				Route:        planning.Route{Date: day},
				Depot:        depot,
				Candidate:    candidate,
				WorkdayStart: "8am",
				WorkdayEnd:   "17:00",
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name: "HalfOpenWorkdayObjectRejected",
			body: calculateInsertionRequest{
				Route:     planning.Route{Date: day},
				Depot:     depot,
				Candidate: candidate,
				Workday:   planning.Workday{Start: testWorkday().Start},
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			server := newTestServerWithConfig(t, config, schedule.NewMemStore(), constantLegProvider{km: 10, min: 10})
			recorder := httptest.NewRecorder()

			body, err := json.Marshal(tc.body)
			require.NoError(t, err)

			request, err := http.NewRequest(http.MethodPost, "/v1/insertions/calculate", bytes.NewReader(body))
			require.NoError(t, err)

			server.router.ServeHTTP(recorder, request)
			tc.checkResponse(t, recorder)
		})
	}
}

func TestCalculateBatchAPIDefaultWorkday(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	config := util.Config{
		Environment:        "test",
		MatrixRetryMax:     1,
		MatrixRetryBackoff: time.Millisecond,
		WorkdayStart:       "08:00",
		WorkdayEnd:         "17:00",
	}
	server := newTestServerWithConfig(t, config, schedule.NewMemStore(), constantLegProvider{km: 10, min: 10})
	recorder := httptest.NewRecorder()

	body, err := json.Marshal(calculateBatchRequest{
		Route:      planning.Route{Date: day},
		Depot:      planning.Location{Lat: 49.2, Lng: 16.6},
		Candidates: []planning.Candidate{{ID: 1, Location: planning.Location{Lat: 49.3, Lng: 16.7}}},
	})
	require.NoError(t, err)

	request, err := http.NewRequest(http.MethodPost, "/v1/insertions/batch", bytes.NewReader(body))
	require.NoError(t, err)

	server.router.ServeHTTP(recorder, request)
	require.Equal(t, http.StatusOK, recorder.Code)

	var result planning.BatchResult
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
	require.Len(t, result.Results, 1)
	require.True(t, result.Results[0].IsFeasible)
}

func TestNewServerRejectsMalformedDefaultWorkday(t *testing.T) {
	config := util.Config{
		Environment:  "test",
		WorkdayStart: "25:00",
		WorkdayEnd:   "17:00",
	}

	_, err := NewServer(config, schedule.NewMemStore(), constantLegProvider{km: 10, min: 10}, nil)
	require.Error(t, err)
}

func TestCalculateInsertionAPIQueryShape(t *testing.T) {
	workday := testWorkday()
	depot := planning.Location{Lat: 49.2, Lng: 16.6}
	candidate := planning.Candidate{ID: 7, Location: planning.Location{Lat: 49.3, Lng: 16.7}}

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// an empty open-ended route needs a single column query: depot to
	// candidate, no successors to price
	provider := mockmatrix.NewMockMatrixProvider(ctrl)
	provider.EXPECT().
		Matrix(gomock.Any(), gomock.Len(1), gomock.Len(1)).
		Times(1).
		Return([][]planning.Leg{{{DistanceKm: 10, DurationMin: 10}}}, nil)

	server := newTestServer(t, schedule.NewMemStore(), provider)
	recorder := httptest.NewRecorder()

	body, err := json.Marshal(calculateInsertionRequest{
		Depot:     depot,
		Candidate: candidate,
		Workday:   workday,
	})
	require.NoError(t, err)

	request, err := http.NewRequest(http.MethodPost, "/v1/insertions/calculate", bytes.NewReader(body))
	require.NoError(t, err)

	server.router.ServeHTTP(recorder, request)
	require.Equal(t, http.StatusOK, recorder.Code)
}

func TestCalculateBatchInsertionAPI(t *testing.T) {
	workday := testWorkday()
	depot := planning.Location{Lat: 49.2, Lng: 16.6}

	makeCandidates := func(n int) []planning.Candidate {
		out := make([]planning.Candidate, n)
		for i := range out {
			out[i] = planning.Candidate{ID: int64(i + 1), Location: planning.Location{Lat: 49.3, Lng: 16.7}}
		}
		return out
	}

	testCases := []struct {
		name          string
		body          calculateBatchRequest
		checkResponse func(t *testing.T, recorder *httptest.ResponseRecorder)
	}{
		{
			name: "OK",
			body: calculateBatchRequest{
				Depot:      depot,
				Candidates: makeCandidates(3),
				Workday:    workday,
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)

				var result planning.BatchResult
				require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
				require.Len(t, result.Results, 3)
				for _, item := range result.Results {
					require.True(t, item.IsFeasible)
					require.Equal(t, -1, item.BestInsertAfterIndex)
				}
			},
		},
		{
			name: "NoCandidates",
			body: calculateBatchRequest{
				Depot:   depot,
				Workday: workday,
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name: "TooManyCandidates",
			body: calculateBatchRequest{
				Depot:      depot,
				Candidates: makeCandidates(maxBatchCandidates + 1),
				Workday:    workday,
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name: "InvalidCandidateCoordinates",
			body: calculateBatchRequest{
				Depot:      depot,
				Candidates: []planning.Candidate{{ID: 1, Location: planning.Location{Lat: 49.3, Lng: 200}}},
				Workday:    workday,
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			server := newTestServer(t, schedule.NewMemStore(), constantLegProvider{km: 10, min: 10})
			recorder := httptest.NewRecorder()

			body, err := json.Marshal(tc.body)
			require.NoError(t, err)

			request, err := http.NewRequest(http.MethodPost, "/v1/insertions/batch", bytes.NewReader(body))
			require.NoError(t, err)

			server.router.ServeHTTP(recorder, request)
			tc.checkResponse(t, recorder)
		})
	}
}
