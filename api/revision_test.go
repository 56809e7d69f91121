package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Oslicek/Sazinka-sub005/revision"
	"github.com/Oslicek/Sazinka-sub005/schedule"
)

func TestEvaluateRevisionAPI(t *testing.T) {
	testCases := []struct {
		name          string
		body          evaluateRevisionRequest
		checkResponse func(t *testing.T, recorder *httptest.ResponseRecorder)
	}{
		{
			name: "Overdue",
			body: evaluateRevisionRequest{
				DeviceID:       21,
				IntervalMonths: 12,
				LastCompleted:  "2024-01-15",
				Today:          "2026-02-05",
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)

				var resp evaluateRevisionResponse
				require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
				require.True(t, resp.IsOverdue)
				require.Equal(t, 386, resp.OverdueDays)
				require.NotNil(t, resp.NextDueDate)
				require.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), resp.NextDueDate.UTC())
				require.Equal(t, revision.PriorityOverdue, resp.Priority)
				require.Equal(t, "1 years, 21 days", resp.OverdueLabel)
			},
		},
		{
			name: "DueSoon",
			body: evaluateRevisionRequest{
				DeviceID:       21,
				IntervalMonths: 12,
				LastCompleted:  "2025-03-10",
				Today:          "2026-03-02",
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)

				var resp evaluateRevisionResponse
				require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
				require.False(t, resp.IsOverdue)
				require.Empty(t, resp.OverdueLabel)
				require.Equal(t, revision.PriorityDueSoon, resp.Priority)
			},
		},
		{
			name: "NeverServicedWithInstallation",
			body: evaluateRevisionRequest{
				DeviceID:       21,
				IntervalMonths: 12,
				InstalledAt:    "2024-06-01",
				Today:          "2026-03-02",
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)

				var resp evaluateRevisionResponse
				require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
				require.True(t, resp.NeverServiced)
				require.True(t, resp.IsOverdue)
				require.True(t, resp.OverdueFromInstallation)
			},
		},
		{
			name: "MissingInterval",
			body: evaluateRevisionRequest{
				DeviceID:      21,
				LastCompleted: "2024-01-15",
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name: "NegativeInterval",
			body: evaluateRevisionRequest{
				DeviceID:       21,
				IntervalMonths: -6,
				LastCompleted:  "2024-01-15",
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name: "MalformedDate",
			body: evaluateRevisionRequest{
				DeviceID:       21,
				IntervalMonths: 12,
				LastCompleted:  "Jan 15 2024",
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
			recorder := postJSON(t, server, "/v1/revisions/evaluate", tc.body)
			tc.checkResponse(t, recorder)
		})
	}
}
