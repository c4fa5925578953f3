package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"yideng/ledger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var student = ledger.MustAddress("0x70997970c51812dc3a010c7d01b50e0d17dc79c8")

func TestCompletionOracleClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		switch q.Get("courseId") {
		case "COURSE-001":
			assert.Equal(t, student.String(), q.Get("address"))
			w.Write([]byte(`{"completed": true}`))
		case "COURSE-002":
			w.Write([]byte(`{"completed": false}`))
		case "COURSE-404":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error": "unknown course"}`))
		}
	}))
	defer srv.Close()

	oracle := NewCompletionOracleClient(srv.URL)
	ctx := context.Background()

	done, err := oracle.Completed(ctx, student, "COURSE-001")
	require.NoError(t, err)
	assert.True(t, done)

	done, err = oracle.Completed(ctx, student, "COURSE-002")
	require.NoError(t, err)
	assert.False(t, done)

	done, err = oracle.Completed(ctx, student, "COURSE-404")
	require.NoError(t, err, "404 means not completed")
	assert.False(t, done)

	_, err = oracle.Completed(ctx, student, "COURSE-XXX")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestCompletionOracleClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	oracle := NewCompletionOracleClient(url)
	oracle.client.SetRetryCount(0)

	_, err := oracle.Completed(context.Background(), student, "COURSE-001")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "call completion oracle")
}
