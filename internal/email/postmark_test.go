package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := New("server-token", "reports@catchup.test")
	c.endpoint = srv.URL
	return c
}

func TestReportAlerter_SendsPostmarkRequest(t *testing.T) {
	var got postmarkRequest
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "server-token", r.Header.Get("X-Postmark-Server-Token"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"ErrorCode":0,"Message":"OK","MessageID":"abc"}`))
	})

	answerID, reporterID := uuid.New(), uuid.New()
	err := NewReportAlerter(c, "mod@catchup.test").AnswerReported(context.Background(), answerID, reporterID)
	require.NoError(t, err)

	assert.Equal(t, "reports@catchup.test", got.From)
	assert.Equal(t, "mod@catchup.test", got.To)
	assert.Contains(t, got.HtmlBody, answerID.String())
	assert.Contains(t, got.TextBody, reporterID.String())
}

func TestSend_PostmarkError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"ErrorCode":300,"Message":"Invalid email request"}`))
	})

	err := c.Send(context.Background(), "x@catchup.test", "s", "<p>h</p>", "t")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postmark error 300")
}

func TestSend_MissingToken(t *testing.T) {
	err := New("", "from@catchup.test").Send(context.Background(), "x@catchup.test", "s", "", "t")
	assert.Error(t, err)
}
