package replication

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutordesk/local-engine/model"
)

func testRecords(n int) []*model.SyncRecord {
	records := make([]*model.SyncRecord, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, &model.SyncRecord{
			RecordID:  fmt.Sprintf("00000000-0000-0000-0000-%012d", i),
			Event:     model.SyncEventCreate,
			Content:   []byte(`{"type":"user","data":{}}`),
			CreatedAt: int64(i + 1),
		})
	}
	return records
}

func Test_PushBatch(t *testing.T) {
	var gotPath, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, `{"accepted": 3}`)
	}))
	defer server.Close()

	client := NewHTTPCentralClient(HTTPCentralClientConfig{
		BaseURL:  server.URL,
		APIToken: "token",
	})

	err := client.PushBatch(context.Background(), testRecords(3))
	require.NoError(t, err)
	assert.Equal(t, "/v1/sync", gotPath)
	assert.Equal(t, "Bearer token", gotAuth)
}

func Test_PushBatchRejectsPartialAcknowledgement(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"accepted": 2}`)
	}))
	defer server.Close()

	client := NewHTTPCentralClient(HTTPCentralClientConfig{BaseURL: server.URL})

	err := client.PushBatch(context.Background(), testRecords(3))
	assert.Error(t, err)
}

func Test_PushBatchSignsBody(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	var body []byte
	var signature string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = ioutil.ReadAll(r.Body)
		signature = r.Header.Get("X-Batch-Signature")
		fmt.Fprint(w, `{"accepted": 1}`)
	}))
	defer server.Close()

	client := NewHTTPCentralClient(HTTPCentralClientConfig{
		BaseURL: server.URL,
		SignKey: key,
	})

	require.NoError(t, client.PushBatch(context.Background(), testRecords(1)))
	require.NotEmpty(t, signature)

	sign, err := base64.StdEncoding.DecodeString(signature)
	require.NoError(t, err)
	hash := sha256.Sum256(body)
	assert.NoError(t, rsa.VerifyPKCS1v15(&key.PublicKey, crypto.SHA256, hash[:], sign))
}
