package notes_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/sagarc03/notes"
	"github.com/sagarc03/notes/keybackend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAccessKey = "AKIATEST"
	testSecretKey = "testsecret"
	testRegion    = "us-east-1"
	testService   = "execute-api"
)

func newTestVerifier() *notes.SignatureVerifier {
	store := keybackend.NewMapCredentialStore(map[string]notes.Credential{
		testAccessKey: {SecretKey: testSecretKey, OwnerID: "alice"},
		"AKIANOOWNER":  {SecretKey: "othersecret"},
	})
	return notes.NewSignatureVerifier(notes.AuthConfig{Region: testRegion, Service: testService}, store)
}

func testCredentials(accessKey, secretKey string) aws.Credentials {
	return aws.Credentials{AccessKeyID: accessKey, SecretAccessKey: secretKey}
}

func presign(t *testing.T, method, target, accessKey, secretKey string, expires time.Duration) *http.Request {
	t.Helper()

	req := httptest.NewRequest(method, target, nil)
	q := req.URL.Query()
	q.Set("X-Amz-Expires", fmt.Sprintf("%d", int(expires.Seconds())))
	req.URL.RawQuery = q.Encode()

	signedURI, _, err := v4.NewSigner().PresignHTTP(
		context.Background(),
		testCredentials(accessKey, secretKey),
		req,
		notes.UnsignedPayload,
		testService,
		testRegion,
		time.Now().UTC(),
	)
	require.NoError(t, err)

	return httptest.NewRequest(method, signedURI, nil)
}

func signHeaders(t *testing.T, method, target, body string) *http.Request {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	sum := sha256.Sum256([]byte(body))
	err := v4.NewSigner().SignHTTP(
		context.Background(),
		testCredentials(testAccessKey, testSecretKey),
		req,
		hex.EncodeToString(sum[:]),
		testService,
		testRegion,
		time.Now().UTC(),
	)
	require.NoError(t, err)

	return req
}

func TestSignatureVerifier_Resolve_Presigned(t *testing.T) {
	verifier := newTestVerifier()

	req := presign(t, http.MethodGet, "http://localhost:5708/notes", testAccessKey, testSecretKey, time.Hour)

	ownerID, err := verifier.Resolve(req)

	require.NoError(t, err)
	assert.Equal(t, "alice", ownerID)
}

func TestSignatureVerifier_Resolve_PresignedWithPathParam(t *testing.T) {
	verifier := newTestVerifier()

	req := presign(t, http.MethodDelete, "http://localhost:5708/notes/0190a6f2-0000-7000-8000-000000000001", testAccessKey, testSecretKey, 5*time.Minute)

	ownerID, err := verifier.Resolve(req)

	require.NoError(t, err)
	assert.Equal(t, "alice", ownerID)
}

func TestSignatureVerifier_Resolve_OwnerDefaultsToAccessKey(t *testing.T) {
	verifier := newTestVerifier()

	req := presign(t, http.MethodGet, "http://localhost:5708/notes", "AKIANOOWNER", "othersecret", time.Hour)

	ownerID, err := verifier.Resolve(req)

	require.NoError(t, err)
	assert.Equal(t, "AKIANOOWNER", ownerID)
}

func TestSignatureVerifier_Resolve_WrongSecret(t *testing.T) {
	verifier := newTestVerifier()

	req := presign(t, http.MethodGet, "http://localhost:5708/notes", testAccessKey, "wrongsecret", time.Hour)

	_, err := verifier.Resolve(req)

	require.Error(t, err)
	assert.ErrorIs(t, err, notes.ErrUnauthenticated)
	assert.Contains(t, err.Error(), "signature mismatch")
}

func TestSignatureVerifier_Resolve_TamperedPath(t *testing.T) {
	verifier := newTestVerifier()

	signed := presign(t, http.MethodGet, "http://localhost:5708/notes/a", testAccessKey, testSecretKey, time.Hour)
	req := httptest.NewRequest(http.MethodGet, "http://localhost:5708/notes/b?"+signed.URL.RawQuery, nil)

	_, err := verifier.Resolve(req)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "signature mismatch")
}

func TestSignatureVerifier_Resolve_HeaderForm(t *testing.T) {
	verifier := newTestVerifier()

	tests := []struct {
		name   string
		method string
		target string
		body   string
	}{
		{name: "list", method: http.MethodGet, target: "http://localhost:5708/notes"},
		{name: "create", method: http.MethodPost, target: "http://localhost:5708/notes", body: `{"content":"hello"}`},
		{name: "update", method: http.MethodPut, target: "http://localhost:5708/notes/n1", body: `{"content":"bye","attachment":"a.png"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := signHeaders(t, tt.method, tt.target, tt.body)

			ownerID, err := verifier.Resolve(req)

			require.NoError(t, err)
			assert.Equal(t, "alice", ownerID)
		})
	}
}

func TestSignatureVerifier_Resolve_HeaderForm_RestoresBody(t *testing.T) {
	verifier := newTestVerifier()
	body := `{"content":"hello"}`

	req := signHeaders(t, http.MethodPost, "http://localhost:5708/notes", body)

	_, err := verifier.Resolve(req)
	require.NoError(t, err)

	restored, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.Equal(t, body, string(restored))
}

func TestSignatureVerifier_Resolve_HeaderForm_TamperedBody(t *testing.T) {
	verifier := newTestVerifier()

	req := signHeaders(t, http.MethodPost, "http://localhost:5708/notes", `{"content":"hello"}`)
	tampered := httptest.NewRequest(http.MethodPost, "http://localhost:5708/notes", strings.NewReader(`{"content":"hellO"}`))
	tampered.Header = req.Header.Clone()

	_, err := verifier.Resolve(tampered)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "signature mismatch")
}

func TestSignatureVerifier_Resolve_HeaderForm_ContentHashMustMatchBody(t *testing.T) {
	verifier := newTestVerifier()
	original := `{"content":"hello"}`

	signed := signHeaders(t, http.MethodPut, "http://localhost:5708/notes/n1", original)
	sum := sha256.Sum256([]byte(original))

	swapped := httptest.NewRequest(http.MethodPut, "http://localhost:5708/notes/n1", strings.NewReader(`{"content":"EVIL!"}`))
	swapped.Header = signed.Header.Clone()
	swapped.Header.Set("X-Amz-Content-Sha256", hex.EncodeToString(sum[:]))

	_, err := verifier.Resolve(swapped)

	require.Error(t, err)
	assert.ErrorIs(t, err, notes.ErrUnauthenticated)
	assert.Contains(t, err.Error(), "payload hash mismatch")
}

func signWithContentHash(t *testing.T, body, contentHash string) *http.Request {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "http://localhost:5708/notes", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Amz-Content-Sha256", contentHash)

	err := v4.NewSigner().SignHTTP(
		context.Background(),
		testCredentials(testAccessKey, testSecretKey),
		req,
		contentHash,
		testService,
		testRegion,
		time.Now().UTC(),
	)
	require.NoError(t, err)

	return req
}

func TestSignatureVerifier_Resolve_HeaderForm_ContentHashHeader(t *testing.T) {
	verifier := newTestVerifier()
	body := `{"content":"hello"}`

	t.Run("matching hash", func(t *testing.T) {
		sum := sha256.Sum256([]byte(body))
		req := signWithContentHash(t, body, hex.EncodeToString(sum[:]))

		ownerID, err := verifier.Resolve(req)

		require.NoError(t, err)
		assert.Equal(t, "alice", ownerID)
	})

	t.Run("unsigned payload", func(t *testing.T) {
		req := signWithContentHash(t, body, notes.UnsignedPayload)

		_, err := verifier.Resolve(req)

		require.Error(t, err)
		assert.ErrorIs(t, err, notes.ErrUnauthenticated)
		assert.Contains(t, err.Error(), "unsigned payload not accepted")
	})
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func TestSignatureVerifier_Resolve_BodyLimit(t *testing.T) {
	store := keybackend.NewMapCredentialStore(map[string]notes.Credential{
		testAccessKey: {SecretKey: testSecretKey, OwnerID: "alice"},
	})
	verifier := notes.NewSignatureVerifier(notes.AuthConfig{
		Region:       testRegion,
		Service:      testService,
		MaxBodyBytes: 64,
	}, store)

	t.Run("oversized body is rejected before verification", func(t *testing.T) {
		body := &countingReader{r: strings.NewReader(strings.Repeat("x", 1<<20))}
		req := httptest.NewRequest(http.MethodPost, "http://localhost:5708/notes", body)
		req.Header.Set("Authorization", "AWS4-HMAC-SHA256 Credential=AKIAUNKNOWN/20260101/us-east-1/execute-api/aws4_request, SignedHeaders=host, Signature=00")

		_, err := verifier.Resolve(req)

		require.Error(t, err)
		assert.ErrorIs(t, err, notes.ErrInvalidInput)
		assert.Contains(t, err.Error(), "Request body too large")
		assert.LessOrEqual(t, body.n, int64(64+512))
	})

	t.Run("body within limit", func(t *testing.T) {
		req := signHeaders(t, http.MethodPost, "http://localhost:5708/notes", `{"content":"hello"}`)

		ownerID, err := verifier.Resolve(req)

		require.NoError(t, err)
		assert.Equal(t, "alice", ownerID)
	})
}

func TestSignatureVerifier_Verify_HeaderErrors(t *testing.T) {
	verifier := newTestVerifier()

	now := time.Now().UTC()
	amzDate := now.Format(notes.DateTimeFormat)
	dateStamp := now.Format(notes.DateFormat)
	skewed := now.Add(-time.Hour)

	tests := []struct {
		name      string
		headers   http.Header
		wantError string
	}{
		{
			name:      "no authorization",
			headers:   http.Header{},
			wantError: "missing required signature parameters",
		},
		{
			name: "malformed authorization",
			headers: http.Header{
				"Authorization": []string{"AWS4-HMAC-SHA256"},
			},
			wantError: "invalid Authorization header format",
		},
		{
			name: "missing signature field",
			headers: http.Header{
				"Authorization": []string{fmt.Sprintf("AWS4-HMAC-SHA256 Credential=AKIATEST/%s/us-east-1/execute-api/aws4_request, SignedHeaders=host", dateStamp)},
				"X-Amz-Date":    []string{amzDate},
			},
			wantError: "missing required signature parameters",
		},
		{
			name: "missing date",
			headers: http.Header{
				"Authorization": []string{fmt.Sprintf("AWS4-HMAC-SHA256 Credential=AKIATEST/%s/us-east-1/execute-api/aws4_request, SignedHeaders=host, Signature=abc", dateStamp)},
			},
			wantError: "missing X-Amz-Date header",
		},
		{
			name: "clock skew",
			headers: http.Header{
				"Authorization": []string{fmt.Sprintf("AWS4-HMAC-SHA256 Credential=AKIATEST/%s/us-east-1/execute-api/aws4_request, SignedHeaders=host, Signature=abc", skewed.Format(notes.DateFormat))},
				"X-Amz-Date":    []string{skewed.Format(notes.DateTimeFormat)},
			},
			wantError: "request time too skewed",
		},
		{
			name: "wrong algorithm",
			headers: http.Header{
				"Authorization": []string{fmt.Sprintf("AWS4-HMAC-SHA1 Credential=AKIATEST/%s/us-east-1/execute-api/aws4_request, SignedHeaders=host, Signature=abc", dateStamp)},
				"X-Amz-Date":    []string{amzDate},
			},
			wantError: "invalid algorithm",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.headers.Set("Host", "localhost:5708")

			_, err := verifier.Verify(http.MethodGet, "/notes", url.Values{}, tt.headers, nil)

			require.Error(t, err)
			assert.Equal(t, notes.KindAuthentication, notes.KindOf(err))
			assert.Contains(t, err.Error(), tt.wantError)
		})
	}
}

func TestSignatureVerifier_Verify_QueryErrors(t *testing.T) {
	verifier := newTestVerifier()

	validTime := time.Now().UTC().Add(-30 * time.Minute)
	validDateStamp := validTime.Format(notes.DateFormat)
	validAmzDate := validTime.Format(notes.DateTimeFormat)

	oldTime := time.Now().UTC().Add(-2 * time.Hour)
	oldDateStamp := oldTime.Format(notes.DateFormat)
	oldAmzDate := oldTime.Format(notes.DateTimeFormat)

	query := func(credential, date, expires string) url.Values {
		return url.Values{
			"X-Amz-Algorithm":     []string{"AWS4-HMAC-SHA256"},
			"X-Amz-Credential":    []string{credential},
			"X-Amz-Date":          []string{date},
			"X-Amz-Expires":       []string{expires},
			"X-Amz-SignedHeaders": []string{"host"},
			"X-Amz-Signature":     []string{"abc123"},
		}
	}
	scope := func(key, date, region, service string) string {
		return fmt.Sprintf("%s/%s/%s/%s/aws4_request", key, date, region, service)
	}

	tests := []struct {
		name      string
		query     url.Values
		wantError string
	}{
		{
			name: "missing algorithm",
			query: url.Values{
				"X-Amz-Credential":    []string{scope("AKIATEST", validDateStamp, testRegion, testService)},
				"X-Amz-Date":          []string{validAmzDate},
				"X-Amz-Expires":       []string{"3600"},
				"X-Amz-SignedHeaders": []string{"host"},
				"X-Amz-Signature":     []string{"abc123"},
			},
			wantError: "missing required signature parameters",
		},
		{
			name:      "invalid date format",
			query:     query(scope("AKIATEST", validDateStamp, testRegion, testService), "invalid-date", "3600"),
			wantError: "invalid X-Amz-Date format",
		},
		{
			name:      "expires zero",
			query:     query(scope("AKIATEST", validDateStamp, testRegion, testService), validAmzDate, "0"),
			wantError: "invalid X-Amz-Expires",
		},
		{
			name:      "expires too large",
			query:     query(scope("AKIATEST", validDateStamp, testRegion, testService), validAmzDate, "604801"),
			wantError: "invalid X-Amz-Expires",
		},
		{
			name:      "expired signature",
			query:     query(scope("AKIATEST", oldDateStamp, testRegion, testService), oldAmzDate, "3600"),
			wantError: "signature expired",
		},
		{
			name:      "invalid credential format",
			query:     query("AKIATEST/invalid", validAmzDate, "3600"),
			wantError: "invalid credential format",
		},
		{
			name:      "invalid terminator",
			query:     query(fmt.Sprintf("AKIATEST/%s/%s/%s/wrong", validDateStamp, testRegion, testService), validAmzDate, "3600"),
			wantError: "invalid credential terminator",
		},
		{
			name:      "credential date mismatch",
			query:     query(scope("AKIATEST", "20200101", testRegion, testService), validAmzDate, "3600"),
			wantError: "credential date mismatch",
		},
		{
			name:      "region mismatch",
			query:     query(scope("AKIATEST", validDateStamp, "us-west-2", testService), validAmzDate, "3600"),
			wantError: "region mismatch",
		},
		{
			name:      "service mismatch",
			query:     query(scope("AKIATEST", validDateStamp, testRegion, "s3"), validAmzDate, "3600"),
			wantError: "service mismatch",
		},
		{
			name:      "unknown access key",
			query:     query(scope("WRONGKEY", validDateStamp, testRegion, testService), validAmzDate, "3600"),
			wantError: "invalid access key",
		},
		{
			name:      "signature mismatch",
			query:     query(scope("AKIATEST", validDateStamp, testRegion, testService), validAmzDate, "3600"),
			wantError: "signature mismatch",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := http.Header{"Host": []string{"localhost:5708"}}

			_, err := verifier.Verify(http.MethodGet, "/notes", tt.query, headers, nil)

			require.Error(t, err)
			assert.ErrorIs(t, err, notes.ErrUnauthenticated)
			assert.Contains(t, err.Error(), tt.wantError)
		})
	}
}

func TestNewSignatureVerifier(t *testing.T) {
	store := keybackend.NewMapCredentialStore(map[string]notes.Credential{
		"test": {SecretKey: "secret"},
	})

	verifier := notes.NewSignatureVerifier(notes.AuthConfig{Region: "eu-west-1", Service: "execute-api"}, store)
	assert.NotNil(t, verifier)
}
