package notes

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	SignatureAlgorithm = "AWS4-HMAC-SHA256"
	MaxExpiresSeconds  = 604800 // 7 days
	DateTimeFormat     = "20060102T150405Z"
	DateFormat         = "20060102"
	UnsignedPayload    = "UNSIGNED-PAYLOAD"

	DefaultClockSkew = 15 * time.Minute
)

// Credential is what an access key resolves to.
type Credential struct {
	SecretKey string
	OwnerID   string
}

// CredentialStore resolves access keys to credentials.
type CredentialStore interface {
	Lookup(accessKey string) (Credential, error)
}

// AuthConfig scopes the signatures a verifier accepts. MaxBodyBytes bounds
// the body Resolve reads to hash the payload; zero means no limit.
type AuthConfig struct {
	Region       string
	Service      string
	ClockSkew    time.Duration
	MaxBodyBytes int64
}

// SignatureVerifier authenticates AWS Signature V4 requests and resolves the
// signer to an owner id. Both presigned URLs and the Authorization header
// form are accepted.
type SignatureVerifier struct {
	cfg   AuthConfig
	store CredentialStore
	now   func() time.Time
}

// NewSignatureVerifier creates a verifier for the given region and service
// that looks up secret keys in store.
func NewSignatureVerifier(cfg AuthConfig, store CredentialStore) *SignatureVerifier {
	if cfg.ClockSkew <= 0 {
		cfg.ClockSkew = DefaultClockSkew
	}
	return &SignatureVerifier{cfg: cfg, store: store, now: time.Now}
}

// Resolve verifies r and returns the owner id of the signing credential.
// For the header form the request body is read to hash the payload and then
// restored.
func (v *SignatureVerifier) Resolve(r *http.Request) (string, error) {
	headers := r.Header.Clone()
	headers.Set("Host", r.Host)
	if r.ContentLength > 0 {
		headers.Set("Content-Length", strconv.FormatInt(r.ContentLength, 10))
	}

	var payload []byte
	if r.Body != nil && r.Header.Get("Authorization") != "" {
		body, err := v.readBody(r.Body)
		if err != nil {
			return "", err
		}
		_ = r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(body))
		payload = body
	}

	return v.Verify(r.Method, r.URL.EscapedPath(), r.URL.Query(), headers, payload)
}

func (v *SignatureVerifier) readBody(body io.Reader) ([]byte, error) {
	if v.cfg.MaxBodyBytes <= 0 {
		data, err := io.ReadAll(body)
		if err != nil {
			return nil, &Error{Kind: KindAuthentication, Msg: "read request body", Err: err}
		}
		return data, nil
	}

	data, err := io.ReadAll(io.LimitReader(body, v.cfg.MaxBodyBytes+1))
	if err != nil {
		return nil, &Error{Kind: KindAuthentication, Msg: "read request body", Err: err}
	}
	if int64(len(data)) > v.cfg.MaxBodyBytes {
		return nil, Invalid("Request body too large")
	}
	return data, nil
}

// Verify checks an AWS Signature V4 signature and returns the owner id of
// the credential that produced it.
//
// When query carries X-Amz-Signature the request is treated as a presigned
// URL with an unsigned payload. Otherwise the Authorization header is parsed
// and the payload hash is computed from payload. A client-supplied
// X-Amz-Content-Sha256 must equal that hash; UNSIGNED-PAYLOAD is rejected in
// the header form.
//
// Validations performed:
//  1. Presence of all required parameters
//  2. Correct algorithm (AWS4-HMAC-SHA256)
//  3. Valid timestamp format
//  4. Presigned: expiration within 1 second to 7 days and not yet passed;
//     header form: timestamp within the configured clock skew
//  5. Credential scope matches date, region and service
//  6. Access key exists in the credential store
//  7. Signature matches the calculated signature
func (v *SignatureVerifier) Verify(method, path string, query url.Values, headers http.Header, payload []byte) (string, error) {
	var (
		params *signatureParams
		err    error
	)
	if query.Get("X-Amz-Signature") != "" {
		params, err = v.extractQueryParams(query)
	} else {
		params, err = v.extractHeaderParams(headers, payload)
	}
	if err != nil {
		return "", err
	}

	if err := v.validateParams(params); err != nil {
		return "", err
	}

	cred, err := v.store.Lookup(params.accessKey)
	if err != nil {
		return "", &Error{Kind: KindAuthentication, Msg: "invalid access key", Err: err}
	}

	canonicalQuery := query
	if params.presigned {
		canonicalQuery = withoutSignature(query)
	}

	expectedSignature := calculateSignature(
		cred.SecretKey,
		method,
		path,
		canonicalQuery,
		headers,
		params,
	)

	if !hmac.Equal([]byte(expectedSignature), []byte(params.signature)) {
		return "", Unauthenticated("signature mismatch")
	}

	if cred.OwnerID == "" {
		return params.accessKey, nil
	}
	return cred.OwnerID, nil
}

type signatureParams struct {
	presigned     bool
	algorithm     string
	accessKey     string
	dateStamp     string
	region        string
	service       string
	requestTime   time.Time
	expires       int
	signedHeaders string
	signature     string
	payloadHash   string
}

func (v *SignatureVerifier) extractQueryParams(query url.Values) (*signatureParams, error) {
	amzAlgorithm := query.Get("X-Amz-Algorithm")
	amzCredential := query.Get("X-Amz-Credential")
	amzDate := query.Get("X-Amz-Date")
	amzExpires := query.Get("X-Amz-Expires")
	amzSignedHeaders := query.Get("X-Amz-SignedHeaders")
	amzSignature := query.Get("X-Amz-Signature")

	if amzAlgorithm == "" || amzCredential == "" || amzDate == "" ||
		amzExpires == "" || amzSignedHeaders == "" || amzSignature == "" {
		return nil, Unauthenticated("missing required signature parameters")
	}

	requestTime, err := time.Parse(DateTimeFormat, amzDate)
	if err != nil {
		return nil, Unauthenticated("invalid X-Amz-Date format")
	}

	expires, err := strconv.Atoi(amzExpires)
	if err != nil || expires <= 0 || expires > MaxExpiresSeconds {
		return nil, Unauthenticated(fmt.Sprintf("invalid X-Amz-Expires: must be between 1 and %d", MaxExpiresSeconds))
	}

	params := &signatureParams{
		presigned:     true,
		algorithm:     amzAlgorithm,
		requestTime:   requestTime,
		expires:       expires,
		signedHeaders: amzSignedHeaders,
		signature:     amzSignature,
		payloadHash:   UnsignedPayload,
	}
	if err := params.parseCredential(amzCredential); err != nil {
		return nil, err
	}

	return params, nil
}

func (v *SignatureVerifier) extractHeaderParams(headers http.Header, payload []byte) (*signatureParams, error) {
	auth := headers.Get("Authorization")
	if auth == "" {
		return nil, Unauthenticated("missing required signature parameters")
	}

	algorithm, rest, found := strings.Cut(auth, " ")
	if !found {
		return nil, Unauthenticated("invalid Authorization header format")
	}

	fields := make(map[string]string, 3)
	for _, part := range strings.Split(rest, ",") {
		k, val, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			return nil, Unauthenticated("invalid Authorization header format")
		}
		fields[k] = val
	}

	credential, signedHeaders, signature := fields["Credential"], fields["SignedHeaders"], fields["Signature"]
	if credential == "" || signedHeaders == "" || signature == "" {
		return nil, Unauthenticated("missing required signature parameters")
	}

	amzDate := headers.Get("X-Amz-Date")
	if amzDate == "" {
		return nil, Unauthenticated("missing X-Amz-Date header")
	}
	requestTime, err := time.Parse(DateTimeFormat, amzDate)
	if err != nil {
		return nil, Unauthenticated("invalid X-Amz-Date format")
	}

	payloadHash := sha256Hash(payload)
	switch claimed := headers.Get("X-Amz-Content-Sha256"); claimed {
	case "", payloadHash:
	case UnsignedPayload:
		return nil, Unauthenticated("unsigned payload not accepted")
	default:
		return nil, Unauthenticated("payload hash mismatch")
	}

	params := &signatureParams{
		algorithm:     algorithm,
		requestTime:   requestTime,
		signedHeaders: signedHeaders,
		signature:     signature,
		payloadHash:   payloadHash,
	}
	if err := params.parseCredential(credential); err != nil {
		return nil, err
	}

	return params, nil
}

func (p *signatureParams) parseCredential(credential string) error {
	credParts := strings.Split(credential, "/")
	if len(credParts) != 5 {
		return Unauthenticated("invalid credential format")
	}

	if credParts[4] != "aws4_request" {
		return Unauthenticated("invalid credential terminator: expected aws4_request")
	}

	p.accessKey = credParts[0]
	p.dateStamp = credParts[1]
	p.region = credParts[2]
	p.service = credParts[3]
	return nil
}

func (v *SignatureVerifier) validateParams(params *signatureParams) error {
	if params.algorithm != SignatureAlgorithm {
		return Unauthenticated(fmt.Sprintf("invalid algorithm: expected %s, got %s", SignatureAlgorithm, params.algorithm))
	}

	now := v.now()
	if params.presigned {
		if now.After(params.requestTime.Add(time.Duration(params.expires) * time.Second)) {
			return Unauthenticated("signature expired")
		}
	} else {
		skew := now.Sub(params.requestTime)
		if skew > v.cfg.ClockSkew || skew < -v.cfg.ClockSkew {
			return Unauthenticated("request time too skewed")
		}
	}

	expectedDate := params.requestTime.Format(DateFormat)
	if params.dateStamp != expectedDate {
		return Unauthenticated("credential date mismatch")
	}

	if params.region != v.cfg.Region {
		return Unauthenticated(fmt.Sprintf("region mismatch: expected %s, got %s", v.cfg.Region, params.region))
	}

	if params.service != v.cfg.Service {
		return Unauthenticated(fmt.Sprintf("service mismatch: expected %s, got %s", v.cfg.Service, params.service))
	}

	return nil
}

func withoutSignature(query url.Values) url.Values {
	params := url.Values{}
	for k, v := range query {
		if k != "X-Amz-Signature" {
			params[k] = v
		}
	}
	return params
}

func calculateSignature(secretKey, method, path string, query url.Values, headers http.Header, params *signatureParams) string {
	canonicalRequest := buildCanonicalRequest(method, path, query, headers, params.signedHeaders, params.payloadHash)

	credentialScope := fmt.Sprintf("%s/%s/%s/aws4_request", params.dateStamp, params.region, params.service)
	stringToSign := buildStringToSign(params.requestTime, credentialScope, canonicalRequest)

	signingKey := deriveSigningKey(secretKey, params.dateStamp, params.region, params.service)

	signature := hmacSHA256(signingKey, []byte(stringToSign))
	return hex.EncodeToString(signature)
}

func buildCanonicalRequest(method, path string, query url.Values, headers http.Header, signedHeaders, payloadHash string) string {
	if path == "" {
		path = "/"
	}
	canonicalQuery := strings.ReplaceAll(query.Encode(), "+", "%20")
	canonicalHeaders := buildCanonicalHeaders(headers, signedHeaders)

	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s\n%s",
		method,
		path,
		canonicalQuery,
		canonicalHeaders,
		signedHeaders,
		payloadHash,
	)
}

// buildCanonicalHeaders builds the canonical headers string from the signed headers list.
// Headers are sorted alphabetically and formatted as "name:value\n".
func buildCanonicalHeaders(headers http.Header, signedHeaders string) string {
	headerNames := strings.Split(signedHeaders, ";")
	sort.Strings(headerNames)

	var result strings.Builder
	for _, name := range headerNames {
		value := strings.Join(strings.Fields(strings.Join(headers.Values(name), ",")), " ")
		result.WriteString(name)
		result.WriteString(":")
		result.WriteString(value)
		result.WriteString("\n")
	}
	return result.String()
}

func buildStringToSign(requestTime time.Time, credentialScope, canonicalRequest string) string {
	hashedCanonicalRequest := sha256Hash([]byte(canonicalRequest))
	return fmt.Sprintf("%s\n%s\n%s\n%s",
		SignatureAlgorithm,
		requestTime.Format(DateTimeFormat),
		credentialScope,
		hashedCanonicalRequest,
	)
}

func deriveSigningKey(secretKey, dateStamp, region, service string) []byte {
	kDate := hmacSHA256([]byte("AWS4"+secretKey), []byte(dateStamp))
	kRegion := hmacSHA256(kDate, []byte(region))
	kService := hmacSHA256(kRegion, []byte(service))
	kSigning := hmacSHA256(kService, []byte("aws4_request"))
	return kSigning
}

func hmacSHA256(key, data []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(data)
	return h.Sum(nil)
}

func sha256Hash(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
