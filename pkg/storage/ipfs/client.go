package ipfs

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/holaplex/marketplace-go/pkg/cache"
	"github.com/holaplex/marketplace-go/pkg/metrics"
	"github.com/holaplex/marketplace-go/pkg/retry"
	"github.com/holaplex/marketplace-go/pkg/retry/backoff"
	"github.com/holaplex/marketplace-go/pkg/storage"
)

const (
	DefaultUploadUrl = "https://market.holaplex.com/api/ipfs/upload"

	metricsStructName = "ipfs.client"
)

var errServiceError = errors.New("ipfs upload service error")

type Client struct {
	log        *logrus.Entry
	uploadUrl  string
	httpClient *http.Client
	retrier    retry.Retrier
	uploaded   cache.Cache
}

type Option func(c *Client)

// WithHTTPClient overrides http.DefaultClient.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRetrier overrides the retrier applied to 5xx responses and transport
// errors.
func WithRetrier(retrier retry.Retrier) Option {
	return func(c *Client) {
		c.retrier = retrier
	}
}

// WithUploadCache remembers uploaded files by name and content, so uploading
// identical bytes again returns the earlier file without a request. Content
// addressing guarantees the URI would be the same.
func WithUploadCache(uploaded cache.Cache) Option {
	return func(c *Client) {
		c.uploaded = uploaded
	}
}

// NewClient returns a storage.Uploader that posts files to an IPFS upload
// service as multipart forms.
func NewClient(uploadUrl string, opts ...Option) *Client {
	c := &Client{
		log:        logrus.StandardLogger().WithField("type", "storage/ipfs"),
		uploadUrl:  uploadUrl,
		httpClient: http.DefaultClient,
		retrier: retry.NewRetrier(
			retry.RetriableErrors(errServiceError),
			retry.Limit(3),
			retry.BackoffWithJitter(backoff.BinaryExponential(500*time.Millisecond), 5*time.Second, 0.1),
		),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type jsonFile struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	URI   string `json:"uri"`
	Error string `json:"error,omitempty"`
}

type jsonUploadResponse struct {
	Files []jsonFile `json:"files"`
}

// UploadFile implements storage.Uploader.UploadFile
func (c *Client) UploadFile(ctx context.Context, data []byte, name string) (*storage.File, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "UploadFile")
	defer tracer.End()

	tracer.AddAttribute("name", name)
	tracer.AddAttribute("size", len(data))

	log := c.log.WithFields(logrus.Fields{
		"method": "UploadFile",
		"name":   name,
	})

	var cacheKey string
	if c.uploaded != nil {
		digest := sha256.Sum256(data)
		cacheKey = name + ":" + hex.EncodeToString(digest[:])

		if cached, ok := c.uploaded.Retrieve(cacheKey); ok {
			file := cached.(storage.File)
			tracer.AddAttribute("cached", true)
			log.WithField("uri", file.URI).Debug("file already uploaded")
			return &file, nil
		}
	}

	body, contentType, err := newMultipartBody(data, name)
	if err != nil {
		tracer.OnError(err)
		return nil, err
	}

	var respBody []byte
	_, err = c.retrier.Retry(ctx, func() error {
		respBody, err = c.post(ctx, body, contentType)
		return err
	})
	if err != nil {
		log.WithError(err).Warn("failure uploading file")
		tracer.OnError(err)
		return nil, err
	}

	var parsed jsonUploadResponse
	err = json.Unmarshal(respBody, &parsed)
	if err != nil {
		tracer.OnError(err)
		return nil, errors.Wrap(err, "error unmarshalling json response")
	}

	if len(parsed.Files) == 0 {
		err = errors.New("upload response contained no files")
		tracer.OnError(err)
		return nil, err
	}

	uploaded := parsed.Files[0]
	if len(uploaded.Error) > 0 {
		err = errors.Errorf("upload service rejected file: %s", uploaded.Error)
		tracer.OnError(err)
		return nil, err
	}
	if len(uploaded.URI) == 0 {
		err = errors.New("upload response is missing a uri")
		tracer.OnError(err)
		return nil, err
	}

	log.WithField("uri", uploaded.URI).Debug("uploaded file")

	file := storage.File{
		Name: uploaded.Name,
		Type: uploaded.Type,
		URI:  uploaded.URI,
	}
	if c.uploaded != nil {
		// A concurrent upload of the same content may have inserted first.
		_ = c.uploaded.Insert(cacheKey, file, 1)
	}
	return &file, nil
}

func (c *Client) post(ctx context.Context, body []byte, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadUrl, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "error creating http request")
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrapf(errServiceError, "error executing http request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "error reading response body")
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, errors.Wrapf(errServiceError, "received http status %d: %s", resp.StatusCode, string(respBody))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("received http status %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

// newMultipartBody encodes data as a form file whose field name is also the
// file name, which is what the upload service expects.
func newMultipartBody(data []byte, name string) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile(name, name)
	if err != nil {
		return nil, "", errors.Wrap(err, "error creating form file")
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", errors.Wrap(err, "error writing form file")
	}
	if err := w.Close(); err != nil {
		return nil, "", errors.Wrap(err, "error closing multipart writer")
	}

	return buf.Bytes(), w.FormDataContentType(), nil
}
