package engine

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/lyrebird-studio/lyrebird/pkg/audio/pcm"
)

const defaultTimeout = 120 * time.Second

// clientConfig represents client configuration.
type clientConfig struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	timeout    time.Duration
}

// Option represents a client configuration option.
type Option func(*clientConfig)

// WithAPIKey sets the x-api-key header for every request.
func WithAPIKey(key string) Option {
	return func(c *clientConfig) { c.apiKey = key }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *clientConfig) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout. Synthesis is slow on CPU;
// the default is generous.
func WithTimeout(d time.Duration) Option {
	return func(c *clientConfig) { c.timeout = d }
}

// Client talks to a lyrebird-engine sidecar over HTTP.
type Client struct {
	config *clientConfig
	caps   Capabilities
	format pcm.Format
}

var _ Engine = (*Client)(nil)

// engineInfo is the response of GET /v1/engine.
type engineInfo struct {
	apiResponse
	SampleRate   int          `json:"sample_rate"`
	Capabilities Capabilities `json:"capabilities"`
}

// Dial connects to the engine at baseURL and negotiates its capability
// descriptor and output sample rate. The descriptor is fetched exactly
// once; the returned client never probes capabilities per call.
func Dial(ctx context.Context, baseURL string, opts ...Option) (*Client, error) {
	config := &clientConfig{
		baseURL: baseURL,
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(config)
	}
	if config.httpClient == nil {
		config.httpClient = &http.Client{Timeout: config.timeout}
	}

	c := &Client{config: config}

	var info engineInfo
	if err := c.doJSONRequest(ctx, http.MethodGet, "/v1/engine", nil, &info); err != nil {
		return nil, wrapError(err, "engine: negotiate capabilities")
	}
	format, ok := pcm.FormatForRate(info.SampleRate)
	if !ok {
		return nil, fmt.Errorf("engine: unsupported sample rate %d", info.SampleRate)
	}
	c.caps = info.Capabilities
	c.format = format
	return c, nil
}

// Capabilities returns the descriptor negotiated by Dial.
func (c *Client) Capabilities() Capabilities {
	return c.caps
}

// OutputFormat returns the engine's fixed PCM output format.
func (c *Client) OutputFormat() pcm.Format {
	return c.format
}

// presetsResponse is the response of GET /v1/presets.
type presetsResponse struct {
	apiResponse
	Presets []Preset `json:"presets"`
}

// ListPresets returns the preset voices available in the loaded model.
func (c *Client) ListPresets(ctx context.Context) ([]Preset, error) {
	var resp presetsResponse
	if err := c.doJSONRequest(ctx, http.MethodGet, "/v1/presets", nil, &resp); err != nil {
		return nil, wrapError(err, "engine: list presets")
	}
	return resp.Presets, nil
}

// synthesizeRequest is the body of POST /v1/synthesize.
type synthesizeRequest struct {
	ReqID          string  `json:"reqid"`
	Mode           Mode    `json:"mode"`
	Text           string  `json:"text"`
	Instruction    string  `json:"instruction,omitempty"`
	ReferenceAudio string  `json:"reference_audio,omitempty"` // base64
	SpeakerID      string  `json:"speaker_id,omitempty"`
	Speed          float64 `json:"speed,omitempty"`
	SampleRate     int     `json:"sample_rate"`
}

// synthesizeResponse is the response of POST /v1/synthesize. Chunks are
// base64-encoded raw PCM at the engine's sample rate, in order.
type synthesizeResponse struct {
	apiResponse
	Chunks []string `json:"chunks"`
}

// Synthesize runs one synthesis call. Clone modes read the reference audio
// file and ship it inline.
func (c *Client) Synthesize(ctx context.Context, req *Request) ([]pcm.Clip, error) {
	body := &synthesizeRequest{
		ReqID:       uuid.NewString(),
		Mode:        req.Mode,
		Text:        req.Text,
		Instruction: req.Instruction,
		SpeakerID:   req.SpeakerID,
		Speed:       req.Speed,
		SampleRate:  c.format.SampleRate(),
	}
	if req.RefAudioPath != "" {
		ref, err := os.ReadFile(req.RefAudioPath)
		if err != nil {
			return nil, wrapError(err, "engine: read reference audio")
		}
		body.ReferenceAudio = base64.StdEncoding.EncodeToString(ref)
	}

	var resp synthesizeResponse
	if err := c.doJSONRequest(ctx, http.MethodPost, "/v1/synthesize", body, &resp); err != nil {
		return nil, err
	}

	clips := make([]pcm.Clip, 0, len(resp.Chunks))
	for i, chunk := range resp.Chunks {
		data, err := base64.StdEncoding.DecodeString(chunk)
		if err != nil {
			return nil, wrapError(err, fmt.Sprintf("engine: decode chunk %d", i))
		}
		clips = append(clips, pcm.Clip{Data: data, Format: c.format})
	}
	return clips, nil
}

// doJSONRequest sends a JSON request and decodes the JSON response.
func (c *Client) doJSONRequest(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBytes, err := json.Marshal(body)
		if err != nil {
			return wrapError(err, "marshal request body")
		}
		bodyReader = bytes.NewReader(jsonBytes)
	}

	url := c.config.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return wrapError(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.apiKey != "" {
		req.Header.Set("x-api-key", c.config.apiKey)
	}

	resp, err := c.config.httpClient.Do(req)
	if err != nil {
		return wrapError(err, "send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return wrapError(err, "read response")
	}

	if resp.StatusCode != http.StatusOK {
		return parseAPIError(resp.StatusCode, respBody)
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return wrapError(err, "unmarshal response")
		}
	}
	return nil
}
