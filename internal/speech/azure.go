// Package speech turns announcement text into a playable audio file via
// the Azure Speech REST API.
package speech

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/vimace2003/Previsao-do-tempo-VHF-Linux/internal/bulletin"
)

// ErrSynthesis marks any failure of token issuance or speech generation.
// It is fatal for the run; the transmitter is never keyed after it.
var ErrSynthesis = errors.New("speech synthesis failed")

// OutputFormat is the audio format requested from the synthesis endpoint,
// matched to what the external player expects.
const OutputFormat = "riff-8khz-16bit-mono-pcm"

const userAgent = "previsao-do-tempo-vhf"

// Config holds the Azure Speech settings, passed in at construction.
// Endpoint overrides exist for tests; left empty they are derived from
// the region.
type Config struct {
	SubscriptionKey   string
	Region            string // defaults to brazilsouth
	Language          string // defaults to pt-BR
	TokenEndpoint     string
	SynthesisEndpoint string
	Client            *http.Client
}

// Client issues a fresh bearer token per run and posts SSML for synthesis.
// Tokens are not cached and expiry is not tracked; every broadcast starts
// from the unauthenticated credential.
type Client struct {
	cfg Config
}

func NewClient(cfg Config) *Client {
	if cfg.Region == "" {
		cfg.Region = "brazilsouth"
	}
	if cfg.Language == "" {
		cfg.Language = "pt-BR"
	}
	if cfg.TokenEndpoint == "" {
		cfg.TokenEndpoint = fmt.Sprintf("https://%s.api.cognitive.microsoft.com/sts/v1.0/issueToken", cfg.Region)
	}
	if cfg.SynthesisEndpoint == "" {
		cfg.SynthesisEndpoint = fmt.Sprintf("https://%s.tts.speech.microsoft.com/cognitiveservices/v1", cfg.Region)
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{cfg: cfg}
}

// FetchToken exchanges the subscription key for an opaque bearer token.
func (c *Client) FetchToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenEndpoint, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSynthesis, err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.cfg.SubscriptionKey)

	resp, err := c.cfg.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: token request: %v", ErrSynthesis, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: token endpoint status %d: %s", ErrSynthesis, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	token, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading token: %v", ErrSynthesis, err)
	}
	return string(token), nil
}

// Synthesize posts the voice-wrapped announcement and writes the binary
// audio body to outPath in full. A non-success status aborts the run.
func (c *Client) Synthesize(ctx context.Context, text string, voice bulletin.Voice, outPath string) error {
	token, err := c.FetchToken(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.SynthesisEndpoint, strings.NewReader(BuildSSML(text, voice, c.cfg.Language)))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSynthesis, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/ssml+xml")
	req.Header.Set("X-Microsoft-OutputFormat", OutputFormat)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.cfg.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: synthesis request: %v", ErrSynthesis, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: synthesis endpoint status %d: %s", ErrSynthesis, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrSynthesis, outPath, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		os.Remove(outPath)
		return fmt.Errorf("%w: writing audio: %v", ErrSynthesis, err)
	}
	return nil
}

// BuildSSML wraps the announcement in the synthesis markup, declaring the
// spoken language and voice. The text is XML-escaped before embedding so
// a custom message or condition description containing markup-significant
// characters cannot break the payload.
func BuildSSML(text string, voice bulletin.Voice, language string) string {
	return fmt.Sprintf(
		"<speak version='1.0' xmlns='http://www.w3.org/2001/10/synthesis' xml:lang='%s'><voice name='%s'>%s</voice></speak>",
		language, voice, escapeXML(text),
	)
}

func escapeXML(s string) string {
	var b strings.Builder
	// EscapeText only fails on a failing writer; strings.Builder never does.
	xml.EscapeText(&b, []byte(s))
	return b.String()
}
