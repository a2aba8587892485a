package oaiclient

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/oai-harvest/harvester/internal/domain"
)

// Config configures the HTTP OAI-PMH client.
type Config struct {
	Endpoint string
	// Timeout bounds every single HTTP round-trip (identify, each
	// list_identifiers page, each get_record) per spec.md §4.4.1/§4.4.2.
	Timeout time.Duration
	// Retries is the number of extra attempts get_record makes after a
	// timeout, with exponential backoff starting at 500ms (§4.4.2).
	Retries int
}

// HTTPClient implements Client over plain HTTP GET requests against an
// OAI-PMH base URL, decoding the XML envelope with encoding/xml.
type HTTPClient struct {
	cfg        Config
	httpClient *http.Client
}

// New returns an HTTPClient for the given configuration.
func New(cfg Config) *HTTPClient {
	return &HTTPClient{cfg: cfg, httpClient: &http.Client{}}
}

type oaiError struct {
	Code    string `xml:"code,attr"`
	Message string `xml:",chardata"`
}

type oaiEnvelope struct {
	Error         *oaiError      `xml:"error"`
	Identify      *struct{}      `xml:"Identify"`
	ListIDs       *listIDsBody   `xml:"ListIdentifiers"`
	GetRecordBody *getRecordBody `xml:"GetRecord"`
}

type headerXML struct {
	Status     string `xml:"status,attr"`
	Identifier string `xml:"identifier"`
	Datestamp  string `xml:"datestamp"`
}

type listIDsBody struct {
	Headers         []headerXML `xml:"header"`
	ResumptionToken string      `xml:"resumptionToken"`
}

type getRecordBody struct {
	Record struct {
		Header   headerXML `xml:"header"`
		Metadata struct {
			Inner string `xml:",innerxml"`
		} `xml:"metadata"`
	} `xml:"record"`
}

func (c *HTTPClient) do(ctx context.Context, values url.Values) (*oaiEnvelope, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	reqURL := c.cfg.Endpoint + "?" + values.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build OAI request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("OAI request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read OAI response: %w", err)
	}

	var env oaiEnvelope
	if err := xml.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode OAI response: %w", err)
	}
	if env.Error != nil {
		return nil, fmt.Errorf("OAI-PMH error %s: %s", env.Error.Code, strings.TrimSpace(env.Error.Message))
	}

	return &env, nil
}

// Identify implements Client.
func (c *HTTPClient) Identify(ctx context.Context) error {
	_, err := c.do(ctx, url.Values{"verb": {"Identify"}})
	return err
}

// ListIdentifiers implements Client.
func (c *HTTPClient) ListIdentifiers(ctx context.Context, metadataPrefix string) (PageIterator, error) {
	return &httpPageIterator{client: c, metadataPrefix: metadataPrefix}, nil
}

// httpPageIterator pages through list_identifiers via the OAI-PMH
// resumption-token protocol.
type httpPageIterator struct {
	client         *HTTPClient
	metadataPrefix string
	token          string
	started        bool
	done           bool
}

func (p *httpPageIterator) Next(ctx context.Context) (domain.ListIdentifiersPage, bool, error) {
	if p.done {
		return domain.ListIdentifiersPage{}, false, nil
	}

	values := url.Values{"verb": {"ListIdentifiers"}}
	if p.started && p.token != "" {
		values.Set("resumptionToken", p.token)
	} else {
		values.Set("metadataPrefix", p.metadataPrefix)
	}
	p.started = true

	env, err := p.client.do(ctx, values)
	if err != nil {
		return domain.ListIdentifiersPage{Error: err}, true, nil
	}
	if env.ListIDs == nil {
		p.done = true
		return domain.ListIdentifiersPage{}, false, nil
	}

	headers := make([]domain.OaiHeader, 0, len(env.ListIDs.Headers))
	for _, h := range env.ListIDs.Headers {
		headers = append(headers, domain.OaiHeader{
			Identifier: h.Identifier,
			Datestamp:  h.Datestamp,
			Status:     h.Status,
		})
	}

	p.token = env.ListIDs.ResumptionToken
	if p.token == "" {
		p.done = true
	}

	return domain.ListIdentifiersPage{Headers: headers}, true, nil
}

func (p *httpPageIterator) Close() error { return nil }

// GetRecord implements Client, retrying on timeout with exponential
// backoff (500ms · 2ⁿ) up to Retries extra attempts (§4.4.2).
func (c *HTTPClient) GetRecord(ctx context.Context, identifier, metadataPrefix string) (domain.GetRecordResponse, error) {
	var result domain.GetRecordResponse

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	policy := backoff.WithMaxRetries(bo, uint64(c.cfg.Retries))
	policy = backoff.WithContext(policy, ctx)

	op := func() error {
		values := url.Values{
			"verb":           {"GetRecord"},
			"identifier":     {identifier},
			"metadataPrefix": {metadataPrefix},
		}
		env, err := c.do(ctx, values)
		if err != nil {
			if isTimeout(err) {
				return err // retryable
			}
			return backoff.Permanent(err)
		}
		if env.GetRecordBody == nil {
			// No payload: a permanent failure (§4.4.2), not retried.
			result = domain.GetRecordResponse{}
			return nil
		}
		result = domain.GetRecordResponse{
			Payload: &domain.GetRecordPayload{Metadata: env.GetRecordBody.Record.Metadata.Inner},
		}
		return nil
	}

	if err := backoff.Retry(op, policy); err != nil {
		return domain.GetRecordResponse{}, err
	}

	return result, nil
}

func isTimeout(err error) bool {
	type timeouter interface{ Timeout() bool }
	var t timeouter
	for e := err; e != nil; {
		if tt, ok := e.(timeouter); ok {
			t = tt
			break
		}
		unwrap, ok := e.(interface{ Unwrap() error })
		if !ok {
			break
		}
		e = unwrap.Unwrap()
	}
	return t != nil && t.Timeout()
}
