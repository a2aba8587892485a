package oaiclient_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oai-harvest/harvester/internal/oaiclient"
)

func TestIdentify_SucceedsOnValidEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<OAI-PMH><Identify></Identify></OAI-PMH>`)
	}))
	defer server.Close()

	client := oaiclient.New(oaiclient.Config{Endpoint: server.URL, Timeout: time.Second})
	err := client.Identify(context.Background())
	require.NoError(t, err)
}

func TestIdentify_ReturnsOAIProtocolError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<OAI-PMH><error code="badVerb">Illegal verb</error></OAI-PMH>`)
	}))
	defer server.Close()

	client := oaiclient.New(oaiclient.Config{Endpoint: server.URL, Timeout: time.Second})
	err := client.Identify(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "badVerb")
}

func TestListIdentifiers_PaginatesViaResumptionToken(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			fmt.Fprint(w, `<OAI-PMH><ListIdentifiers>
				<header><identifier>oai:example.edu:1</identifier><datestamp>2026-01-01</datestamp></header>
				<resumptionToken>page2</resumptionToken>
			</ListIdentifiers></OAI-PMH>`)
			return
		}
		assert.Equal(t, "page2", r.URL.Query().Get("resumptionToken"))
		fmt.Fprint(w, `<OAI-PMH><ListIdentifiers>
			<header status="deleted"><identifier>oai:example.edu:2</identifier><datestamp>2026-01-02</datestamp></header>
		</ListIdentifiers></OAI-PMH>`)
	}))
	defer server.Close()

	client := oaiclient.New(oaiclient.Config{Endpoint: server.URL, Timeout: time.Second})
	it, err := client.ListIdentifiers(context.Background(), "oai_ead")
	require.NoError(t, err)
	defer it.Close()

	page1, ok, err := it.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, page1.Headers, 1)
	assert.Equal(t, "oai:example.edu:1", page1.Headers[0].Identifier)

	page2, ok, err := it.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, page2.Headers, 1)
	assert.Equal(t, "deleted", page2.Headers[0].Status)

	_, ok, err = it.Next(context.Background())
	require.NoError(t, err)
	assert.False(t, ok, "iterator exhausts once a page carries no resumption token")

	assert.Equal(t, 2, calls)
}

func TestGetRecord_MissingPayloadIsPermanentFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<OAI-PMH><error code="idDoesNotExist">no such record</error></OAI-PMH>`)
	}))
	defer server.Close()

	client := oaiclient.New(oaiclient.Config{Endpoint: server.URL, Timeout: time.Second, Retries: 2})
	_, err := client.GetRecord(context.Background(), "oai:example.edu:missing", "oai_ead")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "idDoesNotExist")
}

func TestGetRecord_ReturnsMetadataPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<OAI-PMH><GetRecord><record>
			<header><identifier>oai:example.edu:1</identifier><datestamp>2026-01-01</datestamp></header>
			<metadata><ead><unittitle>A Finding Aid</unittitle></ead></metadata>
		</record></GetRecord></OAI-PMH>`)
	}))
	defer server.Close()

	client := oaiclient.New(oaiclient.Config{Endpoint: server.URL, Timeout: time.Second})
	resp, err := client.GetRecord(context.Background(), "oai:example.edu:1", "oai_ead")
	require.NoError(t, err)
	require.NotNil(t, resp.Payload)
	assert.Contains(t, resp.Payload.Metadata, "A Finding Aid")
}
