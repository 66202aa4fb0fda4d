package api

import (
	"errors"
	"strings"
	"testing"
)

func TestBuildURI(t *testing.T) {
	e := Endpoint{
		Root: "https://aoe2.net",
		Path: "/api/player/lastmatch",
		Params: []Param{
			{Key: "game", Value: "aoe2de"},
			{Key: "profile_id", Value: "459658"},
		},
	}
	uri, err := e.BuildURI()
	if err != nil {
		t.Fatalf("BuildURI failed: %v", err)
	}
	if uri != "https://aoe2.net/api/player/lastmatch?game=aoe2de&profile_id=459658" {
		t.Errorf("unexpected URI: %s", uri)
	}
}

func TestBuildURI_NoParams(t *testing.T) {
	uri, err := Endpoint{Root: "https://example.com", Path: "/players.yaml"}.BuildURI()
	if err != nil {
		t.Fatalf("BuildURI failed: %v", err)
	}
	if strings.Contains(uri, "?") {
		t.Errorf("URI without params must not carry a query string: %s", uri)
	}
}

func TestBuildURI_EscapesValues(t *testing.T) {
	e := Endpoint{
		Root:   "https://aoe2.net",
		Path:   "/api/strings",
		Params: []Param{{Key: "language", Value: "zh-TW&evil=1"}},
	}
	uri, err := e.BuildURI()
	if err != nil {
		t.Fatalf("BuildURI failed: %v", err)
	}
	if strings.Contains(uri, "evil=1") {
		t.Errorf("parameter value not escaped: %s", uri)
	}
}

func TestBuildURI_Invalid(t *testing.T) {
	for name, e := range map[string]Endpoint{
		"missing host":   {Root: "", Path: "/api/strings"},
		"missing scheme": {Root: "aoe2.net", Path: "/api/strings"},
		"control chars":  {Root: "https://aoe2.net", Path: "/api/\x00strings"},
	} {
		_, err := e.BuildURI()
		var uriErr *InvalidURIError
		if !errors.As(err, &uriErr) {
			t.Errorf("%s: want InvalidURIError, got %v", name, err)
		}
	}
}

type playerPayload struct {
	ProfileID int    `json:"profile_id"`
	Message   string `json:"message"`
}

func TestParse_Success(t *testing.T) {
	body := []byte(`{"profile_id": 459658, "message": "hello"}`)
	got, err := Parse[playerPayload]("http://x/api", body)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got.ProfileID != 459658 {
		t.Errorf("want profile_id 459658, got %d", got.ProfileID)
	}
}

func TestParse_ErrorEnvelopePrecedence(t *testing.T) {
	// This body decodes laxly as playerPayload too (message field matches);
	// the envelope must win.
	body := []byte(`{"error": true, "status": 404, "message": "player not found"}`)
	_, err := Parse[playerPayload]("http://x/api", body)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("want APIError, got %v", err)
	}
	if apiErr.Status != 404 {
		t.Errorf("want status 404, got %d", apiErr.Status)
	}
	if apiErr.Message != "player not found" {
		t.Errorf("upstream message not preserved: %q", apiErr.Message)
	}
	if apiErr.URI != "http://x/api" {
		t.Errorf("request URI not carried: %q", apiErr.URI)
	}
}

func TestParse_SuccessBodyIsNotAnEnvelope(t *testing.T) {
	// A success body containing a message field must not be classified as
	// an upstream error: envelope decoding is strict.
	body := []byte(`{"profile_id": 1, "message": "motd"}`)
	got, err := Parse[playerPayload]("http://x/api", body)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got.Message != "motd" {
		t.Errorf("want message %q, got %q", "motd", got.Message)
	}
}

func TestParse_DeserializeErrorCarriesRaw(t *testing.T) {
	body := []byte(`<html>not json</html>`)
	_, err := Parse[playerPayload]("http://x/api", body)
	var desErr *DeserializeError
	if !errors.As(err, &desErr) {
		t.Fatalf("want DeserializeError, got %v", err)
	}
	if desErr.Raw != "<html>not json</html>" {
		t.Errorf("raw text not preserved: %q", desErr.Raw)
	}
}

func TestParse_InvalidUTF8(t *testing.T) {
	body := []byte{0xff, 0xfe, '{', '}'}
	_, err := Parse[playerPayload]("http://x/api", body)
	var textErr *InvalidTextError
	if !errors.As(err, &textErr) {
		t.Fatalf("want InvalidTextError, got %v", err)
	}
}

func TestParse_ArrayBody(t *testing.T) {
	body := []byte(`[{"rating": 2500, "num_wins": 10}]`)
	got, err := Parse[[]RatingHistoryEntry]("http://x/api", body)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(*got) != 1 || (*got)[0].Rating != 2500 {
		t.Errorf("unexpected entries: %+v", *got)
	}
}
