// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package forward

import (
	"errors"
	"testing"
)

func TestNormalizeBody(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		want        string
	}{
		{name: "empty", contentType: "application/json", body: "", want: "{}"},
		{name: "whitespace", contentType: "", body: " \n", want: "{}"},
		{name: "json kept", contentType: "application/json", body: `{"a":1}`, want: `{"a":1}`},
		{name: "json compacted", contentType: "application/json; charset=utf-8", body: "{\n  \"b\": 2,\n  \"a\": 1.50\n}", want: `{"b":2,"a":1.50}`},
		{name: "vendor json", contentType: "application/vnd.api+json", body: `[1, 2]`, want: `[1,2]`},
		{name: "json without content type", contentType: "", body: `{"a":1}`, want: `{"a":1}`},
		{name: "form single values", contentType: "application/x-www-form-urlencoded", body: "name=x&id=1", want: `{"id":"1","name":"x"}`},
		{name: "form repeated values", contentType: "application/x-www-form-urlencoded", body: "id=1&id=2", want: `{"id":["1","2"]}`},
		{name: "plain text ignored", contentType: "text/plain", body: "hello", want: "{}"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeBody(tc.contentType, []byte(tc.body))
			if err != nil {
				t.Fatalf("NormalizeBody: %v", err)
			}
			if string(got) != tc.want {
				t.Fatalf("got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestNormalizeBodyInvalid(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
	}{
		{name: "broken json", contentType: "application/json", body: `{"a":`},
		{name: "broken form", contentType: "application/x-www-form-urlencoded", body: "a=%zz"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NormalizeBody(tc.contentType, []byte(tc.body)); !errors.Is(err, ErrInvalidBody) {
				t.Fatalf("expected ErrInvalidBody, got %v", err)
			}
		})
	}
}
