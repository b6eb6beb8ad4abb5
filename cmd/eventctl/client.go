package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/go-resty/resty/v2"
)

// sessionCookie matches auth.CookieName on the server.
const sessionCookie = "eventfinder_session"

func newClient(api, token string) *resty.Client {
	c := resty.New().
		SetBaseURL(api).
		SetHeader("Accept", "application/json")
	if token != "" {
		c.SetAuthToken(token)
	}
	return c
}

// call sends one request and returns the response; any status >= 400 is an
// error carrying the server's message.
func call(req *resty.Request, method, path string) (*resty.Response, error) {
	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		var e struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(resp.Body(), &e) == nil && e.Message != "" {
			return resp, fmt.Errorf("http %d: %s", resp.StatusCode(), e.Message)
		}
		return resp, fmt.Errorf("http %d: %s", resp.StatusCode(), resp.String())
	}
	return resp, nil
}

// printJSON re-indents a JSON body for the terminal.
func printJSON(out io.Writer, body []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		_, err = out.Write(body)
		return err
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(out)
	return err
}
